// Copyright 2025 go-atomistic Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package driver

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus instruments of a run, registered on a private
// registry. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	rhsEvaluations prometheus.Counter
	llgSteps       prometheus.Counter
	mcSweeps       *prometheus.CounterVec
	acceptance     *prometheus.GaugeVec
	energy         *prometheus.GaugeVec
	skyrmion       *prometheus.GaugeVec
}

// NewMetrics creates the instruments on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		rhsEvaluations: f.NewCounter(prometheus.CounterOpts{
			Namespace: "spinsim",
			Name:      "rhs_evaluations_total",
			Help:      "LLG right-hand side evaluations.",
		}),
		llgSteps: f.NewCounter(prometheus.CounterOpts{
			Namespace: "spinsim",
			Name:      "llg_steps_total",
			Help:      "Completed LLG integration steps.",
		}),
		mcSweeps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spinsim",
			Name:      "mc_sweeps_total",
			Help:      "Completed Monte Carlo sweeps.",
		}, []string{"temperature"}),
		acceptance: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "spinsim",
			Name:      "mc_acceptance_ratio",
			Help:      "Acceptance ratio of the last Monte Carlo sweep.",
		}, []string{"temperature"}),
		energy: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "spinsim",
			Name:      "energy",
			Help:      "Total energy at the last report.",
		}, []string{"run"}),
		skyrmion: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "spinsim",
			Name:      "skyrmion_number",
			Help:      "Skyrmion number of the first layer at the last report.",
		}, []string{"run"}),
	}
}

// Registry returns the registry holding the instruments.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) rhs(count int) {
	if m == nil {
		return
	}
	m.rhsEvaluations.Add(float64(count))
}

func (m *Metrics) step() {
	if m == nil {
		return
	}
	m.llgSteps.Inc()
}

func (m *Metrics) sweep(temp float64, accepted, sites int) {
	if m == nil {
		return
	}
	label := temperatureLabel(temp)
	m.mcSweeps.WithLabelValues(label).Inc()
	m.acceptance.WithLabelValues(label).Set(float64(accepted) / float64(sites))
}

func (m *Metrics) report(run string, e, q float64) {
	if m == nil {
		return
	}
	m.energy.WithLabelValues(run).Set(e)
	m.skyrmion.WithLabelValues(run).Set(q)
}

func temperatureLabel(temp float64) string {
	return strconv.FormatFloat(temp, 'g', -1, 64)
}
