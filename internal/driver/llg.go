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
	"context"
	"log/slog"

	"gonum.org/v1/gonum/floats"

	"github.com/ajroetker/go-atomistic/internal/config"
	"github.com/ajroetker/go-atomistic/spin/contrib/llg"
	"github.com/ajroetker/go-atomistic/spin/contrib/rng"
)

// LLGResult summarises an LLG run.
type LLGResult struct {
	Steps          int
	Time           float64
	Energy         float64
	SkyrmionNumber float64
	CenterX        float64
	CenterY        float64
}

// RunLLG integrates sys.Spins for cfg.Steps steps of the classical fourth
// order Runge-Kutta scheme, normalising after every step.
//
// With cfg.Temperature > 0 a thermal field is drawn from s once per step and
// held over the four stages. A non-zero cfg.U0 adds the Zhang-Li torque of a
// current along cfg.Current; a non-zero cfg.AJ adds the Slonczewski torque.
//
// The context is checked between steps; on cancellation the result so far is
// returned with the context's error.
func RunLLG(ctx context.Context, sys *System, cfg config.LLG, s rng.Sampler, log *slog.Logger, metrics *Metrics) (LLGResult, error) {
	n := sys.Grid.Sites()
	m := sys.Spins
	p := llg.Params{Gamma: cfg.Gamma, Precession: cfg.Precession, C: cfg.C}
	pool := sys.pool

	k1 := make([]float64, 3*n)
	k2 := make([]float64, 3*n)
	k3 := make([]float64, 3*n)
	k4 := make([]float64, 3*n)
	stage := make([]float64, 3*n)

	thermal := cfg.Temperature > 0
	var eta, hth, temp []float64
	if thermal {
		eta = make([]float64, 3*n)
		hth = make([]float64, 3*n)
		temp = filled(n, cfg.Temperature)
	}

	var hstt, jx, jy, pol, aJ []float64
	switch {
	case cfg.U0 != 0:
		hstt = make([]float64, 3*n)
		jx = filled(n, cfg.Current[0])
		jy = filled(n, cfg.Current[1])
	case cfg.AJ != 0:
		pol = make([]float64, 3*n)
		for i := range n {
			copy(pol[3*i:], cfg.Polarization)
		}
		aJ = filled(n, cfg.AJ)
	}
	spacing := sys.spacing

	rhs := func(dst, state []float64) {
		sys.ComputeField(state)
		h := sys.Field
		switch {
		case hstt != nil:
			if thermal {
				floats.Add(h, hth)
			}
			llg.ParallelSTTField(pool, hstt, state, jx, jy, spacing, spacing, sys.Ngbs)
			llg.ParallelZhangLiRHS(pool, dst, state, h, hstt, sys.Alpha, nil, cfg.Beta, cfg.U0, p)
		case aJ != nil:
			if thermal {
				floats.Add(h, hth)
			}
			llg.ParallelSlonczewskiRHS(pool, dst, state, h, pol, sys.Alpha, aJ, nil, cfg.Beta, p)
		case thermal:
			llg.ParallelStochasticRHS(pool, dst, state, h, hth, sys.Alpha, nil, p)
		default:
			llg.ParallelRHS(pool, dst, state, h, sys.Alpha, nil, p)
		}
	}

	log.Info("llg start", "sites", n, "steps", cfg.Steps, "dt", cfg.Dt, "temperature", cfg.Temperature)
	dt := cfg.Dt
	var res LLGResult
	for step := 1; step <= cfg.Steps; step++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if thermal {
			rng.GaussVec(s, eta)
			llg.ParallelThermalField(pool, hth, eta, temp, sys.Alpha, sys.MuSInv, sys.material.KB, cfg.Gamma, dt)
		}

		rhs(k1, m)
		floats.AddScaledTo(stage, m, dt/2, k1)
		rhs(k2, stage)
		floats.AddScaledTo(stage, m, dt/2, k2)
		rhs(k3, stage)
		floats.AddScaledTo(stage, m, dt, k3)
		rhs(k4, stage)
		metrics.rhs(4)

		floats.AddScaled(m, dt/6, k1)
		floats.AddScaled(m, dt/3, k2)
		floats.AddScaled(m, dt/3, k3)
		floats.AddScaled(m, dt/6, k4)
		llg.ParallelNormalize(pool, m, nil)
		metrics.step()

		res.Steps = step
		res.Time = float64(step) * dt
		if (cfg.LogEvery > 0 && step%cfg.LogEvery == 0) || step == cfg.Steps {
			res = sys.observe(res)
			metrics.report("llg", res.Energy, res.SkyrmionNumber)
			log.Info("llg step", "step", step, "time", res.Time, "energy", res.Energy, "skyrmion_number", res.SkyrmionNumber)
		}
	}
	if cfg.Steps == 0 {
		res = sys.observe(res)
	}
	log.Info("llg done", "steps", res.Steps, "energy", res.Energy, "skyrmion_number", res.SkyrmionNumber,
		"center_x", res.CenterX, "center_y", res.CenterY)
	return res, nil
}

// observe fills the diagnostics of res from the current spins.
func (s *System) observe(res LLGResult) LLGResult {
	s.ComputeField(s.Spins)
	res.Energy = s.TotalEnergy()
	res.SkyrmionNumber = s.SkyrmionNumber(s.Spins)
	res.CenterX, res.CenterY = s.GuidingCenter(s.Spins)
	return res
}
