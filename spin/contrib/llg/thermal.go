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

package llg

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ajroetker/go-atomistic/spin"
	"github.com/ajroetker/go-atomistic/spin/contrib/workerpool"
)

// Boltzmann is the Boltzmann constant in J/K, the kB to pass when temp and
// μ_s are in SI units. Reduced-unit runs, where temperature is measured in
// units of the exchange energy, pass kB = 1.
const Boltzmann = 1.380649e-23

// ThermalField writes the Brown thermal field
//
//	H_th,i = η_i sqrt(2 α_i kB T_i / (γ μ_s,i dt))
//
// into dst. eta is 3n standard normal draws, fresh for every step; temp,
// alpha and muSInv (1/μ_s) are n.
func ThermalField(dst, eta, temp, alpha, muSInv []float64, kB, gamma, dt float64) {
	n := checkThermal(dst, eta, temp, alpha, muSInv)
	thermalRange(dst, eta, temp, alpha, muSInv, kB, gamma, dt, 0, n)
}

// ParallelThermalField is ThermalField split across pool.
func ParallelThermalField(pool *workerpool.Pool, dst, eta, temp, alpha, muSInv []float64, kB, gamma, dt float64) {
	n := checkThermal(dst, eta, temp, alpha, muSInv)
	workerpool.Sites(pool, n, spin.MinParallelSites, func(start, end int) {
		thermalRange(dst, eta, temp, alpha, muSInv, kB, gamma, dt, start, end)
	})
}

func checkThermal(dst, eta, temp, alpha, muSInv []float64) int {
	n := len(dst) / 3
	spin.MustLen("dst", len(dst), 3*n)
	spin.MustLen("eta", len(eta), 3*n)
	spin.MustLen("temp", len(temp), n)
	spin.MustLen("alpha", len(alpha), n)
	spin.MustLen("muSInv", len(muSInv), n)
	return n
}

func thermalRange(dst, eta, temp, alpha, muSInv []float64, kB, gamma, dt float64, start, end int) {
	for i := start; i < end; i++ {
		spin.Put(dst, i, r3.Scale(thermalScale(temp[i], alpha[i], muSInv[i], kB, gamma, dt), spin.At(eta, i)))
	}
}

func thermalScale(temp, alpha, muSInv, kB, gamma, dt float64) float64 {
	return math.Sqrt(2 * alpha * kB * temp * muSInv / (gamma * dt))
}

// StochasticRHS is RHS with the effective field h + hThermal, where hThermal
// typically comes from ThermalField.
func StochasticRHS(dst, m, h, hThermal, alpha []float64, pins []int32, p Params) {
	n := checkShapes(dst, m, h, alpha, pins)
	spin.MustLen("hThermal", len(hThermal), 3*n)
	stochasticRange(dst, m, h, hThermal, alpha, pins, p, 0, n)
}

// ParallelStochasticRHS is StochasticRHS split across pool.
func ParallelStochasticRHS(pool *workerpool.Pool, dst, m, h, hThermal, alpha []float64, pins []int32, p Params) {
	n := checkShapes(dst, m, h, alpha, pins)
	spin.MustLen("hThermal", len(hThermal), 3*n)
	workerpool.Sites(pool, n, spin.MinParallelSites, func(start, end int) {
		stochasticRange(dst, m, h, hThermal, alpha, pins, p, start, end)
	})
}

func stochasticRange(dst, m, h, hThermal, alpha []float64, pins []int32, p Params, start, end int) {
	for i := start; i < end; i++ {
		if pinned(pins, i) {
			spin.Zero(dst, i)
			continue
		}
		heff := r3.Add(spin.At(h, i), spin.At(hThermal, i))
		spin.Put(dst, i, rhs(spin.At(m, i), heff, alpha[i], p))
	}
}

// DomainWallRHS is RHS for thermally driven domain-wall motion: the thermal
// field of ThermalField (with the same kB) is formed inline from eta and
// added to h. Sites at zero temperature get exactly the RHS result.
func DomainWallRHS(dst, m, h, eta, temp, alpha, muSInv []float64, pins []int32, p Params, kB, dt float64) {
	n := checkDomainWall(dst, m, h, eta, temp, alpha, muSInv, pins)
	domainWallRange(dst, m, h, eta, temp, alpha, muSInv, pins, p, kB, dt, 0, n)
}

// ParallelDomainWallRHS is DomainWallRHS split across pool.
func ParallelDomainWallRHS(pool *workerpool.Pool, dst, m, h, eta, temp, alpha, muSInv []float64, pins []int32, p Params, kB, dt float64) {
	n := checkDomainWall(dst, m, h, eta, temp, alpha, muSInv, pins)
	workerpool.Sites(pool, n, spin.MinParallelSites, func(start, end int) {
		domainWallRange(dst, m, h, eta, temp, alpha, muSInv, pins, p, kB, dt, start, end)
	})
}

func checkDomainWall(dst, m, h, eta, temp, alpha, muSInv []float64, pins []int32) int {
	n := checkShapes(dst, m, h, alpha, pins)
	spin.MustLen("eta", len(eta), 3*n)
	spin.MustLen("temp", len(temp), n)
	spin.MustLen("muSInv", len(muSInv), n)
	return n
}

func domainWallRange(dst, m, h, eta, temp, alpha, muSInv []float64, pins []int32, p Params, kB, dt float64, start, end int) {
	for i := start; i < end; i++ {
		if pinned(pins, i) {
			spin.Zero(dst, i)
			continue
		}
		heff := spin.At(h, i)
		if temp[i] != 0 {
			th := r3.Scale(thermalScale(temp[i], alpha[i], muSInv[i], kB, p.Gamma, dt), spin.At(eta, i))
			heff = r3.Add(heff, th)
		}
		spin.Put(dst, i, rhs(spin.At(m, i), heff, alpha[i], p))
	}
}
