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

// Package llg provides the right-hand sides of the Landau-Lifshitz-Gilbert
// equation for an external ODE integrator, the Jacobian-vector product for
// implicit integrators, stochastic, domain-wall and spin-transfer-torque
// variants, and normalisation.
//
// Every kernel writes dst (3n, interleaved) and leaves pinned sites
// (pins[i] != 0) at zero. A nil pins slice pins nothing. Spins are not assumed
// to be unit length: the relaxation term pulls |m| back to 1.
package llg

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ajroetker/go-atomistic/spin"
	"github.com/ajroetker/go-atomistic/spin/contrib/workerpool"
)

// Params are the scalar parameters shared by every right-hand side.
type Params struct {
	// Gamma is the gyromagnetic ratio.
	Gamma float64

	// Precession enables the m × H term. With it off only damping remains,
	// which is useful for energy minimisation.
	Precession bool

	// C is the rate of the relaxation term c(1 - |m|²)m that keeps spins on
	// the unit sphere between normalisations. A negative C selects the
	// adaptive rate c = 6|τ|, with τ the LLG torque of the site.
	C float64
}

func pinned(pins []int32, i int) bool {
	return pins != nil && pins[i] != 0
}

// torque is the LLG torque
//
//	τ = -γ/(1+α²) (P m × h⊥ - α h⊥),  h⊥ = |m|²h - (m·h)m
//
// where h⊥ = -m × (m × h).
func torque(m, h r3.Vec, mm, alpha float64, p Params) r3.Vec {
	coeff := -p.Gamma / (1 + alpha*alpha)
	hp := r3.Sub(r3.Scale(mm, h), r3.Scale(r3.Dot(m, h), m))
	var t r3.Vec
	if p.Precession {
		t = r3.Cross(m, hp)
	}
	return r3.Scale(coeff, r3.Sub(t, r3.Scale(alpha, hp)))
}

// rate returns the relaxation rate for torque t.
func rate(t r3.Vec, p Params) float64 {
	if p.C < 0 {
		return 6 * r3.Norm(t)
	}
	return p.C
}

// rhs is the full site derivative for effective field h.
func rhs(m, h r3.Vec, alpha float64, p Params) r3.Vec {
	mm := r3.Norm2(m)
	t := torque(m, h, mm, alpha, p)
	return r3.Add(t, r3.Scale(rate(t, p)*(1-mm), m))
}

// RHS computes dm/dt of the LLG equation for every site:
//
//	dm/dt = -γ/(1+α²) [P m × h⊥ - α h⊥] + c(1 - |m|²)m
//
// m and h are 3n, alpha and pins are n.
func RHS(dst, m, h, alpha []float64, pins []int32, p Params) {
	n := checkShapes(dst, m, h, alpha, pins)
	rhsRange(dst, m, h, alpha, pins, p, 0, n)
}

// ParallelRHS is RHS split across pool.
func ParallelRHS(pool *workerpool.Pool, dst, m, h, alpha []float64, pins []int32, p Params) {
	n := checkShapes(dst, m, h, alpha, pins)
	workerpool.Sites(pool, n, spin.MinParallelSites, func(start, end int) {
		rhsRange(dst, m, h, alpha, pins, p, start, end)
	})
}

func rhsRange(dst, m, h, alpha []float64, pins []int32, p Params, start, end int) {
	for i := start; i < end; i++ {
		if pinned(pins, i) {
			spin.Zero(dst, i)
			continue
		}
		spin.Put(dst, i, rhs(spin.At(m, i), spin.At(h, i), alpha[i], p))
	}
}

// JTimes computes the directional derivative of RHS at (m, h) along (mp, hp):
//
//	dst = d/dε RHS(m + ε mp, h + ε hp) at ε = 0
//
// With an adaptive rate (p.C < 0) the rate is held at its value for (m, h),
// so JTimes is the derivative of RHS with that rate frozen.
func JTimes(dst, m, h, mp, hp, alpha []float64, pins []int32, p Params) {
	n := checkShapes(dst, m, h, alpha, pins)
	spin.MustLen("mp", len(mp), 3*n)
	spin.MustLen("hp", len(hp), 3*n)
	jtimesRange(dst, m, h, mp, hp, alpha, pins, p, 0, n)
}

// ParallelJTimes is JTimes split across pool.
func ParallelJTimes(pool *workerpool.Pool, dst, m, h, mp, hp, alpha []float64, pins []int32, p Params) {
	n := checkShapes(dst, m, h, alpha, pins)
	spin.MustLen("mp", len(mp), 3*n)
	spin.MustLen("hp", len(hp), 3*n)
	workerpool.Sites(pool, n, spin.MinParallelSites, func(start, end int) {
		jtimesRange(dst, m, h, mp, hp, alpha, pins, p, start, end)
	})
}

func jtimesRange(dst, m, h, mp, hp, alpha []float64, pins []int32, p Params, start, end int) {
	for i := start; i < end; i++ {
		if pinned(pins, i) {
			spin.Zero(dst, i)
			continue
		}
		spin.Put(dst, i, jtimes(spin.At(m, i), spin.At(h, i), spin.At(mp, i), spin.At(hp, i), alpha[i], p))
	}
}

func jtimes(m, h, dm, dh r3.Vec, alpha float64, p Params) r3.Vec {
	coeff := -p.Gamma / (1 + alpha*alpha)
	mm := r3.Norm2(m)
	mh := r3.Dot(m, h)
	mdm := r3.Dot(m, dm)

	perp := r3.Sub(r3.Scale(mm, h), r3.Scale(mh, m))
	// d(h⊥) = 2(m·dm)h + |m|²dh - (dm·h + m·dh)m - (m·h)dm
	dperp := r3.Add(r3.Scale(2*mdm, h), r3.Scale(mm, dh))
	dperp = r3.Sub(dperp, r3.Scale(r3.Dot(dm, h)+r3.Dot(m, dh), m))
	dperp = r3.Sub(dperp, r3.Scale(mh, dm))

	var t, dt r3.Vec
	if p.Precession {
		t = r3.Cross(m, perp)
		dt = r3.Add(r3.Cross(dm, perp), r3.Cross(m, dperp))
	}
	t = r3.Scale(coeff, r3.Sub(t, r3.Scale(alpha, perp)))
	dt = r3.Scale(coeff, r3.Sub(dt, r3.Scale(alpha, dperp)))

	// d[c(1-|m|²)m] = c[(1-|m|²)dm - 2(m·dm)m]
	c := rate(t, p)
	relax := r3.Sub(r3.Scale(1-mm, dm), r3.Scale(2*mdm, m))
	return r3.Add(dt, r3.Scale(c, relax))
}

// Normalize rescales every non-pinned spin of m to unit length in place.
// Pinned sites are left bit-identical. Zero vectors are a precondition
// violation and produce NaN.
func Normalize(m []float64, pins []int32) {
	n := checkNormalize(m, pins)
	normalizeRange(m, pins, 0, n)
}

// ParallelNormalize is Normalize split across pool.
func ParallelNormalize(pool *workerpool.Pool, m []float64, pins []int32) {
	n := checkNormalize(m, pins)
	workerpool.Sites(pool, n, spin.MinParallelSites, func(start, end int) {
		normalizeRange(m, pins, start, end)
	})
}

func checkNormalize(m []float64, pins []int32) int {
	n := len(m) / 3
	spin.MustLen("m", len(m), 3*n)
	if pins != nil {
		spin.MustLen("pins", len(pins), n)
	}
	return n
}

func normalizeRange(m []float64, pins []int32, start, end int) {
	for i := start; i < end; i++ {
		if pinned(pins, i) {
			continue
		}
		v := spin.At(m, i)
		r := math.Sqrt(r3.Norm2(v))
		spin.Assert(r > 0, "zero spin at site %d", i)
		spin.Put(m, i, r3.Vec{X: v.X / r, Y: v.Y / r, Z: v.Z / r})
	}
}

// checkShapes returns the site count and, in debug builds, checks the common
// argument lengths.
func checkShapes(dst, m, h, alpha []float64, pins []int32) int {
	n := len(m) / 3
	spin.MustLen("m", len(m), 3*n)
	spin.MustLen("dst", len(dst), 3*n)
	spin.MustLen("h", len(h), 3*n)
	spin.MustLen("alpha", len(alpha), n)
	if pins != nil {
		spin.MustLen("pins", len(pins), n)
	}
	return n
}
