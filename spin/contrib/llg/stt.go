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
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ajroetker/go-atomistic/spin"
	"github.com/ajroetker/go-atomistic/spin/contrib/workerpool"
)

// STTField computes the current-driven spin-transfer field (j·∇)m used by
// ZhangLiRHS:
//
//	dst_i = jx_i ∂m/∂x + jy_i ∂m/∂y
//
// The derivatives are central differences over the ±x and ±y neighbours of
// the cubic table, divided by 2dx (2dy). With one neighbour missing the
// difference is one-sided against the site itself and divided by dx (dy);
// with both missing it is zero. jx and jy are n.
func STTField(dst, m, jx, jy []float64, dx, dy float64, ngbs []int32) {
	n := checkSTT(dst, m, jx, jy, ngbs)
	sttFieldRange(dst, m, jx, jy, dx, dy, ngbs, 0, n)
}

// ParallelSTTField is STTField split across pool.
func ParallelSTTField(pool *workerpool.Pool, dst, m, jx, jy []float64, dx, dy float64, ngbs []int32) {
	n := checkSTT(dst, m, jx, jy, ngbs)
	workerpool.Sites(pool, n, spin.MinParallelSites, func(start, end int) {
		sttFieldRange(dst, m, jx, jy, dx, dy, ngbs, start, end)
	})
}

func checkSTT(dst, m, jx, jy []float64, ngbs []int32) int {
	n := len(m) / 3
	spin.MustLen("m", len(m), 3*n)
	spin.MustLen("dst", len(dst), 3*n)
	spin.MustLen("jx", len(jx), n)
	spin.MustLen("jy", len(jy), n)
	spin.MustLen("ngbs", len(ngbs), spin.NumNeighbours*n)
	return n
}

func sttFieldRange(dst, m, jx, jy []float64, dx, dy float64, ngbs []int32, start, end int) {
	for i := start; i < end; i++ {
		row := ngbs[spin.NumNeighbours*i:]
		gx := derivative(m, i, row[spin.NegX], row[spin.PosX], dx)
		gy := derivative(m, i, row[spin.NegY], row[spin.PosY], dy)
		spin.Put(dst, i, r3.Add(r3.Scale(jx[i], gx), r3.Scale(jy[i], gy)))
	}
}

func derivative(m []float64, i int, lo, hi int32, d float64) r3.Vec {
	switch {
	case lo >= 0 && hi >= 0:
		return r3.Scale(1/(2*d), r3.Sub(spin.At(m, int(hi)), spin.At(m, int(lo))))
	case hi >= 0:
		return r3.Scale(1/d, r3.Sub(spin.At(m, int(hi)), spin.At(m, i)))
	case lo >= 0:
		return r3.Scale(1/d, r3.Sub(spin.At(m, i), spin.At(m, int(lo))))
	}
	return r3.Vec{}
}

// ZhangLiRHS is RHS plus the Zhang-Li current-driven torque. With
// v = hSTT (see STTField) and v⊥ = |m|²v - (m·v)m:
//
//	dm/dt = RHS + u0/(1+α²) [-(1+αβ) v⊥ + (β-α) m × v⊥]
//
// β is the non-adiabaticity and u0 the drift velocity scale. With u0 = 0 the
// result equals RHS.
func ZhangLiRHS(dst, m, h, hSTT, alpha []float64, pins []int32, beta, u0 float64, p Params) {
	n := checkShapes(dst, m, h, alpha, pins)
	spin.MustLen("hSTT", len(hSTT), 3*n)
	zhangLiRange(dst, m, h, hSTT, alpha, pins, beta, u0, p, 0, n)
}

// ParallelZhangLiRHS is ZhangLiRHS split across pool.
func ParallelZhangLiRHS(pool *workerpool.Pool, dst, m, h, hSTT, alpha []float64, pins []int32, beta, u0 float64, p Params) {
	n := checkShapes(dst, m, h, alpha, pins)
	spin.MustLen("hSTT", len(hSTT), 3*n)
	workerpool.Sites(pool, n, spin.MinParallelSites, func(start, end int) {
		zhangLiRange(dst, m, h, hSTT, alpha, pins, beta, u0, p, start, end)
	})
}

func zhangLiRange(dst, m, h, hSTT, alpha []float64, pins []int32, beta, u0 float64, p Params, start, end int) {
	for i := start; i < end; i++ {
		if pinned(pins, i) {
			spin.Zero(dst, i)
			continue
		}
		mi, a := spin.At(m, i), alpha[i]
		dm := rhs(mi, spin.At(h, i), a, p)
		if u0 != 0 {
			v := spin.At(hSTT, i)
			vp := r3.Sub(r3.Scale(r3.Norm2(mi), v), r3.Scale(r3.Dot(mi, v), mi))
			t := r3.Add(r3.Scale(-(1+a*beta), vp), r3.Scale(beta-a, r3.Cross(mi, vp)))
			dm = r3.Add(dm, r3.Scale(u0/(1+a*a), t))
		}
		spin.Put(dst, i, dm)
	}
}

// SlonczewskiRHS is RHS plus the Slonczewski spin-polarised current torque
// for polarisation pol (3n) and amplitude aJ (n):
//
//	dm/dt = RHS - γ/(1+α²) a_J [(1+αβ) m × (m × p) + (β-α) m × p]
//
// Sites with a_J = 0 get exactly the RHS result.
func SlonczewskiRHS(dst, m, h, pol, alpha, aJ []float64, pins []int32, beta float64, p Params) {
	n := checkShapes(dst, m, h, alpha, pins)
	spin.MustLen("pol", len(pol), 3*n)
	spin.MustLen("aJ", len(aJ), n)
	slonczewskiRange(dst, m, h, pol, alpha, aJ, pins, beta, p, 0, n)
}

// ParallelSlonczewskiRHS is SlonczewskiRHS split across pool.
func ParallelSlonczewskiRHS(pool *workerpool.Pool, dst, m, h, pol, alpha, aJ []float64, pins []int32, beta float64, p Params) {
	n := checkShapes(dst, m, h, alpha, pins)
	spin.MustLen("pol", len(pol), 3*n)
	spin.MustLen("aJ", len(aJ), n)
	workerpool.Sites(pool, n, spin.MinParallelSites, func(start, end int) {
		slonczewskiRange(dst, m, h, pol, alpha, aJ, pins, beta, p, start, end)
	})
}

func slonczewskiRange(dst, m, h, pol, alpha, aJ []float64, pins []int32, beta float64, p Params, start, end int) {
	for i := start; i < end; i++ {
		if pinned(pins, i) {
			spin.Zero(dst, i)
			continue
		}
		mi, a := spin.At(m, i), alpha[i]
		dm := rhs(mi, spin.At(h, i), a, p)
		if aJ[i] != 0 {
			mp := r3.Cross(mi, spin.At(pol, i))
			t := r3.Add(r3.Scale(1+a*beta, r3.Cross(mi, mp)), r3.Scale(beta-a, mp))
			dm = r3.Add(dm, r3.Scale(-p.Gamma/(1+a*a)*aJ[i], t))
		}
		spin.Put(dst, i, dm)
	}
}
