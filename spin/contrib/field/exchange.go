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

package field

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ajroetker/go-atomistic/spin"
	"github.com/ajroetker/go-atomistic/spin/contrib/workerpool"
)

// ExchangeField computes the anisotropic exchange field
//
//	H_i = Σ_j (Jx S_j^x, Jy S_j^y, Jz S_j^z)
//
// over the neighbours listed in ngbs (6 per site, negative = absent), and the
// site energy E_i = -½ H_i·S_i. The Hamiltonian is -Σ_<i,j> J S_i·S_j with
// each pair counted once; the ½ compensates for visiting every bond from both
// ends.
func ExchangeField(spins, field, energy []float64, jx, jy, jz float64, ngbs []int32) {
	n := checkShapes(spins, field, energy, ngbs, spin.NumNeighbours)
	exchangeRange(spins, field, energy, jx, jy, jz, ngbs, 0, n)
}

// ParallelExchangeField is ExchangeField split across pool.
func ParallelExchangeField(pool *workerpool.Pool, spins, field, energy []float64, jx, jy, jz float64, ngbs []int32) {
	n := checkShapes(spins, field, energy, ngbs, spin.NumNeighbours)
	workerpool.Sites(pool, n, spin.MinParallelSites, func(start, end int) {
		exchangeRange(spins, field, energy, jx, jy, jz, ngbs, start, end)
	})
}

func exchangeRange(spins, field, energy []float64, jx, jy, jz float64, ngbs []int32, start, end int) {
	for i := start; i < end; i++ {
		var f r3.Vec
		for _, nb := range ngbs[spin.NumNeighbours*i : spin.NumNeighbours*(i+1)] {
			if nb < 0 {
				continue
			}
			s := spin.At(spins, int(nb))
			f.X += jx * s.X
			f.Y += jy * s.Y
			f.Z += jz * s.Z
		}
		spin.Put(field, i, f)
		energy[i] = -0.5 * r3.Dot(f, spin.At(spins, i))
	}
}

// ExchangeFieldSpatial is ExchangeField with one isotropic coupling per bond:
// j has the shape of ngbs and j[6i+s] couples site i to ngbs[6i+s].
//
//	H_i = Σ_j J_ij S_j,  E_i = -½ H_i·S_i
func ExchangeFieldSpatial(spins, field, energy, j []float64, ngbs []int32) {
	n := checkShapes(spins, field, energy, ngbs, spin.NumNeighbours)
	spin.MustLen("j", len(j), len(ngbs))
	exchangeSpatialRange(spins, field, energy, j, ngbs, 0, n)
}

// ParallelExchangeFieldSpatial is ExchangeFieldSpatial split across pool.
func ParallelExchangeFieldSpatial(pool *workerpool.Pool, spins, field, energy, j []float64, ngbs []int32) {
	n := checkShapes(spins, field, energy, ngbs, spin.NumNeighbours)
	spin.MustLen("j", len(j), len(ngbs))
	workerpool.Sites(pool, n, spin.MinParallelSites, func(start, end int) {
		exchangeSpatialRange(spins, field, energy, j, ngbs, start, end)
	})
}

func exchangeSpatialRange(spins, field, energy, j []float64, ngbs []int32, start, end int) {
	for i := start; i < end; i++ {
		var f r3.Vec
		for p := spin.NumNeighbours * i; p < spin.NumNeighbours*(i+1); p++ {
			nb := ngbs[p]
			if nb < 0 {
				continue
			}
			f = r3.Add(f, r3.Scale(j[p], spin.At(spins, int(nb))))
		}
		spin.Put(field, i, f)
		energy[i] = -0.5 * r3.Dot(f, spin.At(spins, i))
	}
}

// checkShapes returns the site count and, in debug builds, checks the lengths
// of the common arguments.
func checkShapes(spins, field, energy []float64, ngbs []int32, rowLen int) int {
	n := len(spins) / 3
	spin.MustLen("spins", len(spins), 3*n)
	spin.MustLen("field", len(field), 3*n)
	spin.MustLen("energy", len(energy), n)
	if ngbs != nil {
		spin.MustLen("ngbs", len(ngbs), rowLen*n)
	}
	return n
}
