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

// Anisotropy computes the uniaxial anisotropy field and energy
//
//	H_i = 2 Ku_i (a_i·S_i) a_i,  E_i = -Ku_i (a_i·S_i)²
//
// ku has one entry per site, axis is interleaved (3n) and should hold unit
// vectors; it is not normalised here.
func Anisotropy(spins, field, energy, ku, axis []float64) {
	n := checkShapes(spins, field, energy, nil, 0)
	spin.MustLen("ku", len(ku), n)
	spin.MustLen("axis", len(axis), 3*n)
	anisotropyRange(spins, field, energy, ku, axis, 0, n)
}

// ParallelAnisotropy is Anisotropy split across pool.
func ParallelAnisotropy(pool *workerpool.Pool, spins, field, energy, ku, axis []float64) {
	n := checkShapes(spins, field, energy, nil, 0)
	spin.MustLen("ku", len(ku), n)
	spin.MustLen("axis", len(axis), 3*n)
	workerpool.Sites(pool, n, spin.MinParallelSites, func(start, end int) {
		anisotropyRange(spins, field, energy, ku, axis, start, end)
	})
}

func anisotropyRange(spins, field, energy, ku, axis []float64, start, end int) {
	for i := start; i < end; i++ {
		a := spin.At(axis, i)
		mu := r3.Dot(spin.At(spins, i), a)
		spin.Put(field, i, r3.Scale(2*ku[i]*mu, a))
		energy[i] = -ku[i] * mu * mu
	}
}
