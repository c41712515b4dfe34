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
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ajroetker/go-atomistic/spin"
	"github.com/ajroetker/go-atomistic/spin/contrib/workerpool"
)

// DemagSolver is the boundary to a demagnetising-field solver.
//
// Implementations read spins (3n), coords (3n, site positions) and muS (n,
// moment magnitudes), never modify them, and fully overwrite field (3n) and
// energy (n). The field is in the same energy units and sign convention as
// ExchangeField so the two add directly, and energy[i] = -½ field_i·S_i.
// scale multiplies the whole interaction (μ0/4π and unit conversions).
//
// The algorithm (direct sum, FFT convolution, tree code) is the
// implementation's business.
type DemagSolver interface {
	Demag(spins, field, energy, coords, muS []float64, scale float64)
}

// minDipolarSites is the Parallel threshold for the O(n²) direct sum, whose
// per-site work is n times that of the local kernels.
const minDipolarSites = 64

// DirectDipolar is a reference DemagSolver summing every dipole pair in open
// space:
//
//	H_i = scale μ_i Σ_{j≠i} μ_j (3 (S_j·r̂) r̂ - S_j) / r³
//
// It is O(n²) and meant for small samples and for checking faster solvers.
// Pool may be nil.
type DirectDipolar struct {
	Pool *workerpool.Pool
}

var _ DemagSolver = DirectDipolar{}

// Demag implements DemagSolver.
func (d DirectDipolar) Demag(spins, field, energy, coords, muS []float64, scale float64) {
	n := checkShapes(spins, field, energy, nil, 0)
	spin.MustLen("coords", len(coords), 3*n)
	spin.MustLen("muS", len(muS), n)
	workerpool.Sites(d.Pool, n, minDipolarSites, func(start, end int) {
		dipolarRange(spins, field, energy, coords, muS, scale, n, start, end)
	})
}

func dipolarRange(spins, field, energy, coords, muS []float64, scale float64, n, start, end int) {
	for i := start; i < end; i++ {
		ri := spin.At(coords, i)
		var f r3.Vec
		for j := range n {
			if j == i {
				continue
			}
			r := r3.Sub(spin.At(coords, j), ri)
			inv := 1 / math.Sqrt(r3.Norm2(r))
			inv3 := inv * inv * inv
			sj := spin.At(spins, j)
			sr := r3.Dot(sj, r) * inv * inv
			f = r3.Add(f, r3.Scale(muS[j]*inv3, r3.Sub(r3.Scale(3*sr, r), sj)))
		}
		f = r3.Scale(scale*muS[i], f)
		spin.Put(field, i, f)
		energy[i] = -0.5 * r3.Dot(f, spin.At(spins, i))
	}
}
