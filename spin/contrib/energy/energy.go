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

// Package energy sums bond energies directly over a Grid, without a
// neighbour table. The results match the sum of the per-site energies
// returned by the field kernels for a table with the same periodicity, which
// makes the two a cross-check of each other.
package energy

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ajroetker/go-atomistic/spin"
)

// bond visits every nearest-neighbour bond of g once, through its forward
// (+x, +y, +z) end. Periodic x and y wrap; z never does. An axis of length 1
// has no bonds.
func bond(g spin.Grid, fn func(i, j int, dir r3.Vec)) {
	for a := range g.Nx {
		for b := range g.Ny {
			for c := range g.Nz {
				i := g.Index(a, b, c)
				if a+1 < g.Nx || (g.PeriodicX && g.Nx > 1) {
					fn(i, g.Index((a+1)%g.Nx, b, c), r3.Vec{X: 1})
				}
				if b+1 < g.Ny || (g.PeriodicY && g.Ny > 1) {
					fn(i, g.Index(a, (b+1)%g.Ny, c), r3.Vec{Y: 1})
				}
				if c+1 < g.Nz {
					fn(i, g.Index(a, b, c+1), r3.Vec{Z: 1})
				}
			}
		}
	}
}

// Exchange returns the total anisotropic exchange energy
//
//	-Σ_<i,j> (Jx S_i^x S_j^x + Jy S_i^y S_j^y + Jz S_i^z S_j^z)
//
// with each bond counted once.
func Exchange(spins []float64, jx, jy, jz float64, g spin.Grid) float64 {
	spin.MustLen("spins", len(spins), 3*g.Sites())
	var e float64
	bond(g, func(i, j int, _ r3.Vec) {
		si, sj := spin.At(spins, i), spin.At(spins, j)
		e -= jx*si.X*sj.X + jy*si.Y*sj.Y + jz*si.Z*sj.Z
	})
	return e
}

// DMI returns the total bulk DMI energy D Σ_<i,j> r̂_ij·(S_i × S_j).
func DMI(spins []float64, d float64, g spin.Grid) float64 {
	spin.MustLen("spins", len(spins), 3*g.Sites())
	var e float64
	bond(g, func(i, j int, dir r3.Vec) {
		e += r3.Dot(dir, r3.Cross(spin.At(spins, i), spin.At(spins, j)))
	})
	return d * e
}

// Total sums per-site energies.
func Total(energy []float64) float64 {
	return floats.Sum(energy)
}
