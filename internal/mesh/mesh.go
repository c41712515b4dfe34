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

// Package mesh builds the lattice inputs the kernels consume: cubic neighbour
// tables, site coordinates and DMI direction vectors. It plays the part of the
// external lattice builder for the driver, the examples and the tests.
package mesh

import (
	"github.com/ajroetker/go-atomistic/spin"
)

// Cubic returns the 6-per-site neighbour table of g in the order
// -x, +x, -y, +y, -z, +z. Periodic axes wrap; open edges get -1.
//
// An axis of length 1 has no neighbours along it even when periodic, so a
// site never lists itself.
func Cubic(g spin.Grid) []int32 {
	ngbs := make([]int32, spin.NumNeighbours*g.Sites())
	for i := range g.Nx {
		for j := range g.Ny {
			for k := range g.Nz {
				row := ngbs[spin.NumNeighbours*g.Index(i, j, k):]

				row[spin.NegX] = neighbour(i-1, g.Nx, g.PeriodicX, func(a int) int { return g.Index(a, j, k) })
				row[spin.PosX] = neighbour(i+1, g.Nx, g.PeriodicX, func(a int) int { return g.Index(a, j, k) })
				row[spin.NegY] = neighbour(j-1, g.Ny, g.PeriodicY, func(b int) int { return g.Index(i, b, k) })
				row[spin.PosY] = neighbour(j+1, g.Ny, g.PeriodicY, func(b int) int { return g.Index(i, b, k) })
				row[spin.NegZ] = neighbour(k-1, g.Nz, false, func(c int) int { return g.Index(i, j, c) })
				row[spin.PosZ] = neighbour(k+1, g.Nz, false, func(c int) int { return g.Index(i, j, c) })
			}
		}
	}
	return ngbs
}

func neighbour(a, n int, periodic bool, index func(int) int) int32 {
	if n == 1 {
		return -1
	}
	if a < 0 || a >= n {
		if !periodic {
			return -1
		}
		a = (a + n) % n
	}
	return int32(index(a))
}

// Coords returns interleaved site coordinates for lattice constant a.
func Coords(g spin.Grid, a float64) []float64 {
	coords := make([]float64, 3*g.Sites())
	for idx := range g.Sites() {
		i, j, k := g.Position(idx)
		coords[3*idx] = a * float64(i)
		coords[3*idx+1] = a * float64(j)
		coords[3*idx+2] = a * float64(k)
	}
	return coords
}

// BondDirections returns the unit bond vector of each cubic table slot,
// interleaved: -x̂, +x̂, -ŷ, +ŷ, -ẑ, +ẑ.
func BondDirections() []float64 {
	return []float64{
		-1, 0, 0,
		1, 0, 0,
		0, -1, 0,
		0, 1, 0,
		0, 0, -1,
		0, 0, 1,
	}
}

// InterfacialDMIVectors returns the interfacial (Néel) DMI direction r̂ × ẑ of
// each cubic table slot, interleaved. The ±z slots carry the zero vector.
func InterfacialDMIVectors() []float64 {
	return []float64{
		0, 1, 0, // -x̂ × ẑ
		0, -1, 0, // +x̂ × ẑ
		-1, 0, 0, // -ŷ × ẑ
		1, 0, 0, // +ŷ × ẑ
		0, 0, 0,
		0, 0, 0,
	}
}

// Uniform fills spins with the same vector on every site.
func Uniform(spins []float64, x, y, z float64) {
	for i := 0; i+2 < len(spins); i += 3 {
		spins[i] = x
		spins[i+1] = y
		spins[i+2] = z
	}
}
