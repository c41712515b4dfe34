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

// Package topology computes topological diagnostics of 2D spin textures: the
// discrete skyrmion number and its density, the guiding centre, and in-plane
// spin gradients.
//
// Neighbour tables here follow the cubic layout of package spin, but an entry
// <= 0 counts as absent, so site 0 never contributes as a neighbour.
package topology

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ajroetker/go-atomistic/spin"
	"github.com/ajroetker/go-atomistic/spin/contrib/workerpool"
)

// norm scales the summed triangle volumes so a full skyrmion gives ±1.
const norm = 1 / (8 * math.Pi)

// SkyrmionNumber computes the discrete skyrmion number (finite spin
// chirality) of a single layer. For every site i
//
//	q_i = [S_i·(S_{-x} × S_{-y}) + S_i·(S_{+x} × S_{+y})] / 8π
//
// is written to charge[i] and Σ q_i is returned. The site count is
// len(charge); spins and ngbs must cover at least that many sites. Pass a
// single layer: the ±z slots are ignored.
func SkyrmionNumber(spins, charge []float64, ngbs []int32) float64 {
	n := checkLayer(spins, charge, ngbs)
	chargeRange(spins, charge, ngbs, 0, n)
	return floats.Sum(charge)
}

// ParallelSkyrmionNumber is SkyrmionNumber with the density computed across
// pool. The sum is reduced on the calling goroutine with the same reduction,
// so the result is identical to SkyrmionNumber.
func ParallelSkyrmionNumber(pool *workerpool.Pool, spins, charge []float64, ngbs []int32) float64 {
	n := checkLayer(spins, charge, ngbs)
	workerpool.Sites(pool, n, spin.MinParallelSites, func(start, end int) {
		chargeRange(spins, charge, ngbs, start, end)
	})
	return floats.Sum(charge)
}

func checkLayer(spins, charge []float64, ngbs []int32) int {
	n := len(charge)
	spin.MustAtLeast("spins", len(spins), 3*n)
	spin.MustAtLeast("ngbs", len(ngbs), spin.NumNeighbours*n)
	return n
}

func chargeRange(spins, charge []float64, ngbs []int32, start, end int) {
	for i := start; i < end; i++ {
		row := ngbs[spin.NumNeighbours*i:]
		s := spin.At(spins, i)
		q := spin.Volume(s, neighbour(spins, row[spin.NegX]), neighbour(spins, row[spin.NegY]))
		q += spin.Volume(s, neighbour(spins, row[spin.PosX]), neighbour(spins, row[spin.PosY]))
		charge[i] = q * norm
	}
}

// neighbour returns the spin at nb, or the zero vector when nb <= 0.
func neighbour(spins []float64, nb int32) r3.Vec {
	if nb <= 0 {
		return r3.Vec{}
	}
	return spin.At(spins, int(nb))
}

// GuidingCenter returns the guiding centre of the k=0 layer of g in lattice
// units,
//
//	R_x = Σ i q_ij / Σ q_ij,  R_y = Σ j q_ij / Σ q_ij,
//
// with q_ij the unscaled two-triangle charge density. Neighbours are taken
// from the grid without wrapping: past an edge they are zero. Both results are
// NaN when the total charge is zero.
func GuidingCenter(spins []float64, g spin.Grid) (x, y float64) {
	spin.MustLen("spins", len(spins), 3*g.Sites())
	at := func(i, j int) r3.Vec {
		if i < 0 || i >= g.Nx || j < 0 || j >= g.Ny {
			return r3.Vec{}
		}
		return spin.At(spins, g.Index(i, j, 0))
	}

	var total, rx, ry float64
	for i := range g.Nx {
		for j := range g.Ny {
			s := at(i, j)
			q := spin.Volume(s, at(i-1, j), at(i, j-1)) + spin.Volume(s, at(i+1, j), at(i, j+1))
			total += q
			rx += float64(i) * q
			ry += float64(j) * q
		}
	}
	if total == 0 {
		return math.NaN(), math.NaN()
	}
	return rx / total, ry / total
}

// Gradients writes the central differences ∂S/∂x and ∂S/∂y, in lattice units,
// into px and py (both 3n, interleaved) for every layer of g:
//
//	px_i = (S_{i+x} - S_{i-x}) / 2
//
// x and y always wrap, whatever the periodicity of g.
func Gradients(spins, px, py []float64, g spin.Grid) {
	n := g.Sites()
	spin.MustLen("spins", len(spins), 3*n)
	spin.MustLen("px", len(px), 3*n)
	spin.MustLen("py", len(py), 3*n)
	for i := range g.Nx {
		left, right := (i+g.Nx-1)%g.Nx, (i+1)%g.Nx
		for j := range g.Ny {
			down, up := (j+g.Ny-1)%g.Ny, (j+1)%g.Ny
			for k := range g.Nz {
				idx := g.Index(i, j, k)
				dx := r3.Sub(spin.At(spins, g.Index(right, j, k)), spin.At(spins, g.Index(left, j, k)))
				dy := r3.Sub(spin.At(spins, g.Index(i, up, k)), spin.At(spins, g.Index(i, down, k)))
				spin.Put(px, idx, r3.Scale(0.5, dx))
				spin.Put(py, idx, r3.Scale(0.5, dy))
			}
		}
	}
}
