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

// Package montecarlo implements the Metropolis sweep for classical spins with
// nearest-neighbour exchange, bulk DMI and a Zeeman field.
//
// A sweep is sequential: every trial sees the spins already updated earlier
// in the same sweep, so the visitation order is part of the algorithm and is
// passed in as an Order. ParallelCheckerboardSweep is a different algorithm
// with its own acceptance path.
package montecarlo

import (
	"math"
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ajroetker/go-atomistic/spin"
	"github.com/ajroetker/go-atomistic/spin/contrib/rng"
	"github.com/ajroetker/go-atomistic/spin/contrib/workerpool"
)

// Hamiltonian holds the couplings of
//
//	E = -J Σ_<i,j> S_i·S_j + D Σ_<i,j> d_ij·(S_i × S_j) - Ku Σ_i (a·S_i)² - Σ_i h_i·S_i
//
// All values are in energy units, so temperatures are too.
type Hamiltonian struct {
	J float64
	D float64
	// Vectors holds one DMI direction per cubic table slot (18 values,
	// interleaved), as for field.DMIInterfacial. Nil selects the bulk form,
	// where d_ij is the bond direction of the slot.
	Vectors []float64
	Ku      float64
	Axis    r3.Vec
	// H is the per-site applied field (3n, interleaved). Nil means none.
	H []float64
}

var bondDirs = [spin.NumNeighbours]r3.Vec{
	spin.NegX: {X: -1},
	spin.PosX: {X: 1},
	spin.NegY: {Y: -1},
	spin.PosY: {Y: 1},
	spin.NegZ: {Z: -1},
	spin.PosZ: {Z: 1},
}

func (h Hamiltonian) dmiVector(slot int) r3.Vec {
	if h.Vectors == nil {
		return bondDirs[slot]
	}
	return spin.At(h.Vectors, slot)
}

// SiteEnergy returns the energy of every term involving site i when it holds
// s, with the other spins as they are:
//
//	-J s·Σ_j S_j + D Σ_j d_j·(s × S_j) - Ku (a·s)² - h_i·s
//
// The difference of two SiteEnergy calls for the same site is the change of
// the total energy.
func SiteEnergy(spins []float64, ngbs []int32, ham Hamiltonian, i int, s r3.Vec) float64 {
	var sum, dmi r3.Vec
	row := ngbs[spin.NumNeighbours*i : spin.NumNeighbours*(i+1)]
	for slot, nb := range row {
		if nb < 0 {
			continue
		}
		sj := spin.At(spins, int(nb))
		sum = r3.Add(sum, sj)
		dmi = r3.Add(dmi, r3.Cross(sj, ham.dmiVector(slot)))
	}
	// d·(s × S_j) = s·(S_j × d)
	e := -ham.J*r3.Dot(s, sum) + ham.D*r3.Dot(s, dmi)
	if ham.Ku != 0 {
		as := r3.Dot(ham.Axis, s)
		e -= ham.Ku * as * as
	}
	if ham.H != nil {
		e -= r3.Dot(spin.At(ham.H, i), s)
	}
	return e
}

// Sweep performs one Metropolis sweep at temperature temp, visiting sites in
// the given order. Each visit draws a trial spin uniformly on the sphere and
// accepts it if ΔE <= 0, or if temp > 0 and a further uniform draw
// u satisfies u < exp(-ΔE/temp). At temp = 0 uphill moves are always rejected.
// spins is updated in place and the number of accepted moves is returned.
func Sweep(spins []float64, ngbs []int32, ham Hamiltonian, temp float64, order Order, s rng.Sampler) int {
	n := checkShapes(spins, ngbs, ham)
	accepted := 0
	for i := range order.Sites(n) {
		if step(spins, ngbs, ham, temp, i, s) {
			accepted++
		}
	}
	return accepted
}

func step(spins []float64, ngbs []int32, ham Hamiltonian, temp float64, i int, s rng.Sampler) bool {
	trial := rng.UniformSpin(s)
	de := SiteEnergy(spins, ngbs, ham, i, trial) - SiteEnergy(spins, ngbs, ham, i, spin.At(spins, i))
	if de > 0 && (temp <= 0 || s.Float64() >= math.Exp(-de/temp)) {
		return false
	}
	spin.Put(spins, i, trial)
	return true
}

// ParallelCheckerboardSweep updates all sites of one colour (even i+j+k)
// concurrently, then all sites of the other. Within a colour no two sites are
// neighbours, so the updates are independent and the acceptance rule is the
// one of Sweep. The trajectory differs from a sequential sweep in any order:
// it is a distinct Markov chain with the same stationary distribution.
//
// Work is split into x-slabs; slab a draws only from samplers[a], so the
// result is reproducible for fixed sampler seeds whatever the pool size.
// len(samplers) must be g.Nx, and every periodic axis must have even length
// so the colouring stays bipartite across the wrap.
func ParallelCheckerboardSweep(pool *workerpool.Pool, spins []float64, ngbs []int32, ham Hamiltonian, temp float64, g spin.Grid, samplers []rng.Sampler) int {
	n := checkShapes(spins, ngbs, ham)
	spin.MustLen("spins", n, g.Sites())
	spin.MustLen("samplers", len(samplers), g.Nx)
	spin.Assert(!g.PeriodicX || g.Nx%2 == 0, "periodic x needs even Nx, got %d", g.Nx)
	spin.Assert(!g.PeriodicY || g.Ny%2 == 0, "periodic y needs even Ny, got %d", g.Ny)

	var accepted atomic.Int64
	for colour := range 2 {
		pool.ParallelForAtomic(g.Nx, func(a int) {
			s := samplers[a]
			var count int64
			for b := range g.Ny {
				for c := range g.Nz {
					if (a+b+c)%2 != colour {
						continue
					}
					if step(spins, ngbs, ham, temp, g.Index(a, b, c), s) {
						count++
					}
				}
			}
			accepted.Add(count)
		})
	}
	return int(accepted.Load())
}

func checkShapes(spins []float64, ngbs []int32, ham Hamiltonian) int {
	n := len(spins) / 3
	spin.MustLen("spins", len(spins), 3*n)
	spin.MustLen("ngbs", len(ngbs), spin.NumNeighbours*n)
	if ham.H != nil {
		spin.MustLen("H", len(ham.H), 3*n)
	}
	if ham.Vectors != nil {
		spin.MustLen("Vectors", len(ham.Vectors), 3*spin.NumNeighbours)
	}
	return n
}
