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

// bondDirs are the unit vectors from a site to its neighbour in each cubic
// table slot.
var bondDirs = [spin.NumNeighbours]r3.Vec{
	spin.NegX: {X: -1},
	spin.PosX: {X: 1},
	spin.NegY: {Y: -1},
	spin.PosY: {Y: 1},
	spin.NegZ: {Z: -1},
	spin.PosZ: {Z: 1},
}

// DMIBulk computes the bulk Dzyaloshinskii-Moriya field and energy. The DMI
// vector of bond (i, j) is D_ij r̂_ij, with r̂_ij the bond direction of the
// table slot and d[6i+s] the strength of that bond. The Hamiltonian is
//
//	Σ_<i,j> D_ij r̂_ij · (S_i × S_j)
//
// giving H_i = Σ_j D_ij (r̂_ij × S_j) and E_i = -½ H_i·S_i.
func DMIBulk(spins, field, energy, d []float64, ngbs []int32) {
	n := checkShapes(spins, field, energy, ngbs, spin.NumNeighbours)
	spin.MustLen("d", len(d), len(ngbs))
	dmiBulkRange(spins, field, energy, d, ngbs, 0, n)
}

// ParallelDMIBulk is DMIBulk split across pool.
func ParallelDMIBulk(pool *workerpool.Pool, spins, field, energy, d []float64, ngbs []int32) {
	n := checkShapes(spins, field, energy, ngbs, spin.NumNeighbours)
	spin.MustLen("d", len(d), len(ngbs))
	workerpool.Sites(pool, n, spin.MinParallelSites, func(start, end int) {
		dmiBulkRange(spins, field, energy, d, ngbs, start, end)
	})
}

func dmiBulkRange(spins, field, energy, d []float64, ngbs []int32, start, end int) {
	for i := start; i < end; i++ {
		var f r3.Vec
		row := spin.NumNeighbours * i
		for s := range spin.NumNeighbours {
			nb := ngbs[row+s]
			if nb < 0 {
				continue
			}
			f = r3.Add(f, r3.Scale(d[row+s], r3.Cross(bondDirs[s], spin.At(spins, int(nb)))))
		}
		spin.Put(field, i, f)
		energy[i] = -0.5 * r3.Dot(f, spin.At(spins, i))
	}
}

// DMIInterfacial computes the atomistic interfacial DMI field and energy for
// a table with nngbs entries per site, so extended neighbour shells work.
// dmiVec holds one direction vector per slot (3*nngbs values, interleaved),
// shared by all sites; slot s of every row uses dmiVec[3s:3s+3]. The vectors
// are used as given.
//
//	H_i = D Σ_j (d_j × S_j),  E_i = -½ H_i·S_i
func DMIInterfacial(spins, field, energy []float64, d float64, ngbs []int32, nngbs int, dmiVec []float64) {
	n := checkShapes(spins, field, energy, ngbs, nngbs)
	spin.MustLen("dmiVec", len(dmiVec), 3*nngbs)
	dmiInterfacialRange(spins, field, energy, d, ngbs, nngbs, dmiVec, 0, n)
}

// ParallelDMIInterfacial is DMIInterfacial split across pool.
func ParallelDMIInterfacial(pool *workerpool.Pool, spins, field, energy []float64, d float64, ngbs []int32, nngbs int, dmiVec []float64) {
	n := checkShapes(spins, field, energy, ngbs, nngbs)
	spin.MustLen("dmiVec", len(dmiVec), 3*nngbs)
	workerpool.Sites(pool, n, spin.MinParallelSites, func(start, end int) {
		dmiInterfacialRange(spins, field, energy, d, ngbs, nngbs, dmiVec, start, end)
	})
}

func dmiInterfacialRange(spins, field, energy []float64, d float64, ngbs []int32, nngbs int, dmiVec []float64, start, end int) {
	for i := start; i < end; i++ {
		var f r3.Vec
		row := nngbs * i
		for s := range nngbs {
			nb := ngbs[row+s]
			if nb < 0 {
				continue
			}
			f = r3.Add(f, r3.Cross(spin.At(dmiVec, s), spin.At(spins, int(nb))))
		}
		f = r3.Scale(d, f)
		spin.Put(field, i, f)
		energy[i] = -0.5 * r3.Dot(f, spin.At(spins, i))
	}
}
