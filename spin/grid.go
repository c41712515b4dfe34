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

package spin

// Slots of a cubic neighbour table row.
const (
	NegX = iota
	PosX
	NegY
	PosY
	NegZ
	PosZ

	// NumNeighbours is the row length of a cubic neighbour table.
	NumNeighbours = 6
)

// Grid describes a structured Nx × Ny × Nz lattice.
//
// Sites are numbered with x slowest and z fastest:
//
//	index = (i*Ny + j)*Nz + k
//
// The z axis is never periodic.
type Grid struct {
	Nx, Ny, Nz int

	PeriodicX bool
	PeriodicY bool
}

// Sites returns Nx*Ny*Nz.
func (g Grid) Sites() int {
	return g.Nx * g.Ny * g.Nz
}

// Index returns the site index of (i, j, k).
func (g Grid) Index(i, j, k int) int {
	return (i*g.Ny+j)*g.Nz + k
}

// Position returns the (i, j, k) lattice position of a site index.
func (g Grid) Position(index int) (i, j, k int) {
	k = index % g.Nz
	index /= g.Nz
	j = index % g.Ny
	i = index / g.Ny
	return i, j, k
}
