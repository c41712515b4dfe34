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

// Package spin defines the data contracts shared by the atomistic spin-lattice
// kernels in spin/contrib.
//
// # Spin arrays
//
// A spin field of n sites is a []float64 of length 3n in interleaved order:
//
//	[Sx0 Sy0 Sz0 Sx1 Sy1 Sz1 ...]
//
// Every kernel in this module reads and writes this layout. Callers holding
// the component-major layout ([Sx0 Sx1 ... Sy0 Sy1 ... Sz0 Sz1 ...]) convert
// with ToComponentMajor and FromComponentMajor before and after a call.
//
// # Neighbour tables
//
// A cubic neighbour table is a []int32 of length 6n. Row i lists the index of
// the neighbour of site i in the order -x, +x, -y, +y, -z, +z (see NegX ...
// PosZ). A negative entry marks an absent neighbour. Periodic wrap is encoded
// in the table by whoever built it; kernels never wrap on their own.
//
// The topology kernels (spin/contrib/topology) treat any entry <= 0 as absent.
// Site 0 is therefore never seen as a neighbour there. The two conventions are
// kept apart on purpose: merging them changes the charge density at edges.
//
// # Subpackages
//
//   - workerpool: persistent pool driving every Parallel* kernel
//   - field: exchange, anisotropy, DMI, Zeeman and demagnetising fields
//   - energy: energy summation over a Grid
//   - topology: skyrmion number, guiding centre, in-plane gradients
//   - llg: LLG right-hand sides, Jacobian-vector product, normalisation
//   - montecarlo: Metropolis sweeps
//   - rng: the sampling capability used by montecarlo and the thermal terms
//
// # Preconditions
//
// Kernels do not validate shapes. Build with -tags spindebug to turn on the
// length and degeneracy assertions (see Debug).
package spin
