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

// Package field computes effective fields and per-site energies on a spin
// lattice: exchange, DMI, uniaxial anisotropy, Zeeman, and the demagnetising
// field through the DemagSolver hook.
//
// Every kernel has the same contract:
//
//   - spins is the interleaved spin array (3n values), never modified
//   - field (3n) and energy (n) are caller-owned and fully overwritten
//   - the energy of site i is its share of the interaction energy, so that
//     Σ_i energy[i] is the total; pairwise terms carry the factor ½
//   - the field is in energy units, -∂E/∂S_i, so fields of different
//     interactions add directly
//
// Per-site work is independent. Each kernel has a Parallel* variant taking a
// *workerpool.Pool; a nil pool, or fewer than spin.MinParallelSites sites,
// runs on the calling goroutine. Results are identical either way.
package field
