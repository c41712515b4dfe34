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

// Zeeman copies the applied field h (3n, energy units) into field and sets
// E_i = -h_i·S_i. There is no ½: the term belongs to a single site.
func Zeeman(spins, field, energy, h []float64) {
	n := checkShapes(spins, field, energy, nil, 0)
	spin.MustLen("h", len(h), 3*n)
	zeemanRange(spins, field, energy, h, 0, n)
}

// ParallelZeeman is Zeeman split across pool.
func ParallelZeeman(pool *workerpool.Pool, spins, field, energy, h []float64) {
	n := checkShapes(spins, field, energy, nil, 0)
	spin.MustLen("h", len(h), 3*n)
	workerpool.Sites(pool, n, spin.MinParallelSites, func(start, end int) {
		zeemanRange(spins, field, energy, h, start, end)
	})
}

func zeemanRange(spins, field, energy, h []float64, start, end int) {
	copy(field[3*start:3*end], h[3*start:3*end])
	for i := start; i < end; i++ {
		energy[i] = -r3.Dot(spin.At(h, i), spin.At(spins, i))
	}
}
