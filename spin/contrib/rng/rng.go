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

// Package rng is the sampling capability consumed by the Monte Carlo sweep and
// the thermal LLG terms. Kernels take a Sampler so callers choose the
// generator and its seeding; New returns the default.
package rng

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ajroetker/go-atomistic/spin"
)

// Sampler draws uniform and standard normal variates.
// *rand.Rand satisfies it.
type Sampler interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// NormFloat64 returns a standard normal value.
	NormFloat64() float64
}

var _ Sampler = (*rand.Rand)(nil)

// stream is the PCG increment shared by every generator from New, so a seed
// alone identifies a sequence.
const stream = 0x9e3779b97f4a7c15

// New returns a PCG generator seeded with seed. It is not safe for concurrent
// use: give each goroutine its own.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}

// UniformSpin returns a unit vector distributed uniformly on the sphere,
// drawing cos θ and φ from two uniform variates.
func UniformSpin(s Sampler) r3.Vec {
	cos := 2*s.Float64() - 1
	sin := math.Sqrt(1 - cos*cos)
	phi := 2 * math.Pi * s.Float64()
	return r3.Vec{X: sin * math.Cos(phi), Y: sin * math.Sin(phi), Z: cos}
}

// UniformSpins fills dst (3n, interleaved) with independent uniform unit
// vectors.
func UniformSpins(s Sampler, dst []float64) {
	spin.Assert(len(dst)%3 == 0, "len(dst) = %d is not a multiple of 3", len(dst))
	for i := range len(dst) / 3 {
		spin.Put(dst, i, UniformSpin(s))
	}
}

// GaussVec fills dst with independent standard normal variates.
func GaussVec(s Sampler, dst []float64) {
	for i := range dst {
		dst[i] = s.NormFloat64()
	}
}
