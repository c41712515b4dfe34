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

package driver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ajroetker/go-atomistic/internal/config"
	"github.com/ajroetker/go-atomistic/internal/mesh"
	"github.com/ajroetker/go-atomistic/spin"
	"github.com/ajroetker/go-atomistic/spin/contrib/rng"
)

// Initialize fills spins with the initial state named by run.Initial.
func Initialize(spins []float64, g spin.Grid, run config.Run, s rng.Sampler) error {
	switch run.Initial {
	case config.InitialUniform:
		mesh.Uniform(spins, 0, 0, 1)
	case config.InitialRandom:
		rng.UniformSpins(s, spins)
	case config.InitialSkyrmion:
		Skyrmion(spins, g, float64(g.Nx-1)/2, float64(g.Ny-1)/2, run.SkyrmionRadius)
	default:
		return fmt.Errorf("unknown initial state %q", run.Initial)
	}
	return nil
}

// Skyrmion writes a Néel skyrmion of radius r centred at (cx, cy), in
// lattice units, into every layer of g: the core points along -z and the
// polar angle falls linearly to zero at r.
func Skyrmion(spins []float64, g spin.Grid, cx, cy, r float64) {
	for idx := range g.Sites() {
		i, j, _ := g.Position(idx)
		x, y := float64(i)-cx, float64(j)-cy
		rho := math.Hypot(x, y)
		if rho >= r {
			spin.Put(spins, idx, r3.Vec{Z: 1})
			continue
		}
		theta := math.Pi * (1 - rho/r)
		phi := math.Atan2(y, x)
		spin.Put(spins, idx, r3.Vec{
			X: math.Sin(theta) * math.Cos(phi),
			Y: math.Sin(theta) * math.Sin(phi),
			Z: math.Cos(theta),
		})
	}
}
