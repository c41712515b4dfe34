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
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ajroetker/go-atomistic/internal/config"
	"github.com/ajroetker/go-atomistic/spin/contrib/montecarlo"
	"github.com/ajroetker/go-atomistic/spin/contrib/rng"
	"github.com/ajroetker/go-atomistic/spin/contrib/workerpool"
)

// AnnealResult is the final state of one Monte Carlo replica.
type AnnealResult struct {
	Temperature    float64
	Sweeps         int
	Acceptance     float64
	Energy         float64
	SkyrmionNumber float64
}

// RunAnneal runs one independent Monte Carlo replica per temperature of
// cfg.MonteCarlo, concurrently, and returns their results in temperature
// order. Replica i is seeded with cfg.Run.Seed + i.
//
// Replicas use sequential lexicographic sweeps, or parallel checkerboard
// sweeps on pool when cfg.MonteCarlo.Checkerboard is set. The first failing
// replica cancels the others.
func RunAnneal(ctx context.Context, cfg config.Config, pool *workerpool.Pool, log *slog.Logger, metrics *Metrics) ([]AnnealResult, error) {
	temps := cfg.MonteCarlo.Temperatures
	results := make([]AnnealResult, len(temps))

	g, ctx := errgroup.WithContext(ctx)
	for i, temp := range temps {
		g.Go(func() error {
			res, err := anneal(ctx, cfg, pool, temp, cfg.Run.Seed+uint64(i), log.With("temperature", temp), metrics)
			if err != nil {
				return fmt.Errorf("anneal at T=%v: %w", temp, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func anneal(ctx context.Context, cfg config.Config, pool *workerpool.Pool, temp float64, seed uint64, log *slog.Logger, metrics *Metrics) (AnnealResult, error) {
	sys, err := NewSystem(cfg, pool)
	if err != nil {
		return AnnealResult{}, err
	}
	s := rng.New(seed)
	if err := Initialize(sys.Spins, sys.Grid, cfg.Run, s); err != nil {
		return AnnealResult{}, err
	}
	if cfg.Material.DipolarScale != 0 {
		log.Warn("dipolar interaction is not sampled by Monte Carlo")
	}

	mc := cfg.MonteCarlo
	n := sys.Grid.Sites()
	ham := sys.Hamiltonian()

	sweep := func() int {
		return montecarlo.Sweep(sys.Spins, sys.Ngbs, ham, temp, montecarlo.Lexicographic{}, s)
	}
	if mc.Checkerboard {
		// One generator per x-slab, seeded from the replica's generator.
		samplers := make([]rng.Sampler, sys.Grid.Nx)
		for a := range samplers {
			samplers[a] = rng.New(s.Uint64())
		}
		sweep = func() int {
			return montecarlo.ParallelCheckerboardSweep(pool, sys.Spins, sys.Ngbs, ham, temp, sys.Grid, samplers)
		}
	}

	log.Info("anneal start", "sites", n, "sweeps", mc.Sweeps, "checkerboard", mc.Checkerboard)
	res := AnnealResult{Temperature: temp}
	for k := 1; k <= mc.Sweeps; k++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		accepted := sweep()
		metrics.sweep(temp, accepted, n)
		res.Sweeps = k
		res.Acceptance = float64(accepted) / float64(n)

		if mc.LogEvery > 0 && k%mc.LogEvery == 0 {
			sys.ComputeField(sys.Spins)
			log.Debug("anneal sweep", "sweep", k, "acceptance", res.Acceptance, "energy", sys.TotalEnergy())
		}
	}

	sys.ComputeField(sys.Spins)
	res.Energy = sys.TotalEnergy()
	res.SkyrmionNumber = sys.SkyrmionNumber(sys.Spins)
	metrics.report("anneal_T="+temperatureLabel(temp), res.Energy, res.SkyrmionNumber)
	log.Info("anneal done", "sweeps", res.Sweeps, "acceptance", res.Acceptance, "energy", res.Energy,
		"skyrmion_number", res.SkyrmionNumber)
	return res, nil
}
