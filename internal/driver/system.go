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

// Package driver is the reference integrator around the spin kernels: it
// builds a lattice from a config.Config, sums the field terms into one
// effective field, and runs LLG time integration or Monte Carlo anneals.
package driver

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ajroetker/go-atomistic/internal/config"
	"github.com/ajroetker/go-atomistic/internal/mesh"
	"github.com/ajroetker/go-atomistic/spin"
	"github.com/ajroetker/go-atomistic/spin/contrib/energy"
	"github.com/ajroetker/go-atomistic/spin/contrib/field"
	"github.com/ajroetker/go-atomistic/spin/contrib/montecarlo"
	"github.com/ajroetker/go-atomistic/spin/contrib/topology"
	"github.com/ajroetker/go-atomistic/spin/contrib/workerpool"
)

// System owns every lattice-sized buffer of one simulation.
type System struct {
	Grid spin.Grid
	Ngbs []int32

	// Spins is the state, interleaved.
	Spins []float64
	// Field and Energy hold the effective field and per-site energy of the
	// last ComputeField call.
	Field  []float64
	Energy []float64

	Alpha  []float64
	MuSInv []float64

	pool     *workerpool.Pool
	material config.Material
	spacing  float64

	ku, axis, h   []float64
	dBulk, dmiVec []float64
	coords, muS   []float64
	demag         field.DemagSolver
	termF, termE  []float64
	layer, charge []float64
	layerNgbs     []int32
	hasZeeman     bool
}

// NewSystem allocates a System for cfg. Spins start at zero; see Initialize.
// pool may be nil.
func NewSystem(cfg config.Config, pool *workerpool.Pool) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new system: %w", err)
	}
	l, mat := cfg.Lattice, cfg.Material
	g := spin.Grid{Nx: l.Nx, Ny: l.Ny, Nz: l.Nz, PeriodicX: l.PeriodicX, PeriodicY: l.PeriodicY}
	n := g.Sites()

	s := &System{
		Grid:     g,
		Ngbs:     mesh.Cubic(g),
		Spins:    make([]float64, 3*n),
		Field:    make([]float64, 3*n),
		Energy:   make([]float64, n),
		Alpha:    filled(n, cfg.LLG.Alpha),
		MuSInv:   filled(n, 1/mat.MuS),
		pool:     pool,
		material: mat,
		spacing:  l.Spacing,
		termF:    make([]float64, 3*n),
		termE:    make([]float64, n),
		charge:   make([]float64, l.Nx*l.Ny),
	}

	if mat.Ku != 0 {
		a := r3.Unit(r3.Vec{X: mat.Axis[0], Y: mat.Axis[1], Z: mat.Axis[2]})
		s.ku = filled(n, mat.Ku)
		s.axis = make([]float64, 3*n)
		mesh.Uniform(s.axis, a.X, a.Y, a.Z)
	}
	if slices.ContainsFunc(mat.Field, func(v float64) bool { return v != 0 }) {
		s.hasZeeman = true
		s.h = make([]float64, 3*n)
		mesh.Uniform(s.h, mat.Field[0], mat.Field[1], mat.Field[2])
	}
	switch mat.DMI {
	case config.DMIBulk:
		s.dBulk = filled(len(s.Ngbs), mat.D)
	case config.DMIInterfacial:
		s.dmiVec = mesh.InterfacialDMIVectors()
	}
	if mat.DipolarScale != 0 {
		s.coords = mesh.Coords(g, l.Spacing)
		s.muS = filled(n, mat.MuS)
		s.demag = field.DirectDipolar{Pool: pool}
	}

	// The skyrmion number is taken on the k = 0 layer, which is strided in
	// the site order; it gets its own buffer and table.
	layer := spin.Grid{Nx: l.Nx, Ny: l.Ny, Nz: 1, PeriodicX: l.PeriodicX, PeriodicY: l.PeriodicY}
	s.layer = make([]float64, 3*layer.Sites())
	s.layerNgbs = mesh.Cubic(layer)
	return s, nil
}

func filled(n int, v float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = v
	}
	return x
}

// ComputeField evaluates every configured term for spins into s.Field and
// s.Energy.
func (s *System) ComputeField(spins []float64) {
	clear(s.Field)
	clear(s.Energy)
	m := s.material

	s.add(func(f, e []float64) {
		field.ParallelExchangeField(s.pool, spins, f, e, m.J, m.J, m.J, s.Ngbs)
	})
	switch {
	case s.dBulk != nil:
		s.add(func(f, e []float64) { field.ParallelDMIBulk(s.pool, spins, f, e, s.dBulk, s.Ngbs) })
	case s.dmiVec != nil:
		s.add(func(f, e []float64) {
			field.ParallelDMIInterfacial(s.pool, spins, f, e, m.D, s.Ngbs, spin.NumNeighbours, s.dmiVec)
		})
	}
	if s.ku != nil {
		s.add(func(f, e []float64) { field.ParallelAnisotropy(s.pool, spins, f, e, s.ku, s.axis) })
	}
	if s.hasZeeman {
		s.add(func(f, e []float64) { field.ParallelZeeman(s.pool, spins, f, e, s.h) })
	}
	if s.demag != nil {
		s.add(func(f, e []float64) { s.demag.Demag(spins, f, e, s.coords, s.muS, m.DipolarScale) })
	}
}

func (s *System) add(term func(f, e []float64)) {
	term(s.termF, s.termE)
	floats.Add(s.Field, s.termF)
	floats.Add(s.Energy, s.termE)
}

// TotalEnergy returns the sum of s.Energy.
func (s *System) TotalEnergy() float64 {
	return energy.Total(s.Energy)
}

// SkyrmionNumber returns the skyrmion number of the k = 0 layer of spins.
func (s *System) SkyrmionNumber(spins []float64) float64 {
	g := s.Grid
	for i := range g.Nx {
		for j := range g.Ny {
			l := i*g.Ny + j
			copy(s.layer[3*l:3*l+3], spins[3*g.Index(i, j, 0):])
		}
	}
	return topology.ParallelSkyrmionNumber(s.pool, s.layer, s.charge, s.layerNgbs)
}

// GuidingCenter returns the guiding centre of the k = 0 layer of spins.
func (s *System) GuidingCenter(spins []float64) (x, y float64) {
	return topology.GuidingCenter(spins, s.Grid)
}

// Hamiltonian returns the Monte Carlo form of the configured interactions.
// The dipolar term has no Monte Carlo counterpart and is left out.
func (s *System) Hamiltonian() montecarlo.Hamiltonian {
	m := s.material
	ham := montecarlo.Hamiltonian{J: m.J, H: s.h}
	switch m.DMI {
	case config.DMIBulk:
		ham.D = m.D
	case config.DMIInterfacial:
		ham.D = m.D
		ham.Vectors = s.dmiVec
	}
	if s.ku != nil {
		ham.Ku = m.Ku
		ham.Axis = spin.At(s.axis, 0)
	}
	return ham
}
