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

package montecarlo

import (
	"iter"
	"math"
	"slices"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ajroetker/go-atomistic/internal/mesh"
	"github.com/ajroetker/go-atomistic/spin"
	"github.com/ajroetker/go-atomistic/spin/contrib/energy"
	"github.com/ajroetker/go-atomistic/spin/contrib/field"
	"github.com/ajroetker/go-atomistic/spin/contrib/rng"
	"github.com/ajroetker/go-atomistic/spin/contrib/workerpool"
)

// totalEnergy evaluates the Hamiltonian with the summation kernels.
func totalEnergy(spins []float64, g spin.Grid, ham Hamiltonian) float64 {
	e := energy.Exchange(spins, ham.J, ham.J, ham.J, g) + energy.DMI(spins, ham.D, g)
	if ham.H != nil {
		for i := range g.Sites() {
			e -= r3.Dot(spin.At(ham.H, i), spin.At(spins, i))
		}
	}
	return e
}

func randomState(seed uint64, n int) []float64 {
	s := make([]float64, 3*n)
	rng.UniformSpins(rng.New(seed), s)
	return s
}

func uniformField(n int, h r3.Vec) []float64 {
	f := make([]float64, 3*n)
	mesh.Uniform(f, h.X, h.Y, h.Z)
	return f
}

func TestSiteEnergyMatchesFieldKernels(t *testing.T) {
	g := spin.Grid{Nx: 4, Ny: 3, Nz: 2, PeriodicX: true, PeriodicY: true}
	n := g.Sites()
	ngbs := mesh.Cubic(g)
	spins := randomState(1, n)
	ham := Hamiltonian{J: 1.2, D: 0.4, H: randomState(2, n)}

	hex := make([]float64, 3*n)
	hdmi := make([]float64, 3*n)
	hz := make([]float64, 3*n)
	e := make([]float64, n)
	d := make([]float64, len(ngbs))
	for p := range d {
		d[p] = ham.D
	}
	field.ExchangeField(spins, hex, e, ham.J, ham.J, ham.J, ngbs)
	field.DMIBulk(spins, hdmi, e, d, ngbs)
	field.Zeeman(spins, hz, e, ham.H)

	for i := range n {
		s := spin.At(spins, i)
		heff := r3.Add(r3.Add(spin.At(hex, i), spin.At(hdmi, i)), spin.At(hz, i))
		want := -r3.Dot(s, heff)
		if got := SiteEnergy(spins, ngbs, ham, i, s); math.Abs(got-want) > 1e-12 {
			t.Errorf("site %d: SiteEnergy = %v, -S·H = %v", i, got, want)
		}
	}
}

func TestSiteEnergyInterfacialAndAnisotropy(t *testing.T) {
	g := spin.Grid{Nx: 4, Ny: 4, Nz: 1, PeriodicX: true, PeriodicY: true}
	n := g.Sites()
	ngbs := mesh.Cubic(g)
	spins := randomState(17, n)
	axis := r3.Unit(r3.Vec{X: 0.2, Z: 1})
	ham := Hamiltonian{J: 0.7, D: 0.45, Vectors: mesh.InterfacialDMIVectors(), Ku: 0.3, Axis: axis}

	hex := make([]float64, 3*n)
	hdmi := make([]float64, 3*n)
	e := make([]float64, n)
	field.ExchangeField(spins, hex, e, ham.J, ham.J, ham.J, ngbs)
	field.DMIInterfacial(spins, hdmi, e, ham.D, ngbs, spin.NumNeighbours, ham.Vectors)

	for i := range n {
		s := spin.At(spins, i)
		as := r3.Dot(axis, s)
		want := -r3.Dot(s, r3.Add(spin.At(hex, i), spin.At(hdmi, i))) - ham.Ku*as*as
		if got := SiteEnergy(spins, ngbs, ham, i, s); math.Abs(got-want) > 1e-12 {
			t.Errorf("site %d: SiteEnergy = %v, want %v", i, got, want)
		}
	}
}

func TestSiteEnergyDifferenceIsTotalChange(t *testing.T) {
	g := spin.Grid{Nx: 4, Ny: 4, Nz: 2, PeriodicX: true, PeriodicY: true}
	n := g.Sites()
	ngbs := mesh.Cubic(g)
	spins := randomState(3, n)
	ham := Hamiltonian{J: 1, D: 0.6, H: uniformField(n, r3.Vec{Z: 0.3})}
	s := rng.New(4)

	for _, i := range []int{0, 5, 17, n - 1} {
		before := totalEnergy(spins, g, ham)
		old := spin.At(spins, i)
		trial := rng.UniformSpin(s)
		want := SiteEnergy(spins, ngbs, ham, i, trial) - SiteEnergy(spins, ngbs, ham, i, old)

		spin.Put(spins, i, trial)
		if got := totalEnergy(spins, g, ham) - before; math.Abs(got-want) > 1e-12 {
			t.Errorf("site %d: total change %v, SiteEnergy difference %v", i, got, want)
		}
	}
}

func TestSweepZeroTemperatureNeverRaisesEnergy(t *testing.T) {
	g := spin.Grid{Nx: 8, Ny: 8, Nz: 1, PeriodicX: true, PeriodicY: true}
	n := g.Sites()
	ngbs := mesh.Cubic(g)
	ham := Hamiltonian{J: 1, D: 0.5, H: uniformField(n, r3.Vec{Z: 0.2})}

	for _, order := range []Order{Lexicographic{}, Checkerboard{Grid: g}} {
		spins := randomState(5, n)
		s := rng.New(6)
		e := totalEnergy(spins, g, ham)
		for sweep := range 20 {
			Sweep(spins, ngbs, ham, 0, order, s)
			next := totalEnergy(spins, g, ham)
			if next > e+1e-12 {
				t.Fatalf("%T sweep %d: energy rose from %v to %v", order, sweep, e, next)
			}
			e = next
		}
	}
}

func TestSweepZeroTemperatureRejectsUphill(t *testing.T) {
	// Ferromagnetic ground state aligned with the field: every move is uphill.
	g := spin.Grid{Nx: 4, Ny: 4, Nz: 1, PeriodicX: true, PeriodicY: true}
	n := g.Sites()
	spins := make([]float64, 3*n)
	mesh.Uniform(spins, 0, 0, 1)
	ham := Hamiltonian{J: 1, H: uniformField(n, r3.Vec{Z: 1})}
	want := append([]float64(nil), spins...)

	if got := Sweep(spins, mesh.Cubic(g), ham, 0, Lexicographic{}, rng.New(7)); got != 0 {
		t.Errorf("accepted %d moves, want 0", got)
	}
	if !slices.Equal(spins, want) {
		t.Errorf("spins changed")
	}
}

func TestSweepHighTemperatureAcceptsAlmostAll(t *testing.T) {
	g := spin.Grid{Nx: 10, Ny: 10, Nz: 2, PeriodicX: true, PeriodicY: true}
	n := g.Sites()
	ngbs := mesh.Cubic(g)
	spins := randomState(8, n)
	ham := Hamiltonian{J: 1, D: 0.3, H: uniformField(n, r3.Vec{X: 0.1})}
	s := rng.New(9)

	accepted := 0
	const sweeps = 5
	for range sweeps {
		accepted += Sweep(spins, ngbs, ham, 1e12, Lexicographic{}, s)
	}
	if rate := float64(accepted) / float64(sweeps*n); rate < 0.99 {
		t.Errorf("acceptance rate %v at T=1e12, want >= 0.99", rate)
	}
}

func TestSweepIsReproducible(t *testing.T) {
	g := spin.Grid{Nx: 6, Ny: 6, Nz: 1, PeriodicX: true, PeriodicY: true}
	n := g.Sites()
	ngbs := mesh.Cubic(g)
	ham := Hamiltonian{J: 1, D: 0.2}

	a := randomState(10, n)
	b := append([]float64(nil), a...)
	na := Sweep(a, ngbs, ham, 0.5, Lexicographic{}, rng.New(11))
	nb := Sweep(b, ngbs, ham, 0.5, Lexicographic{}, rng.New(11))
	if na != nb || !slices.Equal(a, b) {
		t.Errorf("same seed gave different sweeps (%d vs %d accepted)", na, nb)
	}
}

// recorder wraps an Order and records the sites it hands out.
type recorder struct {
	Order
	seen []int
}

func (r *recorder) Sites(n int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := range r.Order.Sites(n) {
			r.seen = append(r.seen, i)
			if !yield(i) {
				return
			}
		}
	}
}

func TestSweepUsesInjectedOrder(t *testing.T) {
	g := spin.Grid{Nx: 4, Ny: 2, Nz: 1, PeriodicX: true, PeriodicY: true}
	n := g.Sites()
	rec := &recorder{Order: Checkerboard{Grid: g}}
	Sweep(randomState(12, n), mesh.Cubic(g), Hamiltonian{J: 1}, 1, rec, rng.New(13))

	want := slices.Collect(Checkerboard{Grid: g}.Sites(n))
	if !slices.Equal(rec.seen, want) {
		t.Errorf("visited %v, want %v", rec.seen, want)
	}
}

func TestOrders(t *testing.T) {
	g := spin.Grid{Nx: 3, Ny: 2, Nz: 2}
	n := g.Sites()

	lex := slices.Collect(Lexicographic{}.Sites(n))
	for i, v := range lex {
		if v != i {
			t.Fatalf("Lexicographic = %v", lex)
		}
	}

	cb := slices.Collect(Checkerboard{Grid: g}.Sites(n))
	if got := slices.Sorted(slices.Values(cb)); !slices.Equal(got, lex) {
		t.Fatalf("Checkerboard is not a permutation: %v", cb)
	}
	half := n / 2
	for p, idx := range cb {
		want := 0
		if p >= half {
			want = 1
		}
		if got := parity(g, idx); got != want {
			t.Errorf("position %d: site %d has parity %d, want %d", p, idx, got, want)
		}
	}

	// Early exit stops the iteration.
	var first []int
	for i := range (Checkerboard{Grid: g}).Sites(n) {
		first = append(first, i)
		if len(first) == 2 {
			break
		}
	}
	if len(first) != 2 {
		t.Errorf("got %d sites before break", len(first))
	}
}

func samplers(seed uint64, count int) []rng.Sampler {
	out := make([]rng.Sampler, count)
	for a := range out {
		out[a] = rng.New(seed + uint64(a))
	}
	return out
}

func TestParallelCheckerboardSweepIsDeterministic(t *testing.T) {
	g := spin.Grid{Nx: 16, Ny: 16, Nz: 2, PeriodicX: true, PeriodicY: true}
	n := g.Sites()
	ngbs := mesh.Cubic(g)
	ham := Hamiltonian{J: 1, D: 0.4, H: uniformField(n, r3.Vec{Z: 0.1})}
	start := randomState(14, n)

	run := func(pool *workerpool.Pool) ([]float64, int) {
		spins := append([]float64(nil), start...)
		acc := ParallelCheckerboardSweep(pool, spins, ngbs, ham, 0.8, g, samplers(100, g.Nx))
		return spins, acc
	}

	want, wantAcc := run(nil)
	for _, workers := range []int{1, 3, 8} {
		pool := workerpool.New(workers)
		got, acc := run(pool)
		pool.Close()
		if acc != wantAcc || !slices.Equal(got, want) {
			t.Errorf("%d workers: %d accepted, want %d; states equal: %v", workers, acc, wantAcc, slices.Equal(got, want))
		}
	}
}

func TestParallelCheckerboardSweepZeroTemperature(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Close()

	g := spin.Grid{Nx: 8, Ny: 8, Nz: 1, PeriodicX: true, PeriodicY: true}
	n := g.Sites()
	ngbs := mesh.Cubic(g)
	ham := Hamiltonian{J: 1, D: 0.5}
	spins := randomState(15, n)
	ss := samplers(200, g.Nx)

	e := totalEnergy(spins, g, ham)
	for sweep := range 20 {
		ParallelCheckerboardSweep(pool, spins, ngbs, ham, 0, g, ss)
		next := totalEnergy(spins, g, ham)
		if next > e+1e-12 {
			t.Fatalf("sweep %d: energy rose from %v to %v", sweep, e, next)
		}
		e = next
	}
}

func TestParallelCheckerboardSweepHighTemperature(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Close()

	g := spin.Grid{Nx: 10, Ny: 10, Nz: 1, PeriodicX: true, PeriodicY: true}
	n := g.Sites()
	acc := ParallelCheckerboardSweep(pool, randomState(16, n), mesh.Cubic(g), Hamiltonian{J: 1}, 1e12, g, samplers(300, g.Nx))
	if rate := float64(acc) / float64(n); rate < 0.99 {
		t.Errorf("acceptance rate %v at T=1e12", rate)
	}
}

func BenchmarkSweep(b *testing.B) {
	g := spin.Grid{Nx: 64, Ny: 64, Nz: 1, PeriodicX: true, PeriodicY: true}
	n := g.Sites()
	ngbs := mesh.Cubic(g)
	spins := randomState(1, n)
	ham := Hamiltonian{J: 1, D: 0.3}

	b.Run("Sequential", func(b *testing.B) {
		s := rng.New(2)
		for i := 0; i < b.N; i++ {
			Sweep(spins, ngbs, ham, 1, Lexicographic{}, s)
		}
	})

	pool := workerpool.New(0)
	defer pool.Close()
	ss := samplers(3, g.Nx)
	b.Run("Checkerboard", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			ParallelCheckerboardSweep(pool, spins, ngbs, ham, 1, g, ss)
		}
	})
}
