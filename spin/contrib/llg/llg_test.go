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

package llg

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ajroetker/go-atomistic/internal/mesh"
	"github.com/ajroetker/go-atomistic/spin"
	"github.com/ajroetker/go-atomistic/spin/contrib/workerpool"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// randomVecs returns n random vectors of length in [lo, hi).
func randomVecs(r *rand.Rand, n int, lo, hi float64) []float64 {
	v := make([]float64, 3*n)
	for i := range n {
		u := r3.Unit(r3.Vec{X: r.NormFloat64(), Y: r.NormFloat64(), Z: r.NormFloat64()})
		spin.Put(v, i, r3.Scale(lo+(hi-lo)*r.Float64(), u))
	}
	return v
}

func filled(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func equalSlices(t *testing.T, name string, got, want []float64) {
	t.Helper()
	for p := range want {
		if got[p] != want[p] {
			t.Fatalf("%s[%d] = %v, want %v", name, p, got[p], want[p])
		}
	}
}

func TestRHSKnownValues(t *testing.T) {
	m := []float64{0, 0, 1}
	h := []float64{1, 0, 0}
	tests := []struct {
		name  string
		alpha float64
		p     Params
		want  r3.Vec
	}{
		{"precession only", 0, Params{Gamma: 1, Precession: true}, r3.Vec{Y: -1}},
		{"precession and damping", 1, Params{Gamma: 1, Precession: true}, r3.Vec{X: 0.5, Y: -0.5}},
		{"damping only", 1, Params{Gamma: 1}, r3.Vec{X: 0.5}},
		{"gamma scales", 0, Params{Gamma: 2.5, Precession: true}, r3.Vec{Y: -2.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]float64, 3)
			RHS(dst, m, h, []float64{tt.alpha}, nil, tt.p)
			if d := r3.Norm(r3.Sub(spin.At(dst, 0), tt.want)); d > 1e-15 {
				t.Errorf("RHS = %v, want %v", spin.At(dst, 0), tt.want)
			}
		})
	}
}

func TestRHSPerpendicularWithoutDamping(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 1))
	const n = 200
	m := randomVecs(r, n, 1, 1)
	h := randomVecs(r, n, 0, 5)
	dst := make([]float64, 3*n)
	RHS(dst, m, h, make([]float64, n), nil, Params{Gamma: 1.76, Precession: true})

	for i := range n {
		if dot := r3.Dot(spin.At(m, i), spin.At(dst, i)); math.Abs(dot) > 1e-12 {
			t.Errorf("site %d: m·dm/dt = %g", i, dot)
		}
	}
}

func TestRHSRelaxation(t *testing.T) {
	// With no field only the relaxation term is left.
	m := []float64{0, 0, 2, 0.5, 0, 0}
	h := make([]float64, 6)
	alpha := []float64{0.1, 0.1}

	dst := make([]float64, 6)
	RHS(dst, m, h, alpha, nil, Params{Gamma: 1, Precession: true, C: 1.5})
	if got := spin.At(dst, 0); got != (r3.Vec{Z: 1.5 * (1 - 4) * 2}) {
		t.Errorf("site 0: %v", got)
	}
	if got := spin.At(dst, 1); got != (r3.Vec{X: 1.5 * (1 - 0.25) * 0.5}) {
		t.Errorf("site 1: %v", got)
	}

	// Adaptive rate follows the torque, which is zero here.
	RHS(dst, m, h, alpha, nil, Params{Gamma: 1, Precession: true, C: -1})
	equalSlices(t, "adaptive", dst, make([]float64, 6))
}

func TestRHSPinned(t *testing.T) {
	r := rand.New(rand.NewPCG(2, 2))
	const n = 4
	m := randomVecs(r, n, 1, 1)
	h := randomVecs(r, n, 1, 2)
	dst := filled(3*n, 7)
	pins := []int32{0, 1, 0, -3}
	RHS(dst, m, h, filled(n, 0.5), pins, Params{Gamma: 1, Precession: true, C: 1})

	for i, pin := range pins {
		z := spin.At(dst, i) == (r3.Vec{})
		if pin != 0 && !z {
			t.Errorf("pinned site %d: %v", i, spin.At(dst, i))
		}
		if pin == 0 && z {
			t.Errorf("free site %d has zero derivative", i)
		}
	}
}

func TestJTimesMatchesFiniteDifference(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 3))
	const n = 50
	// Off the unit sphere so every term of the derivative is exercised.
	m := randomVecs(r, n, 0.8, 1.2)
	h := randomVecs(r, n, 0.5, 3)
	mp := randomVecs(r, n, 0, 1)
	hp := randomVecs(r, n, 0, 1)
	alpha := make([]float64, n)
	for i := range alpha {
		alpha[i] = r.Float64()
	}

	tests := []struct {
		name string
		p    Params
	}{
		{"full", Params{Gamma: 1.3, Precession: true, C: 1}},
		{"no relaxation", Params{Gamma: 1.3, Precession: true}},
		{"damping only", Params{Gamma: 0.7, C: 2.5}},
	}
	const eps = 1e-6
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jv := make([]float64, 3*n)
			JTimes(jv, m, h, mp, hp, alpha, nil, tt.p)

			up := make([]float64, 3*n)
			down := make([]float64, 3*n)
			RHS(up, axpy(eps, mp, m), axpy(eps, hp, h), alpha, nil, tt.p)
			RHS(down, axpy(-eps, mp, m), axpy(-eps, hp, h), alpha, nil, tt.p)
			for p := range jv {
				fd := (up[p] - down[p]) / (2 * eps)
				if !approxEqual(jv[p], fd, 1e-7) {
					t.Fatalf("component %d: JTimes %v, finite difference %v", p, jv[p], fd)
				}
			}
		})
	}
}

// axpy returns a*x + y.
func axpy(a float64, x, y []float64) []float64 {
	out := make([]float64, len(y))
	for i := range y {
		out[i] = a*x[i] + y[i]
	}
	return out
}

func TestJTimesAdaptiveRateIsFrozen(t *testing.T) {
	m := []float64{0.3, -0.2, 1.1}
	h := []float64{0.5, 1, -0.25}
	mp := []float64{0.1, 0.2, 0.3}
	hp := []float64{-0.4, 0, 0.6}
	alpha := []float64{0.2}

	// With C = 0, RHS returns the bare torque.
	tq := make([]float64, 3)
	RHS(tq, m, h, alpha, nil, Params{Gamma: 1, Precession: true})
	c := 6 * r3.Norm(spin.At(tq, 0))

	adaptive := make([]float64, 3)
	fixed := make([]float64, 3)
	JTimes(adaptive, m, h, mp, hp, alpha, nil, Params{Gamma: 1, Precession: true, C: -1})
	JTimes(fixed, m, h, mp, hp, alpha, nil, Params{Gamma: 1, Precession: true, C: c})
	for p := range fixed {
		if !approxEqual(adaptive[p], fixed[p], 1e-14) {
			t.Errorf("component %d: adaptive %v, frozen %v", p, adaptive[p], fixed[p])
		}
	}
}

func TestJTimesPinned(t *testing.T) {
	dst := filled(6, 1)
	v := []float64{1, 2, 3, 4, 5, 6}
	JTimes(dst, v, v, v, v, []float64{0.1, 0.1}, []int32{1, 0}, Params{Gamma: 1, Precession: true, C: 1})
	if spin.At(dst, 0) != (r3.Vec{}) {
		t.Errorf("pinned site: %v", spin.At(dst, 0))
	}
}

func TestNormalize(t *testing.T) {
	r := rand.New(rand.NewPCG(4, 4))
	const n = 100
	m := randomVecs(r, n, 0.1, 10)
	pins := make([]int32, n)
	for i := 0; i < n; i += 7 {
		pins[i] = 1
	}
	orig := append([]float64(nil), m...)

	Normalize(m, pins)
	once := append([]float64(nil), m...)
	Normalize(m, pins)

	for i := range n {
		v := spin.At(m, i)
		if pins[i] != 0 {
			if v != spin.At(orig, i) {
				t.Errorf("pinned site %d changed: %v -> %v", i, spin.At(orig, i), v)
			}
			continue
		}
		if !approxEqual(r3.Norm(v), 1, 1e-15) {
			t.Errorf("site %d has norm %v", i, r3.Norm(v))
		}
		if d := r3.Norm(r3.Sub(v, spin.At(once, i))); d > 1e-15 {
			t.Errorf("site %d moved by %g on second Normalize", i, d)
		}
	}
}

func TestThermalField(t *testing.T) {
	eta := []float64{1, -2, 0.5, 1, 1, 1}
	temp := []float64{300, 0}
	alpha := []float64{0.1, 0.1}
	muSInv := []float64{1 / 9.274e-24, 1 / 9.274e-24}
	const gamma, dt = 1.76e11, 1e-15
	dst := make([]float64, 6)
	ThermalField(dst, eta, temp, alpha, muSInv, Boltzmann, gamma, dt)

	scale := math.Sqrt(2 * 0.1 * Boltzmann * 300 / 9.274e-24 / (gamma * dt))
	for c := range 3 {
		if !approxEqual(dst[c], eta[c]*scale, 1e-12*scale) {
			t.Errorf("component %d = %v, want %v", c, dst[c], eta[c]*scale)
		}
	}
	equalSlices(t, "zero temperature", dst[3:], []float64{0, 0, 0})
}

func TestThermalFieldVariance(t *testing.T) {
	// Reduced units: kB = 1, temperature in units of the exchange energy.
	const n = 20000
	const kB, gamma, dt = 1.0, 1.0, 0.02
	r := rand.New(rand.NewPCG(4, 4))
	eta := make([]float64, 3*n)
	for q := range eta {
		eta[q] = r.NormFloat64()
	}
	temp, alpha, muSInv := filled(n, 1), filled(n, 0.5), filled(n, 1)
	dst := make([]float64, 3*n)
	ThermalField(dst, eta, temp, alpha, muSInv, kB, gamma, dt)

	var mean, sq float64
	for _, v := range dst {
		mean += v
		sq += v * v
	}
	mean /= 3 * n
	variance := sq/(3*n) - mean*mean
	want := 2 * 0.5 * kB * 1 / (gamma * 1 * dt)
	if math.Abs(variance-want) > 0.03*want {
		t.Errorf("variance = %v, want %v", variance, want)
	}
}

func TestStochasticAndDomainWall(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 5))
	const n = 30
	m := randomVecs(r, n, 1, 1)
	h := randomVecs(r, n, 0, 2)
	eta := randomVecs(r, n, 0, 2)
	alpha := filled(n, 0.3)
	muSInv := filled(n, 1e23)
	temp := make([]float64, n)
	for i := range temp {
		temp[i] = 10 * float64(i%3)
	}
	p := Params{Gamma: 1.76e11, Precession: true, C: 1e12}
	const dt = 1e-14

	hth := make([]float64, 3*n)
	ThermalField(hth, eta, temp, alpha, muSInv, Boltzmann, p.Gamma, dt)
	stoch := make([]float64, 3*n)
	StochasticRHS(stoch, m, h, hth, alpha, nil, p)
	dw := make([]float64, 3*n)
	DomainWallRHS(dw, m, h, eta, temp, alpha, muSInv, nil, p, Boltzmann, dt)

	for q := range dw {
		if !approxEqual(dw[q], stoch[q], 1e-12*math.Abs(stoch[q])+1e-12) {
			t.Fatalf("component %d: domain wall %v, stochastic %v", q, dw[q], stoch[q])
		}
	}
}

func TestZeroDriveReducesToRHS(t *testing.T) {
	r := rand.New(rand.NewPCG(6, 6))
	const n = 40
	m := randomVecs(r, n, 0.9, 1.1)
	h := randomVecs(r, n, 0, 2)
	other := randomVecs(r, n, 0, 2)
	alpha := filled(n, 0.05)
	pins := make([]int32, n)
	pins[3] = 1
	p := Params{Gamma: 2, Precession: true, C: -1}

	want := make([]float64, 3*n)
	RHS(want, m, h, alpha, pins, p)

	got := make([]float64, 3*n)
	DomainWallRHS(got, m, h, other, make([]float64, n), alpha, filled(n, 1), pins, p, 1, 1e-3)
	equalSlices(t, "domain wall at T=0", got, want)

	ZhangLiRHS(got, m, h, other, alpha, pins, 0.2, 0, p)
	equalSlices(t, "Zhang-Li at u0=0", got, want)

	SlonczewskiRHS(got, m, h, other, alpha, make([]float64, n), pins, 0.2, p)
	equalSlices(t, "Slonczewski at aJ=0", got, want)

	StochasticRHS(got, m, h, make([]float64, 3*n), alpha, pins, p)
	equalSlices(t, "stochastic without noise", got, want)
}

func TestCurrentTorquesArePerpendicular(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	const n = 60
	m := randomVecs(r, n, 1, 1)
	h := randomVecs(r, n, 0, 2)
	v := randomVecs(r, n, 0, 2)
	alpha := filled(n, 0.2)
	p := Params{Gamma: 1, Precession: true}

	dst := make([]float64, 3*n)
	check := func(name string) {
		for i := range n {
			if dot := r3.Dot(spin.At(m, i), spin.At(dst, i)); math.Abs(dot) > 1e-12 {
				t.Errorf("%s site %d: m·dm/dt = %g", name, i, dot)
			}
		}
	}
	ZhangLiRHS(dst, m, h, v, alpha, nil, 0.4, 1.5, p)
	check("Zhang-Li")
	SlonczewskiRHS(dst, m, h, v, alpha, filled(n, 0.8), nil, 0.4, p)
	check("Slonczewski")
}

func TestZhangLiKnownValue(t *testing.T) {
	// m = ẑ, v = x̂, no field: u0/(1+α²)[-(1+αβ)x̂ + (β-α)ŷ].
	dst := make([]float64, 3)
	const a, b, u0 = 0.5, 0.2, 2.0
	ZhangLiRHS(dst, []float64{0, 0, 1}, make([]float64, 3), []float64{1, 0, 0}, []float64{a}, nil, b, u0, Params{Gamma: 1})
	want := r3.Vec{X: -u0 * (1 + a*b) / (1 + a*a), Y: u0 * (b - a) / (1 + a*a)}
	if d := r3.Norm(r3.Sub(spin.At(dst, 0), want)); d > 1e-14 {
		t.Errorf("ZhangLiRHS = %v, want %v", spin.At(dst, 0), want)
	}
}

func TestSlonczewskiKnownValue(t *testing.T) {
	// m = ẑ, p = x̂: m×p = ŷ, m×(m×p) = -x̂.
	dst := make([]float64, 3)
	const a, b, aj = 0.5, 0.2, 3.0
	SlonczewskiRHS(dst, []float64{0, 0, 1}, make([]float64, 3), []float64{1, 0, 0}, []float64{a}, []float64{aj}, nil, b, Params{Gamma: 1})
	coeff := -aj / (1 + a*a)
	want := r3.Vec{X: -coeff * (1 + a*b), Y: coeff * (b - a)}
	if d := r3.Norm(r3.Sub(spin.At(dst, 0), want)); d > 1e-14 {
		t.Errorf("SlonczewskiRHS = %v, want %v", spin.At(dst, 0), want)
	}
}

func TestSTTField(t *testing.T) {
	// Open chain along x with m_x = 0, 1, 4.
	g := spin.Grid{Nx: 3, Ny: 1, Nz: 1}
	ngbs := mesh.Cubic(g)
	m := []float64{0, 0, 1, 1, 0, 1, 4, 0, 1}
	dst := make([]float64, 9)
	STTField(dst, m, []float64{1, 1, 1}, []float64{5, 5, 5}, 1, 1, ngbs)

	want := []float64{1, 2, 3}
	for i := range 3 {
		if got := spin.At(dst, i); got != (r3.Vec{X: want[i]}) {
			t.Errorf("site %d: %v, want (%v,0,0)", i, got, want[i])
		}
	}

	// A lone site has no gradient.
	lone := make([]float64, 3)
	STTField(lone, []float64{1, 0, 0}, []float64{1}, []float64{1}, 1, 1, mesh.Cubic(spin.Grid{Nx: 1, Ny: 1, Nz: 1}))
	if spin.At(lone, 0) != (r3.Vec{}) {
		t.Errorf("lone site: %v", spin.At(lone, 0))
	}
}

func TestSTTFieldPeriodic(t *testing.T) {
	g := spin.Grid{Nx: 8, Ny: 8, Nz: 1, PeriodicX: true, PeriodicY: true}
	n := g.Sites()
	m := make([]float64, 3*n)
	for idx := range n {
		i, j, _ := g.Position(idx)
		spin.Put(m, idx, r3.Vec{X: math.Cos(2 * math.Pi * float64(i) / 8), Y: math.Sin(2 * math.Pi * float64(j) / 8)})
	}
	const dx, dy = 0.5, 0.25
	dst := make([]float64, 3*n)
	STTField(dst, m, filled(n, 2), filled(n, 3), dx, dy, mesh.Cubic(g))

	for idx := range n {
		i, j, _ := g.Position(idx)
		ip, im := (i+1)%8, (i+7)%8
		jp, jm := (j+1)%8, (j+7)%8
		wx := 2 * (math.Cos(2*math.Pi*float64(ip)/8) - math.Cos(2*math.Pi*float64(im)/8)) / (2 * dx)
		wy := 3 * (math.Sin(2*math.Pi*float64(jp)/8) - math.Sin(2*math.Pi*float64(jm)/8)) / (2 * dy)
		got := spin.At(dst, idx)
		if !approxEqual(got.X, wx, 1e-12) || !approxEqual(got.Y, wy, 1e-12) || got.Z != 0 {
			t.Errorf("site %d: %v, want (%v,%v,0)", idx, got, wx, wy)
		}
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Close()

	r := rand.New(rand.NewPCG(8, 8))
	g := spin.Grid{Nx: 16, Ny: 16, Nz: 10, PeriodicX: true}
	n := g.Sites()
	ngbs := mesh.Cubic(g)
	m := randomVecs(r, n, 0.9, 1.1)
	h := randomVecs(r, n, 0, 2)
	x := randomVecs(r, n, 0, 2)
	y := randomVecs(r, n, 0, 2)
	alpha := filled(n, 0.1)
	temp := filled(n, 5)
	muSInv := filled(n, 1)
	jx, jy := filled(n, 1), filled(n, -0.5)
	pins := make([]int32, n)
	for i := 0; i < n; i += 11 {
		pins[i] = 1
	}
	p := Params{Gamma: 1.5, Precession: true, C: -1}

	type kernel func(dst []float64)
	tests := []struct {
		name     string
		seq, par kernel
	}{
		{"rhs",
			func(d []float64) { RHS(d, m, h, alpha, pins, p) },
			func(d []float64) { ParallelRHS(pool, d, m, h, alpha, pins, p) }},
		{"jtimes",
			func(d []float64) { JTimes(d, m, h, x, y, alpha, pins, p) },
			func(d []float64) { ParallelJTimes(pool, d, m, h, x, y, alpha, pins, p) }},
		{"thermal",
			func(d []float64) { ThermalField(d, x, temp, alpha, muSInv, 1, p.Gamma, 1e-3) },
			func(d []float64) { ParallelThermalField(pool, d, x, temp, alpha, muSInv, 1, p.Gamma, 1e-3) }},
		{"stochastic",
			func(d []float64) { StochasticRHS(d, m, h, x, alpha, pins, p) },
			func(d []float64) { ParallelStochasticRHS(pool, d, m, h, x, alpha, pins, p) }},
		{"domain wall",
			func(d []float64) { DomainWallRHS(d, m, h, x, temp, alpha, muSInv, pins, p, 1, 1e-3) },
			func(d []float64) { ParallelDomainWallRHS(pool, d, m, h, x, temp, alpha, muSInv, pins, p, 1, 1e-3) }},
		{"stt field",
			func(d []float64) { STTField(d, m, jx, jy, 0.5, 0.5, ngbs) },
			func(d []float64) { ParallelSTTField(pool, d, m, jx, jy, 0.5, 0.5, ngbs) }},
		{"zhang-li",
			func(d []float64) { ZhangLiRHS(d, m, h, x, alpha, pins, 0.1, 2, p) },
			func(d []float64) { ParallelZhangLiRHS(pool, d, m, h, x, alpha, pins, 0.1, 2, p) }},
		{"slonczewski",
			func(d []float64) { SlonczewskiRHS(d, m, h, y, alpha, temp, pins, 0.1, p) },
			func(d []float64) { ParallelSlonczewskiRHS(pool, d, m, h, y, alpha, temp, pins, 0.1, p) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := make([]float64, 3*n)
			b := make([]float64, 3*n)
			tt.seq(a)
			tt.par(b)
			equalSlices(t, tt.name, b, a)
		})
	}

	t.Run("normalize", func(t *testing.T) {
		a := append([]float64(nil), m...)
		b := append([]float64(nil), m...)
		Normalize(a, pins)
		ParallelNormalize(pool, b, pins)
		equalSlices(t, "normalize", b, a)
	})
}

func BenchmarkRHS(b *testing.B) {
	r := rand.New(rand.NewPCG(9, 9))
	const n = 64 * 64 * 4
	m := randomVecs(r, n, 1, 1)
	h := randomVecs(r, n, 0, 2)
	alpha := filled(n, 0.1)
	dst := make([]float64, 3*n)
	p := Params{Gamma: 1, Precession: true, C: 1}

	b.Run("Sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			RHS(dst, m, h, alpha, nil, p)
		}
	})

	pool := workerpool.New(0)
	defer pool.Close()
	b.Run("Parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			ParallelRHS(pool, dst, m, h, alpha, nil, p)
		}
	})
}
