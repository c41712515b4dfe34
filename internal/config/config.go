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

// Package config holds the run configuration of the spinsim driver.
//
// Values are resolved in three layers: Default, then an optional YAML file,
// then SPINSIM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SPINSIM_"

// Config is the full run configuration.
type Config struct {
	Lattice    Lattice    `yaml:"lattice" envPrefix:"LATTICE_"`
	Material   Material   `yaml:"material" envPrefix:"MATERIAL_"`
	LLG        LLG        `yaml:"llg" envPrefix:"LLG_"`
	MonteCarlo MonteCarlo `yaml:"monte_carlo" envPrefix:"MC_"`
	Run        Run        `yaml:"run" envPrefix:"RUN_"`
}

// Lattice describes the simple cubic lattice.
type Lattice struct {
	Nx        int     `yaml:"nx" env:"NX"`
	Ny        int     `yaml:"ny" env:"NY"`
	Nz        int     `yaml:"nz" env:"NZ"`
	PeriodicX bool    `yaml:"periodic_x" env:"PERIODIC_X"`
	PeriodicY bool    `yaml:"periodic_y" env:"PERIODIC_Y"`
	Spacing   float64 `yaml:"spacing" env:"SPACING"`
}

// DMI forms.
const (
	DMINone        = "none"
	DMIBulk        = "bulk"
	DMIInterfacial = "interfacial"
)

// Material holds the interaction constants, all in energy units.
type Material struct {
	J   float64 `yaml:"j" env:"J"`
	D   float64 `yaml:"d" env:"D"`
	DMI string  `yaml:"dmi" env:"DMI"`
	Ku  float64 `yaml:"ku" env:"KU"`
	// Axis is the anisotropy axis, normalised by the driver.
	Axis []float64 `yaml:"axis" env:"AXIS" envSeparator:","`
	// Field is the uniform applied field.
	Field []float64 `yaml:"field" env:"FIELD" envSeparator:","`
	// MuS is the moment magnitude, used by the thermal field and the
	// dipolar interaction.
	MuS float64 `yaml:"mu_s" env:"MU_S"`
	// DipolarScale enables the direct dipolar sum when non-zero.
	DipolarScale float64 `yaml:"dipolar_scale" env:"DIPOLAR_SCALE"`
	// KB converts temperature to energy in the thermal field: 1 when
	// temperatures are in units of J, llg.Boltzmann for SI runs.
	KB float64 `yaml:"kb" env:"KB"`
}

// LLG configures the time integration.
type LLG struct {
	Gamma       float64 `yaml:"gamma" env:"GAMMA"`
	Alpha       float64 `yaml:"alpha" env:"ALPHA"`
	Precession  bool    `yaml:"precession" env:"PRECESSION"`
	C           float64 `yaml:"c" env:"C"`
	Dt          float64 `yaml:"dt" env:"DT"`
	Steps       int     `yaml:"steps" env:"STEPS"`
	LogEvery    int     `yaml:"log_every" env:"LOG_EVERY"`
	Temperature float64 `yaml:"temperature" env:"TEMPERATURE"`
	// U0 and Beta drive a Zhang-Li current along Current when U0 is non-zero.
	U0      float64   `yaml:"u0" env:"U0"`
	Beta    float64   `yaml:"beta" env:"BETA"`
	Current []float64 `yaml:"current" env:"CURRENT" envSeparator:","`
	// AJ drives a Slonczewski torque with polarisation Polarization when
	// non-zero. It cannot be combined with U0.
	AJ           float64   `yaml:"a_j" env:"A_J"`
	Polarization []float64 `yaml:"polarization" env:"POLARIZATION" envSeparator:","`
}

// MonteCarlo configures an anneal: one replica per temperature.
type MonteCarlo struct {
	Temperatures []float64 `yaml:"temperatures" env:"TEMPERATURES" envSeparator:","`
	Sweeps       int       `yaml:"sweeps" env:"SWEEPS"`
	Checkerboard bool      `yaml:"checkerboard" env:"CHECKERBOARD"`
	LogEvery     int       `yaml:"log_every" env:"LOG_EVERY"`
}

// Initial states.
const (
	InitialUniform  = "uniform"
	InitialRandom   = "random"
	InitialSkyrmion = "skyrmion"
)

// Run holds process-level settings.
type Run struct {
	Seed           uint64  `yaml:"seed" env:"SEED"`
	Workers        int     `yaml:"workers" env:"WORKERS"`
	Initial        string  `yaml:"initial" env:"INITIAL"`
	SkyrmionRadius float64 `yaml:"skyrmion_radius" env:"SKYRMION_RADIUS"`
	MetricsAddr    string  `yaml:"metrics_addr" env:"METRICS_ADDR"`
	LogLevel       string  `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat      string  `yaml:"log_format" env:"LOG_FORMAT"`
}

// Default returns a 40×40 periodic film with interfacial DMI, relaxing a
// skyrmion in reduced units.
func Default() Config {
	return Config{
		Lattice: Lattice{Nx: 40, Ny: 40, Nz: 1, PeriodicX: true, PeriodicY: true, Spacing: 1},
		Material: Material{
			J:     1,
			D:     0.3,
			DMI:   DMIInterfacial,
			Ku:    0.05,
			Axis:  []float64{0, 0, 1},
			Field: []float64{0, 0, 0.05},
			MuS:   1,
			KB:    1,
		},
		LLG: LLG{
			Gamma:        1,
			Alpha:        0.5,
			Precession:   true,
			C:            -1,
			Dt:           0.02,
			Steps:        2000,
			LogEvery:     200,
			Current:      []float64{1, 0},
			Polarization: []float64{0, 0, 1},
		},
		MonteCarlo: MonteCarlo{
			Temperatures: []float64{0.1, 0.5, 1, 2},
			Sweeps:       500,
			LogEvery:     100,
		},
		Run: Run{
			Seed:           1,
			Initial:        InitialSkyrmion,
			SkyrmionRadius: 6,
			LogLevel:       "info",
			LogFormat:      "text",
		},
	}
}

// Load resolves the configuration from the defaults, the YAML file at path
// (skipped when path is empty) and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	l := c.Lattice
	check(l.Nx > 0 && l.Ny > 0 && l.Nz > 0, "lattice: dimensions must be positive, got %d×%d×%d", l.Nx, l.Ny, l.Nz)
	check(l.Spacing > 0, "lattice: spacing must be positive, got %v", l.Spacing)

	m := c.Material
	check(slices.Contains([]string{DMINone, DMIBulk, DMIInterfacial}, m.DMI), "material: unknown dmi %q", m.DMI)
	check(len(m.Axis) == 3, "material: axis needs 3 components, got %d", len(m.Axis))
	check(len(m.Axis) != 3 || m.Axis[0] != 0 || m.Axis[1] != 0 || m.Axis[2] != 0, "material: axis must be non-zero")
	check(len(m.Field) == 3, "material: field needs 3 components, got %d", len(m.Field))
	check(m.MuS > 0, "material: mu_s must be positive, got %v", m.MuS)
	check(m.KB > 0, "material: kb must be positive, got %v", m.KB)

	g := c.LLG
	check(g.Gamma > 0, "llg: gamma must be positive, got %v", g.Gamma)
	check(g.Alpha >= 0, "llg: alpha must be non-negative, got %v", g.Alpha)
	check(g.Dt > 0, "llg: dt must be positive, got %v", g.Dt)
	check(g.Steps >= 0, "llg: steps must be non-negative, got %d", g.Steps)
	check(g.Temperature >= 0, "llg: temperature must be non-negative, got %v", g.Temperature)
	check(len(g.Current) == 2, "llg: current needs 2 components, got %d", len(g.Current))
	check(len(g.Polarization) == 3, "llg: polarization needs 3 components, got %d", len(g.Polarization))
	check(g.U0 == 0 || g.AJ == 0, "llg: u0 and a_j are exclusive")

	mc := c.MonteCarlo
	check(len(mc.Temperatures) > 0, "monte_carlo: no temperatures")
	for _, t := range mc.Temperatures {
		check(t >= 0, "monte_carlo: negative temperature %v", t)
	}
	check(mc.Sweeps >= 0, "monte_carlo: sweeps must be non-negative, got %d", mc.Sweeps)
	if mc.Checkerboard {
		check(!l.PeriodicX || l.Nx%2 == 0, "monte_carlo: checkerboard needs even nx with periodic x, got %d", l.Nx)
		check(!l.PeriodicY || l.Ny%2 == 0, "monte_carlo: checkerboard needs even ny with periodic y, got %d", l.Ny)
	}

	r := c.Run
	check(slices.Contains([]string{InitialUniform, InitialRandom, InitialSkyrmion}, r.Initial), "run: unknown initial state %q", r.Initial)
	check(r.Initial != InitialSkyrmion || r.SkyrmionRadius > 0, "run: skyrmion_radius must be positive, got %v", r.SkyrmionRadius)
	check(r.Workers >= 0, "run: workers must be non-negative, got %d", r.Workers)
	check(slices.Contains([]string{"text", "json"}, strings.ToLower(r.LogFormat)), "run: unknown log format %q", r.LogFormat)

	return errors.Join(errs...)
}
