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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ajroetker/go-atomistic/internal/config"
	"github.com/ajroetker/go-atomistic/internal/driver"
	"github.com/ajroetker/go-atomistic/spin"
	"github.com/ajroetker/go-atomistic/spin/contrib/rng"
	"github.com/ajroetker/go-atomistic/spin/contrib/workerpool"
)

// env is what every subcommand runs with, built once in PersistentPreRunE
// and released by close whether or not the command succeeded.
type env struct {
	cfg     config.Config
	log     *slog.Logger
	pool    *workerpool.Pool
	metrics *driver.Metrics
	server  *http.Server
}

func newRootCmd(e *env) *cobra.Command {
	var (
		configPath string
		logLevel   string
		logFormat  string
	)

	root := &cobra.Command{
		Use:          "spinsim",
		Short:        "Atomistic spin-lattice simulations",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Run.LogLevel = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.Run.LogFormat = logFormat
			}
			log, err := newLogger(cmd.ErrOrStderr(), cfg.Run.LogLevel, cfg.Run.LogFormat)
			if err != nil {
				return err
			}

			workers := cfg.Run.Workers
			if workers == 0 {
				workers = spin.DefaultWorkers()
			}
			*e = env{
				cfg:     cfg,
				log:     log,
				pool:    workerpool.New(workers),
				metrics: driver.NewMetrics(),
			}
			if addr := cfg.Run.MetricsAddr; addr != "" {
				e.server = serveMetrics(addr, e.metrics, log)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		&cobra.Command{
			Use:   "info",
			Short: "Print the host features and the resolved lattice",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runInfo(cmd.OutOrStdout(), e)
			},
		},
		&cobra.Command{
			Use:   "llg",
			Short: "Integrate the Landau-Lifshitz-Gilbert equation from the initial state",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runLLG(cmd.Context(), cmd.OutOrStdout(), e)
			},
		},
		&cobra.Command{
			Use:   "anneal",
			Short: "Run one Metropolis replica per configured temperature",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runAnneal(cmd.Context(), cmd.OutOrStdout(), e)
			},
		},
	)
	return root
}

func runInfo(w io.Writer, e *env) error {
	l := e.cfg.Lattice
	features := strings.Join(spin.CPUFeatures(), " ")
	if features == "" {
		features = "none"
	}
	fmt.Fprintf(w, "cpu features: %s\n", features)
	fmt.Fprintf(w, "workers:      %d\n", e.pool.NumWorkers())
	fmt.Fprintf(w, "debug checks: %v\n", spin.Debug)
	fmt.Fprintf(w, "lattice:      %d×%d×%d (%d sites)\n", l.Nx, l.Ny, l.Nz, l.Nx*l.Ny*l.Nz)
	fmt.Fprintf(w, "dmi:          %s\n", e.cfg.Material.DMI)
	return nil
}

func runLLG(ctx context.Context, w io.Writer, e *env) error {
	sys, err := driver.NewSystem(e.cfg, e.pool)
	if err != nil {
		return err
	}
	s := rng.New(e.cfg.Run.Seed)
	if err := driver.Initialize(sys.Spins, sys.Grid, e.cfg.Run, s); err != nil {
		return err
	}
	res, err := driver.RunLLG(ctx, sys, e.cfg.LLG, s, e.log, e.metrics)
	if err != nil {
		return fmt.Errorf("llg after %d steps: %w", res.Steps, err)
	}
	fmt.Fprintf(w, "steps %d  time %g  energy %.6f  Q %.4f  center (%.3f, %.3f)\n",
		res.Steps, res.Time, res.Energy, res.SkyrmionNumber, res.CenterX, res.CenterY)
	return nil
}

func runAnneal(ctx context.Context, w io.Writer, e *env) error {
	results, err := driver.RunAnneal(ctx, e.cfg, e.pool, e.log, e.metrics)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%10s %8s %10s %14s %10s\n", "T", "sweeps", "accept", "energy", "Q")
	for _, r := range results {
		fmt.Fprintf(w, "%10g %8d %10.4f %14.6f %10.4f\n", r.Temperature, r.Sweeps, r.Acceptance, r.Energy, r.SkyrmionNumber)
	}
	return nil
}

// newLogger builds the process logger from a level name and a format,
// "text" or "json".
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func serveMetrics(addr string, metrics *driver.Metrics, log *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server", "err", err)
		}
	}()
	return srv
}

func (e *env) close() {
	if e.pool != nil {
		e.pool.Close()
	}
	if e.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.server.Shutdown(ctx); err != nil {
		e.log.Error("metrics server shutdown", "err", err)
	}
}

// execute runs the command line args and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var e env
	defer e.close()

	root := newRootCmd(&e)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
