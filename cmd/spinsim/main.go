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

// Command spinsim relaxes and anneals atomistic spin lattices.
//
// Usage:
//
//	spinsim info
//	spinsim llg --config film.yaml
//	spinsim anneal --config film.yaml --log-format json
//
// Settings come from the defaults, then the YAML file given by --config,
// then SPINSIM_* environment variables, e.g. SPINSIM_LLG_STEPS=500.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
