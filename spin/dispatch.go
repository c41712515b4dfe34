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

package spin

import (
	"os"
	"runtime"
	"strconv"

	"golang.org/x/sys/cpu"
)

// MinParallelSites is the minimum site count before a Parallel* kernel hands
// work to a pool. Below it the per-call barrier costs more than the kernel.
const MinParallelSites = 2048

// SequentialEnv checks if the SPIN_SEQUENTIAL environment variable is set.
// When set, DefaultWorkers returns 1 and drivers run every kernel on the
// calling goroutine. This is useful for debugging and for reproducing
// floating-point reductions bit for bit.
func SequentialEnv() bool {
	val := os.Getenv("SPIN_SEQUENTIAL")
	if val == "" {
		return false
	}
	// Any non-empty value is considered true, but also parse as bool
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}

// DefaultWorkers returns the worker count a pool should be created with:
// GOMAXPROCS, or 1 when SequentialEnv is set.
func DefaultWorkers() int {
	if SequentialEnv() {
		return 1
	}
	return runtime.GOMAXPROCS(0)
}

// CPUFeatures lists the vector and FMA features of the host CPU that matter for
// the floating-point throughput of the kernels, e.g. "avx2", "fma", "asimd".
func CPUFeatures() []string {
	var features []string
	add := func(ok bool, name string) {
		if ok {
			features = append(features, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add(cpu.X86.HasSSE42, "sse4.2")
		add(cpu.X86.HasAVX, "avx")
		add(cpu.X86.HasAVX2, "avx2")
		add(cpu.X86.HasFMA, "fma")
		add(cpu.X86.HasAVX512F, "avx512f")
	case "arm64":
		add(cpu.ARM64.HasASIMD, "asimd")
		add(cpu.ARM64.HasFPHP, "fphp")
		add(cpu.ARM64.HasSVE, "sve")
	}
	return features
}
