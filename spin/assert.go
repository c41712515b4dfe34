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

import "fmt"

// MustLen panics when Debug is set and got != want.
func MustLen(name string, got, want int) {
	if Debug && got != want {
		panic(fmt.Sprintf("spin: len(%s) = %d, want %d", name, got, want))
	}
}

// MustAtLeast panics when Debug is set and got < want.
func MustAtLeast(name string, got, want int) {
	if Debug && got < want {
		panic(fmt.Sprintf("spin: len(%s) = %d, want at least %d", name, got, want))
	}
}

// Assert panics with the formatted message when Debug is set and cond is false.
func Assert(cond bool, format string, args ...any) {
	if Debug && !cond {
		panic("spin: " + fmt.Sprintf(format, args...))
	}
}
