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

// ToComponentMajor converts an interleaved spin array into component-major
// order: dst[c*n+i] = src[3*i+c].
//
// dst and src must both have length 3n and must not overlap.
func ToComponentMajor(dst, src []float64) {
	n := len(src) / 3
	MustLen("dst", len(dst), 3*n)
	for i := range n {
		dst[i] = src[3*i]
		dst[n+i] = src[3*i+1]
		dst[2*n+i] = src[3*i+2]
	}
}

// FromComponentMajor converts a component-major spin array back into the
// interleaved layout: dst[3*i+c] = src[c*n+i].
func FromComponentMajor(dst, src []float64) {
	n := len(src) / 3
	MustLen("dst", len(dst), 3*n)
	for i := range n {
		dst[3*i] = src[i]
		dst[3*i+1] = src[n+i]
		dst[3*i+2] = src[2*n+i]
	}
}
