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

import "gonum.org/v1/gonum/spatial/r3"

// At returns the vector of site i in an interleaved array.
func At(s []float64, i int) r3.Vec {
	j := 3 * i
	return r3.Vec{X: s[j], Y: s[j+1], Z: s[j+2]}
}

// Put stores v as the vector of site i in an interleaved array.
func Put(s []float64, i int, v r3.Vec) {
	j := 3 * i
	s[j] = v.X
	s[j+1] = v.Y
	s[j+2] = v.Z
}

// Zero stores the zero vector at site i.
func Zero(s []float64, i int) {
	j := 3 * i
	s[j] = 0
	s[j+1] = 0
	s[j+2] = 0
}

// Volume returns the scalar triple product s · (a × b).
func Volume(s, a, b r3.Vec) float64 {
	return r3.Dot(s, r3.Cross(a, b))
}

// Perp returns |m|²·h - (m·h)·m, the part of h perpendicular to m scaled by |m|².
//
// For unit m this equals -m × (m × h).
func Perp(m, h r3.Vec) r3.Vec {
	return r3.Sub(r3.Scale(r3.Norm2(m), h), r3.Scale(r3.Dot(m, h), m))
}
