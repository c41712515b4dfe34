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

	"github.com/ajroetker/go-atomistic/spin"
)

// Order is the visitation order of a sweep. Sites must yield every index in
// [0, n) exactly once.
type Order interface {
	Sites(n int) iter.Seq[int]
}

// Lexicographic visits sites in index order 0, 1, ..., n-1.
type Lexicographic struct{}

// Sites implements Order.
func (Lexicographic) Sites(n int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := range n {
			if !yield(i) {
				return
			}
		}
	}
}

// Checkerboard visits every site with even i+j+k first, then every site with
// odd i+j+k, each colour in index order. It is still a sequential sweep; only
// the order changes.
type Checkerboard struct {
	Grid spin.Grid
}

// Sites implements Order. n must equal Grid.Sites().
func (c Checkerboard) Sites(n int) iter.Seq[int] {
	spin.MustLen("sites", n, c.Grid.Sites())
	return func(yield func(int) bool) {
		for colour := range 2 {
			for idx := range n {
				if parity(c.Grid, idx) != colour {
					continue
				}
				if !yield(idx) {
					return
				}
			}
		}
	}
}

func parity(g spin.Grid, idx int) int {
	i, j, k := g.Position(idx)
	return (i + j + k) % 2
}
