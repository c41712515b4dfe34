// Copyright 2025 The go-atomistic Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides the persistent worker pool behind every
// Parallel* kernel in spin/contrib.
//
// An external integrator evaluates the right-hand side of the LLG equation
// thousands to millions of times per run, and each evaluation is a short flat
// loop over lattice sites. Spawning goroutines per call would dominate the
// kernel time for small lattices, so a Pool is created once and reused.
//
// Usage:
//
//	pool := workerpool.New(spin.DefaultWorkers())
//	defer pool.Close()
//
//	for step := range steps {
//	    llg.ParallelRHS(pool, dmdt, m, h, alpha, pins, params)
//	    ...
//	}
//
// Kernels accept a nil *Pool and then run on the calling goroutine.
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of goroutines fed through a buffered channel.
// A Pool is safe for concurrent use; concurrent calls share the workers.
type Pool struct {
	workers   int
	tasks     chan task
	closeOnce sync.Once
	closed    atomic.Bool
}

type task struct {
	run  func()
	done *sync.WaitGroup
}

// New starts a pool with the given number of workers.
// If workers <= 0, GOMAXPROCS workers are started.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		workers: workers,
		tasks:   make(chan task, workers*2),
	}
	for range workers {
		go p.loop()
	}
	return p
}

func (p *Pool) loop() {
	for t := range p.tasks {
		t.run()
		t.done.Done()
	}
}

// NumWorkers returns the number of workers in the pool. A nil pool has one.
func (p *Pool) NumWorkers() int {
	if p == nil {
		return 1
	}
	return p.workers
}

// Close stops the workers once queued tasks finish. It is safe to call more
// than once. A closed pool keeps working by running everything inline.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.tasks)
	})
}

// inline reports whether work of size n should bypass the workers.
func (p *Pool) inline(n int) bool {
	return p == nil || p.closed.Load() || p.workers == 1 || n == 1
}

// ParallelFor splits [0, n) into one contiguous range per worker and calls
// fn(start, end) for each range. It blocks until every range is done.
//
// Ranges are disjoint, so fn may write outputs indexed by i in [start, end)
// without synchronisation.
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if p.inline(n) {
		fn(0, n)
		return
	}

	parts := min(p.workers, n)
	chunk := (n + parts - 1) / parts

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		p.tasks <- task{run: func() { fn(start, end) }, done: &wg}
	}
	wg.Wait()
}

// ParallelForAtomic calls fn(i) for every i in [0, n), handing indices to
// workers one at a time. Use it when the cost per index varies, or when the
// index itself names a unit of work such as a slab with its own sampler.
func (p *Pool) ParallelForAtomic(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if p.inline(n) {
		for i := range n {
			fn(i)
		}
		return
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	for range min(p.workers, n) {
		wg.Add(1)
		p.tasks <- task{
			run: func() {
				for {
					i := int(next.Add(1) - 1)
					if i >= n {
						return
					}
					fn(i)
				}
			},
			done: &wg,
		}
	}
	wg.Wait()
}

// Sites runs fn over [0, n) site ranges: on the pool when it is non-nil and
// n reaches threshold, inline otherwise. Kernels use it to implement their
// Parallel* variants.
func Sites(p *Pool, n, threshold int, fn func(start, end int)) {
	if p == nil || n < threshold {
		if n > 0 {
			fn(0, n)
		}
		return
	}
	p.ParallelFor(n, fn)
}
