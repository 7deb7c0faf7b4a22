// Copyright 2025 go-highway Authors
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

// Package workerpool provides a bounded parallel-for executor.
//
// Kernels that split work across goroutines take an Executor so that the
// caller decides the degree of parallelism once and reuses it:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	dense.ParallelFullyConnected(pool, p, input, weights, bias, output, batches, depth, outChannels)
//
// Every method blocks until all of its work has finished. A closed pool, or
// a pool with one worker, runs work on the calling goroutine.
package workerpool

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Executor runs index ranges in parallel.
type Executor interface {
	// ParallelFor splits [0, n) into contiguous ranges and calls fn once per
	// range.
	ParallelFor(n int, fn func(start, end int))

	// ParallelForAtomic calls fn once for every index in [0, n), handing
	// indices to workers one at a time.
	ParallelForAtomic(n int, fn func(i int))
}

// Pool is an Executor limited to a fixed number of concurrent workers.
type Pool struct {
	workers int
	closed  atomic.Bool
}

var _ Executor = (*Pool)(nil)

// New returns a pool running at most workers goroutines per call.
// Values below one are treated as one.
func New(workers int) *Pool {
	return &Pool{workers: max(workers, 1)}
}

// NumWorkers returns the concurrency limit.
func (p *Pool) NumWorkers() int {
	return p.workers
}

// Close stops the pool from starting goroutines. Later calls run serially.
func (p *Pool) Close() {
	p.closed.Store(true)
}

func (p *Pool) limit(n int) int {
	if p.closed.Load() {
		return 1
	}
	return min(p.workers, n)
}

// ParallelFor implements Executor.
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	_ = p.ParallelForErr(context.Background(), n, func(_ context.Context, start, end int) error {
		fn(start, end)
		return nil
	})
}

// ParallelForErr is ParallelFor for work that can fail. The context passed
// to fn is canceled after the first error, which is returned once all
// started ranges have finished.
func (p *Pool) ParallelForErr(ctx context.Context, n int, fn func(ctx context.Context, start, end int) error) error {
	if n <= 0 {
		return nil
	}
	workers := p.limit(n)
	if workers == 1 {
		return fn(ctx, 0, n)
	}

	g, ctx := errgroup.WithContext(ctx)
	chunk := (n + workers - 1) / workers
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			return fn(ctx, start, end)
		})
	}
	return g.Wait()
}

// ParallelForAtomic implements Executor.
func (p *Pool) ParallelForAtomic(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers := p.limit(n)
	if workers == 1 {
		for i := range n {
			fn(i)
		}
		return
	}

	var next atomic.Int64
	var g errgroup.Group
	g.SetLimit(workers)
	for range workers {
		g.Go(func() error {
			for {
				i := int(next.Add(1) - 1)
				if i >= n {
					return nil
				}
				fn(i)
			}
		})
	}
	_ = g.Wait()
}
