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

package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelForCoversRange(t *testing.T) {
	for _, workers := range []int{0, 1, 2, 3, 8} {
		pool := New(workers)
		for _, n := range []int{0, 1, 2, 7, 64, 1001} {
			seen := make([]int32, n)
			pool.ParallelFor(n, func(start, end int) {
				assert.LessOrEqual(t, start, end)
				for i := start; i < end; i++ {
					atomic.AddInt32(&seen[i], 1)
				}
			})
			for i, c := range seen {
				require.Equal(t, int32(1), c, "workers=%d n=%d index %d", workers, n, i)
			}
		}
		pool.Close()
	}
}

func TestParallelForAtomicCoversRange(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	n := 513
	seen := make([]int32, n)
	pool.ParallelForAtomic(n, func(i int) {
		atomic.AddInt32(&seen[i], 1)
	})
	for i, c := range seen {
		require.Equal(t, int32(1), c, "index %d", i)
	}
}

func TestParallelForBoundsConcurrency(t *testing.T) {
	pool := New(3)
	defer pool.Close()

	var cur, peak atomic.Int32
	var mu sync.Mutex
	pool.ParallelForAtomic(100, func(int) {
		c := cur.Add(1)
		mu.Lock()
		if c > peak.Load() {
			peak.Store(c)
		}
		mu.Unlock()
		cur.Add(-1)
	})
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestParallelForErr(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	errBoom := errors.New("boom")
	err := pool.ParallelForErr(context.Background(), 40, func(_ context.Context, start, end int) error {
		if start == 0 {
			return errBoom
		}
		return nil
	})
	require.ErrorIs(t, err, errBoom)

	require.NoError(t, pool.ParallelForErr(context.Background(), 0, func(context.Context, int, int) error {
		return errBoom
	}))
}

func TestClosedPoolRunsSerially(t *testing.T) {
	pool := New(8)
	pool.Close()

	var calls int
	pool.ParallelFor(100, func(start, end int) {
		calls++
		assert.Equal(t, 0, start)
		assert.Equal(t, 100, end)
	})
	assert.Equal(t, 1, calls)
	assert.Equal(t, 8, pool.NumWorkers())
}
