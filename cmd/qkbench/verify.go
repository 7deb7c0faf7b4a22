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

package main

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ajroetker/go-qnn/hwy"
	"github.com/ajroetker/go-qnn/hwy/contrib/dense"
	"github.com/ajroetker/go-qnn/hwy/contrib/elementwise"
	"github.com/ajroetker/go-qnn/hwy/contrib/requant"
	"github.com/ajroetker/go-qnn/hwy/contrib/workerpool"
)

type verifyConfig struct {
	seed     int64
	maxDepth int
	maxOut   int
	batches  int
	workers  int
}

func (c *verifyConfig) addFlags(fs *pflag.FlagSet) {
	fs.Int64Var(&c.seed, "seed", 1, "random seed")
	fs.IntVar(&c.maxDepth, "max-depth", 40, "largest reduction length and elementwise length to sweep")
	fs.IntVar(&c.maxOut, "max-out", 24, "largest output channel count to sweep")
	fs.IntVar(&c.batches, "batches", 3, "batch rows per case")
	fs.IntVar(&c.workers, "workers", runtime.GOMAXPROCS(0), "concurrent sweep workers")
}

func newVerifyCmd() *cobra.Command {
	var cfg verifyConfig
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare strategies and lane widths on random inputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.maxDepth < 1 || cfg.maxOut < 1 || cfg.batches < 1 {
				return fmt.Errorf("sweep bounds must be positive")
			}
			n, workers, err := runVerify(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			p := message.NewPrinter(language.English)
			p.Fprintf(cmd.OutOrStdout(), "ok: %d cases at %s (%d-byte lanes, %d workers)\n", n, hwy.CurrentName(), hwy.CurrentWidth(), workers)
			return nil
		},
	}
	cfg.addFlags(cmd.Flags())
	return cmd
}

// sweepLanes returns the lane widths compared against one lane.
func sweepLanes() []int {
	lanes := []int{2, 3, 4, 8, 16, hwy.MaxLanes[int16](), hwy.MaxLanes[int64]()}
	slices.Sort(lanes)
	return slices.Compact(lanes)
}

// runVerify hands out depths in [1, maxDepth] to the pool one at a time,
// since deeper cases take longer. It returns the number of cases checked,
// the number of workers used and the error of the shallowest failing depth.
func runVerify(ctx context.Context, cfg verifyConfig) (cases, workers int, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	pool := workerpool.New(cfg.workers)
	defer pool.Close()

	counts := make([]int, cfg.maxDepth)
	errs := make([]error, cfg.maxDepth)
	pool.ParallelForAtomic(cfg.maxDepth, func(i int) {
		if errs[i] = ctx.Err(); errs[i] != nil {
			return
		}
		depth := i + 1
		rng := rand.New(rand.NewSource(cfg.seed + int64(depth)))
		counts[i], errs[i] = verifyDepth(rng, cfg, depth)
	})

	for i, n := range counts {
		if errs[i] != nil {
			return 0, pool.NumWorkers(), errs[i]
		}
		cases += n
	}
	return cases, pool.NumWorkers(), nil
}

func verifyDepth(rng *rand.Rand, cfg verifyConfig, depth int) (int, error) {
	var n int
	for outChannels := 1; outChannels <= cfg.maxOut; outChannels++ {
		if err := verifyFullyConnected(rng, cfg.batches, depth, outChannels); err != nil {
			return n, err
		}
		n++
	}
	if err := verifyElementwise(rng, cfg.batches, depth); err != nil {
		return n, err
	}
	return n + 1, nil
}

func verifyFullyConnected(rng *rand.Rand, batches, depth, outChannels int) error {
	input := randInts[int8](rng, batches*depth)
	weights := randInts[int8](rng, outChannels*depth)
	bias := make([]int32, outChannels)
	for i := range bias {
		bias[i] = int32(rng.Intn(1<<17) - 1<<16)
	}
	m, shift := requant.QuantizeMultiplier(1 / float64(64*depth))
	p := dense.Params{
		InputZeroPoint:  int32(rng.Intn(256) - 128),
		FilterZeroPoint: int32(rng.Intn(256) - 128),
		Requant: requant.Params{
			Multiplier:      m,
			Shift:           shift,
			OutputZeroPoint: int32(rng.Intn(21) - 10),
			Range:           requant.FullRange[int8](),
		},
	}
	packed := dense.PackWeights(weights, outChannels, depth)

	want := make([]int8, batches*outChannels)
	dense.BaseFullyConnected(p, input, weights, bias, want, batches, depth, outChannels, 1)

	got := make([]int8, len(want))
	for _, lanes := range sweepLanes() {
		dense.BaseFullyConnected(p, input, weights, bias, got, batches, depth, outChannels, lanes)
		if i, ok := firstMismatch(want, got); !ok {
			return fmt.Errorf("direct depth=%d outChannels=%d lanes=%d: output[%d] = %d, want %d", depth, outChannels, lanes, i, got[i], want[i])
		}
		dense.BaseFullyConnectedPacked(p, input, packed, bias, got, batches, lanes)
		if i, ok := firstMismatch(want, got); !ok {
			return fmt.Errorf("blocked depth=%d outChannels=%d lanes=%d: output[%d] = %d, want %d", depth, outChannels, lanes, i, got[i], want[i])
		}
	}
	return nil
}

func verifyElementwise(rng *rand.Rand, batches, length int) error {
	in1 := randInts[int16](rng, batches*length)
	in2 := randInts[int16](rng, batches*length)
	r := requant.FullRange[int16]()

	wantAdd := make([]int16, len(in1))
	elementwise.BaseAdd(in1, in2, wantAdd, batches, length, r, 1)

	m, shift := requant.QuantizeMultiplier(1.0 / 4096)
	mp := elementwise.MulParams{
		Input1ZeroPoint: int32(rng.Intn(256) - 128),
		Input2ZeroPoint: int32(rng.Intn(256) - 128),
		Requant:         requant.Params{Multiplier: m, Shift: shift, Range: requant.FullRange[int8]()},
	}
	wantMul := make([]int8, length)
	elementwise.BaseMul(in1, in2, wantMul, length, mp, 1)

	gotAdd := make([]int16, len(in1))
	gotMul := make([]int8, length)
	for _, lanes := range sweepLanes() {
		elementwise.BaseAdd(in1, in2, gotAdd, batches, length, r, lanes)
		if i, ok := firstMismatch(wantAdd, gotAdd); !ok {
			return fmt.Errorf("add length=%d lanes=%d: output[%d] = %d, want %d", length, lanes, i, gotAdd[i], wantAdd[i])
		}
		elementwise.BaseMul(in1, in2, gotMul, length, mp, lanes)
		if i, ok := firstMismatch(wantMul, gotMul); !ok {
			return fmt.Errorf("mul length=%d lanes=%d: output[%d] = %d, want %d", length, lanes, i, gotMul[i], wantMul[i])
		}
	}
	return nil
}

func randInts[T int8 | int16](rng *rand.Rand, n int) []T {
	s := make([]T, n)
	for i := range s {
		s[i] = T(rng.Int63())
	}
	return s
}

// firstMismatch returns the first index where a and b differ, and false, or
// -1 and true when they are equal.
func firstMismatch[T comparable](a, b []T) (int, bool) {
	for i := range a {
		if a[i] != b[i] {
			return i, false
		}
	}
	return -1, true
}
