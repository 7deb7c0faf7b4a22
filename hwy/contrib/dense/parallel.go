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

package dense

import (
	"github.com/ajroetker/go-qnn/hwy"
	"github.com/ajroetker/go-qnn/hwy/contrib/requant"
	"github.com/ajroetker/go-qnn/hwy/contrib/workerpool"
)

// MinParallelMACs is the multiply-accumulate count below which
// ParallelFullyConnected runs on the calling goroutine.
const MinParallelMACs = 64 * 64 * 64

// ParallelFullyConnected computes the same result as FullyConnected,
// distributing batch rows across the pool. The strategy follows
// CurrentStrategy; with the blocked strategy the weights are transposed once
// and shared read-only by all workers.
func ParallelFullyConnected[T requant.Activation, B Bias](pool workerpool.Executor, p Params, input []T, weights []int8, bias []B, output []T, batches, depth, outChannels int) {
	if !checkShape(len(input), len(weights), bias, len(output), batches, depth, outChannels) {
		return
	}
	lanes := hwy.MaxLanes[int64]()

	var pw *PackedWeights
	if currentStrategy == StrategyBlocked {
		pw = PackWeights(weights, outChannels, depth)
	}

	rows := func(start, end int) {
		in := input[start*depth : end*depth]
		out := output[start*outChannels : end*outChannels]
		if pw != nil {
			BaseFullyConnectedPacked(p, in, pw, bias, out, end-start, lanes)
			return
		}
		BaseFullyConnected(p, in, weights, bias, out, end-start, depth, outChannels, lanes)
	}

	if pool == nil || batches*depth*outChannels < MinParallelMACs {
		rows(0, batches)
		return
	}
	pool.ParallelFor(batches, rows)
}
