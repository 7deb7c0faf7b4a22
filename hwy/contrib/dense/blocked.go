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
)

// PackedWeights holds a weight matrix transposed to [depth, outChannels]
// for the blocked strategy. It is immutable once built and may be shared by
// concurrent callers.
type PackedWeights struct {
	data        []int8
	outChannels int
	depth       int
}

// PackWeights transposes an outChannels x depth weight matrix for reuse
// across calls to FullyConnectedPacked.
func PackWeights(weights []int8, outChannels, depth int) *PackedWeights {
	pw := &PackedWeights{outChannels: outChannels, depth: depth}
	if outChannels <= 0 || depth <= 0 {
		return pw
	}
	pw.data = make([]int8, outChannels*depth)
	TransposeBlocked(weights, outChannels, depth, pw.data)
	return pw
}

// OutChannels returns the number of output channels.
func (pw *PackedWeights) OutChannels() int { return pw.outChannels }

// Depth returns the reduction length.
func (pw *PackedWeights) Depth() int { return pw.depth }

// FullyConnectedBlocked computes the same result as FullyConnected using the
// blocked strategy. The transposed weights live in a temporary owned by the
// call; use PackWeights and FullyConnectedPacked to reuse them.
func FullyConnectedBlocked[T requant.Activation, B Bias](p Params, input []T, weights []int8, bias []B, output []T, batches, depth, outChannels int) {
	if !checkShape(len(input), len(weights), bias, len(output), batches, depth, outChannels) {
		return
	}
	pw := PackWeights(weights, outChannels, depth)
	BaseFullyConnectedPacked(p, input, pw, bias, output, batches, hwy.MaxLanes[int64]())
}

// FullyConnectedPacked computes the same result as FullyConnected from
// weights prepared by PackWeights.
func FullyConnectedPacked[T requant.Activation, B Bias](p Params, input []T, pw *PackedWeights, bias []B, output []T, batches int) {
	if !checkShape(len(input), len(pw.data), bias, len(output), batches, pw.depth, pw.outChannels) {
		return
	}
	BaseFullyConnectedPacked(p, input, pw, bias, output, batches, hwy.MaxLanes[int64]())
}

// BaseFullyConnectedPacked is the blocked strategy with an explicit lane
// batch width, which is also the output channel block size.
func BaseFullyConnectedPacked[T requant.Activation, B Bias](p Params, input []T, pw *PackedWeights, bias []B, output []T, batches, lanes int) {
	depth, outChannels := pw.depth, pw.outChannels
	if batches <= 0 || depth <= 0 || outChannels <= 0 || lanes <= 0 {
		return
	}
	lb := newLaneBlock(p, lanes)
	all := hwy.FirstN[int64](lanes, lanes)
	full := outChannels / lanes * lanes
	tail := hwy.FirstN[int64](lanes, outChannels-full)

	for b := range batches {
		in := input[b*depth : (b+1)*depth]
		out := output[b*outChannels : (b+1)*outChannels]

		var cb int
		for ; cb < full; cb += lanes {
			accumulateBlock(lb, in, pw, bias, cb, all, false)
			hwy.Store(lb.acc, lb.buf)
			requant.RequantizeTo(out[cb:cb+lanes], lb.buf, p.Requant)
		}

		// Tail block
		if cb < outChannels {
			n := outChannels - cb
			accumulateBlock(lb, in, pw, bias, cb, tail, true)
			hwy.Store(lb.acc, lb.buf)
			requant.RequantizeTo(out[cb:], lb.buf[:n], p.Requant)
		}
	}
}

// laneBlock holds the lane buffers of one blocked kernel call.
type laneBlock struct {
	zpIn int64
	zpF  hwy.Vec[int64]
	x    hwy.Vec[int64]
	w    hwy.Vec[int64]
	acc  hwy.Vec[int64]
	buf  []int64
}

func newLaneBlock(p Params, lanes int) *laneBlock {
	return &laneBlock{
		zpIn: int64(p.InputZeroPoint),
		zpF:  hwy.SetN(int64(p.FilterZeroPoint), lanes),
		x:    hwy.ZeroN[int64](lanes),
		w:    hwy.ZeroN[int64](lanes),
		acc:  hwy.ZeroN[int64](lanes),
		buf:  make([]int64, lanes),
	}
}

// accumulateBlock fills lb.acc with the accumulators of the output
// channels starting at cb for one input row. With masked set, only lanes in
// mask reach the sum; the weight loads of the others may cross into the
// next transposed row.
func accumulateBlock[T requant.Activation, B Bias](lb *laneBlock, in []T, pw *PackedWeights, bias []B, cb int, mask hwy.Mask[int64], masked bool) {
	outChannels := pw.outChannels
	hwy.SetTo(lb.acc, 0)

	for d, v := range in {
		xv := hwy.SetTo(lb.x, int64(v)+lb.zpIn)
		wv := hwy.AddTo(lb.w, hwy.PromoteLoadTo(lb.w, pw.data[d*outChannels+cb:]), lb.zpF)
		if masked {
			hwy.MaskedMulAddTo(lb.acc, mask, xv, wv)
		} else {
			hwy.MulAddTo(lb.acc, xv, wv)
		}
	}

	if bias != nil {
		bv := hwy.PromoteLoadTo(lb.w, bias[cb:])
		hwy.MaskedAddTo(lb.acc, mask, hwy.ShiftLeftTo(lb.w, bv, 1))
	}
}
