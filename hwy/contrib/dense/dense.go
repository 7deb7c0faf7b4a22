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

// Bias is the set of bias element types: int32 for 8-bit layers, int64 for
// 16-bit layers.
type Bias interface {
	~int32 | ~int64
}

// Params holds the quantization parameters of a fully-connected layer.
type Params struct {
	InputZeroPoint  int32
	FilterZeroPoint int32
	Requant         requant.Params
}

// FullyConnected computes output = requant(input x weights^T + 2*bias) using
// the direct strategy.
//
//   - input is batches x depth (row-major)
//   - weights is outChannels x depth (row-major)
//   - bias has outChannels elements, or is nil
//   - output is batches x outChannels (row-major)
func FullyConnected[T requant.Activation, B Bias](p Params, input []T, weights []int8, bias []B, output []T, batches, depth, outChannels int) {
	if !checkShape(len(input), len(weights), bias, len(output), batches, depth, outChannels) {
		return
	}
	BaseFullyConnected(p, input, weights, bias, output, batches, depth, outChannels, hwy.MaxLanes[int64]())
}

// BaseFullyConnected is FullyConnected with an explicit lane batch width.
func BaseFullyConnected[T requant.Activation, B Bias](p Params, input []T, weights []int8, bias []B, output []T, batches, depth, outChannels, lanes int) {
	if batches <= 0 || depth <= 0 || outChannels <= 0 || lanes <= 0 {
		return
	}
	zpIn := hwy.SetN(int64(p.InputZeroPoint), lanes)
	zpF := hwy.SetN(int64(p.FilterZeroPoint), lanes)
	full := depth / lanes * lanes
	tail := hwy.FirstN[int64](lanes, depth-full)

	// Lane buffers reused for every output.
	x := hwy.ZeroN[int64](lanes)
	y := hwy.ZeroN[int64](lanes)
	acc := hwy.ZeroN[int64](lanes)

	for b := range batches {
		// The tail batch may read into the next row; the mask drops those lanes.
		in := input[b*depth:]
		out := output[b*outChannels : (b+1)*outChannels]

		for c := range outChannels {
			w := weights[c*depth:]
			hwy.SetTo(acc, 0)

			var d int
			for ; d < full; d += lanes {
				xv := hwy.AddTo(x, hwy.PromoteLoadTo(x, in[d:]), zpIn)
				yv := hwy.AddTo(y, hwy.PromoteLoadTo(y, w[d:]), zpF)
				hwy.MulAddTo(acc, xv, yv)
			}

			if d < depth {
				xv := hwy.AddTo(x, hwy.PromoteLoadTo(x, in[d:]), zpIn)
				yv := hwy.AddTo(y, hwy.PromoteLoadTo(y, w[d:]), zpF)
				hwy.MaskedMulAddTo(acc, tail, xv, yv)
			}

			sum := hwy.ReduceSum(acc)
			if bias != nil {
				sum += int64(bias[c]) * 2
			}
			out[c] = T(requant.Requantize(sum, p.Requant))
		}
	}
}

// checkShape reports whether there is any work to do and panics when a
// slice is shorter than the declared shape.
func checkShape[B Bias](inputLen, weightsLen int, bias []B, outputLen, batches, depth, outChannels int) bool {
	if batches <= 0 || depth <= 0 || outChannels <= 0 {
		return false
	}
	if inputLen < batches*depth {
		panic("input slice too small")
	}
	if weightsLen < outChannels*depth {
		panic("weights slice too small")
	}
	if bias != nil && len(bias) < outChannels {
		panic("bias slice too small")
	}
	if outputLen < batches*outChannels {
		panic("output slice too small")
	}
	return true
}
