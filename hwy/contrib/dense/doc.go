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

// Package dense provides quantized fully-connected kernels.
//
// A fully-connected layer maps an input of shape [batches, depth] through a
// weight matrix of shape [outChannels, depth] to an output of shape
// [batches, outChannels]:
//
//	acc(b, c) = sum_d (input[b,d] + InputZeroPoint) * (weight[c,d] + FilterZeroPoint)
//	acc(b, c) += bias[c] * 2
//	output[b, c] = requant.Requantize(acc(b, c), Requant)
//
// Bias values arrive already scaled by one extra bit relative to the
// accumulator, so they are doubled and never rescaled. A nil bias adds zero.
//
// Two strategies produce bit-identical output:
//
//   - Direct (FullyConnected): one pass over the input row per output
//     channel, walking depth in lane batches with a masked final batch.
//   - Blocked (FullyConnectedBlocked, FullyConnectedPacked): weights are
//     transposed to [depth, outChannels] and each pass over the input row
//     accumulates a whole lane batch of output channels.
//
// # Core Functions
//
//   - FullyConnected: direct strategy
//   - FullyConnectedBlocked: blocked strategy, transposing weights per call
//   - PackWeights / FullyConnectedPacked: blocked strategy with caller-cached weights
//   - FullyConnectedInt8 / FullyConnectedInt16: typed entry points bound to
//     the strategy named by QNN_FC_STRATEGY (direct or blocked)
//   - ParallelFullyConnected: distributes batch rows over a worker pool
//   - TransposeBlocked: row-blocked matrix transpose
//
// # Example Usage
//
//	m, shift := requant.QuantizeMultiplier(inScale * wScale / outScale)
//	p := dense.Params{
//	    InputZeroPoint:  -inZero,
//	    FilterZeroPoint: -wZero,
//	    Requant: requant.Params{
//	        Multiplier:      m,
//	        Shift:           shift,
//	        OutputZeroPoint: outZero,
//	        Range:           requant.FullRange[int8](),
//	    },
//	}
//	packed := dense.PackWeights(weights, outChannels, depth)
//	dense.FullyConnectedPacked(p, input, packed, bias, output, batches)
//
// Slices shorter than the declared shape cause a panic.
package dense
