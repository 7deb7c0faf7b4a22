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

// Package elementwise provides quantized elementwise addition and
// multiplication over 8-bit and 16-bit tensors.
//
// # Core Functions
//
//   - Add(in1, in2, out, batches, length, r)        out = clamp(a + b, r)
//   - MulInt8(in1, in2, out, length, p)              int16 x int16 -> int8
//   - MulInt16(in1, in2, out, length, p)             int16 x int16 -> int16
//   - MulBatched(in1, in2, out, batches, length, p)  row-wise MulInt8/MulInt16
//
// # Addition
//
// Addition has no scale: both operands are widened, summed, clamped to the
// accumulation range and narrowed.
//
//	out[b,i] = clamp(int32(in1[b,i]) + int32(in2[b,i]), r.Min, r.Max)
//
// # Multiplication
//
// Multiplication applies each operand's zero point before the product and
// sends the product through the shared requantization pipeline:
//
//	acc    = (in1[i] + zp1) * (in2[i] + zp2)
//	out[i] = requant.Requantize(acc, p.Requant)
//
// # Lane Batches
//
// Each row is walked in full lane batches followed by one tail batch of
// length mod lanes elements. The Base functions take the batch width as a
// parameter; any width yields the same output.
package elementwise
