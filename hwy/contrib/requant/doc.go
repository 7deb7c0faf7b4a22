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

// Package requant converts wide integer accumulators into 8-bit or 16-bit
// quantized outputs.
//
// Every quantized kernel in this module ends with the same pipeline:
//
//	scaled  = acc * multiplier                 // 128-bit product
//	shifted = shift >= 0 ? scaled << shift     // saturating
//	                     : round(scaled >> -shift) // half away from zero
//	packed  = saturate_int32(shifted)
//	out     = clamp(packed + outputZeroPoint, min, max)
//
// followed by a truncating narrow to the output element width. The clamp
// range must already lie inside the output type's range; that is the
// caller's responsibility and is not re-checked here.
//
// # Multiplier Encoding
//
// The multiplier is applied as a plain integer, so a real scale s is encoded
// as a Q31 mantissa with the 31 fractional bits folded into the shift:
//
//	m, shift := requant.QuantizeMultiplier(0.25) // m = 1<<30, shift = -32
//
// An identity scale can be written either as (1, 0) or as (1<<30, -30).
//
// # Example Usage
//
//	import "github.com/ajroetker/go-qnn/hwy/contrib/requant"
//
//	m, shift := requant.QuantizeMultiplier(0.5)
//	p := requant.Params{
//	    Multiplier:      m,
//	    Shift:           shift,
//	    OutputZeroPoint: -3,
//	    Range:           requant.FullRange[int8](),
//	}
//	v := requant.Requantize(1001, p) // round(500.5) - 3 = 498 -> clamped to 127
package requant
