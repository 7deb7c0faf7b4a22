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

package requant

import (
	"math"
	"math/bits"
	"unsafe"
)

// Activation is the set of quantized activation element types.
type Activation interface {
	~int8 | ~int16
}

// ActivationRange is an inclusive clamp applied after the output zero point
// is added. It implements fused saturating activations such as ReLU6.
type ActivationRange struct {
	Min int32
	Max int32
}

// Valid reports whether Min <= Max.
func (r ActivationRange) Valid() bool {
	return r.Min <= r.Max
}

// FullRange returns the representable range of T.
func FullRange[T Activation]() ActivationRange {
	var zero T
	width := 8 * int(unsafe.Sizeof(zero))
	return ActivationRange{
		Min: int32(-1) << (width - 1),
		Max: int32(1)<<(width-1) - 1,
	}
}

// Params holds the per-tensor requantization parameters.
//
// Shift keeps its sign convention: a non-negative Shift is a saturating
// left shift, a negative Shift is a rounding right shift by -Shift bits.
type Params struct {
	Multiplier      uint32
	Shift           int32
	OutputZeroPoint int32
	Range           ActivationRange
}

// Requantize maps one accumulator to an output value in [p.Range.Min, p.Range.Max].
func Requantize(acc int64, p Params) int32 {
	v := int64(ScaleShift(acc, p.Multiplier, p.Shift)) + int64(p.OutputZeroPoint)
	v = min(v, int64(p.Range.Max))
	v = max(v, int64(p.Range.Min))
	return int32(v)
}

// RequantizeTo requantizes min(len(dst), len(acc)) accumulators and narrows
// each result to T by truncation.
func RequantizeTo[T Activation](dst []T, acc []int64, p Params) {
	n := min(len(dst), len(acc))
	for i := 0; i < n; i++ {
		dst[i] = T(Requantize(acc[i], p))
	}
}

// ScaleShift computes saturate_int32(roundingShift(acc*multiplier, shift)).
//
// The product is formed exactly in 128 bits as a sign and a magnitude, so
// rounding the magnitude half up gives round-half-away-from-zero on the
// signed value.
func ScaleShift(acc int64, multiplier uint32, shift int32) int32 {
	neg := acc < 0
	mag := uint64(acc)
	if neg {
		mag = -mag
	}
	hi, lo := bits.Mul64(mag, uint64(multiplier))
	if hi == 0 && lo == 0 {
		return 0
	}

	limit := uint64(math.MaxInt32)
	if neg {
		limit++ // |MinInt32|
	}

	if shift >= 0 {
		if hi != 0 || shift >= 64 || lo > limit>>uint(shift) {
			return saturated(neg)
		}
		lo <<= uint(shift)
	} else {
		hi, lo = roundingShiftRight(hi, lo, uint(-int64(shift)))
		if hi != 0 || lo > limit {
			return saturated(neg)
		}
	}

	if neg {
		return int32(-int64(lo))
	}
	return int32(lo)
}

func saturated(neg bool) int32 {
	if neg {
		return math.MinInt32
	}
	return math.MaxInt32
}

// roundingShiftRight returns (hi:lo + 2^(n-1)) >> n for n >= 1.
// The sum cannot carry out of 128 bits because the magnitude of an
// int64*uint32 product is below 2^96.
func roundingShiftRight(hi, lo uint64, n uint) (uint64, uint64) {
	if n >= 128 {
		return 0, 0
	}
	var carry uint64
	if n-1 < 64 {
		lo, carry = bits.Add64(lo, 1<<(n-1), 0)
		hi += carry
	} else {
		hi += 1 << (n - 1 - 64)
	}
	switch {
	case n < 64:
		return hi >> n, lo>>n | hi<<(64-n)
	case n == 64:
		return 0, hi
	default:
		return 0, hi >> (n - 64)
	}
}

// QuantizeMultiplier encodes a non-negative real scale as a multiplier and
// shift for this pipeline. The multiplier is a Q31 mantissa in [2^30, 2^31)
// and the returned shift already includes the -31 for its fractional bits.
// Zero, negative and non-finite scales encode as (0, 0).
func QuantizeMultiplier(scale float64) (uint32, int32) {
	if !(scale > 0) || math.IsInf(scale, 0) {
		return 0, 0
	}
	frac, exp := math.Frexp(scale)
	q := int64(math.Round(frac * (1 << 31)))
	if q == 1<<31 {
		q /= 2
		exp++
	}
	return uint32(q), int32(exp - 31)
}
