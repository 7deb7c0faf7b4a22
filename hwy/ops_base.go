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


package hwy

// This file provides pure Go implementations of the lane operations used by
// the quantized kernels. Constructors allocate; every other operation writes
// into a destination vector so that kernel inner loops reuse a fixed set of
// lane buffers. Binary operations cover as many lanes as the shortest
// operand and return the destination resliced to that count, which is what
// lets a tail batch flow through the same code as a full batch.

// Store writes a vector's data to a slice.
func Store[T Lanes](v Vec[T], dst []T) {
	n := len(v.data)
	if len(dst) < n {
		n = len(dst)
	}
	copy(dst[:n], v.data[:n])
}

// SetN creates a vector of n lanes all set to value.
func SetN[T Lanes](value T, n int) Vec[T] {
	return SetTo(Vec[T]{data: make([]T, n)}, value)
}

// ZeroN creates a zero vector of n lanes.
func ZeroN[T Lanes](n int) Vec[T] {
	return Vec[T]{data: make([]T, n)}
}

// SetTo sets every lane of dst to value and returns dst.
func SetTo[T Lanes](dst Vec[T], value T) Vec[T] {
	for i := range dst.data {
		dst.data[i] = value
	}
	return dst
}

// PromoteLoadTo loads min(len(dst), len(src)) lanes of T into dst,
// sign-extending each one to the wider lane type W.
func PromoteLoadTo[W, T SignedInts](dst Vec[W], src []T) Vec[W] {
	n := min(len(dst.data), len(src))
	d := dst.data[:n]
	for i := range d {
		d[i] = W(src[i])
	}
	return Vec[W]{data: d}
}

// AddTo stores a + b in dst. dst may alias a or b.
func AddTo[T Lanes](dst, a, b Vec[T]) Vec[T] {
	n := min(len(dst.data), len(a.data), len(b.data))
	d := dst.data[:n]
	for i := range d {
		d[i] = a.data[i] + b.data[i]
	}
	return Vec[T]{data: d}
}

// MulTo stores a * b in dst. dst may alias a or b.
func MulTo[T Lanes](dst, a, b Vec[T]) Vec[T] {
	n := min(len(dst.data), len(a.data), len(b.data))
	d := dst.data[:n]
	for i := range d {
		d[i] = a.data[i] * b.data[i]
	}
	return Vec[T]{data: d}
}

// MulAddTo accumulates x * y into acc and returns acc.
func MulAddTo[T Lanes](acc, x, y Vec[T]) Vec[T] {
	n := min(len(acc.data), len(x.data), len(y.data))
	for i := 0; i < n; i++ {
		acc.data[i] += x.data[i] * y.data[i]
	}
	return acc
}

// MaskedMulAddTo accumulates x * y into the lanes of acc selected by mask.
// Unselected lanes of x and y are never read into the sum.
func MaskedMulAddTo[T Lanes](acc Vec[T], mask Mask[T], x, y Vec[T]) Vec[T] {
	n := min(len(acc.data), len(mask.bits), len(x.data), len(y.data))
	for i := 0; i < n; i++ {
		if mask.bits[i] {
			acc.data[i] += x.data[i] * y.data[i]
		}
	}
	return acc
}

// ShiftLeftTo stores v << bits in dst.
func ShiftLeftTo[T SignedInts](dst, v Vec[T], bits int) Vec[T] {
	n := min(len(dst.data), len(v.data))
	d := dst.data[:n]
	for i := range d {
		d[i] = v.data[i] << bits
	}
	return Vec[T]{data: d}
}

// ClampTo bounds each lane of v to [lo, hi] and stores the result in dst.
// The upper bound is applied first.
func ClampTo[T Lanes](dst, v, lo, hi Vec[T]) Vec[T] {
	n := min(len(dst.data), len(v.data), len(lo.data), len(hi.data))
	d := dst.data[:n]
	for i := range d {
		x := v.data[i]
		if hi.data[i] < x {
			x = hi.data[i]
		}
		if lo.data[i] > x {
			x = lo.data[i]
		}
		d[i] = x
	}
	return Vec[T]{data: d}
}

// ReduceSum sums all lanes.
func ReduceSum[T Lanes](v Vec[T]) T {
	var sum T
	for i := 0; i < len(v.data); i++ {
		sum += v.data[i]
	}
	return sum
}

// FirstN returns a mask of the given lane count with the first n lanes set.
func FirstN[T Lanes](lanes, n int) Mask[T] {
	bits := make([]bool, lanes)
	for i := 0; i < lanes && i < n; i++ {
		bits[i] = true
	}
	return Mask[T]{bits: bits}
}

// MaskedAddTo adds the lanes of v selected by mask into acc and returns acc.
func MaskedAddTo[T Lanes](acc Vec[T], mask Mask[T], v Vec[T]) Vec[T] {
	n := min(len(acc.data), len(mask.bits), len(v.data))
	for i := 0; i < n; i++ {
		if mask.bits[i] {
			acc.data[i] += v.data[i]
		}
	}
	return acc
}
