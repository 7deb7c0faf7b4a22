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

package elementwise

import (
	"github.com/ajroetker/go-qnn/hwy"
	"github.com/ajroetker/go-qnn/hwy/contrib/requant"
)

// MulParams holds the quantization parameters of an elementwise product.
type MulParams struct {
	Input1ZeroPoint int32
	Input2ZeroPoint int32
	Requant         requant.Params
}

// Add computes out = clamp(in1 + in2, r) over batches rows of length elements.
//
// Panics if any slice holds fewer than batches*length elements.
func Add[T requant.Activation](in1, in2, out []T, batches, length int, r requant.ActivationRange) {
	if batches <= 0 || length <= 0 {
		return
	}
	n := batches * length
	if len(in1) < n || len(in2) < n {
		panic("input slice too small")
	}
	if len(out) < n {
		panic("output slice too small")
	}
	BaseAdd(in1, in2, out, batches, length, r, hwy.MaxLanes[T]())
}

// BaseAdd is Add with an explicit lane batch width.
func BaseAdd[T requant.Activation](in1, in2, out []T, batches, length int, r requant.ActivationRange, lanes int) {
	if batches <= 0 || length <= 0 || lanes <= 0 {
		return
	}
	lo := hwy.SetN(r.Min, lanes)
	hi := hwy.SetN(r.Max, lanes)
	va := hwy.ZeroN[int32](lanes)
	vc := hwy.ZeroN[int32](lanes)
	buf := make([]int32, lanes)

	for b := range batches {
		row := b * length
		a := in1[row : row+length]
		c := in2[row : row+length]
		o := out[row : row+length]

		var i int
		for ; i+lanes <= length; i += lanes {
			addBatch(a[i:i+lanes], c[i:i+lanes], o[i:i+lanes], va, vc, lo, hi, buf)
		}

		// Tail batch
		if i < length {
			addBatch(a[i:], c[i:], o[i:], va, vc, lo, hi, buf)
		}
	}
}

// addBatch handles len(o) <= len(buf) elements using va and vc as scratch.
func addBatch[T requant.Activation](a, c, o []T, va, vc, lo, hi hwy.Vec[int32], buf []int32) {
	sum := hwy.AddTo(va, hwy.PromoteLoadTo(va, a), hwy.PromoteLoadTo(vc, c))
	sum = hwy.ClampTo(va, sum, lo, hi)

	// Store to buffer and narrow int32 → T
	hwy.Store(sum, buf)
	for j := range o {
		o[j] = T(buf[j])
	}
}

// MulInt8 multiplies two int16 tensors of length elements into int8 output.
func MulInt8(in1, in2 []int16, out []int8, length int, p MulParams) {
	mul(in1, in2, out, length, p)
}

// MulInt16 multiplies two int16 tensors of length elements into int16 output.
func MulInt16(in1, in2 []int16, out []int16, length int, p MulParams) {
	mul(in1, in2, out, length, p)
}

// MulBatched applies the elementwise product to batches rows of length
// elements each. Rows are independent.
func MulBatched[T requant.Activation](in1, in2 []int16, out []T, batches, length int, p MulParams) {
	if batches <= 0 || length <= 0 {
		return
	}
	n := batches * length
	if len(in1) < n || len(in2) < n {
		panic("input slice too small")
	}
	if len(out) < n {
		panic("output slice too small")
	}
	lanes := hwy.MaxLanes[int16]()
	for b := range batches {
		row := b * length
		BaseMul(in1[row:row+length], in2[row:row+length], out[row:row+length], length, p, lanes)
	}
}

func mul[T requant.Activation](in1, in2 []int16, out []T, length int, p MulParams) {
	if length <= 0 {
		return
	}
	if len(in1) < length || len(in2) < length {
		panic("input slice too small")
	}
	if len(out) < length {
		panic("output slice too small")
	}
	BaseMul(in1, in2, out, length, p, hwy.MaxLanes[int16]())
}

// BaseMul is the elementwise product with an explicit lane batch width.
func BaseMul[T requant.Activation](in1, in2 []int16, out []T, length int, p MulParams, lanes int) {
	if length <= 0 || lanes <= 0 {
		return
	}
	zp1 := hwy.SetN(int64(p.Input1ZeroPoint), lanes)
	zp2 := hwy.SetN(int64(p.Input2ZeroPoint), lanes)
	va := hwy.ZeroN[int64](lanes)
	vc := hwy.ZeroN[int64](lanes)
	acc := make([]int64, lanes)

	var i int
	for ; i+lanes <= length; i += lanes {
		mulBatch(in1[i:i+lanes], in2[i:i+lanes], out[i:i+lanes], zp1, zp2, va, vc, acc, p.Requant)
	}

	// Tail batch
	if i < length {
		mulBatch(in1[i:length], in2[i:length], out[i:length], zp1, zp2, va, vc, acc, p.Requant)
	}
}

// mulBatch handles len(o) <= len(acc) elements using va and vc as scratch.
func mulBatch[T requant.Activation](a, c []int16, o []T, zp1, zp2, va, vc hwy.Vec[int64], acc []int64, p requant.Params) {
	x := hwy.AddTo(va, hwy.PromoteLoadTo(va, a), zp1)
	y := hwy.AddTo(vc, hwy.PromoteLoadTo(vc, c), zp2)
	hwy.Store(hwy.MulTo(va, x, y), acc)
	requant.RequantizeTo(o, acc[:len(o)], p)
}
