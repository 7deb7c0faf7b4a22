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
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-qnn/hwy/contrib/requant"
)

// testLanes covers widths below, at and above every dispatch width.
var testLanes = []int{1, 2, 3, 4, 5, 8, 16, 32}

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func randInt16s(rng *rand.Rand, n int) []int16 {
	s := make([]int16, n)
	for i := range s {
		s[i] = int16(rng.Intn(1<<16) - 1<<15)
	}
	return s
}

func randInt8s(rng *rand.Rand, n int) []int8 {
	s := make([]int8, n)
	for i := range s {
		s[i] = int8(rng.Intn(256) - 128)
	}
	return s
}

// referenceAdd is the element-at-a-time formula.
func referenceAdd[T requant.Activation](in1, in2 []T, r requant.ActivationRange) []T {
	out := make([]T, len(in1))
	for i := range in1 {
		v := int32(in1[i]) + int32(in2[i])
		v = min(v, r.Max)
		v = max(v, r.Min)
		out[i] = T(v)
	}
	return out
}

// referenceMul is the element-at-a-time formula.
func referenceMul[T requant.Activation](in1, in2 []int16, p MulParams) []T {
	out := make([]T, len(in1))
	for i := range in1 {
		acc := (int64(in1[i]) + int64(p.Input1ZeroPoint)) * (int64(in2[i]) + int64(p.Input2ZeroPoint))
		out[i] = T(requant.Requantize(acc, p.Requant))
	}
	return out
}

func TestAddSaturates(t *testing.T) {
	r := requant.FullRange[int8]()

	out := make([]int16, 1)
	Add([]int16{100}, []int16{50}, out, 1, 1, r)
	assert.Equal(t, []int16{127}, out)

	Add([]int16{-100}, []int16{-50}, out, 1, 1, r)
	assert.Equal(t, []int16{-128}, out)

	Add([]int16{-100}, []int16{50}, out, 1, 1, r)
	assert.Equal(t, []int16{-50}, out)
}

func TestAddInt16FullRange(t *testing.T) {
	in1 := []int16{32767, -32768, 1000, -1}
	in2 := []int16{1, -1, -3000, 1}
	out := make([]int16, len(in1))
	Add(in1, in2, out, 2, 2, requant.FullRange[int16]())
	assert.Equal(t, []int16{32767, -32768, -2000, 0}, out)
}

func TestBaseAddMatchesReference(t *testing.T) {
	rng := testRNG()
	r := requant.ActivationRange{Min: -20000, Max: 15000}

	for _, batches := range []int{1, 2, 3} {
		for length := 1; length <= 70; length++ {
			in1 := randInt16s(rng, batches*length)
			in2 := randInt16s(rng, batches*length)
			want := referenceAdd(in1, in2, r)

			for _, lanes := range testLanes {
				got := make([]int16, batches*length)
				BaseAdd(in1, in2, got, batches, length, r, lanes)
				if diff := cmp.Diff(want, got); diff != "" {
					t.Fatalf("batches=%d length=%d lanes=%d (-want +got):\n%s", batches, length, lanes, diff)
				}
			}
		}
	}
}

func TestAddInt8(t *testing.T) {
	rng := testRNG()
	r := requant.FullRange[int8]()
	for length := 1; length <= 40; length++ {
		in1 := randInt8s(rng, 2*length)
		in2 := randInt8s(rng, 2*length)
		got := make([]int8, 2*length)
		Add(in1, in2, got, 2, length, r)
		require.Equal(t, referenceAdd(in1, in2, r), got, "length=%d", length)
	}
}

// TestAddTailIndependent checks that the full-batch prefix and the tail
// produce the same values when processed as two separate calls.
func TestAddTailIndependent(t *testing.T) {
	rng := testRNG()
	r := requant.FullRange[int16]()

	for _, lanes := range []int{4, 8, 16} {
		for k := 1; k <= 4*lanes+3; k++ {
			in1 := randInt16s(rng, k)
			in2 := randInt16s(rng, k)

			whole := make([]int16, k)
			BaseAdd(in1, in2, whole, 1, k, r, lanes)

			split := make([]int16, k)
			full := k / lanes * lanes
			if full > 0 {
				BaseAdd(in1[:full], in2[:full], split[:full], 1, full, r, lanes)
			}
			if k > full {
				BaseAdd(in1[full:], in2[full:], split[full:], 1, k-full, r, lanes)
			}
			require.Equal(t, whole, split, "lanes=%d k=%d", lanes, k)
		}
	}
}

func TestAddLeavesTrailingOutput(t *testing.T) {
	out := []int16{7, 7, 7, 7, 7}
	Add([]int16{1, 2, 3}, []int16{1, 1, 1}, out, 1, 3, requant.FullRange[int16]())
	assert.Equal(t, []int16{2, 3, 4, 7, 7}, out)
}

func TestAddPanicsOnShortSlices(t *testing.T) {
	r := requant.FullRange[int16]()
	assert.Panics(t, func() {
		Add(make([]int16, 4), make([]int16, 4), make([]int16, 3), 2, 2, r)
	})
	assert.Panics(t, func() {
		Add(make([]int16, 3), make([]int16, 4), make([]int16, 4), 2, 2, r)
	})
	assert.NotPanics(t, func() {
		Add[int16](nil, nil, nil, 0, 5, r)
	})
}

func TestMulIdentityScale(t *testing.T) {
	p := MulParams{Requant: requant.Params{Multiplier: 1, Shift: 0, Range: requant.FullRange[int8]()}}

	out := make([]int8, 1)
	MulInt8([]int16{10}, []int16{10}, out, 1, p)
	assert.Equal(t, []int8{100}, out)

	// The same scale in Q31 form.
	m, shift := requant.QuantizeMultiplier(1.0)
	p.Requant.Multiplier, p.Requant.Shift = m, shift
	MulInt8([]int16{10}, []int16{10}, out, 1, p)
	assert.Equal(t, []int8{100}, out)

	MulInt8([]int16{12}, []int16{11}, out, 1, p)
	assert.Equal(t, []int8{127}, out)

	p.Requant.Range = requant.ActivationRange{Min: -128, Max: 50}
	MulInt8([]int16{10}, []int16{10}, out, 1, p)
	assert.Equal(t, []int8{50}, out)
}

func TestMulZeroPoints(t *testing.T) {
	p := MulParams{
		Input1ZeroPoint: 3,
		Input2ZeroPoint: -2,
		Requant:         requant.Params{Multiplier: 1, Shift: -1, OutputZeroPoint: 10, Range: requant.FullRange[int16]()},
	}
	out := make([]int16, 3)
	MulInt16([]int16{1, -3, 7}, []int16{5, 100, 1}, out, 3, p)
	// (1+3)*(5-2)=12 -> 6+10; (-3+3)*98=0 -> 0+10; (7+3)*(1-2)=-10 -> -5+10
	assert.Equal(t, []int16{16, 10, 5}, out)
}

func TestBaseMulMatchesReference(t *testing.T) {
	rng := testRNG()

	for length := 1; length <= 70; length++ {
		in1 := randInt16s(rng, length)
		in2 := randInt16s(rng, length)
		m, shift := requant.QuantizeMultiplier(rng.Float64() * 1e-3)
		p := MulParams{
			Input1ZeroPoint: int32(rng.Intn(256) - 128),
			Input2ZeroPoint: int32(rng.Intn(256) - 128),
			Requant: requant.Params{
				Multiplier:      m,
				Shift:           shift,
				OutputZeroPoint: int32(rng.Intn(20) - 10),
			},
		}

		p.Requant.Range = requant.FullRange[int8]()
		want8 := referenceMul[int8](in1, in2, p)
		p16 := p
		p16.Requant.Range = requant.FullRange[int16]()
		want16 := referenceMul[int16](in1, in2, p16)

		for _, lanes := range testLanes {
			got8 := make([]int8, length)
			BaseMul(in1, in2, got8, length, p, lanes)
			if diff := cmp.Diff(want8, got8); diff != "" {
				t.Fatalf("int8 length=%d lanes=%d (-want +got):\n%s", length, lanes, diff)
			}

			got16 := make([]int16, length)
			BaseMul(in1, in2, got16, length, p16, lanes)
			if diff := cmp.Diff(want16, got16); diff != "" {
				t.Fatalf("int16 length=%d lanes=%d (-want +got):\n%s", length, lanes, diff)
			}
		}
	}
}

func TestMulTailIndependent(t *testing.T) {
	rng := testRNG()
	m, shift := requant.QuantizeMultiplier(1.0 / 300)
	p := MulParams{
		Input1ZeroPoint: 5,
		Input2ZeroPoint: -7,
		Requant:         requant.Params{Multiplier: m, Shift: shift, Range: requant.FullRange[int8]()},
	}

	for _, lanes := range []int{8, 16} {
		for k := 1; k <= 3*lanes+5; k++ {
			in1 := randInt16s(rng, k)
			in2 := randInt16s(rng, k)

			whole := make([]int8, k)
			BaseMul(in1, in2, whole, k, p, lanes)

			split := make([]int8, k)
			full := k / lanes * lanes
			BaseMul(in1[:full], in2[:full], split[:full], full, p, lanes)
			BaseMul(in1[full:], in2[full:], split[full:], k-full, p, lanes)
			require.Equal(t, whole, split, "lanes=%d k=%d", lanes, k)
		}
	}
}

func TestMulBatched(t *testing.T) {
	rng := testRNG()
	batches, length := 3, 21
	in1 := randInt16s(rng, batches*length)
	in2 := randInt16s(rng, batches*length)
	m, shift := requant.QuantizeMultiplier(0.002)
	p := MulParams{Input1ZeroPoint: 1, Input2ZeroPoint: 2, Requant: requant.Params{Multiplier: m, Shift: shift, Range: requant.FullRange[int16]()}}

	got := make([]int16, batches*length)
	MulBatched(in1, in2, got, batches, length, p)

	for b := range batches {
		row := make([]int16, length)
		MulInt16(in1[b*length:], in2[b*length:], row, length, p)
		assert.Equal(t, row, got[b*length:(b+1)*length], "batch %d", b)
	}
}

func TestMulPanicsOnShortSlices(t *testing.T) {
	var p MulParams
	assert.Panics(t, func() { MulInt8(make([]int16, 4), make([]int16, 4), make([]int8, 3), 4, p) })
	assert.Panics(t, func() { MulInt16(make([]int16, 4), make([]int16, 2), make([]int16, 4), 4, p) })
	assert.Panics(t, func() { MulBatched(make([]int16, 6), make([]int16, 6), make([]int8, 5), 2, 3, p) })
}

func TestAllocationsIndependentOfLength(t *testing.T) {
	rng := testRNG()
	r := requant.FullRange[int16]()
	m, shift := requant.QuantizeMultiplier(1.0 / 512)
	p := MulParams{Requant: requant.Params{Multiplier: m, Shift: shift, Range: requant.FullRange[int8]()}}

	allocs := func(length int) (add, mul float64) {
		in1 := randInt16s(rng, length)
		in2 := randInt16s(rng, length)
		sum := make([]int16, length)
		prod := make([]int8, length)
		add = testing.AllocsPerRun(20, func() { BaseAdd(in1, in2, sum, 1, length, r, 8) })
		mul = testing.AllocsPerRun(20, func() { BaseMul(in1, in2, prod, length, p, 8) })
		return add, mul
	}

	shortAdd, shortMul := allocs(13)
	longAdd, longMul := allocs(4099)
	assert.Equal(t, shortAdd, longAdd)
	assert.Equal(t, shortMul, longMul)
}

func BenchmarkAdd(b *testing.B) {
	rng := testRNG()
	r := requant.FullRange[int16]()
	for _, length := range []int{64, 1000, 4096} {
		in1 := randInt16s(rng, length)
		in2 := randInt16s(rng, length)
		out := make([]int16, length)
		b.Run(fmt.Sprintf("len_%d", length), func(b *testing.B) {
			b.SetBytes(int64(2 * length))
			for range b.N {
				Add(in1, in2, out, 1, length, r)
			}
		})
	}
}

func BenchmarkMulInt8(b *testing.B) {
	rng := testRNG()
	m, shift := requant.QuantizeMultiplier(1.0 / 512)
	p := MulParams{Requant: requant.Params{Multiplier: m, Shift: shift, Range: requant.FullRange[int8]()}}
	for _, length := range []int{64, 1000, 4096} {
		in1 := randInt16s(rng, length)
		in2 := randInt16s(rng, length)
		out := make([]int8, length)
		b.Run(fmt.Sprintf("len_%d", length), func(b *testing.B) {
			b.SetBytes(int64(length))
			for range b.N {
				MulInt8(in1, in2, out, length, p)
			}
		})
	}
}
