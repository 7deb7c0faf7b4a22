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

// Package hwy is the portable lane core used by the quantized kernels.
//
// A Vec holds one lane batch of elements. The number of lanes for an element
// type follows the dispatch width detected at startup (16, 32 or 64 bytes),
// so int16 vectors carry twice as many lanes as int32 vectors. Kernels are
// written as "full lane batches, then one bounded tail batch", and every
// operation here has exact scalar semantics: the lane count changes the
// traversal, never the result.
//
// # Configuration
//
//   - QNN_NO_SIMD=1 forces the scalar level with 16-byte batches.
//   - QNN_LANE_BYTES=16|32|64 overrides the detected batch width.
package hwy

import (
	"os"
	"strconv"
	"unsafe"
)

// Lanes is the set of element types a Vec can hold.
type Lanes interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// SignedInts is the set of signed integer lane types.
type SignedInts interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// Vec is one lane batch. In this portable implementation it wraps a slice
// whose length is the number of active lanes.
type Vec[T Lanes] struct {
	data []T
}

// NumLanes returns the number of active lanes in v.
func (v Vec[T]) NumLanes() int {
	return len(v.data)
}

// Mask selects lanes of a Vec.
type Mask[T Lanes] struct {
	bits []bool
}

// DispatchLevel identifies the instruction set tier chosen at startup.
type DispatchLevel int

const (
	DispatchScalar DispatchLevel = iota
	DispatchSSE2
	DispatchAVX2
	DispatchAVX512
	DispatchNEON
	DispatchSVE
)

func (l DispatchLevel) String() string {
	switch l {
	case DispatchScalar:
		return "scalar"
	case DispatchSSE2:
		return "sse2"
	case DispatchAVX2:
		return "avx2"
	case DispatchAVX512:
		return "avx512"
	case DispatchNEON:
		return "neon"
	case DispatchSVE:
		return "sve"
	default:
		return "unknown"
	}
}

var (
	currentLevel DispatchLevel
	currentWidth int
	currentName  string
)

// CurrentLevel returns the dispatch level detected at startup.
func CurrentLevel() DispatchLevel {
	return currentLevel
}

// CurrentWidth returns the lane batch width in bytes.
func CurrentWidth() int {
	return currentWidth
}

// CurrentName returns a short name for the dispatch level.
func CurrentName() string {
	return currentName
}

// MaxLanes returns the number of lanes of type T in one batch.
func MaxLanes[T Lanes]() int {
	var zero T
	n := currentWidth / int(unsafe.Sizeof(zero))
	if n < 1 {
		return 1
	}
	return n
}

// NoSimdEnv reports whether QNN_NO_SIMD is set to a true value.
func NoSimdEnv() bool {
	v, ok := os.LookupEnv("QNN_NO_SIMD")
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		// Any non-empty, non-boolean value counts as set.
		return v != ""
	}
	return b
}

// laneBytesEnv returns the QNN_LANE_BYTES override, or 0 when unset or
// not one of the supported widths.
func laneBytesEnv() int {
	v := os.Getenv("QNN_LANE_BYTES")
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	switch n {
	case 16, 32, 64:
		return n
	}
	return 0
}

func setScalarMode() {
	currentLevel = DispatchScalar
	currentWidth = 16 // Use 16-byte vectors even in scalar mode for consistency
	currentName = "scalar"
}

func init() {
	if NoSimdEnv() {
		setScalarMode()
	} else {
		detectCPUFeatures()
	}
	if n := laneBytesEnv(); n != 0 {
		currentWidth = n
	}
}
