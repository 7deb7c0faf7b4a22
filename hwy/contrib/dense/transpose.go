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

// TransposeBlock is the number of source rows visited together by
// TransposeBlocked.
const TransposeBlock = 4

// TransposeBlocked writes the transpose of the m x n row-major matrix src
// into dst as an n x m row-major matrix: dst[j*m+i] = src[i*n+j].
//
// Applying TransposeBlocked to dst with m and n swapped restores src.
func TransposeBlocked[T any](src []T, m, n int, dst []T) {
	if m <= 0 || n <= 0 {
		return
	}
	if len(src) < m*n {
		panic("source slice too small")
	}
	if len(dst) < m*n {
		panic("destination slice too small")
	}
	BaseTransposeBlocked(src, m, n, dst, TransposeBlock)
}

// BaseTransposeBlocked is TransposeBlocked with an explicit row block size.
// The block size changes the traversal order only.
func BaseTransposeBlocked[T any](src []T, m, n int, dst []T, block int) {
	if m <= 0 || n <= 0 {
		return
	}
	block = max(block, 1)
	full := m / block * block

	// Full row blocks: each destination row receives block contiguous values.
	for i0 := 0; i0 < full; i0 += block {
		for j := range n {
			d := dst[j*m+i0 : j*m+i0+block]
			for r := range d {
				d[r] = src[(i0+r)*n+j]
			}
		}
	}

	// Partial final block of m mod block rows.
	if rem := m - full; rem > 0 {
		for j := range n {
			d := dst[j*m+full : j*m+m]
			for r := range rem {
				d[r] = src[(full+r)*n+j]
			}
		}
	}
}
