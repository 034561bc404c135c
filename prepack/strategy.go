// Copyright 2026 go-gemmpack Authors
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

package prepack

import "github.com/ajroetker/go-highway/hwy"

// Strategy is the hardware/datatype-specific rearrangement capability the
// planner is built around. OutWidth and KUnroll are the granularities the
// downstream micro-kernel requires along the X and K axes; PrepareB is
// the low-level copy routine for one planned block.
type Strategy[T hwy.Lanes] interface {
	// OutWidth is the panel width in output columns.
	OutWidth() int

	// KUnroll is the interleave depth along the reduction axis.
	KUnroll() int

	// PrepareB packs the source region [x0,xmax)×[k0,kmax) into dst.
	//
	// src addresses element (k, x) at src[k*ldb+x], or src[x*ldb+k] when
	// transpose is set. dst receives exactly
	// roundUp(xmax-x0, OutWidth) * roundUp(kmax-k0, KUnroll) elements:
	// strips of OutWidth columns, each strip interleaved in groups of
	// KUnroll reduction values per column. Lanes past xmax/kmax are
	// zero-filled so the micro-kernel can read full panels unconditionally.
	PrepareB(dst, src []T, ldb, x0, xmax, k0, kmax int, transpose bool)
}

// interleave is the built-in Strategy implementation: a scalar gather
// with zero padding, plus a contiguous hwy.Load/hwy.Store fast path for
// the row-major KUnroll==1 case.
type interleave[T hwy.Lanes] struct {
	outWidth int
	kUnroll  int
}

// NewInterleaveStrategy returns the built-in panel rearrangement with
// explicit geometry. Most callers should use StrategyFor, which picks the
// geometry registered for the element type; custom geometries exist for
// callers pairing the planner with their own micro-kernels.
func NewInterleaveStrategy[T hwy.Lanes](outWidth, kUnroll int) Strategy[T] {
	if outWidth <= 0 || kUnroll <= 0 {
		panic("prepack: strategy geometry must be positive")
	}
	return interleave[T]{outWidth: outWidth, kUnroll: kUnroll}
}

func (s interleave[T]) OutWidth() int { return s.outWidth }
func (s interleave[T]) KUnroll() int  { return s.kUnroll }

func (s interleave[T]) PrepareB(dst, src []T, ldb, x0, xmax, k0, kmax int, transpose bool) {
	xSize := roundUp(xmax-x0, s.outWidth)
	kSize := roundUp(kmax-k0, s.kUnroll)

	if !transpose && s.kUnroll == 1 {
		s.prepareRowMajorK1(dst[:xSize*kSize], src, ldb, x0, xmax, k0, kmax)
		return
	}

	var zero T
	di := 0
	for xs := x0; xs < x0+xSize; xs += s.outWidth {
		for ks := k0; ks < k0+kSize; ks += s.kUnroll {
			for xi := range s.outWidth {
				x := xs + xi
				for ki := range s.kUnroll {
					k := ks + ki
					if x < xmax && k < kmax {
						if transpose {
							dst[di] = src[x*ldb+k]
						} else {
							dst[di] = src[k*ldb+x]
						}
					} else {
						dst[di] = zero
					}
					di++
				}
			}
		}
	}
}

// prepareRowMajorK1 handles the KUnroll==1 row-major case, where each
// (strip, k) group in dst is a contiguous run of OutWidth elements taken
// from one source row. Full strips copy through SIMD vectors with a
// scalar tail; the clamped edge strip falls back to scalar with padding.
func (s interleave[T]) prepareRowMajorK1(dst, src []T, ldb, x0, xmax, k0, kmax int) {
	lanes := hwy.Zero[T]().NumLanes()

	var zero T
	di := 0
	for xs := x0; xs < xmax; xs += s.outWidth {
		if xs+s.outWidth <= xmax {
			for k := k0; k < kmax; k++ {
				row := k*ldb + xs
				var c int
				for c = 0; c+lanes <= s.outWidth; c += lanes {
					hwy.Store(hwy.Load(src[row+c:]), dst[di+c:])
				}
				for ; c < s.outWidth; c++ {
					dst[di+c] = src[row+c]
				}
				di += s.outWidth
			}
			continue
		}

		valid := xmax - xs
		for k := k0; k < kmax; k++ {
			row := k*ldb + xs
			for c := range valid {
				dst[di] = src[row+c]
				di++
			}
			for c := valid; c < s.outWidth; c++ {
				dst[di] = zero
				di++
			}
		}
	}
}
