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

// Workload describes one independently executable unit of work: packing a
// single clamped block of B into its slot in the destination buffer.
// X0/K0 are the raw block starts; XMax/KMax are clamped to the matrix
// bounds. Offsets are in bytes. Destination ranges of distinct workloads
// never overlap, so workloads may execute concurrently in any order.
type Workload struct {
	SrcOffset int
	DstOffset int
	X0        int
	XMax      int
	K0        int
	KMax      int
}

// PackedSize returns the byte size of the packed destination for one
// batch plane of an n×k B operand under the given blocking.
//
// Each axis splits into full blocks plus one leftover region rounded up
// to the strategy granularity; the result is exactly the sum of the
// rounded block sizes the planner walks, which is the central consistency
// invariant between sizing and planning.
//
// Panics if the block sizes are not multiples of the strategy's OutWidth
// and KUnroll; that is a configuration error, never a runtime condition.
func PackedSize[T hwy.Lanes](strat Strategy[T], n, k int, bs BlockSizes) int {
	if bs.XBlock <= 0 || bs.XBlock%strat.OutWidth() != 0 {
		panic("prepack: XBlock is not a positive multiple of the strategy out width")
	}
	if bs.KBlock <= 0 || bs.KBlock%strat.KUnroll() != 0 {
		panic("prepack: KBlock is not a positive multiple of the strategy k unroll")
	}

	numFullK := k / bs.KBlock
	numFullX := n / bs.XBlock
	leftOverX := roundUp(n%bs.XBlock, strat.OutWidth())
	leftOverK := roundUp(k%bs.KBlock, strat.KUnroll())

	total := numFullK * bs.KBlock * (numFullX*bs.XBlock + leftOverX)
	total += leftOverK * (numFullX*bs.XBlock + leftOverX)
	return total * ElemSize[T]()
}

// PrepareB plans and executes the pretransposition of one B operand.
// An instance is configured once and is immutable afterwards; the
// resulting workloads may then be enumerated or executed any number of
// times and across any number of goroutines.
type PrepareB[T hwy.Lanes] struct {
	strat      Strategy[T]
	src        *Buffer[T]
	dst        *Buffer[T]
	transpose  bool
	nsize      int
	ksize      int
	multis     int
	blockSizes BlockSizes
	win        Window
	configured bool
}

// New returns an unconfigured planner using the strategy registered for
// element type T. dot selects the dot-product kernel variant.
func New[T hwy.Lanes](dot bool) (*PrepareB[T], error) {
	strat, err := StrategyFor[T](dot)
	if err != nil {
		return nil, err
	}
	return NewWithStrategy(strat), nil
}

// NewWithStrategy returns an unconfigured planner around an explicit
// rearrangement strategy.
func NewWithStrategy[T hwy.Lanes](strat Strategy[T]) *PrepareB[T] {
	return &PrepareB[T]{strat: strat}
}

// Configure derives block sizes for the problem, establishes the 3-D
// iteration window and, if dst has no shape yet, initializes it to a 1-D
// buffer of the packed size (times the batch count). A pre-shaped dst is
// honored as-is so buffers can be reused across calls.
//
// src must be shaped [n, k, batch]; when transpose is set src holds B
// column-major (x rows of k elements) under the same logical shape.
// Configure does not touch src or dst data. Calling it twice panics.
func (p *PrepareB[T]) Configure(src, dst *Buffer[T], transpose bool, ci CPUInfo, params Params) {
	p.ConfigureWithBlockSizes(src, dst, transpose, CalculateBlockSizes(ci, params, p.strat))
}

// ConfigureWithBlockSizes is Configure with the block-size selection
// already made, for callers whose blocking comes from elsewhere. The
// block sizes must be positive multiples of the strategy's OutWidth and
// KUnroll; anything else panics.
func (p *PrepareB[T]) ConfigureWithBlockSizes(src, dst *Buffer[T], transpose bool, bs BlockSizes) {
	if p.configured {
		panic("prepack: Configure called twice on the same PrepareB")
	}
	p.src = src
	p.dst = dst
	p.transpose = transpose
	p.nsize = src.Dim(0)
	p.ksize = src.Dim(1)
	p.multis = src.Dim(2)

	p.blockSizes = bs
	plane := PackedSize(p.strat, p.nsize, p.ksize, p.blockSizes)
	dst.initIfEmpty(plane * p.multis)

	p.win = Window{
		X:     Dimension{Start: 0, End: roundUp(p.nsize, p.blockSizes.XBlock), Step: p.blockSizes.XBlock},
		K:     Dimension{Start: 0, End: roundUp(p.ksize, p.blockSizes.KBlock), Step: p.blockSizes.KBlock},
		Batch: Dimension{Start: 0, End: p.multis, Step: 1},
	}
	p.configured = true
}

// BlockSizes returns the block sizes chosen at configuration.
func (p *PrepareB[T]) BlockSizes() BlockSizes {
	p.mustBeConfigured()
	return p.blockSizes
}

// Window returns the full configured iteration window.
func (p *PrepareB[T]) Window() Window {
	p.mustBeConfigured()
	return p.win
}

// Workloads materializes the full plan: one workload per block of the
// configured window, in planning order. Re-walking the same configuration
// always reproduces the identical sequence.
func (p *PrepareB[T]) Workloads() []Workload {
	p.mustBeConfigured()
	workloads := make([]Workload, 0, p.numBlocks())
	p.forEach(p.win, func(wl Workload) {
		workloads = append(workloads, wl)
	})
	return workloads
}

// Run plans and immediately transforms every block of win, which must be
// a sub-range of the configured window with identical step sizes.
// Distinct sub-windows write disjoint destination ranges, so concurrent
// Run calls on the same instance are safe.
func (p *PrepareB[T]) Run(win Window) {
	p.mustBeConfigured()
	p.win.checkSub(win)
	p.forEach(win, p.Transform)
}

// Transform applies the rearrangement strategy to one planned block,
// writing exactly the destination byte range the plan reserved for it.
func (p *PrepareB[T]) Transform(wl Workload) {
	es := ElemSize[T]()
	ldb := p.nsize
	if p.transpose {
		ldb = p.ksize
	}
	p.strat.PrepareB(p.dst.Data[wl.DstOffset/es:], p.src.Data[wl.SrcOffset/es:],
		ldb, wl.X0, wl.XMax, wl.K0, wl.KMax, p.transpose)
}

// forEach walks the FULL configured window in the fixed batch, K, X
// order, accumulating destination offsets block by block, and calls fn
// for every block that lies inside win. Offsets always derive from the
// full walk, never from the sub-window, so a block's destination is the
// same no matter how the domain is carved up across workers. Block sizes
// vary at the matrix edges, which is why offsets accumulate sequentially
// instead of being computed by a closed formula.
func (p *PrepareB[T]) forEach(win Window, fn func(Workload)) {
	es := ElemSize[T]()
	kUnroll := p.strat.KUnroll()
	outWidth := p.strat.OutWidth()
	full := p.win

	offset := 0
	for batch := full.Batch.Start; batch < full.Batch.End; batch += full.Batch.Step {
		srcOffset := batch * p.nsize * p.ksize * es
		for k0 := full.K.Start; k0 < full.K.End; k0 += full.K.Step {
			kmax := min(k0+full.K.Step, p.ksize)
			kSize := roundUp(kmax-k0, kUnroll)
			for x0 := full.X.Start; x0 < full.X.End; x0 += full.X.Step {
				xmax := min(x0+full.X.Step, p.nsize)
				xSize := roundUp(xmax-x0, outWidth)
				if win.contains(x0, k0, batch) {
					fn(Workload{
						SrcOffset: srcOffset,
						DstOffset: offset,
						X0:        x0,
						XMax:      xmax,
						K0:        k0,
						KMax:      kmax,
					})
				}
				offset += xSize * kSize * es
			}
		}
	}
}

func (p *PrepareB[T]) numBlocks() int {
	xCells := p.win.NumXCells()
	kCells := (p.win.K.End - p.win.K.Start + p.win.K.Step - 1) / p.win.K.Step
	return xCells * kCells * p.multis
}

func (p *PrepareB[T]) mustBeConfigured() {
	if !p.configured {
		panic("prepack: PrepareB used before Configure")
	}
}
