// Copyright 2026 go-gemmpack Authors. SPDX-License-Identifier: Apache-2.0

package prepack

// Dimension is one axis of an iteration window: the half-open range
// [Start, End) walked in increments of Step.
type Dimension struct {
	Start int
	End   int
	Step  int
}

// Window is the 3-D iteration domain of a pretranspose plan: output
// columns (X), reduction rows (K) and the batch index. Iteration order is
// fixed (batch outermost, then K, then X innermost) because destination
// offsets accumulate in that order.
type Window struct {
	X     Dimension
	K     Dimension
	Batch Dimension
}

// NumXCells returns the number of X-axis cells in the window.
func (w Window) NumXCells() int {
	if w.X.Step <= 0 {
		return 0
	}
	return (w.X.End - w.X.Start + w.X.Step - 1) / w.X.Step
}

// SubX returns a copy of w restricted to the X cells [first, last).
// Cell indices are relative to w.X.Start.
func (w Window) SubX(first, last int) Window {
	sub := w
	sub.X.Start = w.X.Start + first*w.X.Step
	sub.X.End = min(w.X.Start+last*w.X.Step, w.X.End)
	return sub
}

// contains reports whether the cell starting at (x0, k0, batch) lies
// inside the window. Steps are assumed to match; callers validate with
// checkSub first.
func (w Window) contains(x0, k0, batch int) bool {
	return x0 >= w.X.Start && x0 < w.X.End &&
		k0 >= w.K.Start && k0 < w.K.End &&
		batch >= w.Batch.Start && batch < w.Batch.End
}

// checkSub panics unless sub is a sub-range of w with identical step
// sizes and cell-aligned bounds. A mismatched sub-window would silently
// desynchronize destination offsets, so this is a fatal precondition.
func (w Window) checkSub(sub Window) {
	if sub.X.Step != w.X.Step || sub.K.Step != w.K.Step || sub.Batch.Step != w.Batch.Step {
		panic("prepack: sub-window step sizes do not match configured window")
	}
	if sub.X.Start < w.X.Start || sub.X.End > w.X.End ||
		sub.K.Start < w.K.Start || sub.K.End > w.K.End ||
		sub.Batch.Start < w.Batch.Start || sub.Batch.End > w.Batch.End {
		panic("prepack: sub-window exceeds configured window")
	}
	if (sub.X.Start-w.X.Start)%w.X.Step != 0 || (sub.K.Start-w.K.Start)%w.K.Step != 0 {
		panic("prepack: sub-window start not aligned to configured block grid")
	}
}
