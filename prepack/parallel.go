// Copyright 2026 go-gemmpack Authors. SPDX-License-Identifier: Apache-2.0

package prepack

import "github.com/ajroetker/go-highway/hwy/contrib/workerpool"

// RunParallel executes the full configured plan on a worker pool,
// splitting the window along the X axis into per-worker cell ranges.
// Every sub-window keeps the configured step sizes, and the blocks of
// distinct sub-windows write disjoint destination ranges, so no
// synchronization beyond the pool's own join is needed.
//
// Planning inside each worker walks the full window (cheap: pure index
// arithmetic) so that every block lands at its global offset regardless
// of which worker packs it.
func (p *PrepareB[T]) RunParallel(pool workerpool.Executor) {
	p.mustBeConfigured()

	cells := p.win.NumXCells()
	if cells <= 1 {
		p.Run(p.win)
		return
	}
	pool.ParallelFor(cells, func(start, end int) {
		p.Run(p.win.SubX(start, end))
	})
}
