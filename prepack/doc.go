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

// Package prepack plans and executes the pretransposition of the B operand
// of a blocked GEMM into a cache-friendly interleaved panel layout.
//
// The B matrix is split into blocks of XBlock output columns by KBlock
// reduction rows, and each block is rearranged into strips of OutWidth
// columns interleaved in groups of KUnroll reduction values, the layout
// the register-blocked micro-kernels in go-highway's matmul packages
// consume. Blocks at the right/bottom edge of the matrix are clamped to
// the matrix bounds but their packed size is rounded back up to the
// strategy granularity, with the excess zero-padded.
//
// Planning and execution are separated so a caller can either materialize
// the full list of independent block workloads for explicit scheduling:
//
//	p, _ := prepack.New[float32](false)
//	p.Configure(src, dst, false, prepack.DetectCPU(), params)
//	for _, wl := range p.Workloads() {
//	    // hand wl to any worker, in any order
//	}
//
// or stream-execute a sub-range of the configured iteration window on a
// worker pool:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//	p.RunParallel(pool)
//
// Destination byte ranges of distinct workloads are disjoint by
// construction, so transforms may run concurrently without locking. The
// planning walk itself is sequential: destination offsets accumulate in
// the fixed batch-outermost, K, X-innermost order, and that order is what
// keeps PackedSize and the planner byte-exact consistent.
package prepack
