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

import (
	"runtime"

	"golang.org/x/sys/cpu"

	"github.com/ajroetker/go-highway/hwy"
)

// Params are the logical GEMM problem dimensions: C(M×N) = A(M×K) × B(K×N).
type Params struct {
	M int
	N int
	K int
}

// BlockSizes are the cache-blocking extents along the output-column (X)
// and reduction (K) axes. Both are always positive multiples of the
// strategy's OutWidth and KUnroll respectively.
type BlockSizes struct {
	XBlock int
	KBlock int
}

// CPUInfo carries the machine parameters the block-size selector uses.
type CPUInfo struct {
	// L1Size and L2Size are per-core data cache sizes in bytes.
	L1Size int
	L2Size int
}

// Default cache sizes when nothing better is known. 32KB L1 / 256KB L2
// is the common baseline for both recent x86 and ARM cores.
const (
	defaultL1Size = 32 * 1024
	defaultL2Size = 256 * 1024
)

// DetectCPU returns a CPUInfo estimate for the current machine. Go gives
// no portable cache-size query, so this keys rough class estimates off
// the feature flags: AVX-512 parts are server-class with 1MB+ L2.
func DetectCPU() CPUInfo {
	ci := CPUInfo{L1Size: defaultL1Size, L2Size: defaultL2Size}
	if runtime.GOARCH == "amd64" && cpu.X86.HasAVX512F {
		ci.L2Size = 1024 * 1024
	}
	if runtime.GOARCH == "arm64" && cpu.ARM64.HasSVE {
		ci.L2Size = 512 * 1024
	}
	return ci
}

// CalculateBlockSizes picks cache-blocking extents for a problem.
//
// KBlock targets half the L1 cache for a KBlock×OutWidth packed strip
// plus the matching A strip; XBlock then fills the L2 cache with one
// KBlock-deep panel of B. Both results are rounded to the strategy's
// granularity and clamped so a block never exceeds the (rounded) matrix,
// keeping the PackedSize preconditions true by construction.
func CalculateBlockSizes[T hwy.Lanes](ci CPUInfo, params Params, strat Strategy[T]) BlockSizes {
	es := ElemSize[T]()
	outWidth := strat.OutWidth()
	kUnroll := strat.KUnroll()

	kBlock := ci.L1Size / (es * outWidth * 2)
	kBlock = max(kBlock, kUnroll)
	kBlock -= kBlock % kUnroll
	if rounded := roundUp(params.K, kUnroll); rounded > 0 && kBlock > rounded {
		kBlock = rounded
	}

	xBlock := ci.L2Size / (es * kBlock)
	xBlock = max(xBlock, outWidth)
	xBlock -= xBlock % outWidth
	if rounded := roundUp(params.N, outWidth); rounded > 0 && xBlock > rounded {
		xBlock = rounded
	}

	return BlockSizes{XBlock: xBlock, KBlock: kBlock}
}

// roundUp returns v rounded up to the next multiple of m.
func roundUp(v, m int) int {
	return (v + m - 1) / m * m
}
