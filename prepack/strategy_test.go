// Copyright 2026 go-gemmpack Authors. SPDX-License-Identifier: Apache-2.0

package prepack

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ajroetker/go-highway/hwy"
)

// TestInterleaveLayout pins the exact packed layout for a tiny case that
// can be written out by hand: 3 columns x 3 reduction rows, out width 2,
// k unroll 2. Strips of 2 columns, each column contributing 2 stacked k
// values, zero padded past the matrix edge.
func TestInterleaveLayout(t *testing.T) {
	strat := NewInterleaveStrategy[float32](2, 2)

	// src is 3x3 row-major (k rows of 3 columns):
	//   1 2 3
	//   4 5 6
	//   7 8 9
	src := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}

	dst := make([]float32, roundUp(3, 2)*roundUp(3, 2))
	strat.PrepareB(dst, src, 3, 0, 3, 0, 3, false)

	want := []float32{
		// strip x=0..1, k group 0..1: col0 k0,k1 | col1 k0,k1
		1, 4, 2, 5,
		// strip x=0..1, k group 2..3 (k=3 padded)
		7, 0, 8, 0,
		// strip x=2..3 (x=3 padded), k group 0..1
		3, 6, 0, 0,
		// strip x=2..3, k group 2..3
		9, 0, 0, 0,
	}
	if !reflect.DeepEqual(dst, want) {
		t.Fatalf("packed layout:\n got %v\nwant %v", dst, want)
	}
}

// TestRowMajorFastPath checks the SIMD-assisted KUnroll==1 path against
// the generic gather on geometries around the vector width.
func TestRowMajorFastPath(t *testing.T) {
	t.Logf("Dispatch level: %s", hwy.CurrentName())

	for _, outWidth := range []int{4, 8, 12, 24} {
		n, k := 2*outWidth+3, 9
		src := make([]float32, n*k)
		for i := range src {
			src[i] = float32(i + 1)
		}

		fast := make([]float32, roundUp(n, outWidth)*k)
		NewInterleaveStrategy[float32](outWidth, 1).PrepareB(fast, src, n, 0, n, 0, k, false)

		want := make([]float32, len(fast))
		referencePack(want, src, n, Workload{X0: 0, XMax: n, K0: 0, KMax: k}, outWidth, 1, false)

		if !reflect.DeepEqual(fast, want) {
			t.Errorf("out width %d: fast path differs from reference", outWidth)
		}
	}
}

// TestInterleavePartialBlock packs an interior block (not starting at the
// origin) and checks against the reference, transposed and not.
func TestInterleavePartialBlock(t *testing.T) {
	const outWidth, kUnroll = 4, 4
	n, k := 30, 22
	strat := NewInterleaveStrategy[float32](outWidth, kUnroll)

	for _, transpose := range []bool{false, true} {
		src := make([]float32, n*k)
		for i := range src {
			src[i] = float32(i%97) + 0.5
		}
		ldb := n
		if transpose {
			ldb = k
		}

		wl := Workload{X0: 8, XMax: 19, K0: 4, KMax: 22}
		size := roundUp(wl.XMax-wl.X0, outWidth) * roundUp(wl.KMax-wl.K0, kUnroll)
		dst := make([]float32, size)
		strat.PrepareB(dst, src, ldb, wl.X0, wl.XMax, wl.K0, wl.KMax, transpose)

		want := make([]float32, size)
		referencePack(want, src, ldb, wl, outWidth, kUnroll, transpose)
		if !reflect.DeepEqual(dst, want) {
			t.Errorf("transpose=%v: packed block differs from reference", transpose)
		}
	}
}

func TestBadGeometryPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-positive geometry")
		}
	}()
	NewInterleaveStrategy[float32](0, 1)
}

func TestStrategyForBaselineTypes(t *testing.T) {
	if _, err := StrategyFor[float32](false); err != nil {
		t.Errorf("float32: %v", err)
	}
	if _, err := StrategyFor[float64](false); err != nil {
		t.Errorf("float64: %v", err)
	}
	if _, err := StrategyFor[int8](false); err != nil {
		t.Errorf("int8: %v", err)
	}
	if _, err := StrategyFor[uint8](false); err != nil {
		t.Errorf("uint8: %v", err)
	}

	strat, err := StrategyFor[float32](false)
	if err != nil {
		t.Fatal(err)
	}
	if strat.OutWidth() <= 0 || strat.KUnroll() <= 0 {
		t.Fatalf("registered geometry not positive: %d, %d", strat.OutWidth(), strat.KUnroll())
	}
}

func TestStrategyForUnsupportedType(t *testing.T) {
	if _, err := StrategyFor[int16](false); err == nil {
		t.Fatal("expected error for unregistered element type")
	}
	if _, err := StrategyFor[float64](true); err == nil {
		t.Fatal("expected error for dot variant of float64")
	}
}

func TestRegisteredVariants(t *testing.T) {
	variants := RegisteredVariants()
	if len(variants) < 4 {
		t.Fatalf("expected at least the 4 baseline variants, got %v", variants)
	}
	var sawFloat32 bool
	for _, v := range variants {
		if strings.HasPrefix(v, "float32 ") {
			sawFloat32 = true
		}
	}
	if !sawFloat32 {
		t.Fatalf("float32 missing from registered variants: %v", variants)
	}
}

// TestInt8Packing exercises a non-float element type end to end with the
// deep-panel (4, 16) geometry registered for 8-bit integers.
func TestInt8Packing(t *testing.T) {
	strat, err := StrategyFor[int8](false)
	if err != nil {
		t.Fatal(err)
	}
	p := NewWithStrategy(strat)

	n, k := 10, 40
	src := NewBuffer[int8](n, k, 1)
	for i := range src.Data {
		src.Data[i] = int8(i % 127)
	}
	dst := &Buffer[int8]{}
	p.ConfigureWithBlockSizes(src, dst, false, BlockSizes{XBlock: 8, KBlock: 32})
	p.Run(p.Window())

	// Spot-check the first strip: column 0 of the first k-unroll group.
	for ki := range strat.KUnroll() {
		want := src.Data[ki*n]
		if dst.Data[ki] != want {
			t.Fatalf("dst[%d] = %d, want %d", ki, dst.Data[ki], want)
		}
	}
}
