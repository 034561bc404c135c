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

// Command gemmpackinfo prints the CPU features, registered pretranspose
// strategies, and the blocking/buffer sizes chosen for sample problem
// shapes on this machine.
package main

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/cpu"

	"github.com/ajroetker/go-highway/hwy"

	"github.com/ajroetker/go-gemmpack/prepack"
)

func main() {
	fmt.Printf("GOOS: %s\n", runtime.GOOS)
	fmt.Printf("GOARCH: %s\n", runtime.GOARCH)
	fmt.Printf("NumCPU: %d\n", runtime.NumCPU())
	fmt.Println()

	fmt.Printf("Highway dispatch level: %s\n", hwy.CurrentLevel())
	fmt.Printf("Highway dispatch width: %d bytes\n", hwy.CurrentWidth())
	fmt.Println()

	switch runtime.GOARCH {
	case "arm64":
		fmt.Println("=== golang.org/x/sys/cpu.ARM64 ===")
		fmt.Printf("  HasASIMD:   %v (NEON baseline)\n", cpu.ARM64.HasASIMD)
		fmt.Printf("  HasASIMDDP: %v (SDOT/UDOT)\n", cpu.ARM64.HasASIMDDP)
		fmt.Printf("  HasASIMDHP: %v (FP16 NEON)\n", cpu.ARM64.HasASIMDHP)
		fmt.Printf("  HasSVE:     %v\n", cpu.ARM64.HasSVE)
	case "amd64":
		fmt.Println("=== golang.org/x/sys/cpu.X86 ===")
		fmt.Printf("  HasAVX2:        %v\n", cpu.X86.HasAVX2)
		fmt.Printf("  HasAVX512F:     %v\n", cpu.X86.HasAVX512F)
		fmt.Printf("  HasAVX512VNNI:  %v\n", cpu.X86.HasAVX512VNNI)
		fmt.Printf("  HasFMA:         %v\n", cpu.X86.HasFMA)
	}
	fmt.Println()

	fmt.Println("=== Registered strategies ===")
	for _, v := range prepack.RegisteredVariants() {
		fmt.Printf("  %s\n", v)
	}
	fmt.Println()

	ci := prepack.DetectCPU()
	fmt.Printf("=== Detected cache sizes: L1=%dKB L2=%dKB ===\n", ci.L1Size/1024, ci.L2Size/1024)

	strat, err := prepack.StrategyFor[float32](false)
	if err != nil {
		fmt.Printf("float32 strategy unavailable: %v\n", err)
		return
	}
	shapes := []prepack.Params{
		{M: 64, N: 64, K: 64},
		{M: 512, N: 512, K: 512},
		{M: 1024, N: 4096, K: 1024},
	}
	for _, params := range shapes {
		bs := prepack.CalculateBlockSizes(ci, params, strat)
		bytes := prepack.PackedSize(strat, params.N, params.K, bs)
		fmt.Printf("float32 %dx%dx%d: x_block=%d k_block=%d packed B=%d bytes\n",
			params.M, params.N, params.K, bs.XBlock, bs.KBlock, bytes)
	}
}
