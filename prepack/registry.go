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
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sys/cpu"

	"github.com/ajroetker/go-highway/hwy"
)

// geometry is the (OutWidth, KUnroll) pair registered for one element
// type and variant. The values mirror the interleaved kernel shapes the
// arm_gemm-style micro-kernels use: wide single-row panels for float
// types, deep narrow panels for 8-bit integers, and a 12×4 shape for the
// dot-product variants.
type geometry struct {
	outWidth int
	kUnroll  int
}

type registryKey struct {
	dtype string
	dot   bool
}

// registry maps (element type, dot variant) to the panel geometry
// supported on this machine. Populated once at startup from the detected
// CPU features; absence of a key is a configuration-time error, not a
// compile-time omission.
var registry = map[registryKey]geometry{}

func init() {
	// Baseline types, always available.
	registry[registryKey{"float32", false}] = geometry{12, 1}
	registry[registryKey{"float64", false}] = geometry{8, 1}
	registry[registryKey{"int8", false}] = geometry{4, 16}
	registry[registryKey{"uint8", false}] = geometry{4, 16}

	// Dot-product variants need SDOT/UDOT (arm64) or AVX-512 VNNI.
	if (runtime.GOARCH == "arm64" && cpu.ARM64.HasASIMDDP) ||
		(runtime.GOARCH == "amd64" && cpu.X86.HasAVX512VNNI) {
		registry[registryKey{"int8", true}] = geometry{12, 4}
		registry[registryKey{"uint8", true}] = geometry{12, 4}
	}

	// Half precision when the hardware can at least convert it.
	if hwy.HasARMFP16() || hwy.HasF16C() {
		registry[registryKey{"float16", false}] = geometry{24, 1}
	}
}

// dtypeName maps T to its registry name. Types outside the closed set of
// supported element types return their Go type name, which will miss the
// registry and surface as a lookup error.
func dtypeName[T hwy.Lanes]() string {
	var z T
	switch any(z).(type) {
	case float32:
		return "float32"
	case float64:
		return "float64"
	case int8:
		return "int8"
	case uint8:
		return "uint8"
	case hwy.Float16:
		return "float16"
	default:
		return fmt.Sprintf("%T", z)
	}
}

// StrategyFor returns the registered rearrangement strategy for element
// type T, optionally the dot-product variant. It fails when the type or
// variant has no kernel on this machine.
func StrategyFor[T hwy.Lanes](dot bool) (Strategy[T], error) {
	name := dtypeName[T]()
	geo, ok := registry[registryKey{dtype: name, dot: dot}]
	if !ok {
		if dot {
			return nil, fmt.Errorf("prepack: no dot-product strategy registered for %s on this CPU", name)
		}
		return nil, fmt.Errorf("prepack: no strategy registered for %s", name)
	}
	return interleave[T]{outWidth: geo.outWidth, kUnroll: geo.kUnroll}, nil
}

// RegisteredVariants lists the (type, variant) strategies available on
// this machine, sorted, for diagnostics.
func RegisteredVariants() []string {
	out := make([]string, 0, len(registry))
	for key, geo := range registry {
		name := key.dtype
		if key.dot {
			name += "(dot)"
		}
		out = append(out, fmt.Sprintf("%s out_width=%d k_unroll=%d", name, geo.outWidth, geo.kUnroll))
	}
	slices.Sort(out)
	return out
}
