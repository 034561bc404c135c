// Copyright 2026 go-gemmpack Authors. SPDX-License-Identifier: Apache-2.0

package prepack

import (
	"unsafe"

	"github.com/ajroetker/go-highway/hwy"
)

// Buffer is a flat, byte-addressable tensor of elements T with a logical
// shape. The B operand uses shape [n, k, batch] with the X axis (output
// columns) contiguous; the packed destination is a plain 1-D buffer
// addressed purely by byte offset.
type Buffer[T hwy.Lanes] struct {
	Data  []T
	Shape []int
}

// NewBuffer allocates a buffer with the given logical shape.
func NewBuffer[T hwy.Lanes](shape ...int) *Buffer[T] {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return &Buffer[T]{Data: make([]T, n), Shape: shape}
}

// ElemSize returns the size of one element of T in bytes.
func ElemSize[T hwy.Lanes]() int {
	var z T
	return int(unsafe.Sizeof(z))
}

// Empty reports whether the buffer has no established shape yet.
func (b *Buffer[T]) Empty() bool {
	return len(b.Shape) == 0
}

// Bytes returns the buffer's total size in bytes.
func (b *Buffer[T]) Bytes() int {
	return len(b.Data) * ElemSize[T]()
}

// Dim returns the extent of axis i, or 1 if the shape has fewer axes.
func (b *Buffer[T]) Dim(i int) int {
	if i >= len(b.Shape) {
		return 1
	}
	return b.Shape[i]
}

// initIfEmpty establishes a 1-D shape of totalBytes if the buffer has no
// shape yet. A pre-sized buffer is honored as-is so callers can reuse one
// destination across configurations; it only needs to be large enough.
func (b *Buffer[T]) initIfEmpty(totalBytes int) {
	if !b.Empty() {
		if b.Bytes() < totalBytes {
			panic("prepack: destination buffer smaller than packed size")
		}
		return
	}
	n := (totalBytes + ElemSize[T]() - 1) / ElemSize[T]()
	b.Data = make([]T, n)
	b.Shape = []int{n}
}
