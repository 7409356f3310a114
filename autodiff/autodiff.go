// Copyright 2026 The Anchor Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation.
//
// Wrap any backend to record operations on a gradient tape:
//
//	base := cpu.New()
//	backend := autodiff.New(base)
//	backend.Tape().StartRecording()
//
//	x := tensor.Randn[float32](tensor.Shape{4, 8}, backend)
//	y := x.Mul(x).Sum()
//
//	grads := autodiff.Backward(y, backend)
package autodiff

import (
	"github.com/anchor-ml/anchor/internal/autodiff"
	"github.com/anchor-ml/anchor/internal/tensor"
)

// Backend is the autodiff-enabled backend decorator.
type Backend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// New creates an autodiff backend wrapping the given backend.
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates an empty gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// BackwardCapable is implemented by backends that can run a backward pass.
type BackwardCapable = autodiff.BackwardCapable

// Backward seeds the output gradient with ones and walks the tape,
// returning gradients keyed by RawTensor identity.
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	return autodiff.Backward(t, backend)
}
