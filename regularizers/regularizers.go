// Copyright 2026 The Anchor Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package regularizers provides penalty terms over embedding or prototype
// matrices.
package regularizers

import (
	"github.com/anchor-ml/anchor/internal/regularizers"
	"github.com/anchor-ml/anchor/internal/tensor"
)

// Regularizer computes a scalar penalty over a matrix, one row per vector.
type Regularizer[B tensor.Backend] = regularizers.Regularizer[B]

// Lp penalizes the mean Lp norm of the rows of a matrix.
type Lp[B tensor.Backend] = regularizers.Lp[B]

// NewLp creates an Lp regularizer. Only p=1 and p=2 are supported.
func NewLp[B tensor.Backend](p int) (*Lp[B], error) {
	return regularizers.NewLp[B](p)
}

// ZeroMean penalizes rows whose components do not sum to zero.
type ZeroMean[B tensor.Backend] = regularizers.ZeroMean[B]

// NewZeroMean creates a ZeroMean regularizer.
func NewZeroMean[B tensor.Backend]() *ZeroMean[B] {
	return regularizers.NewZeroMean[B]()
}
