// Package regularizers implements penalty terms over embedding or prototype
// matrices. A regularizer maps a [rows, dim] matrix to a scalar; losses add
// the scaled penalty to their objective.
//
// All penalties are built from recorded tensor operations, so gradients flow
// through them like any other part of the graph.
package regularizers

import "github.com/anchor-ml/anchor/internal/tensor"

// Regularizer computes a scalar penalty over a matrix, one row per vector.
type Regularizer[B tensor.Backend] interface {
	// Loss returns a single-element tensor holding the penalty.
	Loss(m *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]
}
