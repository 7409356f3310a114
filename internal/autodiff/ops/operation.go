// Package ops defines the differentiable operations recorded on the
// gradient tape.
//
// Each operation captures its inputs and output during the forward pass and
// computes input gradients from the output gradient during the backward
// pass (reverse-mode chain rule).
package ops

import "github.com/anchor-ml/anchor/internal/tensor"

// Operation is one node of the recorded computation graph.
type Operation interface {
	// Backward computes gradients for the inputs given the output gradient.
	// The returned slice matches Inputs() positionally; a nil entry means no
	// gradient flows to that input.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors of this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the tensor produced by this operation.
	Output() *tensor.RawTensor
}
