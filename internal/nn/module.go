// Package nn implements neural network building blocks: the Module
// interface, trainable Parameters, weight initializers, and a Linear layer
// used as a trunk for embedding models.
//
// Design inspired by PyTorch's nn.Module, adapted for Go generics.
package nn

import "github.com/anchor-ml/anchor/internal/tensor"

// Module is the base interface for neural network components.
//
// Modules compose to build architectures:
//
//	model := nn.NewSequential[B](
//	    nn.NewLinear(64, 32, backend),
//	    nn.NewLinear(32, 16, backend),
//	)
type Module[B tensor.Backend] interface {
	// Forward computes the module output. Input shape requirements depend
	// on the module; Linear expects [batch, inFeatures].
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters, including those of
	// nested modules. Modules without parameters return an empty slice.
	Parameters() []*Parameter[B]
}

// Sequential chains modules, feeding each output into the next.
type Sequential[B tensor.Backend] struct {
	modules []Module[B]
}

// NewSequential creates a Sequential container.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return &Sequential[B]{modules: modules}
}

// Forward runs the input through every module in order.
func (s *Sequential[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	out := input
	for _, m := range s.modules {
		out = m.Forward(out)
	}
	return out
}

// Parameters returns the parameters of all contained modules.
func (s *Sequential[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, m := range s.modules {
		params = append(params, m.Parameters()...)
	}
	return params
}
