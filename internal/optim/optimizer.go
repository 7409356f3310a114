// Package optim implements optimization algorithms for training.
//
// Optimizers consume the gradient map produced by autodiff.Backward and
// update parameters in place:
//
//	optimizer := optim.NewSGD(params, optim.SGDConfig{LR: 0.01}, backend)
//	for step := 0; step < steps; step++ {
//	    loss := model.Forward(batch)
//	    grads := autodiff.Backward(loss, backend)
//	    optimizer.Step(grads)
//	    optimizer.ZeroGrad()
//	    backend.Tape().Clear()
//	}
package optim

import (
	"github.com/anchor-ml/anchor/internal/nn"
	"github.com/anchor-ml/anchor/internal/tensor"
)

// Optimizer is the base interface for optimization algorithms.
type Optimizer interface {
	// Step applies gradient updates to all parameters, consuming the
	// gradient map from autodiff.Backward.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// ZeroGrad clears all parameter gradients.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32
}

// getGradient looks up the gradient recorded for a parameter's tensor.
// Returns nil when the parameter never entered the computation graph.
func getGradient[B tensor.Backend](param *nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) *tensor.RawTensor {
	if param == nil {
		return nil
	}
	return grads[param.Tensor().Raw()]
}
