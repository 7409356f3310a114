package ops

import (
	"fmt"

	"github.com/anchor-ml/anchor/internal/tensor"
)

// SumOp: output = sum over all elements, shape [1].
// Backward broadcasts the scalar gradient over the input shape.
type SumOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewSumOp creates a SumOp.
func NewSumOp(input, output *tensor.RawTensor) *SumOp {
	return &SumOp{inputs: []*tensor.RawTensor{input}, output: output}
}

func (op *SumOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	input := op.inputs[0]
	grad := backend.Mul(onesLike(input), outputGrad)
	return []*tensor.RawTensor{grad}
}

func (op *SumOp) Inputs() []*tensor.RawTensor { return op.inputs }
func (op *SumOp) Output() *tensor.RawTensor   { return op.output }

// MeanOp: output = mean over all elements, shape [1].
// Backward spreads outputGrad/N over the input shape.
type MeanOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewMeanOp creates a MeanOp.
func NewMeanOp(input, output *tensor.RawTensor) *MeanOp {
	return &MeanOp{inputs: []*tensor.RawTensor{input}, output: output}
}

func (op *MeanOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	input := op.inputs[0]
	n := float64(input.Shape().NumElements())
	scale := scalarOfDType(1/n, input.DType())

	grad := backend.Mul(onesLike(input), backend.MulScalar(outputGrad, scale))
	return []*tensor.RawTensor{grad}
}

func (op *MeanOp) Inputs() []*tensor.RawTensor { return op.inputs }
func (op *MeanOp) Output() *tensor.RawTensor   { return op.output }

// SumDimOp: output = sum(input, dim).
// Backward expands the gradient back over the reduced dimension.
type SumDimOp struct {
	inputs  []*tensor.RawTensor
	output  *tensor.RawTensor
	dim     int
	keepDim bool
}

// NewSumDimOp creates a SumDimOp. dim must already be normalized to
// a non-negative index.
func NewSumDimOp(input, output *tensor.RawTensor, dim int, keepDim bool) *SumDimOp {
	return &SumDimOp{inputs: []*tensor.RawTensor{input}, output: output, dim: dim, keepDim: keepDim}
}

func (op *SumDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{expandDim(outputGrad, op.inputs[0].Shape(), op.dim, op.keepDim, backend)}
}

func (op *SumDimOp) Inputs() []*tensor.RawTensor { return op.inputs }
func (op *SumDimOp) Output() *tensor.RawTensor   { return op.output }

// MeanDimOp: output = mean(input, dim).
// Backward expands outputGrad/n over the reduced dimension.
type MeanDimOp struct {
	inputs  []*tensor.RawTensor
	output  *tensor.RawTensor
	dim     int
	keepDim bool
}

// NewMeanDimOp creates a MeanDimOp. dim must already be normalized.
func NewMeanDimOp(input, output *tensor.RawTensor, dim int, keepDim bool) *MeanDimOp {
	return &MeanDimOp{inputs: []*tensor.RawTensor{input}, output: output, dim: dim, keepDim: keepDim}
}

func (op *MeanDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	input := op.inputs[0]
	n := float64(input.Shape()[op.dim])
	scale := scalarOfDType(1/n, input.DType())

	scaled := backend.MulScalar(outputGrad, scale)
	return []*tensor.RawTensor{expandDim(scaled, input.Shape(), op.dim, op.keepDim, backend)}
}

func (op *MeanDimOp) Inputs() []*tensor.RawTensor { return op.inputs }
func (op *MeanDimOp) Output() *tensor.RawTensor   { return op.output }

// expandDim broadcasts grad (with dim reduced, optionally kept as size 1)
// back to targetShape.
func expandDim(grad *tensor.RawTensor, targetShape tensor.Shape, dim int, keepDim bool, backend tensor.Backend) *tensor.RawTensor {
	keepShape := targetShape.Clone()
	keepShape[dim] = 1
	reshaped := grad
	if !keepDim {
		reshaped = backend.Reshape(grad, keepShape)
	}

	ones, err := tensor.NewRaw(targetShape, grad.DType(), grad.Device())
	if err != nil {
		panic(fmt.Sprintf("ops: expandDim: %v", err))
	}
	fillFloat(ones, 1)
	return backend.Mul(reshaped, ones)
}
