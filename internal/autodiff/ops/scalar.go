package ops

import "github.com/anchor-ml/anchor/internal/tensor"

// ScaleOp: output = input * factor for a scalar factor.
// Covers MulScalar and DivScalar (the latter records 1/divisor).
type ScaleOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
	factor float64
}

// NewScaleOp creates a ScaleOp.
func NewScaleOp(input, output *tensor.RawTensor, factor float64) *ScaleOp {
	return &ScaleOp{inputs: []*tensor.RawTensor{input}, output: output, factor: factor}
}

func (op *ScaleOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	factor := scalarOfDType(op.factor, outputGrad.DType())
	return []*tensor.RawTensor{backend.MulScalar(outputGrad, factor)}
}

func (op *ScaleOp) Inputs() []*tensor.RawTensor { return op.inputs }
func (op *ScaleOp) Output() *tensor.RawTensor   { return op.output }

// ShiftOp: output = input + c (or input - c) for a scalar c.
// The shift is constant, so the gradient passes through unchanged.
type ShiftOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewShiftOp creates a ShiftOp.
func NewShiftOp(input, output *tensor.RawTensor) *ShiftOp {
	return &ShiftOp{inputs: []*tensor.RawTensor{input}, output: output}
}

func (op *ShiftOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{outputGrad.Clone()}
}

func (op *ShiftOp) Inputs() []*tensor.RawTensor { return op.inputs }
func (op *ShiftOp) Output() *tensor.RawTensor   { return op.output }
