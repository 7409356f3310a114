package ops

import (
	"fmt"

	"github.com/anchor-ml/anchor/internal/tensor"
)

// ExpOp: output = exp(input).
// d(exp(x))/dx = exp(x), which is the forward output itself.
type ExpOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewExpOp creates an ExpOp.
func NewExpOp(input, output *tensor.RawTensor) *ExpOp {
	return &ExpOp{inputs: []*tensor.RawTensor{input}, output: output}
}

func (op *ExpOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, op.output)}
}

func (op *ExpOp) Inputs() []*tensor.RawTensor { return op.inputs }
func (op *ExpOp) Output() *tensor.RawTensor   { return op.output }

// LogOp: output = log(input).
// d(log(x))/dx = 1/x.
type LogOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewLogOp creates a LogOp.
func NewLogOp(input, output *tensor.RawTensor) *LogOp {
	return &LogOp{inputs: []*tensor.RawTensor{input}, output: output}
}

func (op *LogOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Div(outputGrad, op.inputs[0])}
}

func (op *LogOp) Inputs() []*tensor.RawTensor { return op.inputs }
func (op *LogOp) Output() *tensor.RawTensor   { return op.output }

// SqrtOp: output = sqrt(input).
// d(sqrt(x))/dx = 1/(2*sqrt(x)) = 1/(2*output).
type SqrtOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewSqrtOp creates a SqrtOp.
func NewSqrtOp(input, output *tensor.RawTensor) *SqrtOp {
	return &SqrtOp{inputs: []*tensor.RawTensor{input}, output: output}
}

func (op *SqrtOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	two := scalarOfDType(2, op.output.DType())
	denom := backend.MulScalar(op.output, two)
	return []*tensor.RawTensor{backend.Div(outputGrad, denom)}
}

func (op *SqrtOp) Inputs() []*tensor.RawTensor { return op.inputs }
func (op *SqrtOp) Output() *tensor.RawTensor   { return op.output }

// AbsOp: output = |input|.
// d|x|/dx = sign(x); the subgradient at 0 is taken to be 0.
type AbsOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewAbsOp creates an AbsOp.
func NewAbsOp(input, output *tensor.RawTensor) *AbsOp {
	return &AbsOp{inputs: []*tensor.RawTensor{input}, output: output}
}

func (op *AbsOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	input := op.inputs[0]
	grad, err := tensor.NewRaw(input.Shape(), input.DType(), input.Device())
	if err != nil {
		panic(fmt.Sprintf("ops: abs backward: %v", err))
	}

	switch input.DType() {
	case tensor.Float32:
		in, out, g := input.AsFloat32(), outputGrad.AsFloat32(), grad.AsFloat32()
		for i, v := range in {
			switch {
			case v > 0:
				g[i] = out[i]
			case v < 0:
				g[i] = -out[i]
			}
		}
	case tensor.Float64:
		in, out, g := input.AsFloat64(), outputGrad.AsFloat64(), grad.AsFloat64()
		for i, v := range in {
			switch {
			case v > 0:
				g[i] = out[i]
			case v < 0:
				g[i] = -out[i]
			}
		}
	default:
		panic("ops: abs backward requires a float tensor")
	}

	return []*tensor.RawTensor{grad}
}

func (op *AbsOp) Inputs() []*tensor.RawTensor { return op.inputs }
func (op *AbsOp) Output() *tensor.RawTensor   { return op.output }
