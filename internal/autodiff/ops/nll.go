package ops

import (
	"fmt"
	"math"

	"github.com/anchor-ml/anchor/internal/tensor"
)

// CrossEntropyOp: per-sample cross-entropy between logits [batch, classes]
// and integer class targets [batch]. The output keeps shape [batch]; callers
// apply their own weighting and reduction.
//
// Backward uses the cached softmax:
//
//	grad_logits[b,i] = outputGrad[b] * (softmax[b,i] - 1{i == target[b]})
//
// Targets are class indices and receive no gradient.
type CrossEntropyOp struct {
	inputs  []*tensor.RawTensor
	output  *tensor.RawTensor
	softmax *tensor.RawTensor
}

// NewCrossEntropyOp creates a CrossEntropyOp. softmax is the row-wise
// softmax of the logits computed during the forward pass.
func NewCrossEntropyOp(logits, targets, output, softmax *tensor.RawTensor) *CrossEntropyOp {
	return &CrossEntropyOp{
		inputs:  []*tensor.RawTensor{logits, targets},
		output:  output,
		softmax: softmax,
	}
}

func (op *CrossEntropyOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	logits, targets := op.inputs[0], op.inputs[1]
	batch := logits.Shape()[0]
	classes := logits.Shape()[1]

	grad, err := tensor.NewRaw(logits.Shape(), logits.DType(), logits.Device())
	if err != nil {
		panic(fmt.Sprintf("ops: cross-entropy backward: %v", err))
	}

	idx := targetIndices(targets)

	switch logits.DType() {
	case tensor.Float32:
		sm, out, g := op.softmax.AsFloat32(), outputGrad.AsFloat32(), grad.AsFloat32()
		for b := 0; b < batch; b++ {
			row := b * classes
			for i := 0; i < classes; i++ {
				g[row+i] = out[b] * sm[row+i]
			}
			g[row+idx[b]] -= out[b]
		}
	case tensor.Float64:
		sm, out, g := op.softmax.AsFloat64(), outputGrad.AsFloat64(), grad.AsFloat64()
		for b := 0; b < batch; b++ {
			row := b * classes
			for i := 0; i < classes; i++ {
				g[row+i] = out[b] * sm[row+i]
			}
			g[row+idx[b]] -= out[b]
		}
	default:
		panic("ops: cross-entropy backward requires float logits")
	}

	return []*tensor.RawTensor{grad, nil}
}

func (op *CrossEntropyOp) Inputs() []*tensor.RawTensor { return op.inputs }
func (op *CrossEntropyOp) Output() *tensor.RawTensor   { return op.output }

// CrossEntropyForward computes per-sample cross-entropy losses.
//
// For each row b of logits:
//
//	loss[b] = log(Σ_i exp(logits[b,i] - max_b)) - (logits[b,target_b] - max_b)
//
// The max shift keeps exp from overflowing. Returns the loss vector [batch]
// and the row-wise softmax, which the backward pass reuses.
func CrossEntropyForward(logits, targets *tensor.RawTensor, device tensor.Device) (loss, softmax *tensor.RawTensor) {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("ops: cross-entropy requires 2D logits, got %v", shape))
	}
	batch, classes := shape[0], shape[1]

	idx := targetIndices(targets)
	if len(idx) != batch {
		panic(fmt.Sprintf("ops: targets length %d does not match batch %d", len(idx), batch))
	}

	loss, err := tensor.NewRaw(tensor.Shape{batch}, logits.DType(), device)
	if err != nil {
		panic(fmt.Sprintf("ops: cross-entropy forward: %v", err))
	}
	softmax, err = tensor.NewRaw(logits.Shape(), logits.DType(), device)
	if err != nil {
		panic(fmt.Sprintf("ops: cross-entropy forward: %v", err))
	}

	switch logits.DType() {
	case tensor.Float32:
		crossEntropyRows(logits.AsFloat32(), loss.AsFloat32(), softmax.AsFloat32(), idx, batch, classes)
	case tensor.Float64:
		crossEntropyRows(logits.AsFloat64(), loss.AsFloat64(), softmax.AsFloat64(), idx, batch, classes)
	default:
		panic("ops: cross-entropy requires float logits")
	}

	return loss, softmax
}

func crossEntropyRows[T float32 | float64](logits, loss, softmax []T, idx []int, batch, classes int) {
	for b := 0; b < batch; b++ {
		if idx[b] < 0 || idx[b] >= classes {
			panic(fmt.Sprintf("ops: target %d out of range [0,%d)", idx[b], classes))
		}
		row := logits[b*classes : (b+1)*classes]

		maxVal := row[0]
		for _, v := range row[1:] {
			if v > maxVal {
				maxVal = v
			}
		}

		var sumExp float64
		smRow := softmax[b*classes : (b+1)*classes]
		for i, v := range row {
			e := math.Exp(float64(v - maxVal))
			smRow[i] = T(e)
			sumExp += e
		}
		for i := range smRow {
			smRow[i] = T(float64(smRow[i]) / sumExp)
		}

		loss[b] = T(math.Log(sumExp)) - (row[idx[b]] - maxVal)
	}
}

// targetIndices reads integer class targets into an []int.
func targetIndices(targets *tensor.RawTensor) []int {
	idx := make([]int, targets.NumElements())
	switch targets.DType() {
	case tensor.Int32:
		for i, v := range targets.AsInt32() {
			idx[i] = int(v)
		}
	case tensor.Int64:
		for i, v := range targets.AsInt64() {
			idx[i] = int(v)
		}
	default:
		panic(fmt.Sprintf("ops: targets must be an int tensor, got %s", targets.DType()))
	}
	return idx
}
