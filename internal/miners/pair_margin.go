package miners

import (
	"fmt"

	"github.com/ajroetker/go-highway/hwy/contrib/vec"

	"github.com/anchor-ml/anchor/internal/tensor"
)

// PairMargin mines pairs by cosine similarity thresholds:
//
//   - a positive pair is kept when its similarity falls below PosMargin
//     (a hard positive: same label but not yet close)
//   - a negative pair is kept when its similarity rises above NegMargin
//     (a hard negative: different labels but still close)
type PairMargin struct {
	PosMargin float32
	NegMargin float32
}

// NewPairMargin creates a PairMargin miner with the standard margins
// (positives below 0.8, negatives above 0.3).
func NewPairMargin() *PairMargin {
	return &PairMargin{PosMargin: 0.8, NegMargin: 0.3}
}

// Mine scans every ordered pair in the batch and returns the pairs that
// violate the margins. embeddings must be [batch, dim] float32; labels must
// be an int tensor of length batch.
func (m *PairMargin) Mine(embeddings, labels *tensor.RawTensor) *Indices {
	shape := embeddings.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("miners: embeddings must be 2D, got %v", shape))
	}
	batch, dim := shape[0], shape[1]

	classes := labelValues(labels)
	if len(classes) != batch {
		panic(fmt.Sprintf("miners: %d labels for batch of %d", len(classes), batch))
	}

	// Normalize rows once so pair similarity is a plain dot product.
	data := embeddings.AsFloat32()
	unit := make([]float32, len(data))
	for i := 0; i < batch; i++ {
		vec.BaseNormalizeTo(unit[i*dim:(i+1)*dim], data[i*dim:(i+1)*dim])
	}

	ix := &Indices{}
	for a := 0; a < batch; a++ {
		for b := 0; b < batch; b++ {
			if a == b {
				continue
			}
			sim := vec.BaseDot(unit[a*dim:(a+1)*dim], unit[b*dim:(b+1)*dim])
			if classes[a] == classes[b] {
				if sim < m.PosMargin {
					ix.AnchorPos = append(ix.AnchorPos, a)
					ix.Pos = append(ix.Pos, b)
				}
			} else if sim > m.NegMargin {
				ix.AnchorNeg = append(ix.AnchorNeg, a)
				ix.Neg = append(ix.Neg, b)
			}
		}
	}
	return ix
}

// labelValues reads integer labels into an []int64.
func labelValues(labels *tensor.RawTensor) []int64 {
	out := make([]int64, labels.NumElements())
	switch labels.DType() {
	case tensor.Int32:
		for i, v := range labels.AsInt32() {
			out[i] = int64(v)
		}
	case tensor.Int64:
		copy(out, labels.AsInt64())
	default:
		panic(fmt.Sprintf("miners: labels must be an int tensor, got %s", labels.DType()))
	}
	return out
}
