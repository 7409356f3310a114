package losses

import (
	"fmt"

	"github.com/anchor-ml/anchor/internal/autodiff/ops"
	"github.com/anchor-ml/anchor/internal/miners"
	"github.com/anchor-ml/anchor/internal/nn"
	"github.com/anchor-ml/anchor/internal/regularizers"
	"github.com/anchor-ml/anchor/internal/tensor"
)

// DefaultTemperature is the softmax temperature used when none is
// configured. Small temperatures sharpen the distribution over classes.
const DefaultTemperature = 0.05

// NormalizedSoftmax classifies embeddings against learned class prototypes
// on the unit hypersphere.
//
// The prototype matrix W has shape [dim, numClasses]. Each column is
// L2-normalized, so the logit for class c is the cosine similarity between
// the embedding and prototype c, scaled by 1/temperature:
//
//	logits = (embeddings @ normalize(W, dim=0)) / temperature
//	loss   = mean(crossEntropy(logits, labels) * miningWeights)
//	       + regWeight * regularizer(Wᵀ)
//
// Cross-entropy is computed per sample, without reduction, so mined weights
// can scale each sample's contribution before the mean. The regularizer
// sees Wᵀ: one prototype per row.
//
// Reference: Zhai & Wu, "Classification is a Strong Baseline for Deep
// Metric Learning" (2019).
type NormalizedSoftmax[B tensor.Backend] struct {
	temperature float32
	weight      *nn.Parameter[B]
	regularizer regularizers.Regularizer[B]
	regWeight   float32
	backend     B
}

// Option configures a NormalizedSoftmax loss.
type Option[B tensor.Backend] func(*NormalizedSoftmax[B])

// WithTemperature sets the softmax temperature.
func WithTemperature[B tensor.Backend](t float32) Option[B] {
	return func(l *NormalizedSoftmax[B]) { l.temperature = t }
}

// WithRegularizer attaches a prototype regularizer scaled by regWeight.
func WithRegularizer[B tensor.Backend](r regularizers.Regularizer[B], regWeight float32) Option[B] {
	return func(l *NormalizedSoftmax[B]) {
		l.regularizer = r
		l.regWeight = regWeight
	}
}

// NewNormalizedSoftmax creates the loss with a [dim, numClasses] prototype
// matrix initialized from N(0, 1). Returns an error for non-positive sizes
// or temperature.
func NewNormalizedSoftmax[B tensor.Backend](dim, numClasses int, backend B, opts ...Option[B]) (*NormalizedSoftmax[B], error) {
	if dim <= 0 || numClasses <= 0 {
		return nil, fmt.Errorf("normalized softmax: dim and numClasses must be positive, got %d and %d", dim, numClasses)
	}

	l := &NormalizedSoftmax[B]{
		temperature: DefaultTemperature,
		weight:      nn.NewParameter("weight", nn.Randn(tensor.Shape{dim, numClasses}, backend)),
		backend:     backend,
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.temperature <= 0 {
		return nil, fmt.Errorf("normalized softmax: temperature must be positive, got %v", l.temperature)
	}
	return l, nil
}

// Forward computes the loss without mining: every sample weighs 1.
func (l *NormalizedSoftmax[B]) Forward(embeddings *tensor.Tensor[float32, B], labels *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	return l.ForwardMined(embeddings, labels, nil)
}

// ForwardMined computes the loss with per-sample weights derived from mined
// pair indices. A nil or empty Indices gives every sample weight 1.
func (l *NormalizedSoftmax[B]) ForwardMined(embeddings *tensor.Tensor[float32, B], labels *tensor.Tensor[int32, B], ix *miners.Indices) *tensor.Tensor[float32, B] {
	shape := embeddings.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("normalized softmax: embeddings must be 2D, got %v", shape))
	}
	batch, dim := shape[0], shape[1]
	if weightDim := l.weight.Tensor().Shape()[0]; dim != weightDim {
		panic(fmt.Sprintf("normalized softmax: embedding dim %d does not match prototype dim %d", dim, weightDim))
	}
	if labels.NumElements() != batch {
		panic(fmt.Sprintf("normalized softmax: %d labels for batch of %d", labels.NumElements(), batch))
	}

	// Cosine logits: unit-normalize each prototype column, then scale the
	// dot products by 1/temperature.
	normalized := l.weight.Tensor().Normalize(0)
	logits := embeddings.MatMul(normalized).DivScalar(l.temperature)

	perSample := l.crossEntropyPerSample(logits, labels)

	miningWeights := miners.ConvertToWeights(ix, batch)
	weighted := perSample.Mul(l.weightTensor(miningWeights)).Mean()

	if l.regularizer == nil || l.regWeight == 0 {
		return weighted
	}
	penalty := l.regularizer.Loss(l.weight.Tensor().T()).MulScalar(l.regWeight)
	return weighted.Add(penalty)
}

// Parameters returns the prototype matrix for optimization.
func (l *NormalizedSoftmax[B]) Parameters() []*nn.Parameter[B] {
	return []*nn.Parameter[B]{l.weight}
}

// Weight returns the prototype parameter.
func (l *NormalizedSoftmax[B]) Weight() *nn.Parameter[B] { return l.weight }

// Temperature returns the configured softmax temperature.
func (l *NormalizedSoftmax[B]) Temperature() float32 { return l.temperature }

// crossEntropyPerSample returns one loss value per sample, shape [batch].
// Autodiff-aware backends record the operation on the tape; other backends
// fall back to a direct forward computation.
func (l *NormalizedSoftmax[B]) crossEntropyPerSample(logits *tensor.Tensor[float32, B], labels *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	type crossEntropyBackend interface {
		CrossEntropyPerSample(logits, targets *tensor.RawTensor) *tensor.RawTensor
	}

	if adBackend, ok := any(l.backend).(crossEntropyBackend); ok {
		raw := adBackend.CrossEntropyPerSample(logits.Raw(), labels.Raw())
		return tensor.New[float32, B](raw, l.backend)
	}

	raw, _ := ops.CrossEntropyForward(logits.Raw(), labels.Raw(), l.backend.Device())
	return tensor.New[float32, B](raw, l.backend)
}

func (l *NormalizedSoftmax[B]) weightTensor(weights []float32) *tensor.Tensor[float32, B] {
	t, err := tensor.FromSlice(weights, tensor.Shape{len(weights)}, l.backend)
	if err != nil {
		panic(fmt.Sprintf("normalized softmax: mining weights: %v", err))
	}
	return t
}
