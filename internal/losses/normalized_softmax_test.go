package losses_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchor-ml/anchor/internal/autodiff"
	"github.com/anchor-ml/anchor/internal/backend/cpu"
	"github.com/anchor-ml/anchor/internal/losses"
	"github.com/anchor-ml/anchor/internal/miners"
	"github.com/anchor-ml/anchor/internal/regularizers"
	"github.com/anchor-ml/anchor/internal/tensor"
)

type cpuAutodiff = *autodiff.AutodiffBackend[*cpu.CPUBackend]

const delta = 1e-4

// refLoss recomputes the loss in float64: L2-normalize each prototype
// column, scale logits by 1/temperature, per-sample cross-entropy, then a
// weighted mean.
func refLoss(embeddings [][]float64, prototypes [][]float64, labels []int, temperature float64, weights []float64) float64 {
	dim := len(prototypes)
	numClasses := len(prototypes[0])

	norms := make([]float64, numClasses)
	for c := 0; c < numClasses; c++ {
		sum := 0.0
		for d := 0; d < dim; d++ {
			sum += prototypes[d][c] * prototypes[d][c]
		}
		norms[c] = math.Sqrt(sum)
	}

	total := 0.0
	for b, emb := range embeddings {
		logits := make([]float64, numClasses)
		maxLogit := math.Inf(-1)
		for c := 0; c < numClasses; c++ {
			dot := 0.0
			for d := 0; d < dim; d++ {
				dot += emb[d] * prototypes[d][c] / norms[c]
			}
			logits[c] = dot / temperature
			if logits[c] > maxLogit {
				maxLogit = logits[c]
			}
		}
		sumExp := 0.0
		for _, l := range logits {
			sumExp += math.Exp(l - maxLogit)
		}
		ce := math.Log(sumExp) - (logits[labels[b]] - maxLogit)
		total += ce * weights[b]
	}
	return total / float64(len(embeddings))
}

func setPrototypes(t *testing.T, loss *losses.NormalizedSoftmax[cpuAutodiff], prototypes [][]float64) {
	t.Helper()
	data := loss.Weight().Tensor().Data()
	numClasses := len(prototypes[0])
	for d, row := range prototypes {
		for c, v := range row {
			data[d*numClasses+c] = float32(v)
		}
	}
}

func onesWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}

func TestNormalizedSoftmax_Constructor(t *testing.T) {
	backend := autodiff.New(cpu.New())

	loss, err := losses.NewNormalizedSoftmax(4, 3, backend)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{4, 3}, loss.Weight().Tensor().Shape())
	assert.InDelta(t, losses.DefaultTemperature, loss.Temperature(), 1e-9)

	_, err = losses.NewNormalizedSoftmax(0, 3, backend)
	assert.Error(t, err)

	_, err = losses.NewNormalizedSoftmax(4, -1, backend)
	assert.Error(t, err)

	_, err = losses.NewNormalizedSoftmax(4, 3, backend, losses.WithTemperature[cpuAutodiff](0))
	assert.Error(t, err)

	_, err = losses.NewNormalizedSoftmax(4, 3, backend, losses.WithTemperature[cpuAutodiff](-0.1))
	assert.Error(t, err)
}

func TestNormalizedSoftmax_MatchesReference(t *testing.T) {
	backend := autodiff.New(cpu.New())

	prototypes := [][]float64{
		{1.0, -0.5, 0.2},
		{0.3, 2.0, -1.0},
	}
	embeddings := [][]float64{
		{0.5, 0.5},
		{-1.0, 0.2},
		{0.0, 1.5},
	}
	labels := []int{0, 1, 2}

	loss, err := losses.NewNormalizedSoftmax(2, 3, backend, losses.WithTemperature[cpuAutodiff](0.1))
	require.NoError(t, err)
	setPrototypes(t, loss, prototypes)

	emb, err := tensor.FromSlice(
		[]float32{0.5, 0.5, -1.0, 0.2, 0.0, 1.5}, tensor.Shape{3, 2}, backend)
	require.NoError(t, err)
	lab, err := tensor.FromSlice([]int32{0, 1, 2}, tensor.Shape{3}, backend)
	require.NoError(t, err)

	got := loss.Forward(emb, lab).Item()
	want := refLoss(embeddings, prototypes, labels, 0.1, onesWeights(3))
	assert.InDelta(t, want, got, delta)
}

// Column normalization makes the loss invariant to per-prototype scaling.
func TestNormalizedSoftmax_ColumnScaleInvariance(t *testing.T) {
	backend := autodiff.New(cpu.New())

	prototypes := [][]float64{
		{1.0, -0.5, 0.2},
		{0.3, 2.0, -1.0},
	}
	scaled := [][]float64{
		{1.0 * 5, -0.5 * 0.1, 0.2 * 3},
		{0.3 * 5, 2.0 * 0.1, -1.0 * 3},
	}

	emb, err := tensor.FromSlice(
		[]float32{0.5, 0.5, -1.0, 0.2}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	lab, err := tensor.FromSlice([]int32{0, 2}, tensor.Shape{2}, backend)
	require.NoError(t, err)

	lossA, err := losses.NewNormalizedSoftmax(2, 3, backend)
	require.NoError(t, err)
	setPrototypes(t, lossA, prototypes)

	lossB, err := losses.NewNormalizedSoftmax(2, 3, backend)
	require.NoError(t, err)
	setPrototypes(t, lossB, scaled)

	assert.InDelta(t, lossA.Forward(emb, lab).Item(), lossB.Forward(emb, lab).Item(), delta)
}

// Permuting the prototype columns and relabeling accordingly leaves the
// loss unchanged: class identity carries no ordering.
func TestNormalizedSoftmax_ClassPermutationInvariance(t *testing.T) {
	backend := autodiff.New(cpu.New())

	prototypes := [][]float64{
		{1.0, -0.5, 0.2},
		{0.3, 2.0, -1.0},
	}
	// Columns reordered as (2, 0, 1).
	permuted := [][]float64{
		{0.2, 1.0, -0.5},
		{-1.0, 0.3, 2.0},
	}

	emb, err := tensor.FromSlice(
		[]float32{0.5, 0.5, -1.0, 0.2, 0.3, -0.7}, tensor.Shape{3, 2}, backend)
	require.NoError(t, err)
	lab, err := tensor.FromSlice([]int32{0, 1, 2}, tensor.Shape{3}, backend)
	require.NoError(t, err)
	// Old class c maps to new class perm[c].
	relabeled, err := tensor.FromSlice([]int32{1, 2, 0}, tensor.Shape{3}, backend)
	require.NoError(t, err)

	lossA, err := losses.NewNormalizedSoftmax(2, 3, backend)
	require.NoError(t, err)
	setPrototypes(t, lossA, prototypes)

	lossB, err := losses.NewNormalizedSoftmax(2, 3, backend)
	require.NoError(t, err)
	setPrototypes(t, lossB, permuted)

	assert.InDelta(t, lossA.Forward(emb, lab).Item(), lossB.Forward(emb, relabeled).Item(), delta)
}

func TestNormalizedSoftmax_MinedWeights(t *testing.T) {
	backend := autodiff.New(cpu.New())

	prototypes := [][]float64{
		{0.8, -0.2},
		{0.1, 1.1},
	}
	embeddings := [][]float64{
		{1.0, 0.0},
		{0.0, 1.0},
		{0.7, 0.7},
		{-0.5, 0.5},
	}
	labels := []int{0, 1, 0, 1}

	loss, err := losses.NewNormalizedSoftmax(2, 2, backend, losses.WithTemperature[cpuAutodiff](0.5))
	require.NoError(t, err)
	setPrototypes(t, loss, prototypes)

	emb, err := tensor.FromSlice(
		[]float32{1, 0, 0, 1, 0.7, 0.7, -0.5, 0.5}, tensor.Shape{4, 2}, backend)
	require.NoError(t, err)
	lab, err := tensor.FromSlice([]int32{0, 1, 0, 1}, tensor.Shape{4}, backend)
	require.NoError(t, err)

	// Sample 0 appears twice, samples 2 and 3 once, sample 1 never:
	// weights = [1, 0, 0.5, 0.5].
	ix := &miners.Indices{
		AnchorPos: []int{0},
		Pos:       []int{2},
		AnchorNeg: []int{0},
		Neg:       []int{3},
	}

	got := loss.ForwardMined(emb, lab, ix).Item()
	want := refLoss(embeddings, prototypes, labels, 0.5, []float64{1, 0, 0.5, 0.5})
	assert.InDelta(t, want, got, delta)

	// Empty indices fall back to uniform weights, same as Forward.
	assert.InDelta(t,
		loss.Forward(emb, lab).Item(),
		loss.ForwardMined(emb, lab, &miners.Indices{}).Item(), delta)
}

// As temperature grows, logits shrink toward zero and the softmax toward
// uniform, so the loss approaches ln(numClasses).
func TestNormalizedSoftmax_HighTemperatureLimit(t *testing.T) {
	backend := autodiff.New(cpu.New())

	emb, err := tensor.FromSlice(
		[]float32{0.5, 0.5, -1.0, 0.2, 0.3, -0.7}, tensor.Shape{3, 2}, backend)
	require.NoError(t, err)
	lab, err := tensor.FromSlice([]int32{0, 1, 2}, tensor.Shape{3}, backend)
	require.NoError(t, err)

	loss, err := losses.NewNormalizedSoftmax(2, 3, backend, losses.WithTemperature[cpuAutodiff](1e6))
	require.NoError(t, err)

	got := loss.Forward(emb, lab).Item()
	assert.InDelta(t, math.Log(3), got, 1e-3)
	assert.False(t, math.IsNaN(float64(got)))
	assert.False(t, math.IsInf(float64(got), 0))
}

func TestNormalizedSoftmax_ZeroRegWeightIsPlainLoss(t *testing.T) {
	backend := autodiff.New(cpu.New())

	prototypes := [][]float64{
		{1.0, -0.5},
		{0.3, 2.0},
	}
	emb, err := tensor.FromSlice([]float32{0.5, 0.5, -1, 0.2}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	lab, err := tensor.FromSlice([]int32{0, 1}, tensor.Shape{2}, backend)
	require.NoError(t, err)

	reg, err := regularizers.NewLp[cpuAutodiff](2)
	require.NoError(t, err)

	plain, err := losses.NewNormalizedSoftmax(2, 2, backend)
	require.NoError(t, err)
	setPrototypes(t, plain, prototypes)

	zeroReg, err := losses.NewNormalizedSoftmax(2, 2, backend,
		losses.WithRegularizer[cpuAutodiff](reg, 0))
	require.NoError(t, err)
	setPrototypes(t, zeroReg, prototypes)

	assert.InDelta(t, plain.Forward(emb, lab).Item(), zeroReg.Forward(emb, lab).Item(), delta)
}

func TestNormalizedSoftmax_RegularizerPenalty(t *testing.T) {
	backend := autodiff.New(cpu.New())

	// Prototype columns [3,4] and [0,2] have L2 norms 5 and 2; the L2
	// regularizer sees them as rows of Wᵀ, so its value is (5+2)/2 = 3.5.
	prototypes := [][]float64{
		{3.0, 0.0},
		{4.0, 2.0},
	}
	embeddings := [][]float64{{1.0, 0.0}, {0.0, 1.0}}
	labels := []int{0, 1}

	emb, err := tensor.FromSlice([]float32{1, 0, 0, 1}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	lab, err := tensor.FromSlice([]int32{0, 1}, tensor.Shape{2}, backend)
	require.NoError(t, err)

	reg, err := regularizers.NewLp[cpuAutodiff](2)
	require.NoError(t, err)

	loss, err := losses.NewNormalizedSoftmax(2, 2, backend,
		losses.WithRegularizer[cpuAutodiff](reg, 0.1))
	require.NoError(t, err)
	setPrototypes(t, loss, prototypes)

	got := loss.Forward(emb, lab).Item()
	want := refLoss(embeddings, prototypes, labels, losses.DefaultTemperature, onesWeights(2)) + 0.1*3.5
	assert.InDelta(t, want, got, delta)
}

// shapeRecorder captures the matrix handed to the regularizer.
type shapeRecorder struct {
	shape tensor.Shape
}

func (r *shapeRecorder) Loss(m *tensor.Tensor[float32, cpuAutodiff]) *tensor.Tensor[float32, cpuAutodiff] {
	r.shape = m.Shape()
	return m.Sum().MulScalar(0)
}

func TestNormalizedSoftmax_RegularizerSeesTransposed(t *testing.T) {
	backend := autodiff.New(cpu.New())

	rec := &shapeRecorder{}
	loss, err := losses.NewNormalizedSoftmax(4, 7, backend,
		losses.WithRegularizer[cpuAutodiff](rec, 1))
	require.NoError(t, err)

	emb := tensor.Randn[float32](tensor.Shape{2, 4}, backend)
	lab, err := tensor.FromSlice([]int32{0, 3}, tensor.Shape{2}, backend)
	require.NoError(t, err)

	loss.Forward(emb, lab)
	// W is [dim, numClasses]; the regularizer gets one prototype per row.
	assert.Equal(t, tensor.Shape{7, 4}, rec.shape)
}

func TestNormalizedSoftmax_ShapeValidation(t *testing.T) {
	backend := autodiff.New(cpu.New())
	loss, err := losses.NewNormalizedSoftmax(4, 3, backend)
	require.NoError(t, err)

	lab, err := tensor.FromSlice([]int32{0, 1}, tensor.Shape{2}, backend)
	require.NoError(t, err)

	assert.Panics(t, func() {
		loss.Forward(tensor.Randn[float32](tensor.Shape{2, 5}, backend), lab)
	}, "embedding dim mismatch")

	assert.Panics(t, func() {
		loss.Forward(tensor.Randn[float32](tensor.Shape{3, 4}, backend), lab)
	}, "label count mismatch")

	assert.Panics(t, func() {
		loss.Forward(tensor.Randn[float32](tensor.Shape{8}, backend), lab)
	}, "1D embeddings")
}

func TestNormalizedSoftmax_GradientFlowsToPrototypes(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	defer backend.Tape().StopRecording()

	loss, err := losses.NewNormalizedSoftmax(3, 4, backend, losses.WithTemperature[cpuAutodiff](0.1))
	require.NoError(t, err)

	emb := tensor.Randn[float32](tensor.Shape{5, 3}, backend)
	lab, err := tensor.FromSlice([]int32{0, 1, 2, 3, 0}, tensor.Shape{5}, backend)
	require.NoError(t, err)

	out := loss.Forward(emb, lab)
	grads := autodiff.Backward(out, backend)

	weightGrad := grads[loss.Weight().Tensor().Raw()]
	require.NotNil(t, weightGrad, "prototype matrix should receive a gradient")
	assert.Equal(t, tensor.Shape{3, 4}, weightGrad.Shape())

	embGrad := grads[emb.Raw()]
	require.NotNil(t, embGrad, "embeddings should receive a gradient")
	assert.Equal(t, tensor.Shape{5, 3}, embGrad.Shape())

	nonZero := false
	for _, v := range weightGrad.AsFloat32() {
		if v != 0 {
			nonZero = true
			break
		}
	}
	assert.True(t, nonZero, "gradient should not be identically zero")
}
