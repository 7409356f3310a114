package miners_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchor-ml/anchor/internal/backend/cpu"
	"github.com/anchor-ml/anchor/internal/miners"
	"github.com/anchor-ml/anchor/internal/tensor"
)

func TestConvertToWeights_NoMining(t *testing.T) {
	assert.Equal(t, []float32{1, 1, 1}, miners.ConvertToWeights(nil, 3))
	assert.Equal(t, []float32{1, 1, 1}, miners.ConvertToWeights(&miners.Indices{}, 3))
}

func TestConvertToWeights_Counts(t *testing.T) {
	// Sample 0 appears three times, sample 2 twice, sample 3 once,
	// sample 1 never.
	ix := &miners.Indices{
		AnchorPos: []int{0, 0},
		Pos:       []int{2, 3},
		AnchorNeg: []int{0},
		Neg:       []int{2},
	}
	got := miners.ConvertToWeights(ix, 4)
	assert.Equal(t, []float32{1, 0, 2.0 / 3.0, 1.0 / 3.0}, got)
}

func TestConvertToWeights_OutOfRange(t *testing.T) {
	assert.Panics(t, func() {
		miners.ConvertToWeights(&miners.Indices{AnchorPos: []int{4}, Pos: []int{0}}, 4)
	})
	assert.Panics(t, func() {
		miners.ConvertToWeights(&miners.Indices{AnchorNeg: []int{-1}, Neg: []int{0}}, 4)
	})
}

func TestIndices_Empty(t *testing.T) {
	var nilIx *miners.Indices
	assert.True(t, nilIx.Empty())
	assert.True(t, (&miners.Indices{}).Empty())
	assert.False(t, (&miners.Indices{AnchorPos: []int{0}, Pos: []int{1}}).Empty())
}

func TestPairMargin_Mine(t *testing.T) {
	backend := cpu.New()

	// Labels [0 0 1 1]. e0 and e2 point the same way, e1 is orthogonal,
	// e3 is opposite to e0. With the default margins every same-label
	// pair here is a hard positive, and only (0,2) is a hard negative.
	emb, err := tensor.FromSlice(
		[]float32{1, 0, 0, 1, 1, 0, -2, 0}, tensor.Shape{4, 2}, backend)
	require.NoError(t, err)
	lab, err := tensor.FromSlice([]int32{0, 0, 1, 1}, tensor.Shape{4}, backend)
	require.NoError(t, err)

	ix := miners.NewPairMargin().Mine(emb.Raw(), lab.Raw())

	assert.Equal(t, []int{0, 1, 2, 3}, ix.AnchorPos)
	assert.Equal(t, []int{1, 0, 3, 2}, ix.Pos)
	assert.Equal(t, []int{0, 2}, ix.AnchorNeg)
	assert.Equal(t, []int{2, 0}, ix.Neg)
}

func TestPairMargin_EasyBatchMinesNothing(t *testing.T) {
	backend := cpu.New()

	// Same-label pairs aligned (sim 1), cross-label pairs opposite (sim -1).
	emb, err := tensor.FromSlice(
		[]float32{1, 0, 2, 0, -1, 0, -3, 0}, tensor.Shape{4, 2}, backend)
	require.NoError(t, err)
	lab, err := tensor.FromSlice([]int64{0, 0, 1, 1}, tensor.Shape{4}, backend)
	require.NoError(t, err)

	ix := miners.NewPairMargin().Mine(emb.Raw(), lab.Raw())
	assert.True(t, ix.Empty())
}

func TestPairMargin_CustomMargins(t *testing.T) {
	backend := cpu.New()

	emb, err := tensor.FromSlice(
		[]float32{1, 0, 0, 1}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	lab, err := tensor.FromSlice([]int32{0, 1}, tensor.Shape{2}, backend)
	require.NoError(t, err)

	// Orthogonal pair, sim 0: mined only when NegMargin drops below it.
	strict := &miners.PairMargin{PosMargin: 0.8, NegMargin: -0.5}
	ix := strict.Mine(emb.Raw(), lab.Raw())
	assert.Equal(t, []int{0, 1}, ix.AnchorNeg)
	assert.Equal(t, []int{1, 0}, ix.Neg)

	relaxed := &miners.PairMargin{PosMargin: 0.8, NegMargin: 0.5}
	assert.True(t, relaxed.Mine(emb.Raw(), lab.Raw()).Empty())
}

func TestPairMargin_Validation(t *testing.T) {
	backend := cpu.New()

	emb, err := tensor.FromSlice([]float32{1, 0, 0, 1}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	flat, err := tensor.FromSlice([]float32{1, 0, 0, 1}, tensor.Shape{4}, backend)
	require.NoError(t, err)
	lab, err := tensor.FromSlice([]int32{0, 1}, tensor.Shape{2}, backend)
	require.NoError(t, err)
	short, err := tensor.FromSlice([]int32{0}, tensor.Shape{1}, backend)
	require.NoError(t, err)
	floatLab, err := tensor.FromSlice([]float32{0, 1}, tensor.Shape{2}, backend)
	require.NoError(t, err)

	m := miners.NewPairMargin()
	assert.Panics(t, func() { m.Mine(flat.Raw(), lab.Raw()) }, "1D embeddings")
	assert.Panics(t, func() { m.Mine(emb.Raw(), short.Raw()) }, "label count mismatch")
	assert.Panics(t, func() { m.Mine(emb.Raw(), floatLab.Raw()) }, "non-int labels")
}
