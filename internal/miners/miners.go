// Package miners implements example mining for metric learning: selecting
// the informative pairs in a batch and converting mined pairs into
// per-sample loss weights.
package miners

import (
	"fmt"
)

// Indices holds mined pair indices into a batch.
//
//   - AnchorPos[i], Pos[i] form a positive pair (same label)
//   - AnchorNeg[i], Neg[i] form a negative pair (different labels)
type Indices struct {
	AnchorPos []int
	Pos       []int
	AnchorNeg []int
	Neg       []int
}

// Empty reports whether no pairs were mined.
func (ix *Indices) Empty() bool {
	if ix == nil {
		return true
	}
	return len(ix.AnchorPos) == 0 && len(ix.Pos) == 0 &&
		len(ix.AnchorNeg) == 0 && len(ix.Neg) == 0
}

// ConvertToWeights turns mined indices into per-sample loss weights of
// length numSamples.
//
// Each sample's weight is its appearance count across all index lists,
// normalized by the maximum count, so the hardest-mined sample gets weight 1
// and samples never mined get weight 0. With no mining (nil or empty
// indices) every sample gets weight 1.
func ConvertToWeights(ix *Indices, numSamples int) []float32 {
	weights := make([]float32, numSamples)

	if ix.Empty() {
		for i := range weights {
			weights[i] = 1
		}
		return weights
	}

	counts := make([]int, numSamples)
	for _, list := range [][]int{ix.AnchorPos, ix.Pos, ix.AnchorNeg, ix.Neg} {
		for _, idx := range list {
			if idx < 0 || idx >= numSamples {
				panic(fmt.Sprintf("miners: index %d out of range [0,%d)", idx, numSamples))
			}
			counts[idx]++
		}
	}

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	for i, c := range counts {
		weights[i] = float32(c) / float32(maxCount)
	}
	return weights
}
