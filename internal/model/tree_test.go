package model

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitTreeRecoversThresholdSplit(t *testing.T) {
	rows := [][]float64{{0.1}, {0.2}, {0.3}, {0.7}, {0.8}, {0.9}}
	targets := []float64{0, 0, 0, 1, 1, 1}
	indices := []int{0, 1, 2, 3, 4, 5}

	tree := fitTree(rows, targets, indices, treeConfig{maxDepth: 1}, nil)

	assert.Equal(t, 0.0, tree.predict([]float64{0.0}))
	assert.Equal(t, 0.0, tree.predict([]float64{0.3}))
	assert.Equal(t, 1.0, tree.predict([]float64{0.7}))
	assert.Equal(t, 1.0, tree.predict([]float64{1.0}))
}

func TestFitTreePicksInformativeFeature(t *testing.T) {
	// Feature 1 fully explains the target, feature 0 is constant.
	rows := [][]float64{{5, 0.1}, {5, 0.2}, {5, 0.8}, {5, 0.9}}
	targets := []float64{0, 0, 1, 1}
	tree := fitTree(rows, targets, []int{0, 1, 2, 3}, treeConfig{maxDepth: 2}, nil)

	assert.Equal(t, 0.0, tree.predict([]float64{5, 0.15}))
	assert.Equal(t, 1.0, tree.predict([]float64{5, 0.85}))
}

func TestFitTreeNoSplitOnPureTargets(t *testing.T) {
	rows := [][]float64{{1}, {2}, {3}}
	targets := []float64{0.5, 0.5, 0.5}
	tree := fitTree(rows, targets, []int{0, 1, 2}, treeConfig{maxDepth: 3}, nil)

	require.Len(t, tree.leaves, 1)
	assert.True(t, tree.root.leaf)
	assert.Equal(t, 0.5, tree.predict([]float64{2}))
}

func TestFitTreeRespectsMinSamplesLeaf(t *testing.T) {
	rows := [][]float64{{0.1}, {0.9}}
	targets := []float64{0, 1}
	tree := fitTree(rows, targets, []int{0, 1}, treeConfig{maxDepth: 3, minSamplesLeaf: 2}, nil)

	assert.True(t, tree.root.leaf)
	assert.Equal(t, 0.5, tree.predict([]float64{0.5}))
}

func TestFitTreeDepthLimit(t *testing.T) {
	// Four distinct target levels need depth 2; depth 1 merges pairs.
	rows := [][]float64{{1}, {2}, {3}, {4}}
	targets := []float64{0, 0.2, 0.8, 1}
	tree := fitTree(rows, targets, []int{0, 1, 2, 3}, treeConfig{maxDepth: 1}, nil)

	assert.InDelta(t, 0.1, tree.predict([]float64{1}), 1e-12)
	assert.InDelta(t, 0.9, tree.predict([]float64{4}), 1e-12)
}

func TestTreeLeafSamplesAndUpdate(t *testing.T) {
	rows := [][]float64{{0.1}, {0.2}, {0.8}, {0.9}}
	targets := []float64{0, 0, 1, 1}
	tree := fitTree(rows, targets, []int{0, 1, 2, 3}, treeConfig{maxDepth: 1}, nil)
	require.Len(t, tree.leaves, 2)

	tree.updateLeaves(func(samples []int) float64 {
		return float64(len(samples)) * 10
	})
	assert.Equal(t, 20.0, tree.predict([]float64{0.1}))
	assert.Equal(t, 20.0, tree.predict([]float64{0.9}))
}

func TestFitTreeFeatureSubsampling(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	rows := make([][]float64, 40)
	targets := make([]float64, 40)
	indices := make([]int, 40)
	for i := range rows {
		x := rng.Float64()
		rows[i] = []float64{x, rng.Float64(), rng.Float64()}
		if x > 0.5 {
			targets[i] = 1
		}
		indices[i] = i
	}

	tree := fitTree(rows, targets, indices, treeConfig{maxDepth: 4, maxFeatures: 1}, rng)
	// The subsampled tree still produces predictions in the target range.
	for _, row := range rows {
		p := tree.predict(row)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}
