package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churncli/internal/features"
	"churncli/internal/metrics"
)

func TestForestFitSeparatesSyntheticData(t *testing.T) {
	frame := syntheticFrame(300, 11)

	forest := NewForest(ForestConfig{Trees: 50, MaxDepth: 6, Seed: 1})
	require.NoError(t, forest.Fit(context.Background(), frame))

	probs, err := forest.PredictProba(unlabeled(frame))
	require.NoError(t, err)
	for _, p := range probs {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}

	auc, err := metrics.AUC(frame.Labels, probs)
	require.NoError(t, err)
	assert.Greater(t, auc, 0.9)
}

func TestForestDeterministicUnderSeed(t *testing.T) {
	frame := syntheticFrame(150, 12)

	a := NewForest(ForestConfig{Trees: 20, MaxDepth: 4, MaxFeatures: 2, Seed: 7})
	require.NoError(t, a.Fit(context.Background(), frame))
	b := NewForest(ForestConfig{Trees: 20, MaxDepth: 4, MaxFeatures: 2, Seed: 7})
	require.NoError(t, b.Fit(context.Background(), frame))

	probsA, err := a.PredictProba(unlabeled(frame))
	require.NoError(t, err)
	probsB, err := b.PredictProba(unlabeled(frame))
	require.NoError(t, err)
	assert.Equal(t, probsA, probsB)
}

func TestForestErrors(t *testing.T) {
	frame := syntheticFrame(50, 13)

	forest := NewForest(ForestConfig{Trees: 5})
	assert.Error(t, forest.Fit(context.Background(), unlabeled(frame)))

	_, err := forest.PredictProba(frame)
	assert.ErrorContains(t, err, "not fitted")

	require.NoError(t, forest.Fit(context.Background(), frame))
	_, err = forest.PredictProba(&features.Frame{Columns: []string{"Other"}, Rows: [][]float64{{1}}})
	assert.ErrorContains(t, err, "mismatch")
}

func TestTuneForest(t *testing.T) {
	frame := syntheticFrame(200, 14)

	cfg := ForestConfig{Trees: 25, MaxDepth: 5, Seed: 3}
	forest, result, err := TuneForest(context.Background(), frame, cfg, 3, 3)
	require.NoError(t, err)
	require.NotNil(t, forest)

	assert.NotEmpty(t, result.Trials)
	assert.LessOrEqual(t, len(result.Trials), 3)
	for _, trial := range result.Trials {
		assert.GreaterOrEqual(t, trial.MaxFeatures, 1)
		assert.LessOrEqual(t, trial.MaxFeatures, len(frame.Columns))
		assert.LessOrEqual(t, trial.CVAUC, result.Best.CVAUC)
	}

	probs, err := forest.PredictProba(unlabeled(frame))
	require.NoError(t, err)
	assert.Len(t, probs, frame.Len())
}

func TestTuneForestDeterministic(t *testing.T) {
	frame := syntheticFrame(120, 15)
	cfg := ForestConfig{Trees: 10, MaxDepth: 4, Seed: 5}

	_, a, err := TuneForest(context.Background(), frame, cfg, 2, 3)
	require.NoError(t, err)
	_, b, err := TuneForest(context.Background(), frame, cfg, 2, 3)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
