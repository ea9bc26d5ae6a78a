package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churncli/internal/features"
	"churncli/internal/metrics"
)

func TestBoostingFitSeparatesSyntheticData(t *testing.T) {
	frame := syntheticFrame(300, 21)

	b := NewBoosting(BoostingConfig{Rounds: 20, Depth: 3})
	require.NoError(t, b.Fit(context.Background(), frame))

	probs, err := b.PredictProba(unlabeled(frame))
	require.NoError(t, err)
	for _, p := range probs {
		assert.Greater(t, p, 0.0)
		assert.Less(t, p, 1.0)
	}

	auc, err := metrics.AUC(frame.Labels, probs)
	require.NoError(t, err)
	assert.Greater(t, auc, 0.9)
}

func TestBoostingLossLogDecreases(t *testing.T) {
	frame := syntheticFrame(200, 22)

	b := NewBoosting(BoostingConfig{Rounds: 20, Depth: 3})
	require.NoError(t, b.Fit(context.Background(), frame))

	log := b.LossLog()
	require.Len(t, log, 20)
	for i := 1; i < len(log); i++ {
		assert.LessOrEqual(t, log[i], log[i-1]+1e-9, "round %d", i)
	}
	assert.Less(t, log[len(log)-1], log[0])
}

func TestBoostingDeterministic(t *testing.T) {
	frame := syntheticFrame(150, 23)

	a := NewBoosting(BoostingConfig{Rounds: 10, Depth: 3})
	require.NoError(t, a.Fit(context.Background(), frame))
	b := NewBoosting(BoostingConfig{Rounds: 10, Depth: 3})
	require.NoError(t, b.Fit(context.Background(), frame))

	probsA, err := a.PredictProba(unlabeled(frame))
	require.NoError(t, err)
	probsB, err := b.PredictProba(unlabeled(frame))
	require.NoError(t, err)
	assert.Equal(t, probsA, probsB)
}

func TestBoostingErrors(t *testing.T) {
	frame := syntheticFrame(50, 24)

	b := NewBoosting(BoostingConfig{})
	assert.Error(t, b.Fit(context.Background(), unlabeled(frame)))

	_, err := b.PredictProba(frame)
	assert.ErrorContains(t, err, "not fitted")

	single := &features.Frame{
		Columns: []string{"X"},
		Rows:    [][]float64{{1}, {2}},
		Labels:  []int{1, 1},
	}
	assert.ErrorContains(t, NewBoosting(BoostingConfig{}).Fit(context.Background(), single), "single-class")

	require.NoError(t, b.Fit(context.Background(), frame))
	_, err = b.PredictProba(&features.Frame{Columns: []string{"Other"}, Rows: [][]float64{{1}}})
	assert.ErrorContains(t, err, "mismatch")
}

func TestBoostingDefaults(t *testing.T) {
	b := NewBoosting(BoostingConfig{})
	assert.Equal(t, 20, b.cfg.Rounds)
	assert.Equal(t, 3, b.cfg.Depth)
	assert.InDelta(t, 0.3, b.cfg.Eta, 1e-12)
}
