package model

import (
	"math/rand"

	"churncli/internal/features"
)

// syntheticFrame builds a labeled frame with two informative features and
// one pure-noise feature. The label follows x0 + x1 with logistic noise,
// so a sensible classifier separates it well but not perfectly.
func syntheticFrame(n int, seed int64) *features.Frame {
	rng := rand.New(rand.NewSource(seed))

	rows := make([][]float64, n)
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		x0 := rng.Float64()
		x1 := rng.Float64()
		noise := rng.Float64()

		rows[i] = []float64{x0, x1, noise}
		score := 6*(x0+x1) - 6 + rng.NormFloat64()*0.5
		if score > 0 {
			labels[i] = 1
		}
	}

	return &features.Frame{
		Columns: []string{"Signal0", "Signal1", "Noise"},
		Rows:    rows,
		Labels:  labels,
	}
}

// unlabeled strips the labels from a frame.
func unlabeled(frame *features.Frame) *features.Frame {
	return &features.Frame{Columns: frame.Columns, Rows: frame.Rows}
}
