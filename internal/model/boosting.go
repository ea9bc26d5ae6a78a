package model

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"churncli/internal/features"
	"churncli/internal/infrastructure"
)

// BoostingConfig holds the gradient boosting hyperparameters.
type BoostingConfig struct {
	Rounds         int
	Depth          int
	Eta            float64 // shrinkage applied to every tree's contribution
	MinSamplesLeaf int
}

// Boosting is a gradient-boosted ensemble of regression trees under the
// binary-logistic objective. Each round fits a tree to the negative
// gradient (label minus predicted probability) and replaces leaf values
// with one-step Newton estimates.
type Boosting struct {
	cfg BoostingConfig

	colNames []string
	base     float64 // initial log-odds score
	trees    []*regTree
	lossLog  []float64
}

// NewBoosting creates a boosting trainer with defaults filled in.
func NewBoosting(cfg BoostingConfig) *Boosting {
	if cfg.Rounds <= 0 {
		cfg.Rounds = 20
	}
	if cfg.Depth <= 0 {
		cfg.Depth = 3
	}
	if cfg.Eta <= 0 {
		cfg.Eta = 0.3
	}
	if cfg.MinSamplesLeaf <= 0 {
		cfg.MinSamplesLeaf = 1
	}
	return &Boosting{cfg: cfg}
}

// Fit trains the ensemble on a labeled frame, logging the training
// log-loss after every round.
func (b *Boosting) Fit(ctx context.Context, frame *features.Frame) error {
	logger := infrastructure.LoggerFromContext(ctx)

	if frame.Labels == nil {
		return fmt.Errorf("boosting: unlabeled frame")
	}
	n := frame.Len()
	if n == 0 {
		return fmt.Errorf("boosting: empty frame")
	}

	b.colNames = append([]string(nil), frame.Columns...)

	positives := 0
	for _, label := range frame.Labels {
		positives += label
	}
	if positives == 0 || positives == n {
		return fmt.Errorf("boosting: single-class training data")
	}
	prior := float64(positives) / float64(n)
	b.base = math.Log(prior / (1 - prior))

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = b.base
	}

	cfg := treeConfig{maxDepth: b.cfg.Depth, minSamplesLeaf: b.cfg.MinSamplesLeaf}
	residuals := make([]float64, n)
	probs := make([]float64, n)

	b.trees = make([]*regTree, 0, b.cfg.Rounds)
	b.lossLog = make([]float64, 0, b.cfg.Rounds)

	for round := 0; round < b.cfg.Rounds; round++ {
		for i := range scores {
			probs[i] = sigmoid(scores[i])
			residuals[i] = float64(frame.Labels[i]) - probs[i]
		}

		indices := make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		tree := fitTree(frame.Rows, residuals, indices, cfg, nil)

		// One Newton step per leaf: sum of gradients over sum of
		// hessians for the rows that landed there.
		tree.updateLeaves(func(samples []int) float64 {
			num, den := 0.0, 0.0
			for _, idx := range samples {
				num += residuals[idx]
				den += probs[idx] * (1 - probs[idx])
			}
			if den < 1e-12 {
				return 0
			}
			return num / den
		})
		b.trees = append(b.trees, tree)

		loss := 0.0
		for i, row := range frame.Rows {
			scores[i] += b.cfg.Eta * tree.predict(row)
			p := sigmoid(scores[i])
			if frame.Labels[i] == 1 {
				loss -= math.Log(math.Max(p, 1e-15))
			} else {
				loss -= math.Log(math.Max(1-p, 1e-15))
			}
		}
		loss /= float64(n)
		b.lossLog = append(b.lossLog, loss)

		logger.DebugContext(ctx, "boosting round complete",
			slog.Int("round", round+1),
			slog.Float64("train_logloss", loss))
	}

	return nil
}

// PredictProba returns p(churn) for every row of the frame.
func (b *Boosting) PredictProba(frame *features.Frame) ([]float64, error) {
	if b.trees == nil {
		return nil, fmt.Errorf("boosting: model not fitted")
	}
	if err := checkColumns(b.colNames, frame.Columns); err != nil {
		return nil, fmt.Errorf("boosting: %w", err)
	}

	out := make([]float64, frame.Len())
	for i, row := range frame.Rows {
		score := b.base
		for _, tree := range b.trees {
			score += b.cfg.Eta * tree.predict(row)
		}
		out[i] = sigmoid(score)
	}
	return out, nil
}

// LossLog returns the training log-loss recorded after each round.
func (b *Boosting) LossLog() []float64 {
	return append([]float64(nil), b.lossLog...)
}
