package model

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"churncli/internal/features"
	"churncli/internal/infrastructure"
	"churncli/internal/metrics"
)

// ForestConfig holds the random forest hyperparameters.
type ForestConfig struct {
	Trees          int
	MaxDepth       int // 0 means unlimited
	MinSamplesLeaf int
	MaxFeatures    int // features sampled per split; 0 means all
	Seed           int64
}

// Forest is a bootstrap-aggregated ensemble of regression trees over 0/1
// labels. Predicted probability is the mean leaf class fraction across
// trees. Fitting is seed-deterministic: tree i always draws from a source
// seeded with Seed+i, regardless of goroutine scheduling.
type Forest struct {
	cfg ForestConfig

	columns []string
	trees   []*regTree
}

// NewForest creates a forest trainer with defaults filled in.
func NewForest(cfg ForestConfig) *Forest {
	if cfg.Trees <= 0 {
		cfg.Trees = 100
	}
	if cfg.MinSamplesLeaf <= 0 {
		cfg.MinSamplesLeaf = 1
	}
	return &Forest{cfg: cfg}
}

// Fit trains the forest on a labeled frame.
func (f *Forest) Fit(ctx context.Context, frame *features.Frame) error {
	if frame.Labels == nil {
		return fmt.Errorf("forest: unlabeled frame")
	}
	n := frame.Len()
	if n == 0 {
		return fmt.Errorf("forest: empty frame")
	}

	f.columns = append([]string(nil), frame.Columns...)

	targets := make([]float64, n)
	for i, label := range frame.Labels {
		targets[i] = float64(label)
	}

	cfg := treeConfig{
		maxDepth:       f.cfg.MaxDepth,
		minSamplesLeaf: f.cfg.MinSamplesLeaf,
		maxFeatures:    f.cfg.MaxFeatures,
	}

	f.trees = make([]*regTree, f.cfg.Trees)
	g, _ := errgroup.WithContext(ctx)
	for i := 0; i < f.cfg.Trees; i++ {
		i := i
		g.Go(func() error {
			rng := rand.New(rand.NewSource(f.cfg.Seed + int64(i)))
			indices := make([]int, n)
			for j := range indices {
				indices[j] = rng.Intn(n)
			}
			f.trees[i] = fitTree(frame.Rows, targets, indices, cfg, rng)
			return nil
		})
	}
	return g.Wait()
}

// PredictProba returns p(churn) for every row of the frame.
func (f *Forest) PredictProba(frame *features.Frame) ([]float64, error) {
	if f.trees == nil {
		return nil, fmt.Errorf("forest: model not fitted")
	}
	if err := checkColumns(f.columns, frame.Columns); err != nil {
		return nil, fmt.Errorf("forest: %w", err)
	}

	out := make([]float64, frame.Len())
	for i, row := range frame.Rows {
		sum := 0.0
		for _, tree := range f.trees {
			sum += tree.predict(row)
		}
		out[i] = sum / float64(len(f.trees))
	}
	return out, nil
}

// TrialScore records one candidate configuration of the hyperparameter
// search and its cross-validated score.
type TrialScore struct {
	MaxFeatures int
	CVAUC       float64
}

// TuneResult is the outcome of TuneForest.
type TuneResult struct {
	Best   TrialScore
	Trials []TrialScore
}

// TuneForest runs a k-fold cross-validated random search over the
// features-per-split hyperparameter, then refits the best configuration
// on the full frame.
func TuneForest(ctx context.Context, frame *features.Frame, cfg ForestConfig, trials, folds int) (*Forest, *TuneResult, error) {
	logger := infrastructure.LoggerFromContext(ctx)

	if frame.Labels == nil {
		return nil, nil, fmt.Errorf("forest tune: unlabeled frame")
	}
	p := len(frame.Columns)
	if p == 0 {
		return nil, nil, fmt.Errorf("forest tune: no feature columns")
	}

	foldIdx, err := KFold(frame.Len(), folds, cfg.Seed)
	if err != nil {
		return nil, nil, fmt.Errorf("forest tune: %w", err)
	}

	// Draw distinct candidate values for features-per-split.
	rng := rand.New(rand.NewSource(cfg.Seed))
	seen := make(map[int]bool)
	var candidates []int
	for len(candidates) < trials && len(candidates) < p {
		mtry := 1 + rng.Intn(p)
		if seen[mtry] {
			continue
		}
		seen[mtry] = true
		candidates = append(candidates, mtry)
	}

	result := &TuneResult{Best: TrialScore{CVAUC: math.Inf(-1)}}
	for _, mtry := range candidates {
		total := 0.0
		for held := range foldIdx {
			trainRows, trainLabels := subset(frame.Rows, frame.Labels, trainIndices(foldIdx, held))
			heldRows, heldLabels := subset(frame.Rows, frame.Labels, foldIdx[held])

			trial := cfg
			trial.MaxFeatures = mtry
			forest := NewForest(trial)
			if err := forest.Fit(ctx, &features.Frame{Columns: frame.Columns, Rows: trainRows, Labels: trainLabels}); err != nil {
				return nil, nil, fmt.Errorf("forest tune: fold %d: %w", held, err)
			}
			probs, err := forest.PredictProba(&features.Frame{Columns: frame.Columns, Rows: heldRows})
			if err != nil {
				return nil, nil, fmt.Errorf("forest tune: fold %d: %w", held, err)
			}
			auc, err := metrics.AUC(heldLabels, probs)
			if err != nil {
				return nil, nil, fmt.Errorf("forest tune: fold %d: %w", held, err)
			}
			total += auc
		}

		score := TrialScore{MaxFeatures: mtry, CVAUC: total / float64(len(foldIdx))}
		result.Trials = append(result.Trials, score)
		logger.DebugContext(ctx, "forest trial scored",
			slog.Int("max_features", score.MaxFeatures),
			slog.Float64("cv_auc", score.CVAUC))
		if score.CVAUC > result.Best.CVAUC {
			result.Best = score
		}
	}

	finalCfg := cfg
	finalCfg.MaxFeatures = result.Best.MaxFeatures
	forest := NewForest(finalCfg)
	if err := forest.Fit(ctx, frame); err != nil {
		return nil, nil, fmt.Errorf("forest tune: final fit: %w", err)
	}

	logger.InfoContext(ctx, "forest tuning complete",
		slog.Int("max_features", result.Best.MaxFeatures),
		slog.Float64("cv_auc", result.Best.CVAUC))
	return forest, result, nil
}
