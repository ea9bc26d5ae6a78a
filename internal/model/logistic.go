package model

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"churncli/internal/features"
	"churncli/internal/infrastructure"
	"churncli/internal/metrics"
)

// LogisticConfig holds the gradient-descent hyperparameters. L1 of zero
// means penalty-free fitting.
type LogisticConfig struct {
	LearningRate float64
	Epochs       int
	L1           float64
}

// Logistic is a binary logistic regression fit by full-batch gradient
// descent on standardized features. Standardization moments are learned
// from the training frame and reapplied verbatim at predict time.
type Logistic struct {
	cfg LogisticConfig

	columns []string
	means   []float64
	stds    []float64
	weights []float64
	bias    float64
}

// NewLogistic creates a logistic regression trainer with defaults filled
// in for unset hyperparameters.
func NewLogistic(cfg LogisticConfig) *Logistic {
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = 0.1
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = 500
	}
	return &Logistic{cfg: cfg}
}

// Fit trains the model on a labeled frame.
func (m *Logistic) Fit(frame *features.Frame) error {
	if frame.Labels == nil {
		return fmt.Errorf("logistic: unlabeled frame")
	}
	n := frame.Len()
	if n == 0 {
		return fmt.Errorf("logistic: empty frame")
	}
	p := len(frame.Columns)

	m.columns = append([]string(nil), frame.Columns...)
	m.means = make([]float64, p)
	m.stds = make([]float64, p)
	for j := 0; j < p; j++ {
		col := make([]float64, n)
		for i, row := range frame.Rows {
			col[i] = row[j]
		}
		m.means[j] = stat.Mean(col, nil)
		m.stds[j] = stat.StdDev(col, nil)
		if m.stds[j] == 0 || math.IsNaN(m.stds[j]) {
			m.stds[j] = 1
		}
	}

	scaled := make([][]float64, n)
	for i, row := range frame.Rows {
		s := make([]float64, p)
		for j, v := range row {
			s[j] = (v - m.means[j]) / m.stds[j]
		}
		scaled[i] = s
	}

	m.weights = make([]float64, p)
	m.bias = 0

	grad := make([]float64, p)
	for epoch := 0; epoch < m.cfg.Epochs; epoch++ {
		for j := range grad {
			grad[j] = 0
		}
		gradBias := 0.0

		for i, row := range scaled {
			z := m.bias
			for j, v := range row {
				z += m.weights[j] * v
			}
			d := sigmoid(z) - float64(frame.Labels[i])
			for j, v := range row {
				grad[j] += d * v
			}
			gradBias += d
		}

		for j := range m.weights {
			m.weights[j] -= m.cfg.LearningRate * grad[j] / float64(n)
			if m.cfg.L1 > 0 {
				// Proximal soft-threshold keeps exact zeros reachable.
				m.weights[j] = softThreshold(m.weights[j], m.cfg.LearningRate*m.cfg.L1)
			}
		}
		m.bias -= m.cfg.LearningRate * gradBias / float64(n)
	}

	return nil
}

// PredictProba returns p(churn) for every row of the frame. The frame
// must carry exactly the columns the model was fit on.
func (m *Logistic) PredictProba(frame *features.Frame) ([]float64, error) {
	if m.weights == nil {
		return nil, fmt.Errorf("logistic: model not fitted")
	}
	if err := checkColumns(m.columns, frame.Columns); err != nil {
		return nil, fmt.Errorf("logistic: %w", err)
	}

	out := make([]float64, frame.Len())
	for i, row := range frame.Rows {
		z := m.bias
		for j, v := range row {
			z += m.weights[j] * (v - m.means[j]) / m.stds[j]
		}
		out[i] = sigmoid(z)
	}
	return out, nil
}

// Coefficients returns the fitted weights on the standardized scale,
// keyed by column name.
func (m *Logistic) Coefficients() map[string]float64 {
	out := make(map[string]float64, len(m.columns))
	for j, name := range m.columns {
		out[name] = m.weights[j]
	}
	return out
}

// SelectionReport is the outcome of the cross-validated lasso feature
// selection step.
type SelectionReport struct {
	BestLambda   float64
	CVAUC        float64
	Coefficients map[string]float64
	Dropped      []string
}

// lassoLambdaGrid is the L1 strength grid searched by LassoSelect.
var lassoLambdaGrid = []float64{0.001, 0.003, 0.01, 0.03, 0.1}

// dropTolerance is the standardized-coefficient magnitude below which a
// feature counts as shrunk away.
const dropTolerance = 1e-3

// LassoSelect runs an L1-penalized logistic regression over a lambda
// grid with k-fold cross-validation scored by AUC, refits at the best
// lambda, and reports which candidate features were shrunk to zero.
func LassoSelect(ctx context.Context, frame *features.Frame, folds int, seed int64) (*SelectionReport, error) {
	logger := infrastructure.LoggerFromContext(ctx)

	if frame.Labels == nil {
		return nil, fmt.Errorf("lasso: unlabeled frame")
	}
	foldIdx, err := KFold(frame.Len(), folds, seed)
	if err != nil {
		return nil, fmt.Errorf("lasso: %w", err)
	}

	bestLambda := lassoLambdaGrid[0]
	bestAUC := math.Inf(-1)

	for _, lambda := range lassoLambdaGrid {
		total := 0.0
		for held := range foldIdx {
			trainRows, trainLabels := subset(frame.Rows, frame.Labels, trainIndices(foldIdx, held))
			heldRows, heldLabels := subset(frame.Rows, frame.Labels, foldIdx[held])

			trainFrame := &features.Frame{Columns: frame.Columns, Rows: trainRows, Labels: trainLabels}
			heldFrame := &features.Frame{Columns: frame.Columns, Rows: heldRows}

			m := NewLogistic(LogisticConfig{L1: lambda})
			if err := m.Fit(trainFrame); err != nil {
				return nil, fmt.Errorf("lasso: fold %d: %w", held, err)
			}
			probs, err := m.PredictProba(heldFrame)
			if err != nil {
				return nil, fmt.Errorf("lasso: fold %d: %w", held, err)
			}
			auc, err := metrics.AUC(heldLabels, probs)
			if err != nil {
				return nil, fmt.Errorf("lasso: fold %d: %w", held, err)
			}
			total += auc
		}

		mean := total / float64(len(foldIdx))
		logger.DebugContext(ctx, "lasso lambda scored",
			slog.Float64("lambda", lambda),
			slog.Float64("cv_auc", mean))
		if mean > bestAUC {
			bestAUC = mean
			bestLambda = lambda
		}
	}

	final := NewLogistic(LogisticConfig{L1: bestLambda})
	if err := final.Fit(frame); err != nil {
		return nil, fmt.Errorf("lasso: final fit: %w", err)
	}

	report := &SelectionReport{
		BestLambda:   bestLambda,
		CVAUC:        bestAUC,
		Coefficients: final.Coefficients(),
	}
	for _, name := range frame.Columns {
		if math.Abs(report.Coefficients[name]) < dropTolerance {
			report.Dropped = append(report.Dropped, name)
		}
	}

	logger.InfoContext(ctx, "lasso selection complete",
		slog.Float64("best_lambda", bestLambda),
		slog.Float64("cv_auc", bestAUC),
		slog.Any("dropped", report.Dropped))
	return report, nil
}

// checkColumns verifies a prediction frame carries the training columns
// in the training order.
func checkColumns(fitted, got []string) error {
	if len(fitted) != len(got) {
		return fmt.Errorf("column count mismatch: fitted on %d, got %d", len(fitted), len(got))
	}
	for i := range fitted {
		if fitted[i] != got[i] {
			return fmt.Errorf("column %d mismatch: fitted on %q, got %q", i, fitted[i], got[i])
		}
	}
	return nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func softThreshold(w, t float64) float64 {
	switch {
	case w > t:
		return w - t
	case w < -t:
		return w + t
	}
	return 0
}
