package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"churncli/internal/config"
	"churncli/internal/dataset"
	"churncli/internal/exporter"
	"churncli/internal/features"
	"churncli/internal/infrastructure"
	"churncli/internal/metrics"
	"churncli/internal/model"
	"churncli/internal/stats"
)

// Submission file names, one per trained model.
const (
	LogisticSubmission = "Logistic_Model.csv"
	ForestSubmission   = "RF_Model.csv"
	BoostingSubmission = "XGB_Model.csv"
)

// numericColumns are the encoded columns summarized and correlated during
// exploration.
var numericColumns = []string{
	features.ColCreditScore,
	features.ColAge,
	features.ColTenure,
	features.ColBalance,
	features.ColNumOfProducts,
	features.ColEstimatedSalary,
	features.ColNameLength,
}

// histogramColumns get a bin table on the Histograms sheet.
var histogramColumns = []string{
	features.ColCreditScore,
	features.ColAge,
	features.ColBalance,
	features.ColEstimatedSalary,
}

// zTestColumns are the binary indicators tested against churn with a
// two-proportion z-test.
var zTestColumns = []string{
	features.ColHasCrCard,
	features.ColIsActiveMember,
	features.ColTwoProd,
	features.ColBalanceGroup,
}

// anovaColumns are tested against the label with a one-way ANOVA.
var anovaColumns = []string{
	features.ColHasCrCard,
	features.ColIsActiveMember,
}

const histogramBins = 20

// Runner executes the churn analysis end to end: load the two tables,
// explore the training data, build feature matrices, run the lasso
// selection, train the three classifiers, and write the submissions and
// the report workbook.
type Runner struct {
	cfg *config.Config
}

// NewRunner creates a pipeline runner for the given configuration.
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{cfg: cfg}
}

// runState carries the intermediate products between stages.
type runState struct {
	train *dataset.Table
	test  *dataset.Table

	trainFrame *features.Frame // reduced model matrix, labeled
	testFrame  *features.Frame // reduced model matrix, unlabeled

	selection *model.SelectionReport

	summaries   []stats.Summary
	correlation [][]float64
	tests       []exporter.HypothesisRow
	histograms  map[string]exporter.Histogram

	models      []exporter.ModelRow
	submissions map[string][]float64 // file name -> test probabilities
}

// Run executes all stages in order. Stages are strictly sequential and
// the first error aborts the run.
func (r *Runner) Run(ctx context.Context) error {
	logger := infrastructure.LoggerFromContext(ctx)

	state := &runState{
		histograms:  make(map[string]exporter.Histogram),
		submissions: make(map[string][]float64),
	}

	stages := []struct {
		name string
		fn   func(context.Context, *runState) error
	}{
		{"load", r.load},
		{"explore", r.explore},
		{"transform", r.transform},
		{"select", r.selectFeatures},
		{"train-logistic", r.trainLogistic},
		{"train-forest", r.trainForest},
		{"train-boosting", r.trainBoosting},
		{"export", r.export},
	}

	for _, stage := range stages {
		start := time.Now()
		logger.InfoContext(ctx, "stage started", slog.String("stage", stage.name))

		if err := stage.fn(ctx, state); err != nil {
			logger.ErrorContext(ctx, "stage failed",
				slog.String("stage", stage.name),
				slog.Duration("duration", time.Since(start)),
				slog.String("error", err.Error()))
			return fmt.Errorf("stage %s: %w", stage.name, err)
		}

		logger.InfoContext(ctx, "stage completed",
			slog.String("stage", stage.name),
			slog.Duration("duration", time.Since(start)))
	}
	return nil
}

func (r *Runner) load(ctx context.Context, state *runState) error {
	logger := infrastructure.LoggerFromContext(ctx)

	train, err := dataset.Load(ctx, r.cfg.Data.TrainPath, true)
	if err != nil {
		return fmt.Errorf("training table: %w", err)
	}
	test, err := dataset.Load(ctx, r.cfg.Data.TestPath, false)
	if err != nil {
		return fmt.Errorf("test table: %w", err)
	}

	state.train = train
	state.test = test
	logger.InfoContext(ctx, "tables loaded",
		slog.Int("train_rows", train.Len()),
		slog.Int("test_rows", test.Len()))
	return nil
}

func (r *Runner) explore(ctx context.Context, state *runState) error {
	frame := features.Encode(state.train)

	summaries, err := stats.Describe(frame, numericColumns)
	if err != nil {
		return fmt.Errorf("describe: %w", err)
	}
	state.summaries = summaries

	correlation, err := stats.CorrelationMatrix(frame, numericColumns)
	if err != nil {
		return fmt.Errorf("correlation: %w", err)
	}
	state.correlation = correlation

	for _, name := range histogramColumns {
		values, err := frame.Column(name)
		if err != nil {
			return fmt.Errorf("histogram %s: %w", name, err)
		}
		edges, counts, err := stats.Histogram(values, histogramBins)
		if err != nil {
			return fmt.Errorf("histogram %s: %w", name, err)
		}
		state.histograms[name] = exporter.Histogram{Edges: edges, Counts: counts}
	}

	for _, name := range zTestColumns {
		result, err := indicatorZTest(frame, name)
		if err != nil {
			return fmt.Errorf("z-test %s: %w", name, err)
		}
		state.tests = append(state.tests, exporter.HypothesisRow{
			Test:      "two-proportion z",
			Feature:   name,
			Statistic: result.Z,
			PValue:    result.PValue,
		})
	}

	for _, name := range anovaColumns {
		result, err := indicatorANOVA(frame, name)
		if err != nil {
			return fmt.Errorf("anova %s: %w", name, err)
		}
		state.tests = append(state.tests, exporter.HypothesisRow{
			Test:      "one-way anova",
			Feature:   name,
			Statistic: result.F,
			PValue:    result.PValue,
		})
	}
	return nil
}

func (r *Runner) transform(ctx context.Context, state *runState) error {
	state.trainFrame = features.ModelMatrix(state.train)
	state.testFrame = features.ModelMatrix(state.test)
	return nil
}

func (r *Runner) selectFeatures(ctx context.Context, state *runState) error {
	report, err := model.LassoSelect(ctx, features.SelectionMatrix(state.train),
		r.cfg.Model.Folds, r.cfg.Model.Seed)
	if err != nil {
		return err
	}
	state.selection = report
	return nil
}

func (r *Runner) trainLogistic(ctx context.Context, state *runState) error {
	m := model.NewLogistic(model.LogisticConfig{})
	if err := m.Fit(state.trainFrame); err != nil {
		return err
	}
	return r.recordModel(ctx, state, "Logistic", LogisticSubmission, m.PredictProba, 0)
}

func (r *Runner) trainForest(ctx context.Context, state *runState) error {
	forest, tune, err := model.TuneForest(ctx, state.trainFrame, model.ForestConfig{
		Trees: r.cfg.Model.ForestTrees,
		Seed:  r.cfg.Model.Seed,
	}, r.cfg.Model.ForestTrials, r.cfg.Model.Folds)
	if err != nil {
		return err
	}
	return r.recordModel(ctx, state, "RandomForest", ForestSubmission,
		forest.PredictProba, tune.Best.CVAUC)
}

func (r *Runner) trainBoosting(ctx context.Context, state *runState) error {
	b := model.NewBoosting(model.BoostingConfig{
		Rounds: r.cfg.Model.BoostRounds,
		Depth:  r.cfg.Model.BoostDepth,
		Eta:    r.cfg.Model.BoostEta,
	})
	if err := b.Fit(ctx, state.trainFrame); err != nil {
		return err
	}
	return r.recordModel(ctx, state, "GradientBoosting", BoostingSubmission, b.PredictProba, 0)
}

// recordModel evaluates a fitted model on the training frame and stores
// its test-table predictions for the export stage. Test labels do not
// exist, so the confusion matrix and AUC are in-sample.
func (r *Runner) recordModel(ctx context.Context, state *runState, name, file string,
	predict func(*features.Frame) ([]float64, error), cvAUC float64) error {
	logger := infrastructure.LoggerFromContext(ctx)

	trainProbs, err := predict(state.trainFrame)
	if err != nil {
		return fmt.Errorf("%s: predict train: %w", name, err)
	}
	eval, err := metrics.Evaluate(state.trainFrame.Labels, trainProbs, r.cfg.Model.Threshold)
	if err != nil {
		return fmt.Errorf("%s: evaluate: %w", name, err)
	}

	testProbs, err := predict(state.testFrame)
	if err != nil {
		return fmt.Errorf("%s: predict test: %w", name, err)
	}

	state.models = append(state.models, exporter.ModelRow{Name: name, Eval: eval, CVAUC: cvAUC})
	state.submissions[file] = testProbs

	logger.InfoContext(ctx, "model trained",
		slog.String("model", name),
		slog.Float64("accuracy", eval.Accuracy),
		slog.Float64("auc", eval.AUC))
	return nil
}

func (r *Runner) export(ctx context.Context, state *runState) error {
	if err := r.cfg.EnsureOutputDir(); err != nil {
		return err
	}

	for _, file := range []string{LogisticSubmission, ForestSubmission, BoostingSubmission} {
		probs, ok := state.submissions[file]
		if !ok {
			return fmt.Errorf("no predictions for %s", file)
		}
		if err := exporter.WriteSubmission(ctx, r.cfg.SubmissionPath(file), state.test.IDs(), probs); err != nil {
			return err
		}
	}

	w := exporter.NewReportWriter()
	if err := w.AddSummarySheet(state.summaries); err != nil {
		return err
	}
	if err := w.AddMissingSheet(missingColumns(state.train), state.train.Missing); err != nil {
		return err
	}
	if err := w.AddCorrelationSheet(numericColumns, state.correlation); err != nil {
		return err
	}
	if err := w.AddTestsSheet(state.tests); err != nil {
		return err
	}
	if err := w.AddHistogramSheet(state.histograms, histogramColumns); err != nil {
		return err
	}
	if err := w.AddModelsSheet(state.models); err != nil {
		return err
	}
	return w.Save(r.cfg.ReportPath())
}

// indicatorZTest tests whether the churn rate differs between the two
// values of a 0/1 indicator column.
func indicatorZTest(frame *features.Frame, column string) (stats.ZTestResult, error) {
	values, err := frame.Column(column)
	if err != nil {
		return stats.ZTestResult{}, err
	}

	var churn1, n1, churn0, n0 int
	for i, v := range values {
		if v == 1 {
			n1++
			churn1 += frame.Labels[i]
		} else {
			n0++
			churn0 += frame.Labels[i]
		}
	}
	return stats.TwoProportionZTest(churn1, n1, churn0, n0)
}

// indicatorANOVA splits an indicator column by churn outcome and tests
// whether the group means differ.
func indicatorANOVA(frame *features.Frame, column string) (stats.ANOVAResult, error) {
	values, err := frame.Column(column)
	if err != nil {
		return stats.ANOVAResult{}, err
	}

	var stayed, churned []float64
	for i, v := range values {
		if frame.Labels[i] == 1 {
			churned = append(churned, v)
		} else {
			stayed = append(stayed, v)
		}
	}
	return stats.OneWayANOVA(stayed, churned)
}

// missingColumns returns the raw column names of the missing-cell counts
// in a stable order.
func missingColumns(table *dataset.Table) []string {
	columns := make([]string, 0, len(table.Missing))
	for name := range table.Missing {
		columns = append(columns, name)
	}
	sort.Strings(columns)
	return columns
}
