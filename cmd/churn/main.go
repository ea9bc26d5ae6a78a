// Command churn runs the bank customer churn analysis: it loads the
// training and test tables, explores the training data, selects features
// with a cross-validated lasso, trains the three classifiers, and writes
// the per-model submission files and the EDA report workbook.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"churncli/internal/config"
	"churncli/internal/infrastructure"
	"churncli/internal/pipeline"
)

func main() {
	trainPath := flag.String("train", "", "training table (.csv or .xlsx); overrides config")
	testPath := flag.String("test", "", "test table (.csv or .xlsx); overrides config")
	outDir := flag.String("out", "", "output directory; overrides config")
	configFile := flag.String("config", "", "optional YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *trainPath != "" {
		cfg.Data.TrainPath = *trainPath
	}
	if *testPath != "" {
		cfg.Data.TestPath = *testPath
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)
	defer infrastructure.CloseLogFile()

	ctx, runID := infrastructure.NewRunContext(context.Background())
	logger.InfoContext(ctx, "churn analysis starting",
		slog.String("run_id", runID),
		slog.String("train", cfg.Data.TrainPath),
		slog.String("test", cfg.Data.TestPath),
		slog.String("output", cfg.Output.Dir))

	if err := pipeline.NewRunner(cfg).Run(ctx); err != nil {
		logger.ErrorContext(ctx, "churn analysis failed", slog.String("error", err.Error()))
		infrastructure.CloseLogFile()
		os.Exit(1)
	}
	logger.InfoContext(ctx, "churn analysis complete")
}
