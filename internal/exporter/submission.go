package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"churncli/internal/infrastructure"
)

// WriteSubmission writes a two-column leaderboard submission file: the
// test-table id and the predicted churn probability. Row order follows
// the input order. The file is rejected before writing when ids and
// probabilities disagree in length, an id repeats, or a probability
// falls outside [0, 1].
func WriteSubmission(ctx context.Context, path string, ids []int64, probs []float64) error {
	logger := infrastructure.LoggerFromContext(ctx)

	if len(ids) == 0 {
		return fmt.Errorf("submission %s: no rows", path)
	}
	if len(ids) != len(probs) {
		return fmt.Errorf("submission %s: %d ids vs %d probabilities", path, len(ids), len(probs))
	}

	seen := make(map[int64]bool, len(ids))
	for i, id := range ids {
		if seen[id] {
			return fmt.Errorf("submission %s: duplicate id %d", path, id)
		}
		seen[id] = true
		if probs[i] < 0 || probs[i] > 1 {
			return fmt.Errorf("submission %s: probability %g for id %d outside [0,1]", path, probs[i], id)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create submission directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create submission file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"id", "Exited"}); err != nil {
		return fmt.Errorf("write submission header: %w", err)
	}
	for i, id := range ids {
		record := []string{
			strconv.FormatInt(id, 10),
			strconv.FormatFloat(probs[i], 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write submission row %d: %w", i, err)
		}
	}
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush submission: %w", err)
	}

	logger.InfoContext(ctx, "submission written",
		slog.String("path", path),
		slog.Int("rows", len(ids)))
	return nil
}
