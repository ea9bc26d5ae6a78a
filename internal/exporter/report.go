package exporter

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"churncli/internal/metrics"
	"churncli/internal/stats"
)

// HypothesisRow is one hypothesis-test line on the Tests sheet.
type HypothesisRow struct {
	Test      string // e.g. "two-proportion z"
	Feature   string
	Statistic float64
	PValue    float64
}

// ModelRow is one model's evaluation line on the Models sheet.
type ModelRow struct {
	Name  string
	Eval  metrics.Evaluation
	CVAUC float64 // cross-validated score where a search ran; 0 otherwise
}

// ReportWriter assembles the EDA report workbook: descriptive summaries,
// missing-cell counts, the correlation matrix, hypothesis tests,
// histogram bin tables and per-model evaluations.
type ReportWriter struct {
	file *excelize.File
}

// NewReportWriter creates an empty report workbook.
func NewReportWriter() *ReportWriter {
	return &ReportWriter{file: excelize.NewFile()}
}

// AddSummarySheet writes descriptive statistics, one column per row.
func (w *ReportWriter) AddSummarySheet(summaries []stats.Summary) error {
	const sheet = "Summary"
	if err := w.newSheet(sheet); err != nil {
		return err
	}
	if err := w.setRow(sheet, 1, []any{"Column", "Count", "Mean", "Std", "Min", "Q25", "Median", "Q75", "Max"}); err != nil {
		return err
	}
	for i, s := range summaries {
		row := []any{s.Column, s.Count, s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max}
		if err := w.setRow(sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

// AddMissingSheet writes per-column missing-cell counts in column order.
func (w *ReportWriter) AddMissingSheet(columns []string, missing map[string]int) error {
	const sheet = "Missing"
	if err := w.newSheet(sheet); err != nil {
		return err
	}
	if err := w.setRow(sheet, 1, []any{"Column", "MissingCells"}); err != nil {
		return err
	}
	for i, column := range columns {
		if err := w.setRow(sheet, i+2, []any{column, missing[column]}); err != nil {
			return err
		}
	}
	return nil
}

// AddCorrelationSheet writes the Pearson correlation matrix.
func (w *ReportWriter) AddCorrelationSheet(columns []string, matrix [][]float64) error {
	const sheet = "Correlation"
	if len(matrix) != len(columns) {
		return fmt.Errorf("correlation matrix has %d rows for %d columns", len(matrix), len(columns))
	}
	if err := w.newSheet(sheet); err != nil {
		return err
	}

	header := make([]any, 0, len(columns)+1)
	header = append(header, "")
	for _, c := range columns {
		header = append(header, c)
	}
	if err := w.setRow(sheet, 1, header); err != nil {
		return err
	}
	for i, column := range columns {
		row := make([]any, 0, len(columns)+1)
		row = append(row, column)
		for _, v := range matrix[i] {
			row = append(row, v)
		}
		if err := w.setRow(sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

// AddTestsSheet writes the hypothesis-test results.
func (w *ReportWriter) AddTestsSheet(rows []HypothesisRow) error {
	const sheet = "Tests"
	if err := w.newSheet(sheet); err != nil {
		return err
	}
	if err := w.setRow(sheet, 1, []any{"Test", "Feature", "Statistic", "PValue"}); err != nil {
		return err
	}
	for i, r := range rows {
		if err := w.setRow(sheet, i+2, []any{r.Test, r.Feature, r.Statistic, r.PValue}); err != nil {
			return err
		}
	}
	return nil
}

// Histogram is one column's equal-width bin table. Edges has one more
// entry than Counts.
type Histogram struct {
	Edges  []float64
	Counts []int
}

// AddHistogramSheet writes histogram bin tables, stacked vertically with
// a title row per column.
func (w *ReportWriter) AddHistogramSheet(histograms map[string]Histogram, order []string) error {
	const sheet = "Histograms"
	if err := w.newSheet(sheet); err != nil {
		return err
	}

	rowNum := 1
	for _, name := range order {
		h, ok := histograms[name]
		if !ok {
			return fmt.Errorf("no histogram for column %q", name)
		}
		if err := w.setRow(sheet, rowNum, []any{name}); err != nil {
			return err
		}
		if err := w.setRow(sheet, rowNum+1, []any{"BinStart", "BinEnd", "Count"}); err != nil {
			return err
		}
		for i, count := range h.Counts {
			if err := w.setRow(sheet, rowNum+2+i, []any{h.Edges[i], h.Edges[i+1], count}); err != nil {
				return err
			}
		}
		rowNum += len(h.Counts) + 3
	}
	return nil
}

// AddModelsSheet writes per-model evaluations.
func (w *ReportWriter) AddModelsSheet(rows []ModelRow) error {
	const sheet = "Models"
	if err := w.newSheet(sheet); err != nil {
		return err
	}
	header := []any{"Model", "TP", "FP", "TN", "FN", "Accuracy", "Precision", "Recall", "F1", "AUC", "CVAUC"}
	if err := w.setRow(sheet, 1, header); err != nil {
		return err
	}
	for i, r := range rows {
		row := []any{
			r.Name, r.Eval.TP, r.Eval.FP, r.Eval.TN, r.Eval.FN,
			r.Eval.Accuracy, cellFloat(r.Eval.Precision), cellFloat(r.Eval.Recall),
			cellFloat(r.Eval.F1), r.Eval.AUC, r.CVAUC,
		}
		if err := w.setRow(sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the workbook, dropping the default empty sheet first.
func (w *ReportWriter) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	if err := w.file.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("save report workbook: %w", err)
	}
	return w.file.Close()
}

func (w *ReportWriter) newSheet(name string) error {
	if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	return nil
}

func (w *ReportWriter) setRow(sheet string, rowNum int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("sheet %s row %d: %w", sheet, rowNum, err)
	}
	if err := w.file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("sheet %s row %d: %w", sheet, rowNum, err)
	}
	return nil
}

// cellFloat maps NaN metrics to an empty cell; excelize cannot store NaN.
func cellFloat(v float64) any {
	if math.IsNaN(v) {
		return ""
	}
	return v
}
