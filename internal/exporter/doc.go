// Package exporter writes the pipeline outputs: leaderboard submission
// CSV files (one per model) and the Excel EDA report workbook.
package exporter
