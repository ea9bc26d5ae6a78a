// Package metrics evaluates binary classifiers: confusion counts,
// accuracy, precision, recall, F1 and ROC-AUC. The same evaluator is
// shared by all three models so their numbers are directly comparable.
package metrics
