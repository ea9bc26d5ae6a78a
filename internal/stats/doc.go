// Package stats provides the exploratory statistics of the pipeline:
// descriptive summaries, Pearson correlation matrices, histogram binning,
// two-proportion z-tests and one-way ANOVA. Distribution quantiles and
// p-values come from gonum.
package stats
