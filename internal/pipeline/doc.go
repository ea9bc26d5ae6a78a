// Package pipeline sequences the churn analysis stages: table loading,
// exploratory statistics, feature construction, lasso feature selection,
// the three model trainers, and the submission and report writers. Stages
// run strictly in order; the first failure aborts the run.
package pipeline
