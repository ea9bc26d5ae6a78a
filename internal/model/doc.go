// Package model implements the three churn classifiers: logistic
// regression (with an optional L1 penalty used for feature selection),
// a bootstrap random forest with cross-validated hyperparameter search,
// and gradient-boosted trees under the binary-logistic objective.
//
// All trainers operate on feature frames, are fitted exactly once, and
// are deterministic under a fixed seed. Prediction verifies that the
// incoming frame carries the training columns in the training order, so
// a train/test encoding drift surfaces as an error instead of silently
// wrong probabilities.
package model
