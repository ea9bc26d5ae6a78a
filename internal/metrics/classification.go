package metrics

import (
	"fmt"
	"math"
	"sort"
)

// Evaluation holds confusion-matrix derived metrics and the ROC-AUC for a
// binary classifier. The positive class is pinned to label 1: TP counts
// rows with actual == 1 and predicted == 1. Precision is NaN when the
// classifier makes no positive predictions; use PrecisionDefined to
// branch on that.
type Evaluation struct {
	TP int
	FP int
	TN int
	FN int

	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
	AUC       float64
}

// PrecisionDefined reports whether any positive predictions were made.
func (e Evaluation) PrecisionDefined() bool {
	return e.TP+e.FP > 0
}

// Evaluate computes confusion counts, accuracy, precision, recall, F1 and
// ROC-AUC for parallel actual labels and predicted probabilities. Labels
// above threshold are predicted positive.
func Evaluate(actual []int, probs []float64, threshold float64) (Evaluation, error) {
	if len(actual) == 0 {
		return Evaluation{}, fmt.Errorf("no observations")
	}
	if len(actual) != len(probs) {
		return Evaluation{}, fmt.Errorf("length mismatch: %d actual vs %d predicted", len(actual), len(probs))
	}

	var e Evaluation
	for i, a := range actual {
		if a != 0 && a != 1 {
			return Evaluation{}, fmt.Errorf("observation %d: label %d is not 0 or 1", i, a)
		}
		predicted := 0
		if probs[i] >= threshold {
			predicted = 1
		}
		switch {
		case a == 1 && predicted == 1:
			e.TP++
		case a == 0 && predicted == 1:
			e.FP++
		case a == 0 && predicted == 0:
			e.TN++
		default:
			e.FN++
		}
	}

	n := float64(len(actual))
	e.Accuracy = float64(e.TP+e.TN) / n

	if e.TP+e.FP > 0 {
		e.Precision = float64(e.TP) / float64(e.TP+e.FP)
	} else {
		e.Precision = math.NaN()
	}

	if e.TP+e.FN > 0 {
		e.Recall = float64(e.TP) / float64(e.TP+e.FN)
	} else {
		e.Recall = math.NaN()
	}

	switch {
	case math.IsNaN(e.Precision) || math.IsNaN(e.Recall):
		e.F1 = math.NaN()
	case e.Precision+e.Recall == 0:
		e.F1 = 0
	default:
		e.F1 = 2 * e.Precision * e.Recall / (e.Precision + e.Recall)
	}

	auc, err := AUC(actual, probs)
	if err != nil {
		return Evaluation{}, err
	}
	e.AUC = auc

	return e, nil
}

// AUC computes the area under the ROC curve using the Mann-Whitney rank
// statistic with midrank tie handling. It errors when only one class is
// present, since ranking quality is undefined there.
func AUC(actual []int, probs []float64) (float64, error) {
	if len(actual) != len(probs) {
		return 0, fmt.Errorf("length mismatch: %d actual vs %d predicted", len(actual), len(probs))
	}

	n := len(actual)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return probs[order[a]] < probs[order[b]]
	})

	// Midranks: tied scores share the average of their rank positions.
	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && probs[order[j]] == probs[order[i]] {
			j++
		}
		// Ranks are 1-based; positions i..j-1 average to (i+j+1)/2.
		mid := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = mid
		}
		i = j
	}

	positives := 0
	rankSum := 0.0
	for i, a := range actual {
		if a == 1 {
			positives++
			rankSum += ranks[i]
		}
	}
	negatives := n - positives
	if positives == 0 || negatives == 0 {
		return 0, fmt.Errorf("AUC undefined: only one class present")
	}

	u := rankSum - float64(positives)*float64(positives+1)/2
	return u / (float64(positives) * float64(negatives)), nil
}
