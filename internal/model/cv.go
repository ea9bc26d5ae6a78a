package model

import (
	"fmt"
	"math/rand"
)

// KFold splits the indices [0, n) into k shuffled folds. Every index
// appears in exactly one fold, and fold sizes differ by at most one.
func KFold(n, k int, seed int64) ([][]int, error) {
	if k < 2 {
		return nil, fmt.Errorf("need at least 2 folds, got %d", k)
	}
	if n < k {
		return nil, fmt.Errorf("cannot split %d rows into %d folds", n, k)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	folds := make([][]int, k)
	for i, idx := range perm {
		f := i % k
		folds[f] = append(folds[f], idx)
	}
	return folds, nil
}

// trainIndices returns all indices not in the held-out fold.
func trainIndices(folds [][]int, held int) []int {
	var out []int
	for f, fold := range folds {
		if f == held {
			continue
		}
		out = append(out, fold...)
	}
	return out
}

// subset gathers the rows and labels at the given indices.
func subset(rows [][]float64, labels []int, indices []int) ([][]float64, []int) {
	outRows := make([][]float64, len(indices))
	outLabels := make([]int, len(indices))
	for i, idx := range indices {
		outRows[i] = rows[idx]
		outLabels[i] = labels[idx]
	}
	return outRows, outLabels
}
