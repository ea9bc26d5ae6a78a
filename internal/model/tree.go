package model

import (
	"math/rand"
	"sort"
)

// treeConfig bounds the growth of a single regression tree.
type treeConfig struct {
	maxDepth       int // root is depth 0; 0 means no depth limit
	minSamplesLeaf int
	maxFeatures    int // features sampled per split; 0 means all
}

// regTree is a CART regression tree: axis-aligned numeric splits chosen
// by variance reduction, mean-target leaves. On 0/1 targets the variance
// criterion ranks splits identically to Gini impurity, so the same tree
// serves both the forest (class fractions) and boosting (residual fits).
type regTree struct {
	root   *treeNode
	leaves []*treeNode
}

type treeNode struct {
	leaf      bool
	feature   int
	threshold float64 // x[feature] <= threshold goes left
	left      *treeNode
	right     *treeNode

	value   float64
	samples []int // training rows that landed in this leaf
}

// fitTree grows a regression tree over rows[indices] against targets.
// rng drives per-split feature subsampling; nil disables subsampling.
func fitTree(rows [][]float64, targets []float64, indices []int, cfg treeConfig, rng *rand.Rand) *regTree {
	if cfg.minSamplesLeaf < 1 {
		cfg.minSamplesLeaf = 1
	}
	t := &regTree{}
	t.root = t.grow(rows, targets, indices, 0, cfg, rng)
	return t
}

func (t *regTree) grow(rows [][]float64, targets []float64, indices []int, depth int, cfg treeConfig, rng *rand.Rand) *treeNode {
	sum := 0.0
	for _, idx := range indices {
		sum += targets[idx]
	}
	node := &treeNode{value: sum / float64(len(indices))}

	if (cfg.maxDepth > 0 && depth >= cfg.maxDepth) || len(indices) < 2*cfg.minSamplesLeaf {
		return t.seal(node, indices)
	}

	feature, threshold, ok := bestSplit(rows, targets, indices, cfg, rng)
	if !ok {
		return t.seal(node, indices)
	}

	var left, right []int
	for _, idx := range indices {
		if rows[idx][feature] <= threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	if len(left) < cfg.minSamplesLeaf || len(right) < cfg.minSamplesLeaf {
		return t.seal(node, indices)
	}

	node.feature = feature
	node.threshold = threshold
	node.left = t.grow(rows, targets, left, depth+1, cfg, rng)
	node.right = t.grow(rows, targets, right, depth+1, cfg, rng)
	return node
}

// seal marks a node as a leaf and records its training rows.
func (t *regTree) seal(node *treeNode, indices []int) *treeNode {
	node.leaf = true
	node.samples = append([]int(nil), indices...)
	t.leaves = append(t.leaves, node)
	return node
}

// bestSplit finds the (feature, threshold) pair maximizing the variance
// reduction over the node's rows. ok is false when no split improves.
func bestSplit(rows [][]float64, targets []float64, indices []int, cfg treeConfig, rng *rand.Rand) (feature int, threshold float64, ok bool) {
	p := len(rows[indices[0]])

	candidates := make([]int, p)
	for j := range candidates {
		candidates[j] = j
	}
	if cfg.maxFeatures > 0 && cfg.maxFeatures < p && rng != nil {
		perm := rng.Perm(p)
		candidates = perm[:cfg.maxFeatures]
		sort.Ints(candidates)
	}

	type pair struct {
		value  float64
		target float64
	}

	n := len(indices)
	totalSum := 0.0
	for _, idx := range indices {
		totalSum += targets[idx]
	}
	// Maximizing sumL^2/nL + sumR^2/nR is equivalent to minimizing the
	// post-split sum of squared errors.
	baseScore := totalSum * totalSum / float64(n)
	bestScore := baseScore

	pairs := make([]pair, n)
	for _, j := range candidates {
		for i, idx := range indices {
			pairs[i] = pair{value: rows[idx][j], target: targets[idx]}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].value < pairs[b].value })

		leftSum := 0.0
		for i := 0; i < n-1; i++ {
			leftSum += pairs[i].target
			if pairs[i].value == pairs[i+1].value {
				continue
			}
			nL := i + 1
			nR := n - nL
			if nL < cfg.minSamplesLeaf || nR < cfg.minSamplesLeaf {
				continue
			}
			rightSum := totalSum - leftSum
			score := leftSum*leftSum/float64(nL) + rightSum*rightSum/float64(nR)
			if score > bestScore+1e-12 {
				bestScore = score
				feature = j
				threshold = (pairs[i].value + pairs[i+1].value) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

// predict returns the leaf value for one row.
func (t *regTree) predict(row []float64) float64 {
	node := t.root
	for !node.leaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

// updateLeaves recomputes every leaf value from its training rows.
// Boosting uses this for Newton leaf estimates after fitting on raw
// residuals.
func (t *regTree) updateLeaves(value func(samples []int) float64) {
	for _, leaf := range t.leaves {
		leaf.value = value(leaf.samples)
	}
}
