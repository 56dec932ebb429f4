package forest

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

type node struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *node
	right     *node
}

func (n *node) predict(v []float64) float64 {
	for !n.leaf {
		if v[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

type builder struct {
	x        [][]float64
	y        []float64
	maxDepth int
	minSplit int
}

func (b *builder) grow(idx []int, depth int) *node {
	targets := make([]float64, len(idx))
	for i, r := range idx {
		targets[i] = b.y[r]
	}
	leaf := &node{leaf: true, value: stat.Mean(targets, nil)}

	if depth >= b.maxDepth || len(idx) < b.minSplit || constant(targets) {
		return leaf
	}

	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return leaf
	}

	var left, right []int
	for _, r := range idx {
		if b.x[r][feature] <= threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return leaf
	}

	return &node{
		feature:   feature,
		threshold: threshold,
		left:      b.grow(left, depth+1),
		right:     b.grow(right, depth+1),
	}
}

// bestSplit scans every feature for the threshold minimising the summed
// squared error of the two children.
func (b *builder) bestSplit(idx []int) (feature int, threshold float64, ok bool) {
	n := len(idx)
	sorted := make([]int, n)
	bestSSE := 0.0

	for f := range b.x[idx[0]] {
		copy(sorted, idx)
		slices.SortStableFunc(sorted, func(i, j int) int {
			switch a, c := b.x[i][f], b.x[j][f]; {
			case a < c:
				return -1
			case a > c:
				return 1
			}
			return 0
		})

		var totalSum, totalSq float64
		for _, r := range sorted {
			totalSum += b.y[r]
			totalSq += b.y[r] * b.y[r]
		}

		var leftSum, leftSq float64
		for k := 0; k < n-1; k++ {
			yk := b.y[sorted[k]]
			leftSum += yk
			leftSq += yk * yk

			lo, hi := b.x[sorted[k]][f], b.x[sorted[k+1]][f]
			if lo == hi {
				continue
			}

			nl, nr := float64(k+1), float64(n-k-1)
			rightSum, rightSq := totalSum-leftSum, totalSq-leftSq
			sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)

			if !ok || sse < bestSSE {
				bestSSE = sse
				feature = f
				threshold = lo + (hi-lo)/2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func constant(v []float64) bool {
	for _, x := range v[1:] {
		if x != v[0] {
			return false
		}
	}
	return true
}
