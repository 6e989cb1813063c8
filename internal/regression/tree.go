package regression

import (
	"math/rand"
	"sort"
)

type treeNode struct {
	feature     int
	threshold   float64
	left, right int
	value       float64
	leaf        bool
}

// Tree is a CART regression tree grown with the squared-error criterion
// down to single-sample leaves.
type Tree struct {
	nodes []treeNode
}

// fitTree grows a tree on the rows of X selected by idx. Duplicated
// indices (bootstrap draws) count once per occurrence.
func fitTree(X [][]float64, y []float64, idx []int) *Tree {
	t := &Tree{}
	t.grow(X, y, idx)
	return t
}

func (t *Tree) grow(X [][]float64, y []float64, idx []int) int {
	id := len(t.nodes)
	t.nodes = append(t.nodes, treeNode{leaf: true, value: meanAt(y, idx)})
	if len(idx) < 2 || constantAt(y, idx) {
		return id
	}

	feature, threshold, ok := bestSplit(X, y, idx)
	if !ok {
		return id
	}
	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return id
	}
	l := t.grow(X, y, left)
	r := t.grow(X, y, right)
	t.nodes[id] = treeNode{feature: feature, threshold: threshold, left: l, right: r}
	return id
}

// bestSplit scans every feature for the threshold minimizing the summed
// squared error of both children. Thresholds sit midway between distinct values.
func bestSplit(X [][]float64, y []float64, idx []int) (feature int, threshold float64, ok bool) {
	n := len(idx)
	var total, totalSq float64
	for _, i := range idx {
		total += y[i]
		totalSq += y[i] * y[i]
	}

	best := totalSq - total*total/float64(n)
	sorted := make([]int, n)
	for f := range X[idx[0]] {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, b int) bool { return X[sorted[a]][f] < X[sorted[b]][f] })

		var sumL, sqL float64
		for k := 1; k < n; k++ {
			yi := y[sorted[k-1]]
			sumL += yi
			sqL += yi * yi
			lo, hi := X[sorted[k-1]][f], X[sorted[k]][f]
			if lo == hi {
				continue
			}
			nl, nr := float64(k), float64(n-k)
			sumR, sqR := total-sumL, totalSq-sqL
			sse := (sqL - sumL*sumL/nl) + (sqR - sumR*sumR/nr)
			if !ok || sse < best {
				best = sse
				feature = f
				threshold = splitPoint(lo, hi)
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

// splitPoint returns the midpoint of lo < hi. Adjacent floats can round the
// midpoint up to hi, which would put every row on the left; lo is used then.
func splitPoint(lo, hi float64) float64 {
	m := lo + (hi-lo)/2
	if m == hi {
		return lo
	}
	return m
}

// Predict walks the tree for one row.
func (t *Tree) Predict(x []float64) float64 {
	n := t.nodes[0]
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = t.nodes[n.left]
		} else {
			n = t.nodes[n.right]
		}
	}
	return n.value
}

func bootstrap(rng *rand.Rand, n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = rng.Intn(n)
	}
	return idx
}

func meanAt(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	s := 0.0
	for _, i := range idx {
		s += y[i]
	}
	return s / float64(len(idx))
}

func constantAt(y []float64, idx []int) bool {
	for _, i := range idx[1:] {
		if y[i] != y[idx[0]] {
			return false
		}
	}
	return true
}
