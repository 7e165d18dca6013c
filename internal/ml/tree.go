package ml

import "sort"

// treeNode is one node of a regression tree. Leaves carry the mean
// residual of the samples that reached them.
type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

func (n *treeNode) predict(features []float64) float64 {
	for !n.leaf {
		if features[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// buildTree fits a depth-bounded regression tree on (features, target)
// pairs by greedy SSE-minimizing splits.
func buildTree(features [][]float64, targets []float64, depth, maxDepth, minLeaf int) *treeNode {
	if depth >= maxDepth || len(targets) < 2*minLeaf {
		return &treeNode{leaf: true, value: mean(targets)}
	}

	feature, threshold, ok := bestSplit(features, targets, minLeaf)
	if !ok {
		return &treeNode{leaf: true, value: mean(targets)}
	}

	var leftF, rightF [][]float64
	var leftT, rightT []float64
	for i, f := range features {
		if f[feature] <= threshold {
			leftF = append(leftF, f)
			leftT = append(leftT, targets[i])
		} else {
			rightF = append(rightF, f)
			rightT = append(rightT, targets[i])
		}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      buildTree(leftF, leftT, depth+1, maxDepth, minLeaf),
		right:     buildTree(rightF, rightT, depth+1, maxDepth, minLeaf),
	}
}

// bestSplit scans every feature and every midpoint between adjacent
// distinct values, keeping the split with the lowest weighted SSE.
func bestSplit(features [][]float64, targets []float64, minLeaf int) (int, float64, bool) {
	bestSSE := sse(targets)
	bestFeature, bestThreshold := -1, 0.0

	for f := 0; f < FeatureCount; f++ {
		values := make([]float64, 0, len(features))
		for _, row := range features {
			values = append(values, row[f])
		}
		sort.Float64s(values)

		for i := 1; i < len(values); i++ {
			if values[i] == values[i-1] {
				continue
			}
			threshold := (values[i] + values[i-1]) / 2

			var left, right []float64
			for j, row := range features {
				if row[f] <= threshold {
					left = append(left, targets[j])
				} else {
					right = append(right, targets[j])
				}
			}
			if len(left) < minLeaf || len(right) < minLeaf {
				continue
			}

			if total := sse(left) + sse(right); total < bestSSE {
				bestSSE = total
				bestFeature = f
				bestThreshold = threshold
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sse(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	total := 0.0
	for _, v := range values {
		d := v - m
		total += d * d
	}
	return total
}
