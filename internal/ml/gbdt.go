package ml

// Fixed hyperparameters of the boosted ensemble. The model is retrained
// from scratch on every training call, so reproducibility comes from the
// deterministic greedy splits rather than any seed.
const (
	maxDepth     = 6
	learningRate = 0.1
	numRounds    = 100
	minLeafSize  = 2
)

// Sample is one (feature vector, observed price) training pair.
type Sample struct {
	Features []float64
	Price    float64
}

// Ensemble is a gradient-boosted regression forest: a base prediction
// (the target mean) plus shrunken tree corrections fitted on residuals.
type Ensemble struct {
	base  float64
	trees []*treeNode
}

// fitEnsemble trains the boosted trees on the given samples.
func fitEnsemble(samples []Sample) *Ensemble {
	features := make([][]float64, len(samples))
	residuals := make([]float64, len(samples))
	predictions := make([]float64, len(samples))

	base := 0.0
	for i, s := range samples {
		features[i] = s.Features
		base += s.Price
	}
	base /= float64(len(samples))

	e := &Ensemble{base: base}
	for i := range predictions {
		predictions[i] = base
	}

	for round := 0; round < numRounds; round++ {
		for i, s := range samples {
			residuals[i] = s.Price - predictions[i]
		}

		tree := buildTree(features, residuals, 0, maxDepth, minLeafSize)
		e.trees = append(e.trees, tree)

		for i, f := range features {
			predictions[i] += learningRate * tree.predict(f)
		}
	}
	return e
}

// Predict returns the ensemble's point estimate for one feature vector.
func (e *Ensemble) Predict(features []float64) float64 {
	out := e.base
	for _, tree := range e.trees {
		out += learningRate * tree.predict(features)
	}
	return out
}
