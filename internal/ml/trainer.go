package ml

import (
	"errors"
	"math"
)

// ErrNoSamples is returned when there is nothing to train on. Callers
// treat it as "no model available", not as a failure.
var ErrNoSamples = errors.New("no training samples")

// Model is a trained ensemble together with its cross-validated quality
// estimate. RMSE/MAE of 0 mean "unknown" (no cross-validation ran),
// not "perfect".
type Model struct {
	ensemble *Ensemble
	RMSE     float64
	MAE      float64
}

// Predict returns the raw point estimate for one feature vector.
func (m *Model) Predict(features []float64) float64 {
	return m.ensemble.Predict(features)
}

// Train fits a gradient-boosted model with k-fold cross-validation.
// Samples are split into k contiguous folds without shuffling; ordering
// is assumed deterministic so repeated runs agree. The model from the
// fold with the lowest held-out RMSE is kept, while the reported
// RMSE/MAE are the averages across folds. With fewer than 2k samples
// cross-validation is skipped and a single model is fitted on everything.
func Train(samples []Sample, k int) (*Model, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	if k < 2 || len(samples) < 2*k {
		return &Model{ensemble: fitEnsemble(samples)}, nil
	}

	var (
		best     *Ensemble
		bestRMSE = math.Inf(1)
		sumRMSE  float64
		sumMAE   float64
	)

	n := len(samples)
	for fold := 0; fold < k; fold++ {
		lo := fold * n / k
		hi := (fold + 1) * n / k

		train := make([]Sample, 0, n-(hi-lo))
		train = append(train, samples[:lo]...)
		train = append(train, samples[hi:]...)
		held := samples[lo:hi]

		ensemble := fitEnsemble(train)
		rmse, mae := evaluate(ensemble, held)

		sumRMSE += rmse
		sumMAE += mae
		if rmse < bestRMSE {
			bestRMSE = rmse
			best = ensemble
		}
	}

	return &Model{
		ensemble: best,
		RMSE:     sumRMSE / float64(k),
		MAE:      sumMAE / float64(k),
	}, nil
}

func evaluate(e *Ensemble, held []Sample) (rmse, mae float64) {
	if len(held) == 0 {
		return 0, 0
	}
	var sq, abs float64
	for _, s := range held {
		d := e.Predict(s.Features) - s.Price
		sq += d * d
		abs += math.Abs(d)
	}
	n := float64(len(held))
	return math.Sqrt(sq / n), abs / n
}
