package scoring

import (
	"kvk-ranker/internal/constants"
	"kvk-ranker/internal/domain"
	"math"
)

func DefaultWeights() domain.ScoringWeights {
	return domain.ScoringWeights{T5: constants.DefaultWeightT5, T4: constants.DefaultWeightT4}
}

// ClampWeight bounds a user-entered multiplier to the range the entry form
// allows. Non-finite input becomes the minimum.
func ClampWeight(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, -1) {
		return constants.MinWeight
	}
	return math.Min(math.Max(math.Trunc(v), constants.MinWeight), constants.MaxWeight)
}

func ClampWeights(w domain.ScoringWeights) domain.ScoringWeights {
	return domain.ScoringWeights{T5: ClampWeight(w.T5), T4: ClampWeight(w.T4)}
}
