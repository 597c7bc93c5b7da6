package scoring

import "math"

const (
	DefaultPenaltyFactor = 0.5
	DefaultBonusFactor   = 1.1

	MaxScore = 100
)

// WeightedScore is one criterion's normalized value and its weight. Label is
// informational and does not affect aggregation.
type WeightedScore struct {
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
	Label  string  `json:"label,omitempty"`
}

// WeightedSum aggregates scores into round(100 * Σ(value·weight) / Σ(weight)).
// Weights need not sum to 1. An empty list, a zero total weight or a NaN
// aggregate all produce 0; the result is always within [0, 100].
func WeightedSum(scores []WeightedScore) int {
	if len(scores) == 0 {
		return 0
	}

	var total, weightSum float64
	for _, s := range scores {
		total += s.Value * s.Weight
		weightSum += s.Weight
	}
	if weightSum == 0 {
		return 0
	}

	score := math.Round(MaxScore * total / weightSum)
	if math.IsNaN(score) {
		return 0
	}
	return int(Clamp(score, 0, MaxScore))
}

// CombineScores builds equally weighted scores when weights is nil. Missing
// trailing weights default to 1.
func CombineScores(scores []float64, weights []float64) int {
	weighted := make([]WeightedScore, len(scores))
	for i, v := range scores {
		w := 1.0
		if i < len(weights) {
			w = weights[i]
		}
		weighted[i] = WeightedScore{Value: v, Weight: w}
	}
	return WeightedSum(weighted)
}

// CalculatePenalty returns a multiplier: penaltyFactor when violated, 1 otherwise.
func CalculatePenalty(hasViolation bool, penaltyFactor float64) float64 {
	if hasViolation {
		return penaltyFactor
	}
	return 1
}

// ApplyBonus scales baseScore by bonusFactor when eligible, never above 100.
func ApplyBonus(baseScore float64, hasBonus bool, bonusFactor float64) float64 {
	if !hasBonus {
		return baseScore
	}
	return math.Min(MaxScore, baseScore*bonusFactor)
}
