package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightedSum(t *testing.T) {
	tests := []struct {
		name     string
		scores   []WeightedScore
		expected int
	}{
		{"nil list", nil, 0},
		{"empty list", []WeightedScore{}, 0},
		{"zero weight", []WeightedScore{{Value: 1, Weight: 0}}, 0},
		{"single full", []WeightedScore{{Value: 1, Weight: 0.25}}, 100},
		{
			"weights need not sum to one",
			[]WeightedScore{{Value: 1, Weight: 2}, {Value: 0, Weight: 2}},
			50,
		},
		{
			"rounds half up",
			[]WeightedScore{{Value: 0.875, Weight: 1}},
			88,
		},
		{
			"mixed criteria",
			[]WeightedScore{
				{Value: 1, Weight: 0.25, Label: "budget"},
				{Value: 0.5, Weight: 0.25, Label: "cash"},
				{Value: 0.3, Weight: 0.2, Label: "body"},
			},
			// (0.25 + 0.125 + 0.06) / 0.7 = 0.6214
			62,
		},
		{"out of range values are clamped", []WeightedScore{{Value: 3, Weight: 1}}, 100},
		{"NaN aggregate", []WeightedScore{{Value: math.NaN(), Weight: 1}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, WeightedSum(tt.scores))
		})
	}
}

func TestCombineScores(t *testing.T) {
	assert.Equal(t, 50, CombineScores([]float64{1, 0}, nil))
	assert.Equal(t, 75, CombineScores([]float64{1, 0}, []float64{3, 1}))
	// second weight missing, defaults to 1
	assert.Equal(t, 75, CombineScores([]float64{1, 0.5}, []float64{1}))
	assert.Equal(t, 0, CombineScores(nil, nil))
}

func TestCalculatePenalty(t *testing.T) {
	assert.Equal(t, DefaultPenaltyFactor, CalculatePenalty(true, DefaultPenaltyFactor))
	assert.Equal(t, 1.0, CalculatePenalty(false, DefaultPenaltyFactor))
	assert.Equal(t, 0.2, CalculatePenalty(true, 0.2))
}

func TestApplyBonus(t *testing.T) {
	assert.Equal(t, 100.0, ApplyBonus(95, true, 2.0))
	assert.InDelta(t, 88.0, ApplyBonus(80, true, DefaultBonusFactor), 1e-9)
	assert.Equal(t, 80.0, ApplyBonus(80, false, DefaultBonusFactor))

	for base := 0.0; base <= 100; base += 5 {
		assert.LessOrEqual(t, ApplyBonus(base, true, 3), 100.0)
	}
}
