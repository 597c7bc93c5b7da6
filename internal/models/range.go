// internal/models/range.go
package models

import "math"

// Range is an inclusive [min, max] pair. It travels as a two element JSON array,
// matching the wizard payloads.
type Range [2]float64

func NewRange(min, max float64) Range {
	return Range{min, max}
}

func (r Range) Min() float64 { return r[0] }

func (r Range) Max() float64 { return r[1] }

func (r Range) Mid() float64 { return (r[0] + r[1]) / 2 }

func (r Range) Contains(v float64) bool {
	return v >= r[0] && v <= r[1]
}

// DistanceFromMid is |v - mid|, the quantity budget criteria penalise when a value
// falls outside the range.
func (r Range) DistanceFromMid(v float64) float64 {
	return math.Abs(v - r.Mid())
}
