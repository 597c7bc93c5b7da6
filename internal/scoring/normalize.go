// Package scoring holds the numeric primitives shared by every ranking pipeline:
// normalization of raw comparisons into a [0,1] desirability value and the
// weighted aggregation of those values into a 0-100 integer score.
//
// All functions are pure. Malformed input (NaN) is not rejected and propagates
// through the float arithmetic; callers validate upstream.
package scoring

// Clamp restricts value to [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Normalize maps value linearly from [min, max] onto [0, 1], clamping values
// outside the range. A degenerate range (min == max) yields 0.
func Normalize(value, min, max float64) float64 {
	if min == max {
		return 0
	}
	return Clamp((value-min)/(max-min), 0, 1)
}

// NormalizeInverse is 1 - Normalize, for criteria where lower is better.
func NormalizeInverse(value, min, max float64) float64 {
	return 1 - Normalize(value, min, max)
}

func NormalizeBoolean(value bool) float64 {
	if value {
		return 1
	}
	return 0
}

func NormalizeMatch[T comparable](value, target T) float64 {
	if value == target {
		return 1
	}
	return 0
}

// NormalizePartialMatch returns the fraction of targets present in values.
// No targets means no preference and scores 1.
func NormalizePartialMatch[T comparable](values, targets []T) float64 {
	if len(targets) == 0 {
		return 1
	}
	if len(values) == 0 {
		return 0
	}

	present := make(map[T]struct{}, len(values))
	for _, v := range values {
		present[v] = struct{}{}
	}

	hits := 0
	for _, t := range targets {
		if _, ok := present[t]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(targets))
}

// NormalizeRange is 0 outside [min, max] and otherwise a triangle peaking at the
// midpoint: NormalizeInverse(|value-mid|, 0, (max-min)/2).
func NormalizeRange(value, min, max float64) float64 {
	if value < min || value > max {
		return 0
	}
	mid := (min + max) / 2
	distance := value - mid
	if distance < 0 {
		distance = -distance
	}
	return NormalizeInverse(distance, 0, (max-min)/2)
}
