// Package core contains the pure numeric kernels of the derivation layer.
// Everything here operates on plain slices, carries no I/O, and treats
// NaN as the missing-value marker.
package core

import (
	"math"
)

// -----------------------------------------------------------------------------

// CalculateChangePercent computes the percentage change from previous to
// current. NaN when either input is missing or the base is zero.
func CalculateChangePercent(current, previous float64) float64 {
	if math.IsNaN(current) || math.IsNaN(previous) || previous == 0 {
		return math.NaN()
	}
	return (current - previous) / previous * 100.0
}

// -----------------------------------------------------------------------------

// TrailingChangePercent computes, for each position i, the percentage change
// against the value offset positions earlier. The first offset positions are
// NaN, as is any position whose base is missing or zero.
func TrailingChangePercent(values []float64, offset int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i < offset {
			out[i] = math.NaN()
			continue
		}
		out[i] = CalculateChangePercent(values[i], values[i-offset])
	}
	return out
}

// -----------------------------------------------------------------------------

// ForwardFill replaces each NaN with the last preceding non-NaN value.
// Leading NaNs, with nothing to carry forward, stay NaN.
func ForwardFill(values []float64) []float64 {
	out := make([]float64, len(values))
	last := math.NaN()
	for i, v := range values {
		if !math.IsNaN(v) {
			last = v
		}
		out[i] = last
	}
	return out
}

// -----------------------------------------------------------------------------

// Scale divides every defined value by divisor. NaN passes through.
func Scale(values []float64, divisor float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = v
			continue
		}
		out[i] = v / divisor
	}
	return out
}

// -----------------------------------------------------------------------------

// LastValid returns the index of the last non-NaN value, or -1.
func LastValid(values []float64) int {
	for i := len(values) - 1; i >= 0; i-- {
		if !math.IsNaN(values[i]) {
			return i
		}
	}
	return -1
}

// -----------------------------------------------------------------------------

// PriorValid returns the index of the last non-NaN value at or before
// from-offset, or -1. Used to pick the comparison row for metric cards.
func PriorValid(values []float64, from, offset int) int {
	for i := from - offset; i >= 0; i-- {
		if !math.IsNaN(values[i]) {
			return i
		}
	}
	return -1
}

// -----------------------------------------------------------------------------

// AllDefined reports whether every value is non-NaN.
func AllDefined(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}
