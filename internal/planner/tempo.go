package planner

import "math"

// atempo accepts multipliers within [TempoMin, TempoMax] per filter instance.
const (
	TempoMin = 0.5
	TempoMax = 2.0
)

// DecomposeTempo splits a speed multiplier into a chain of factors that each
// lie within [TempoMin, TempoMax] and whose product is m. A multiplier that
// is already in range yields a single factor. Non-positive or non-finite
// input yields nil.
func DecomposeTempo(m float64) []float64 {
	if m <= 0 || math.IsInf(m, 0) || math.IsNaN(m) {
		return nil
	}
	if m >= TempoMin && m <= TempoMax {
		return []float64{m}
	}

	var chain []float64
	rest := m
	for rest > TempoMax {
		chain = append(chain, TempoMax)
		rest /= TempoMax
	}
	for rest < TempoMin {
		chain = append(chain, TempoMin)
		rest /= TempoMin
	}
	return append(chain, rest)
}
