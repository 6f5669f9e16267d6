package ml

import "math"

// DefaultIncomeRange spans the lowest and highest monthly income seen in the
// training data.
var DefaultIncomeRange = IncomeRange{Min: 878, Max: 148880}

type IncomeRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

func (r IncomeRange) Degenerate() bool {
	return r.Max == r.Min
}

// Scale maps pred linearly onto [0,1] between Min and Max, clamping at both
// ends. A degenerate range returns ErrRangeDegenerate.
func (r IncomeRange) Scale(pred float64) (float64, error) {
	if r.Degenerate() {
		return 0, ErrRangeDegenerate
	}
	if math.IsNaN(pred) {
		return 0, nil
	}
	return clamp((pred-r.Min)/(r.Max-r.Min), 0, 1), nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
