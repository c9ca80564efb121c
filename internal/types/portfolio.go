package types

import "time"

// EquityPoint is the mark-to-market portfolio value at one bar close.
type EquityPoint struct {
	Time  time.Time `csv:"time"`
	Value float64   `csv:"value"`
}

// EquityCurve is the portfolio value series produced by one simulation run,
// one point per bar after the first. Produced once, read-only afterwards.
type EquityCurve []EquityPoint

// First returns the first point of the curve. The curve must not be empty.
func (c EquityCurve) First() EquityPoint {
	return c[0]
}

// Last returns the last point of the curve. The curve must not be empty.
func (c EquityCurve) Last() EquityPoint {
	return c[len(c)-1]
}

// TotalReturn returns the fractional return over the curve, or 0 for curves
// with fewer than 2 points.
func (c EquityCurve) TotalReturn() float64 {
	if len(c) < 2 || c[0].Value == 0 {
		return 0
	}

	return c.Last().Value/c.First().Value - 1
}

// Elapsed returns the wall-clock duration covered by the curve.
func (c EquityCurve) Elapsed() time.Duration {
	if len(c) < 2 {
		return 0
	}

	return c.Last().Time.Sub(c.First().Time)
}
