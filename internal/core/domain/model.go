package domain

import (
	"math"
)

// Label is the class assigned to an article. The numeric values match the
// class indices the classifier was trained with.
type Label int

const (
	// Fake marks an article classified as fake news (class index 0).
	Fake Label = 0
	// Real marks an article classified as real news (class index 1).
	Real Label = 1
)

// String returns the display name of the label.
func (l Label) String() string {
	switch l {
	case Fake:
		return "FAKE"
	case Real:
		return "REAL"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether l is one of the two known classes.
func (l Label) Valid() bool {
	return l == Fake || l == Real
}

// Distribution holds the class probabilities ordered by class index:
// index 0 is P(FAKE), index 1 is P(REAL).
type Distribution [2]float64

// Fake returns P(FAKE).
func (d Distribution) Fake() float64 { return d[Fake] }

// Real returns P(REAL).
func (d Distribution) Real() float64 { return d[Real] }

// Max returns the largest class probability.
func (d Distribution) Max() float64 {
	return math.Max(d[0], d[1])
}

// ArgMax returns the label with the highest probability. Ties resolve to Fake.
func (d Distribution) ArgMax() Label {
	if d[Real] > d[Fake] {
		return Real
	}
	return Fake
}

// SumTolerance is the allowed deviation of a distribution's sum from 1.
const SumTolerance = 1e-6

// Validate checks that both probabilities are in [0,1] and sum to 1.
func (d Distribution) Validate() error {
	for i, p := range d {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return &DistributionError{Index: i, Value: p}
		}
	}
	if sum := d[0] + d[1]; math.Abs(sum-1) > SumTolerance {
		return &DistributionError{Index: -1, Value: sum}
	}
	return nil
}

// FeatureVector is a sparse row produced by a vectorizer.
// Indices are strictly increasing and smaller than Dim.
type FeatureVector struct {
	Dim     int
	Indices []int
	Values  []float64
}

// NNZ returns the number of stored entries.
func (v FeatureVector) NNZ() int {
	return len(v.Indices)
}

// Dot computes the dot product with a dense weight vector.
func (v FeatureVector) Dot(weights []float64) float64 {
	var sum float64
	for i, idx := range v.Indices {
		sum += v.Values[i] * weights[idx]
	}
	return sum
}

// Tier is a qualitative bucket for the confidence value.
type Tier int

const (
	// TierLow is assigned when confidence < 60.
	TierLow Tier = iota
	// TierMedium is assigned when 60 <= confidence < 80.
	TierMedium
	// TierHigh is assigned when confidence >= 80.
	TierHigh
)

// Tier boundaries, inclusive on the lower bound.
const (
	HighConfidenceThreshold   = 80.0
	MediumConfidenceThreshold = 60.0
)

// String returns the display name of the tier.
func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "HIGH"
	case TierMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// TierFor buckets a confidence percentage. It is always applied to the
// unrounded value so display rounding cannot move a result across a boundary.
func TierFor(confidence float64) Tier {
	switch {
	case confidence >= HighConfidenceThreshold:
		return TierHigh
	case confidence >= MediumConfidenceThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// ConfidenceFrom returns max(distribution) as a percentage, full precision.
func ConfidenceFrom(d Distribution) float64 {
	return d.Max() * 100
}

// RoundDisplay rounds a percentage to one decimal place.
func RoundDisplay(pct float64) float64 {
	return math.Round(pct*10) / 10
}

// Result holds the outcome of a single classification.
type Result struct {
	Label        Label
	Distribution Distribution
	// Confidence is max(Distribution)*100, unrounded.
	Confidence float64
	Tier       Tier
}

// NewResult derives confidence and tier from a label and distribution.
func NewResult(label Label, dist Distribution) Result {
	confidence := ConfidenceFrom(dist)
	return Result{
		Label:        label,
		Distribution: dist,
		Confidence:   confidence,
		Tier:         TierFor(confidence),
	}
}

// DisplayConfidence returns the confidence rounded to one decimal place.
func (r Result) DisplayConfidence() float64 {
	return RoundDisplay(r.Confidence)
}

// FakePercent returns P(FAKE) as a percentage rounded for display.
func (r Result) FakePercent() float64 {
	return RoundDisplay(r.Distribution.Fake() * 100)
}

// RealPercent returns P(REAL) as a percentage rounded for display.
func (r Result) RealPercent() float64 {
	return RoundDisplay(r.Distribution.Real() * 100)
}
