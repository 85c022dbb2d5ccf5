// Package outlier detects speed spikes with the IQR method and repairs
// them by interpolating over the surrounding valid samples.
//
// Detection is upper-tail only: GPS noise produces unrealistically high
// speeds, never unrealistically low ones, so values below the lower IQR
// bound are never flagged.
package outlier

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// DefaultIQRMultiplier is the conventional 1.5×IQR fence.
const DefaultIQRMultiplier = 1.5

// Method selects how flagged values are re-filled from their neighbours.
type Method string

const (
	Linear    Method = "linear"
	Quadratic Method = "quadratic"
	Cubic     Method = "cubic"
	Nearest   Method = "nearest"
	Akima     Method = "akima"
)

// DefaultMethod is used when the caller does not configure one.
const DefaultMethod = Linear

// Valid reports whether the method is supported by this backend.
func (m Method) Valid() bool {
	switch m {
	case Linear, Quadratic, Cubic, Nearest, Akima:
		return true
	}
	return false
}

// ParseMethod validates a configuration string, defaulting the empty
// string to linear. Unsupported methods are surfaced to the caller.
func ParseMethod(s string) (Method, error) {
	if s == "" {
		return DefaultMethod, nil
	}
	m := Method(s)
	if !m.Valid() {
		return "", fmt.Errorf("unsupported interpolation method %q", s)
	}
	return m, nil
}

// Repair is the outcome of a detect-and-repair pass. Detected and
// Interpolated are reported separately: the current policy always
// repairs every detected outlier, but the counts stay distinct so a
// flag-only policy remains expressible.
type Repair struct {
	Speeds       []float64
	Detected     int
	Interpolated int
}

// DetectIQR flags values above Q3 + multiplier*IQR. A multiplier <= 0
// uses the default 1.5. The returned mask is aligned with values; an
// empty input yields a nil mask.
func DetectIQR(values []float64, multiplier float64) []bool {
	if len(values) == 0 {
		return nil
	}
	if multiplier <= 0 {
		multiplier = DefaultIQRMultiplier
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	upper := q3 + multiplier*(q3-q1)

	mask := make([]bool, len(values))
	for i, v := range values {
		mask[i] = v > upper
	}
	return mask
}

// quantile returns the p-th quantile of a sorted, non-empty slice using
// linear interpolation between the bracketing order statistics at
// position p*(n-1). For sorted [1,2,3,4] this gives Q1=1.75 and
// Q3=3.25, not the nearest order statistics.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// DetectAndRepair flags upper-tail outliers in the speed series and
// fills each flagged position by interpolating the surviving samples at
// their original positions. Boundary gaps that interpolation cannot
// reach are filled from the nearest valid value; a series with no valid
// values left fills with 0.0.
//
// The input is never mutated; Repair.Speeds is a fresh slice.
func DetectAndRepair(values []float64, multiplier float64, method Method) (Repair, error) {
	if !method.Valid() {
		return Repair{}, fmt.Errorf("unsupported interpolation method %q", method)
	}

	out := make([]float64, len(values))
	copy(out, values)
	if len(values) == 0 {
		return Repair{Speeds: out}, nil
	}

	mask := DetectIQR(values, multiplier)
	detected := 0
	for _, flagged := range mask {
		if flagged {
			detected++
		}
	}
	if detected == 0 {
		return Repair{Speeds: out}, nil
	}

	// Positions and values of the surviving samples, in order.
	xs := make([]float64, 0, len(values)-detected)
	ys := make([]float64, 0, len(values)-detected)
	for i, v := range values {
		if !mask[i] {
			xs = append(xs, float64(i))
			ys = append(ys, v)
		}
	}

	if err := fill(out, mask, xs, ys, method); err != nil {
		return Repair{}, err
	}

	return Repair{Speeds: out, Detected: detected, Interpolated: detected}, nil
}

// fill rewrites the masked positions of out from the valid (xs, ys)
// support points.
func fill(out []float64, mask []bool, xs, ys []float64, method Method) error {
	if len(xs) == 0 {
		for i := range out {
			if mask[i] {
				out[i] = 0.0
			}
		}
		return nil
	}
	if len(xs) == 1 {
		for i := range out {
			if mask[i] {
				out[i] = ys[0]
			}
		}
		return nil
	}

	first, last := int(xs[0]), int(xs[len(xs)-1])

	var predictor interp.FittablePredictor
	if method != Nearest {
		predictor = newPredictor(method, len(xs))
		if err := predictor.Fit(xs, ys); err != nil {
			return fmt.Errorf("fit %s interpolator: %w", method, err)
		}
	}

	for i := range out {
		if !mask[i] {
			continue
		}
		switch {
		case i < first:
			// No preceding valid value: backward-fill from the first one.
			out[i] = ys[0]
		case i > last:
			out[i] = ys[len(ys)-1]
		case method == Nearest:
			out[i] = nearestValue(float64(i), xs, ys)
		default:
			out[i] = predictor.Predict(float64(i))
		}
	}
	return nil
}

// newPredictor maps a method to a gonum interpolator. Spline fits need
// at least three support points; below that they degrade to linear.
func newPredictor(method Method, supportPoints int) interp.FittablePredictor {
	if supportPoints < 3 {
		return &interp.PiecewiseLinear{}
	}
	switch method {
	case Quadratic, Cubic:
		return &interp.NaturalCubic{}
	case Akima:
		return &interp.AkimaSpline{}
	default:
		return &interp.PiecewiseLinear{}
	}
}

// nearestValue returns the y of the support point whose x is closest to
// pos, preferring the earlier point on ties.
func nearestValue(pos float64, xs, ys []float64) float64 {
	j := sort.SearchFloat64s(xs, pos)
	if j == 0 {
		return ys[0]
	}
	if j >= len(xs) {
		return ys[len(ys)-1]
	}
	if math.Abs(pos-xs[j-1]) <= math.Abs(xs[j]-pos) {
		return ys[j-1]
	}
	return ys[j]
}
