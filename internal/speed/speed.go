// Package speed computes per-interval speed series from waypoint
// sequences. Speeds are km/h; the interval width is controlled by a
// window size (index stride between the paired waypoints).
package speed

import (
	"github.com/banshee-data/track.report/internal/geo"
	"github.com/banshee-data/track.report/internal/gpx"
	"github.com/banshee-data/track.report/internal/units"
)

// DefaultWindow pairs adjacent waypoints. Larger windows smooth the
// series by widening the distance/time baseline; this is a literal
// re-sampling at a coarser stride, not a rolling mean.
const DefaultWindow = 2

// Sample is one emitted speed value. Index is the sequence position of
// the interval's start waypoint; because invalid intervals are skipped
// rather than zero-filled, Index is the explicit gap marker that lets
// consumers align samples with waypoints.
type Sample struct {
	Index int     `json:"index"`
	KMH   float64 `json:"kmh"`
}

// EffectiveWindow normalizes a requested window against the waypoint
// count: values below 2 use the default, and a window that is at least
// the sequence length falls back to adjacent pairing.
func EffectiveWindow(window, waypointCount int) int {
	if window < DefaultWindow || window >= waypointCount {
		return DefaultWindow
	}
	return window
}

// stride returns the index distance between paired waypoints for a
// window. Window 2 pairs adjacent points; wider windows pair wp[i] with
// wp[i+window].
func stride(window int) int {
	if window <= DefaultWindow {
		return 1
	}
	return window
}

// Series computes the speed series for the given window size.
//
// For a fully timestamped monotonic sequence the result has
// len(wps)-1 samples at window 2 and len(wps)-window samples at wider
// windows. Intervals with a missing timestamp on either endpoint, or a
// non-positive time delta (duplicate or non-monotonic timestamps), are
// skipped entirely; they never appear as zero or NaN.
func Series(wps []gpx.Waypoint, window int) []Sample {
	n := len(wps)
	if n < 2 {
		return nil
	}

	s := stride(EffectiveWindow(window, n))
	samples := make([]Sample, 0, n-s)
	for i := 0; i+s < n; i++ {
		a, b := wps[i], wps[i+s]
		if a.Timestamp == nil || b.Timestamp == nil {
			continue
		}
		dt := b.Timestamp.Sub(a.Timestamp.Time).Seconds()
		if dt <= 0 {
			continue
		}

		meters := geo.Distance(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
		samples = append(samples, Sample{
			Index: i,
			KMH:   (meters / dt) * units.MetersPerSecondToKMH,
		})
	}
	return samples
}

// Values extracts the plain speed series from samples.
func Values(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.KMH
	}
	return out
}

// Max returns the largest value in the series, or 0 for an empty series.
func Max(values []float64) float64 {
	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}
