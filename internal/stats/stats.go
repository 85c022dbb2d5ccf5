// Package stats aggregates waypoint sequences into the three-part
// statistics report: basic metrics, processing-method record, and
// noise-reduction results.
//
// The JSON field names and key casing below are a persisted contract:
// external consumers index into statistics.basic_metrics.total_distance,
// statistics.processing_methods.Window_Size, and so on. Do not rename.
package stats

import (
	"fmt"
	"math"
	"time"

	"github.com/banshee-data/track.report/internal/geo"
	"github.com/banshee-data/track.report/internal/gpx"
	"github.com/banshee-data/track.report/internal/outlier"
	"github.com/banshee-data/track.report/internal/speed"
)

// TimeLayout is the wire format for start/end instants in basic metrics.
const TimeLayout = "2006-01-02 15:04:05"

// Time wraps time.Time to marshal basic-metric instants in the
// persisted layout (local wall clock, no offset).
type Time struct {
	time.Time
}

// Equal reports whether two instants are the same.
func (t Time) Equal(u Time) bool {
	return t.Time.Equal(u.Time)
}

// MarshalJSON renders the instant in the persisted layout.
func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(TimeLayout) + `"`), nil
}

// UnmarshalJSON parses an instant in the persisted layout.
func (t *Time) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid time %s", s)
	}
	parsed, err := time.Parse(TimeLayout, s[1:len(s)-1])
	if err != nil {
		return fmt.Errorf("invalid time %s: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// Config is the caller-facing processing configuration.
type Config struct {
	UseIQR              bool
	WindowSize          int
	InterpolationMethod outlier.Method
	IQRMultiplier       float64 // <= 0 means outlier.DefaultIQRMultiplier
}

// BasicMetrics summarises distance, duration, and average speed
// independently of any noise-reduction settings. StartTime and EndTime
// are nil when the track carries no timestamps at all.
type BasicMetrics struct {
	StartTime     *Time   `json:"start_time"`
	EndTime       *Time   `json:"end_time"`
	TotalDistance float64 `json:"total_distance"` // km
	TotalDuration string  `json:"total_duration"` // HH:MM:SS
	AvgSpeed      float64 `json:"avg_speed"`      // km/h
}

// ProcessingMethods records the configuration that was actually applied
// during a run (not merely requested): the window size is the effective
// one after fallback, and Moving_Average is derived from it.
type ProcessingMethods struct {
	IQROutlier          bool   `json:"IQR_Outlier"`
	MovingAverage       bool   `json:"Moving_Average"`
	WindowSize          int    `json:"Window_Size"`
	InterpolationMethod string `json:"Interpolation_Method"`
}

// Results summarises the noise-reduction outcome of a run.
type Results struct {
	RawMaxSpeed          float64 `json:"raw_max_speed"`       // km/h
	ProcessedMaxSpeed    float64 `json:"processed_max_speed"` // km/h
	OutliersDetected     int     `json:"outliers_detected"`
	OutliersInterpolated int     `json:"outliers_interpolated"`
	DataPointsRemaining  int     `json:"data_points_remaining"`
}

// Statistics is the single report object produced per processing run.
// A track owns exactly one current Statistics value; reprocessing
// replaces it wholesale.
type Statistics struct {
	BasicMetrics      BasicMetrics      `json:"basic_metrics"`
	ProcessingMethods ProcessingMethods `json:"processing_methods"`
	Results           Results           `json:"results"`
}

// Aggregate computes the full Statistics report for a waypoint sequence
// and configuration. It is a pure function of its inputs: identical
// arguments always produce an identical report, which reprocessing and
// caching rely on.
func Aggregate(wps []gpx.Waypoint, cfg Config) (Statistics, error) {
	run, err := process(wps, cfg)
	if err != nil {
		return Statistics{}, err
	}

	var st Statistics
	st.BasicMetrics = basicMetrics(wps)
	st.ProcessingMethods = ProcessingMethods{
		IQROutlier:          cfg.UseIQR,
		MovingAverage:       run.window > speed.DefaultWindow,
		WindowSize:          run.window,
		InterpolationMethod: string(run.method),
	}
	st.Results = Results{
		RawMaxSpeed:          round2(speed.Max(run.raw)),
		ProcessedMaxSpeed:    round2(speed.Max(run.processed)),
		OutliersDetected:     run.detected,
		OutliersInterpolated: run.interpolated,
		DataPointsRemaining:  len(run.processed),
	}
	return st, nil
}

// Series returns the baseline (window=2) and processed speed series for
// the configuration, exactly as Aggregate sees them. The processed
// series is byte-for-byte the baseline of the requested window when IQR
// repair is disabled.
func Series(wps []gpx.Waypoint, cfg Config) (raw, processed []float64, err error) {
	run, err := process(wps, cfg)
	if err != nil {
		return nil, nil, err
	}
	return run.raw, run.processed, nil
}

// run carries the intermediate products of one processing pass.
type run struct {
	raw          []float64
	processed    []float64
	detected     int
	interpolated int
	window       int
	method       outlier.Method
}

func process(wps []gpx.Waypoint, cfg Config) (run, error) {
	method, err := outlier.ParseMethod(string(cfg.InterpolationMethod))
	if err != nil {
		return run{}, err
	}

	window := speed.EffectiveWindow(cfg.WindowSize, len(wps))
	r := run{
		// The raw baseline is always computed at window 2, regardless
		// of the requested window.
		raw:    speed.Values(speed.Series(wps, speed.DefaultWindow)),
		window: window,
		method: method,
	}

	r.processed = speed.Values(speed.Series(wps, window))
	if cfg.UseIQR {
		rep, err := outlier.DetectAndRepair(r.processed, cfg.IQRMultiplier, method)
		if err != nil {
			return run{}, err
		}
		r.processed = rep.Speeds
		r.detected = rep.Detected
		r.interpolated = rep.Interpolated
	}
	return r, nil
}

func basicMetrics(wps []gpx.Waypoint) BasicMetrics {
	bm := BasicMetrics{TotalDuration: FormatDuration(0)}

	totalMeters := 0.0
	if len(wps) > 1 {
		lats := make([]float64, len(wps))
		lons := make([]float64, len(wps))
		for i, wp := range wps {
			lats[i] = wp.Latitude
			lons[i] = wp.Longitude
		}
		for _, d := range geo.Distances(lats[:len(wps)-1], lons[:len(wps)-1], lats[1:], lons[1:]) {
			totalMeters += d
		}
	}
	bm.TotalDistance = round2(totalMeters / 1000)

	start, end := timeBounds(wps)
	if start == nil || end == nil {
		return bm
	}
	bm.StartTime = &Time{start.Time}
	bm.EndTime = &Time{end.Time}

	// A negative duration (end before start) is bad data but is
	// propagated as-is; validation flags it downstream.
	duration := end.Sub(start.Time)
	bm.TotalDuration = FormatDuration(duration)
	if duration != 0 {
		bm.AvgSpeed = round2(bm.TotalDistance / duration.Hours())
	}
	return bm
}

// timeBounds returns the first and last non-nil timestamps in recording
// order.
func timeBounds(wps []gpx.Waypoint) (start, end *gpx.Time) {
	for i := range wps {
		if wps[i].Timestamp != nil {
			start = wps[i].Timestamp
			break
		}
	}
	for i := len(wps) - 1; i >= 0; i-- {
		if wps[i].Timestamp != nil {
			end = wps[i].Timestamp
			break
		}
	}
	return start, end
}

// FormatDuration renders a duration as HH:MM:SS. Negative durations
// keep their sign rather than being clamped.
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	total := int64(d.Seconds())
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, total/3600, (total%3600)/60, total%60)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
