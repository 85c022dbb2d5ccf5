// Package validate performs structural and semantic sanity checks on a
// processed track report before it is accepted for persistence.
//
// Hard failures (corrupted data) are returned as *ValidationError.
// Physical-plausibility findings are advisory: they are collected as
// warnings in the Result so callers can log and proceed, which is the
// normal mode with noisy GPS data.
package validate

import (
	"fmt"

	"github.com/banshee-data/track.report/internal/gpx"
	"github.com/banshee-data/track.report/internal/stats"
)

// Physical plausibility bounds.
const (
	MinElevationMeters = -1000.0
	MaxElevationMeters = 10000.0
	MaxSaneSpeedKMH    = 300.0
)

// ValidationError is a hard validation failure: the report must not be
// accepted.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s", e.Msg)
}

// Result carries the advisory findings of a validation pass.
type Result struct {
	Warnings []string
}

// OK reports whether the pass produced no advisory findings.
func (r Result) OK() bool { return len(r.Warnings) == 0 }

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks a processed track report.
//
// Hard failures: an empty waypoint sequence, and a metadata waypoint
// count that disagrees with the actual sequence length (which indicates
// a corrupted parse/serialize round trip). Everything else, such as
// coordinate and elevation ranges, negative metrics, and implausible
// speeds, is advisory and lands in the Result.
func Validate(wps []gpx.Waypoint, md gpx.TrackMetadata, st stats.Statistics) (Result, error) {
	var res Result

	if len(wps) == 0 {
		return res, &ValidationError{Msg: "waypoint list is empty"}
	}
	if md.WaypointCount != len(wps) {
		return res, &ValidationError{Msg: fmt.Sprintf(
			"waypoint count mismatch: metadata says %d, actual %d",
			md.WaypointCount, len(wps))}
	}

	for i, wp := range wps {
		if wp.Latitude < -90 || wp.Latitude > 90 || wp.Longitude < -180 || wp.Longitude > 180 {
			res.warnf("waypoint %d has out-of-range coordinates: lat=%g, lon=%g",
				i, wp.Latitude, wp.Longitude)
		}
		if wp.Elevation < MinElevationMeters || wp.Elevation > MaxElevationMeters {
			res.warnf("waypoint %d has implausible elevation: %gm", i, wp.Elevation)
		}
	}

	checkStatistics(&res, st)
	return res, nil
}

func checkStatistics(res *Result, st stats.Statistics) {
	bm := st.BasicMetrics
	if bm.TotalDistance < 0 {
		res.warnf("total_distance is negative: %g", bm.TotalDistance)
	}
	if bm.AvgSpeed < 0 {
		res.warnf("avg_speed is negative: %g", bm.AvgSpeed)
	}
	if bm.AvgSpeed > MaxSaneSpeedKMH {
		res.warnf("avg_speed %g km/h exceeds sane ceiling of %g", bm.AvgSpeed, MaxSaneSpeedKMH)
	}
	if bm.StartTime != nil && bm.EndTime != nil && bm.EndTime.Before(bm.StartTime.Time) {
		res.warnf("end_time %s precedes start_time %s",
			bm.EndTime.Format(stats.TimeLayout), bm.StartTime.Format(stats.TimeLayout))
	}

	// Fixed order so identical inputs produce identical warning lists.
	r := st.Results
	maxSpeeds := []struct {
		name  string
		value float64
	}{
		{"raw_max_speed", r.RawMaxSpeed},
		{"processed_max_speed", r.ProcessedMaxSpeed},
	}
	for _, ms := range maxSpeeds {
		if ms.value < 0 {
			res.warnf("%s is negative: %g", ms.name, ms.value)
		}
		if ms.value > MaxSaneSpeedKMH {
			res.warnf("%s %g km/h exceeds sane ceiling of %g", ms.name, ms.value, MaxSaneSpeedKMH)
		}
	}
	if r.OutliersDetected < 0 || r.OutliersInterpolated < 0 || r.DataPointsRemaining < 0 {
		res.warnf("negative counters in results: detected=%d interpolated=%d remaining=%d",
			r.OutliersDetected, r.OutliersInterpolated, r.DataPointsRemaining)
	}
	if r.OutliersInterpolated > r.OutliersDetected {
		res.warnf("outliers_interpolated %d exceeds outliers_detected %d",
			r.OutliersInterpolated, r.OutliersDetected)
	}
}
