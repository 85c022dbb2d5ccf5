package validate

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/track.report/internal/gpx"
	"github.com/banshee-data/track.report/internal/stats"
)

func goodTrack(n int) ([]gpx.Waypoint, gpx.TrackMetadata) {
	t0 := time.Date(2025, 5, 21, 19, 0, 0, 0, time.UTC)
	wps := make([]gpx.Waypoint, n)
	for i := range wps {
		ts := gpx.Time{Time: t0.Add(time.Duration(i*10) * time.Second)}
		wps[i] = gpx.Waypoint{
			Latitude:  45.0 + float64(i)*0.001,
			Longitude: -75.0,
			Timestamp: &ts,
			Elevation: 70,
		}
	}
	md := gpx.TrackMetadata{
		Creator:       "test",
		Version:       "1.1",
		TrackCount:    1,
		WaypointCount: n,
	}
	return wps, md
}

func TestValidateAggregateOutput(t *testing.T) {
	// Any output of Aggregate with matching metadata must validate
	// cleanly: this is the round-trip property the pipeline relies on.
	wps, md := goodTrack(10)
	st, err := stats.Aggregate(wps, stats.Config{UseIQR: true, WindowSize: 2})
	require.NoError(t, err)

	res, err := Validate(wps, md, st)
	require.NoError(t, err)
	assert.True(t, res.OK(), "unexpected warnings: %v", res.Warnings)
}

func TestValidateEmptyWaypointsIsFatal(t *testing.T) {
	_, md := goodTrack(0)
	_, err := Validate(nil, md, stats.Statistics{})
	require.Error(t, err)

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestValidateWaypointCountMismatchIsFatal(t *testing.T) {
	wps, md := goodTrack(5)
	md.WaypointCount = 7

	st, err := stats.Aggregate(wps, stats.Config{WindowSize: 2})
	require.NoError(t, err)

	_, err = Validate(wps, md, st)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Error(), "waypoint count mismatch")
}

func TestValidateWarningsDeterministic(t *testing.T) {
	// Warnings are part of the pipeline's result value; identical inputs
	// must produce the identical list, raw before processed.
	wps, md := goodTrack(5)
	st, err := stats.Aggregate(wps, stats.Config{WindowSize: 2})
	require.NoError(t, err)
	st.Results.RawMaxSpeed = 400
	st.Results.ProcessedMaxSpeed = 500

	first, err := Validate(wps, md, st)
	require.NoError(t, err)
	require.Len(t, first.Warnings, 2)
	assert.Contains(t, first.Warnings[0], "raw_max_speed")
	assert.Contains(t, first.Warnings[1], "processed_max_speed")

	for i := 0; i < 200; i++ {
		res, err := Validate(wps, md, st)
		require.NoError(t, err)
		require.Equal(t, first.Warnings, res.Warnings, "run %d", i)
	}
}

func TestValidateAdvisoryFindings(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(wps []gpx.Waypoint, st *stats.Statistics)
		contain string
	}{
		{
			"latitude out of range",
			func(wps []gpx.Waypoint, st *stats.Statistics) { wps[1].Latitude = 95 },
			"out-of-range coordinates",
		},
		{
			"longitude out of range",
			func(wps []gpx.Waypoint, st *stats.Statistics) { wps[2].Longitude = -190 },
			"out-of-range coordinates",
		},
		{
			"elevation below range",
			func(wps []gpx.Waypoint, st *stats.Statistics) { wps[0].Elevation = -2000 },
			"implausible elevation",
		},
		{
			"elevation above range",
			func(wps []gpx.Waypoint, st *stats.Statistics) { wps[0].Elevation = 12000 },
			"implausible elevation",
		},
		{
			"negative distance",
			func(wps []gpx.Waypoint, st *stats.Statistics) { st.BasicMetrics.TotalDistance = -1 },
			"total_distance is negative",
		},
		{
			"implausible max speed",
			func(wps []gpx.Waypoint, st *stats.Statistics) { st.Results.RawMaxSpeed = 1200 },
			"exceeds sane ceiling",
		},
		{
			"end before start",
			func(wps []gpx.Waypoint, st *stats.Statistics) {
				earlier := stats.Time{Time: st.BasicMetrics.StartTime.Add(-time.Hour)}
				st.BasicMetrics.EndTime = &earlier
			},
			"precedes start_time",
		},
		{
			"interpolated exceeds detected",
			func(wps []gpx.Waypoint, st *stats.Statistics) {
				st.Results.OutliersDetected = 1
				st.Results.OutliersInterpolated = 3
			},
			"exceeds outliers_detected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wps, md := goodTrack(5)
			st, err := stats.Aggregate(wps, stats.Config{WindowSize: 2})
			require.NoError(t, err)

			tt.mutate(wps, &st)

			res, err := Validate(wps, md, st)
			// Advisory findings never fail the pass.
			require.NoError(t, err)
			require.False(t, res.OK())

			found := false
			for _, w := range res.Warnings {
				if strings.Contains(w, tt.contain) {
					found = true
					break
				}
			}
			assert.True(t, found, "warnings %v do not mention %q", res.Warnings, tt.contain)
		})
	}
}
