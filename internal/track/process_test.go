package track

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/track.report/internal/gpx"
)

// buildGPX renders a minimal single-segment GPX document with n points
// stepping north every 10 seconds.
func buildGPX(n int) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<gpx version="1.1" creator="trackgen"><trk><trkseg>` + "\n")
	t0 := time.Date(2025, 5, 21, 19, 12, 14, 0, time.UTC)
	for i := 0; i < n; i++ {
		ts := t0.Add(time.Duration(i*10) * time.Second)
		fmt.Fprintf(&b, `<trkpt lat="%.4f" lon="-75.0000"><ele>70</ele><time>%s</time></trkpt>`+"\n",
			45.0+float64(i)*0.001, ts.Format(time.RFC3339))
	}
	b.WriteString(`</trkseg></trk></gpx>`)
	return []byte(b.String())
}

func TestProcessEndToEnd(t *testing.T) {
	doc, warnings, err := Process(buildGPX(10), DefaultConfig(), time.UTC)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Len(t, doc.Waypoints, 10)
	assert.Equal(t, "trackgen", doc.Metadata.Creator)
	assert.Equal(t, 10, doc.Metadata.WaypointCount)

	st := doc.Statistics
	assert.Equal(t, "00:01:30", st.BasicMetrics.TotalDuration)
	assert.True(t, st.ProcessingMethods.IQROutlier)
	assert.Equal(t, 2, st.ProcessingMethods.WindowSize)
	assert.Equal(t, 9, st.Results.DataPointsRemaining)
}

func TestProcessMalformedContent(t *testing.T) {
	_, _, err := Process([]byte("not a gpx file"), DefaultConfig(), time.UTC)
	require.Error(t, err)

	var perr *gpx.ParseError
	assert.True(t, errors.As(err, &perr), "want *gpx.ParseError, got %T", err)
}

func TestProcessEmptyTrackNeverAggregates(t *testing.T) {
	content := []byte(`<?xml version="1.0"?><gpx version="1.1" creator="t"><trk><trkseg></trkseg></trk></gpx>`)
	_, _, err := Process(content, DefaultConfig(), time.UTC)
	require.Error(t, err)

	// An empty track fails at parse; it must never surface as an
	// aggregation fault.
	var procErr *ProcessingError
	assert.False(t, errors.As(err, &procErr))
}

func TestProcessUnsupportedMethod(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InterpolationMethod = "polyfit"

	_, _, err := Process(buildGPX(5), cfg, time.UTC)
	require.Error(t, err)

	var procErr *ProcessingError
	require.True(t, errors.As(err, &procErr))
	assert.Equal(t, "aggregate", procErr.Stage)
}

func TestReprocessIdempotent(t *testing.T) {
	doc, _, err := Process(buildGPX(15), DefaultConfig(), time.UTC)
	require.NoError(t, err)

	again, _, err := Reprocess(doc.Waypoints, doc.Metadata, DefaultConfig())
	require.NoError(t, err)

	if diff := cmp.Diff(doc.Statistics, again); diff != "" {
		t.Errorf("reprocessing with identical config changed the report:\n%s", diff)
	}
}

func TestReprocessNewConfigReplacesReport(t *testing.T) {
	doc, _, err := Process(buildGPX(15), DefaultConfig(), time.UTC)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.WindowSize = 3
	st, _, err := Reprocess(doc.Waypoints, doc.Metadata, cfg)
	require.NoError(t, err)

	assert.Equal(t, 3, st.ProcessingMethods.WindowSize)
	assert.True(t, st.ProcessingMethods.MovingAverage)
	// Basic metrics are independent of the processing configuration.
	assert.Equal(t, doc.Statistics.BasicMetrics, st.BasicMetrics)
	assert.Equal(t, doc.Statistics.Results.RawMaxSpeed, st.Results.RawMaxSpeed)
}

func TestDocumentJSONSections(t *testing.T) {
	doc, _, err := Process(buildGPX(3), DefaultConfig(), time.UTC)
	require.NoError(t, err)

	b, err := json.Marshal(doc)
	require.NoError(t, err)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &m))
	require.Contains(t, m, "waypoints")
	require.Contains(t, m, "metadata")
	require.Contains(t, m, "statistics")
}

func TestConfigJSONRoundTrip(t *testing.T) {
	var cfg Config
	err := json.Unmarshal([]byte(`{"use_iqr":true,"window_size":5,"interpolation_method":"cubic"}`), &cfg)
	require.NoError(t, err)
	assert.Equal(t, Config{UseIQR: true, WindowSize: 5, InterpolationMethod: "cubic"}, cfg)
}
