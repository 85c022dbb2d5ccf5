package gpx

import (
	"fmt"
	"time"
)

// TimestampLayout is the wire format for waypoint timestamps: a local
// wall-clock instant without a zone offset. This matches the layout the
// track documents have always been stored with, so it is part of the
// persisted contract.
const TimestampLayout = "2006-01-02T15:04:05"

// Time wraps time.Time to marshal waypoint timestamps in the persisted
// local wall-clock layout. Optional timestamps are represented as *Time
// so absent values serialise as null.
type Time struct {
	time.Time
}

// Equal reports whether two timestamps represent the same instant.
func (t Time) Equal(u Time) bool {
	return t.Time.Equal(u.Time)
}

// MarshalJSON renders the timestamp in the persisted layout.
func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(TimestampLayout) + `"`), nil
}

// UnmarshalJSON parses a timestamp in the persisted layout. The stored
// string carries no offset; the instant is interpreted as UTC wall-clock
// time, which preserves all interval arithmetic between waypoints.
func (t *Time) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid timestamp %s", s)
	}
	parsed, err := time.Parse(TimestampLayout, s[1:len(s)-1])
	if err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// Waypoint is a single normalized GPS fix. The sequence order is the
// recording order; duplicates and non-monotonic timestamps are permitted
// (they degrade statistics but are not parse errors).
type Waypoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp *Time   `json:"timestamp"`
	Elevation float64 `json:"elevation"`
}

// TrackMetadata holds document-level information derived from a parse.
// It is immutable once produced.
type TrackMetadata struct {
	Creator       string  `json:"creator"`
	Version       string  `json:"version"`
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	TrackCount    int     `json:"track_count"`
	RouteCount    int     `json:"route_count"`
	WaypointCount int     `json:"waypoint_count"`
}

// ParseError reports malformed or empty input. It is fatal: the caller
// aborts processing and surfaces the failure.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gpx parse: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("gpx parse: %s", e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }
