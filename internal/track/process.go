// Package track runs the full processing pipeline: parse a raw GPX
// document, aggregate statistics, and validate the result. The output
// Document is the boundary value handed to persistence and the API.
//
// Processing is a pure, synchronous computation over an immutable
// snapshot: it holds no shared state and is safe to invoke concurrently
// for different tracks. Concurrent reprocessing of the same track races
// only at the persistence boundary, where last-write-wins applies.
package track

import (
	"fmt"
	"time"

	"github.com/banshee-data/track.report/internal/gpx"
	"github.com/banshee-data/track.report/internal/outlier"
	"github.com/banshee-data/track.report/internal/stats"
	"github.com/banshee-data/track.report/internal/validate"
)

// Config is the caller-facing processing configuration, matching the
// boundary contract {use_iqr, window_size, interpolation_method}.
type Config struct {
	UseIQR              bool   `json:"use_iqr"`
	WindowSize          int    `json:"window_size"`
	InterpolationMethod string `json:"interpolation_method"`
}

// DefaultConfig is what uploads get when no configuration is supplied:
// IQR repair on, adjacent pairing, linear interpolation.
func DefaultConfig() Config {
	return Config{
		UseIQR:              true,
		WindowSize:          2,
		InterpolationMethod: string(outlier.Linear),
	}
}

func (c Config) statsConfig() stats.Config {
	return stats.Config{
		UseIQR:              c.UseIQR,
		WindowSize:          c.WindowSize,
		InterpolationMethod: outlier.Method(c.InterpolationMethod),
	}
}

// Document is the three-section processing result: waypoints array,
// metadata object, statistics object. Its JSON shape is the persisted
// storage contract.
type Document struct {
	Waypoints  []gpx.Waypoint    `json:"waypoints"`
	Metadata   gpx.TrackMetadata `json:"metadata"`
	Statistics stats.Statistics  `json:"statistics"`
}

// ProcessingError wraps an unexpected fault during aggregation with the
// stage it occurred in.
type ProcessingError struct {
	Stage string
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing failed at %s: %v", e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// Process runs the whole pipeline over raw GPX content.
//
// The returned warnings are advisory validation findings; callers may
// log them and keep the document. The error is one of *gpx.ParseError,
// *validate.ValidationError, or *ProcessingError per the failure stage.
func Process(content []byte, cfg Config, loc *time.Location) (*Document, []string, error) {
	wps, md, err := gpx.Parse(content, loc)
	if err != nil {
		return nil, nil, err
	}

	st, warnings, err := Reprocess(wps, md, cfg)
	if err != nil {
		return nil, nil, err
	}

	return &Document{Waypoints: wps, Metadata: md, Statistics: st}, warnings, nil
}

// Reprocess recomputes statistics for already-parsed waypoints, as the
// reprocessing endpoint does with stored documents. The returned
// Statistics replaces any previous report wholesale.
func Reprocess(wps []gpx.Waypoint, md gpx.TrackMetadata, cfg Config) (stats.Statistics, []string, error) {
	st, err := stats.Aggregate(wps, cfg.statsConfig())
	if err != nil {
		return stats.Statistics{}, nil, &ProcessingError{Stage: "aggregate", Err: err}
	}

	res, err := validate.Validate(wps, md, st)
	if err != nil {
		return stats.Statistics{}, nil, err
	}
	return st, res.Warnings, nil
}
