// Package gpx turns raw GPX documents into an ordered waypoint sequence
// plus track-level metadata. Parsing is the only place the source format
// is known; everything downstream works on plain waypoints.
package gpx

import (
	"time"

	gpxgo "github.com/tkrajina/gpxgo/gpx"
)

// Defaults for absent optional metadata. Missing creator or version is
// never a parse failure.
const (
	DefaultCreator = "Unknown"
	DefaultVersion = "1.1"
)

// Parse extracts every point across every track and segment in document
// order into a flat waypoint sequence, converting timestamps to loc.
// A nil loc means UTC.
//
// Missing point timestamps become nil (not an error); missing elevations
// become 0.0. Malformed XML or a document with zero track points fails
// with *ParseError.
func Parse(content []byte, loc *time.Location) ([]Waypoint, TrackMetadata, error) {
	if loc == nil {
		loc = time.UTC
	}

	doc, err := gpxgo.ParseBytes(content)
	if err != nil {
		return nil, TrackMetadata{}, &ParseError{Msg: "malformed document", Err: err}
	}

	var waypoints []Waypoint
	for _, track := range doc.Tracks {
		for _, segment := range track.Segments {
			for i := range segment.Points {
				p := &segment.Points[i]

				wp := Waypoint{
					Latitude:  p.Point.Latitude,
					Longitude: p.Point.Longitude,
				}
				if !p.Timestamp.IsZero() {
					wp.Timestamp = &Time{p.Timestamp.In(loc)}
				}
				if p.Elevation.NotNull() {
					wp.Elevation = p.Elevation.Value()
				}
				waypoints = append(waypoints, wp)
			}
		}
	}

	if len(waypoints) == 0 {
		return nil, TrackMetadata{}, &ParseError{Msg: "no waypoints found in document"}
	}

	md := TrackMetadata{
		Creator:       doc.Creator,
		Version:       doc.Version,
		TrackCount:    len(doc.Tracks),
		RouteCount:    len(doc.Routes),
		WaypointCount: len(waypoints),
	}
	if md.Creator == "" {
		md.Creator = DefaultCreator
	}
	if md.Version == "" {
		md.Version = DefaultVersion
	}
	// The document-level name wins; a track-level name fills in for the
	// common case of files that only name the track.
	name := doc.Name
	if name == "" && len(doc.Tracks) > 0 {
		name = doc.Tracks[0].Name
	}
	if name != "" {
		md.Name = &name
	}
	if doc.Description != "" {
		desc := doc.Description
		md.Description = &desc
	}

	return waypoints, md, nil
}
