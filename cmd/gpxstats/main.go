// Command gpxstats processes a single GPX file and prints the resulting
// document (waypoints, metadata, statistics) as JSON, without touching a
// database. Useful for inspecting a file before uploading it.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/track.report/internal/track"
	"github.com/banshee-data/track.report/internal/units"
)

func main() {
	var path string
	var useIQR bool
	var windowSize int
	var method string
	var timezone string
	var statsOnly bool

	flag.StringVar(&path, "file", "", "path to the GPX file (required)")
	flag.BoolVar(&useIQR, "iqr", true, "apply IQR outlier detection and repair")
	flag.IntVar(&windowSize, "window", 2, "speed calculation window size")
	flag.StringVar(&method, "method", "linear", "interpolation method (linear, quadratic, cubic, nearest, akima)")
	flag.StringVar(&timezone, "timezone", units.DefaultTimezone, "IANA timezone for waypoint timestamps")
	flag.BoolVar(&statsOnly, "stats-only", false, "print only the statistics section")
	flag.Parse()

	if path == "" {
		flag.Usage()
		os.Exit(1)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to read %s: %v", path, err)
	}

	loc, err := units.LoadTimezone(timezone)
	if err != nil {
		log.Fatalf("invalid timezone %q: %v", timezone, err)
	}

	cfg := track.Config{
		UseIQR:              useIQR,
		WindowSize:          windowSize,
		InterpolationMethod: method,
	}

	doc, warnings, err := track.Process(content, cfg, loc)
	if err != nil {
		log.Fatalf("processing failed: %v", err)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	var out any = doc
	if statsOnly {
		out = doc.Statistics
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("failed to encode output: %v", err)
	}
}
