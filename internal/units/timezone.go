package units

import (
	"fmt"
	"time"
)

// DefaultTimezone is the zone waypoint timestamps are converted into when
// the caller does not configure one. Tracks have historically been stored
// with Toronto wall-clock timestamps, so this default preserves the
// persisted contract for existing data.
const DefaultTimezone = "America/Toronto"

// IsTimezoneValid checks if the given timezone is valid by attempting to
// load it from the system tz database.
func IsTimezoneValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// LoadTimezone resolves a tz database name to a *time.Location, falling
// back to DefaultTimezone for the empty string.
func LoadTimezone(tz string) (*time.Location, error) {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", tz, err)
	}
	return loc, nil
}
