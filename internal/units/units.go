// Package units provides shared constants and conversions for speed units
// and timezone handling. The pipeline computes speeds in km/h; the API can
// serve them in other units on request.
package units

// Unit constants
const (
	MPS  = "mps"
	MPH  = "mph"
	KMPH = "kmph"
	KPH  = "kph"
)

// MetersPerSecondToKMH is the factor applied to m/s speeds to obtain km/h.
const MetersPerSecondToKMH = 3.6

// ValidUnits contains all valid unit values
var ValidUnits = []string{MPS, MPH, KMPH, KPH}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "mps, mph, kmph, kph"
}

// ConvertSpeed converts a speed from km/h (the pipeline's native unit)
// to the target units. Unknown units pass the value through unchanged.
func ConvertSpeed(speedKMH float64, targetUnits string) float64 {
	switch targetUnits {
	case KMPH, KPH:
		return speedKMH
	case MPS:
		return speedKMH / 3.6
	case MPH:
		return speedKMH * 0.62137119223733
	default:
		return speedKMH
	}
}
