package units

import (
	"math"
	"testing"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid mps", MPS, true},
		{"valid mph", MPH, true},
		{"valid kmph", KMPH, true},
		{"valid kph", KPH, true},
		{"invalid unit", "invalid", false},
		{"empty unit", "", false},
		{"uppercase KMPH", "KMPH", false}, // Case-sensitive
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValid(tt.unit)
			if result != tt.expected {
				t.Errorf("IsValid(%s) = %v, want %v", tt.unit, result, tt.expected)
			}
		})
	}
}

func TestConvertSpeed(t *testing.T) {
	tests := []struct {
		name     string
		speedKMH float64
		unit     string
		expected float64
	}{
		// km/h is the native unit: no conversion
		{"0 km/h to kmph", 0.0, KMPH, 0.0},
		{"36 km/h to kmph", 36.0, KMPH, 36.0},
		{"36 km/h to kph", 36.0, KPH, 36.0},

		// km/h to m/s (divide by 3.6)
		{"36 km/h to mps", 36.0, MPS, 10.0},
		{"3.6 km/h to mps", 3.6, MPS, 1.0},

		// km/h to mph
		{"100 km/h to mph", 100.0, MPH, 62.137119223733},

		// Unknown unit passes through
		{"36 km/h to unknown", 36.0, "furlongs", 36.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertSpeed(tt.speedKMH, tt.unit)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("ConvertSpeed(%f, %s) = %f, want %f", tt.speedKMH, tt.unit, result, tt.expected)
			}
		})
	}
}

func TestIsTimezoneValid(t *testing.T) {
	tests := []struct {
		tz       string
		expected bool
	}{
		{"UTC", true},
		{"America/Toronto", true},
		{"Europe/Berlin", true},
		{"", false},
		{"Not/AZone", false},
	}

	for _, tt := range tests {
		if got := IsTimezoneValid(tt.tz); got != tt.expected {
			t.Errorf("IsTimezoneValid(%q) = %v, want %v", tt.tz, got, tt.expected)
		}
	}
}

func TestLoadTimezone(t *testing.T) {
	loc, err := LoadTimezone("")
	if err != nil {
		t.Fatalf("LoadTimezone(\"\") error: %v", err)
	}
	if loc.String() != DefaultTimezone {
		t.Errorf("LoadTimezone(\"\") = %s, want %s", loc, DefaultTimezone)
	}

	if _, err := LoadTimezone("Not/AZone"); err == nil {
		t.Error("LoadTimezone(Not/AZone) expected error")
	}
}
