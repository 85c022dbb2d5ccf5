package geo

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64 // meters
		tolerance              float64
	}{
		{"same point", 45.0, -75.0, 45.0, -75.0, 0, 0.001},
		{"one degree latitude", 45.0, -75.0, 46.0, -75.0, 111195, 50},
		{"small step north", 45.0, -75.0, 45.001, -75.0, 111.2, 0.5},
		{"equator one degree longitude", 0.0, 0.0, 0.0, 1.0, 111195, 50},
		{"ottawa to toronto", 45.4215, -75.6972, 43.6532, -79.3832, 351900, 1000},
		{"antipodal-ish", 0.0, 0.0, 0.0, 180.0, math.Pi * EarthRadiusMeters, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("Distance() = %f, want %f ± %f", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a := Distance(45.0, -75.0, 46.5, -74.2)
	b := Distance(46.5, -74.2, 45.0, -75.0)
	if a != b {
		t.Errorf("Distance is not symmetric: %f != %f", a, b)
	}
}

// The batched form must produce bit-identical results to iterated
// scalar calls; downstream consumers rely on this for reproducibility.
func TestDistancesMatchesScalar(t *testing.T) {
	lat1 := []float64{45.0, 45.001, 45.002, 0.0, -33.8688}
	lon1 := []float64{-75.0, -75.0, -75.0, 0.0, 151.2093}
	lat2 := []float64{45.001, 45.002, 45.003, 0.5, -37.8136}
	lon2 := []float64{-75.0, -75.0, -75.0, 0.5, 144.9631}

	batch := Distances(lat1, lon1, lat2, lon2)
	if len(batch) != len(lat1) {
		t.Fatalf("Distances returned %d results, want %d", len(batch), len(lat1))
	}
	for i := range lat1 {
		scalar := Distance(lat1[i], lon1[i], lat2[i], lon2[i])
		if batch[i] != scalar {
			t.Errorf("index %d: batch %v != scalar %v", i, batch[i], scalar)
		}
	}
}

func TestDistancesMismatchedLengthsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on mismatched slice lengths")
		}
	}()
	Distances([]float64{1, 2}, []float64{1}, []float64{1, 2}, []float64{1, 2})
}
