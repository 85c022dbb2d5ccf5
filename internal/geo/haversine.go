// Package geo provides great-circle distance calculations for GPS coordinates.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for all distance
// calculations. Haversine assumes a spherical Earth.
const EarthRadiusMeters = 6371000.0

// Distance returns the great-circle distance in meters between two
// coordinates given in degrees, using the Haversine formula.
//
// The domain is unchecked: callers guarantee lat within [-90, 90] and
// lon within [-180, 180]. Coordinates are validated upstream.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlon1 := lon1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	rlon2 := lon2 * math.Pi / 180

	dlat := rlat2 - rlat1
	dlon := rlon2 - rlon1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return EarthRadiusMeters * c
}

// Distances computes the pairwise distances between aligned coordinate
// slices: out[i] = Distance(lat1[i], lon1[i], lat2[i], lon2[i]).
//
// The batch form calls the scalar formula per element, in order, so the
// results are bit-identical to iterated scalar calls. All four slices
// must have equal length; Distances panics otherwise.
func Distances(lat1, lon1, lat2, lon2 []float64) []float64 {
	if len(lon1) != len(lat1) || len(lat2) != len(lat1) || len(lon2) != len(lat1) {
		panic("geo: mismatched coordinate slice lengths")
	}
	out := make([]float64, len(lat1))
	for i := range lat1 {
		out[i] = Distance(lat1[i], lon1[i], lat2[i], lon2[i])
	}
	return out
}
