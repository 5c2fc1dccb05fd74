// Package geo provides the geodesic distance primitives used by the track
// statistics aggregator. All functions are pure and operate on a spherical
// Earth model.
package geo

import "math"

// EarthRadius is the mean Earth radius in meters used for the spherical model.
const EarthRadius = 6371000.0

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// degToRad converts decimal degrees to radians.
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Haversine returns the great-circle surface distance between two coordinates
// in meters, using the haversine formula. Callers are expected to pass valid
// GPS coordinates; no range validation is performed.
func Haversine(a, b Coordinate) float64 {
	latA := degToRad(a.Lat)
	latB := degToRad(b.Lat)
	dLat := degToRad(b.Lat - a.Lat)
	dLon := degToRad(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(latA)*math.Cos(latB)*sinLon*sinLon

	// Clamp before Asin to guard against floating point drift pushing the
	// argument fractionally above 1 for near-antipodal inputs.
	return 2 * EarthRadius * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Distance3D returns the spatial distance between two coordinates in meters,
// combining the haversine surface distance with the elevation difference as a
// vertical leg (Pythagorean composition).
//
// Elevation is passed as a pointer because GPX points may omit it entirely.
// When either elevation is nil the vertical leg is treated as zero and the
// result degrades to the plain surface distance.
func Distance3D(a, b Coordinate, eleA, eleB *float64) float64 {
	planar := Haversine(a, b)
	if eleA == nil || eleB == nil {
		return planar
	}
	vertical := *eleB - *eleA
	return math.Sqrt(planar*planar + vertical*vertical)
}
