package geo

import "math"

const (
	earthRadiusKm = 6371.0
	kmToMiles     = 0.621371
)

// DistanceKm calculates the great-circle distance between two points using
// the Haversine formula.
func DistanceKm(a, b Coordinate) float64 {
	lat1Rad := a.Lat * math.Pi / 180
	lat2Rad := b.Lat * math.Pi / 180
	deltaLat := (b.Lat - a.Lat) * math.Pi / 180
	deltaLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// DistanceMiles is DistanceKm converted to statute miles.
func DistanceMiles(a, b Coordinate) float64 {
	return DistanceKm(a, b) * kmToMiles
}
