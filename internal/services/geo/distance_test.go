package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMiles_Identity(t *testing.T) {
	points := []Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 47.6062, Lon: -122.3321},
		{Lat: -33.8688, Lon: 151.2093},
		{Lat: 90, Lon: 180},
		{Lat: -90, Lon: -180},
	}
	for _, p := range points {
		assert.Equal(t, 0.0, DistanceMiles(p, p), "distance from %v to itself", p)
	}
}

func TestDistanceMiles_Symmetric(t *testing.T) {
	pairs := [][2]Coordinate{
		{{Lat: 47.6062, Lon: -122.3321}, {Lat: 45.5152, Lon: -122.6784}},
		{{Lat: 40.7128, Lon: -74.0060}, {Lat: 51.5074, Lon: -0.1278}},
		{{Lat: -33.8688, Lon: 151.2093}, {Lat: 35.6762, Lon: 139.6503}},
		{{Lat: 10, Lon: 179.9}, {Lat: -10, Lon: -179.9}},
	}
	for _, p := range pairs {
		assert.InDelta(t, DistanceMiles(p[0], p[1]), DistanceMiles(p[1], p[0]), 1e-9)
	}
}

func TestDistanceMiles_KnownValues(t *testing.T) {
	// One degree of latitude along a meridian on a 6371 km sphere.
	oneDegree := DistanceMiles(Coordinate{Lat: 0, Lon: 0}, Coordinate{Lat: 1, Lon: 0})
	assert.InDelta(t, 69.093, oneDegree, 0.001)

	// Seattle to Portland is roughly 145 miles as the crow flies.
	d := DistanceMiles(Coordinate{Lat: 47.6062, Lon: -122.3321}, Coordinate{Lat: 45.5152, Lon: -122.6784})
	assert.InDelta(t, 145, d, 3)

	km := DistanceKm(Coordinate{Lat: 0, Lon: 0}, Coordinate{Lat: 0, Lon: 180})
	assert.InDelta(t, 20015.09, km, 0.1)
}

func TestCoordinate_Valid(t *testing.T) {
	assert.True(t, Coordinate{Lat: 90, Lon: -180}.Valid())
	assert.False(t, Coordinate{Lat: 90.1, Lon: 0}.Valid())
	assert.False(t, Coordinate{Lat: 0, Lon: 181}.Valid())
	assert.Equal(t, "47.6,-122.33", Coordinate{Lat: 47.6, Lon: -122.33}.String())
}
