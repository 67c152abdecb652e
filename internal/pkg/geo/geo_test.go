package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMeters_SamePointIsZero(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{40.0, -74.0},
		{-33.8688, 151.2093},
		{89.9, 179.9},
		{-90, -180},
	}
	for _, p := range points {
		assert.Equal(t, 0.0, DistanceMeters(p[0], p[1], p[0], p[1]), "point %v", p)
	}
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	cases := [][4]float64{
		{40.0, -74.0, 40.7128, -74.0060},
		{51.5074, -0.1278, 48.8566, 2.3522},
		{-6.2, 106.8, -7.25, 112.75},
		{0, 0, 0, 1},
	}
	for _, c := range cases {
		ab := DistanceMeters(c[0], c[1], c[2], c[3])
		ba := DistanceMeters(c[2], c[3], c[0], c[1])
		assert.InDelta(t, ab, ba, 1e-6, "case %v", c)
		assert.GreaterOrEqual(t, ab, 0.0)
	}
}

func TestDistanceMeters_KnownDistance(t *testing.T) {
	// London -> Paris is roughly 343.5 km
	d := DistanceMeters(51.5074, -0.1278, 48.8566, 2.3522)
	assert.InDelta(t, 343500, d, 1500)

	// one degree of longitude on the equator
	d = DistanceMeters(0, 0, 0, 1)
	assert.InDelta(t, 2*math.Pi*EarthRadiusMeters/360, d, 0.001)
}

func TestEvaluateGeofence_Boundary(t *testing.T) {
	lat, lon := Destination(0, 0, 90, 100)
	result := EvaluateGeofence(lat, lon, 0, 0, 100)
	assert.True(t, result.IsWithin)
	assert.Equal(t, 100, result.Distance)
	assert.Equal(t, 100, result.RadiusMeters)

	lat, lon = Destination(0, 0, 90, 101)
	result = EvaluateGeofence(lat, lon, 0, 0, 100)
	assert.False(t, result.IsWithin)
	assert.Equal(t, 101, result.Distance)
}

func TestEvaluateGeofence_DefaultRadius(t *testing.T) {
	lat, lon := Destination(40.0, -74.0, 45, 80)
	result := EvaluateGeofence(lat, lon, 40.0, -74.0, 0)
	assert.True(t, result.IsWithin)
	assert.Equal(t, DefaultRadiusMeters, result.RadiusMeters)

	lat, lon = Destination(40.0, -74.0, 45, 150)
	result = EvaluateGeofence(lat, lon, 40.0, -74.0, -5)
	assert.False(t, result.IsWithin)
	assert.Equal(t, DefaultRadiusMeters, result.RadiusMeters)
}

func TestEvaluateGeofence_NaN(t *testing.T) {
	result := EvaluateGeofence(math.NaN(), -74.0, 40.0, -74.0, 50)
	assert.False(t, result.IsWithin)
	assert.Equal(t, -1, result.Distance)
	assert.Equal(t, 50, result.RadiusMeters)
}

func TestEvaluateGeofence_FarAway(t *testing.T) {
	lat, lon := Destination(40.0, -74.0, 180, 500)
	result := EvaluateGeofence(lat, lon, 40.0, -74.0, 50)
	assert.False(t, result.IsWithin)
	assert.Equal(t, 500, result.Distance)
	assert.Equal(t, 50, result.RadiusMeters)
}

func TestDestination_RoundTrip(t *testing.T) {
	for _, bearing := range []float64{0, 45, 90, 135, 180, 225, 270, 315} {
		lat, lon := Destination(-6.2, 106.8, bearing, 2500)
		assert.InDelta(t, 2500, DistanceMeters(-6.2, 106.8, lat, lon), 0.01, "bearing %v", bearing)
	}
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(0, 0))
	assert.True(t, ValidCoordinates(-90, 180))
	assert.False(t, ValidCoordinates(90.1, 0))
	assert.False(t, ValidCoordinates(0, -180.5))
	assert.False(t, ValidCoordinates(math.NaN(), 0))
}
