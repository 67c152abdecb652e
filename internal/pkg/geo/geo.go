package geo

import "math"

const (
	// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
	EarthRadiusMeters = 6371000

	// DefaultRadiusMeters applies when a site has no geofence radius configured.
	DefaultRadiusMeters = 100
)

// Result is the outcome of a geofence evaluation.
type Result struct {
	IsWithin     bool `json:"is_within"`
	Distance     int  `json:"distance"`
	RadiusMeters int  `json:"radius_meters"`
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}

func toDegrees(rad float64) float64 {
	return rad * (180.0 / math.Pi)
}

// DistanceMeters returns the great-circle distance between two points in meters.
// Inputs are signed decimal degrees and are not range checked.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// EvaluateGeofence checks whether the user position lies within radiusMeters of the site.
// A non-positive radius falls back to DefaultRadiusMeters. NaN coordinates never match and
// report a distance of -1.
func EvaluateGeofence(userLat, userLon, siteLat, siteLon float64, radiusMeters int) Result {
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}

	rounded := math.Round(DistanceMeters(userLat, userLon, siteLat, siteLon))
	if math.IsNaN(rounded) || math.IsInf(rounded, 0) {
		return Result{IsWithin: false, Distance: -1, RadiusMeters: radiusMeters}
	}

	return Result{
		IsWithin:     rounded <= float64(radiusMeters),
		Distance:     int(rounded),
		RadiusMeters: radiusMeters,
	}
}

// Destination returns the point reached by travelling distanceMeters from (lat, lon)
// along the initial bearing bearingDeg (clockwise from north).
func Destination(lat, lon, bearingDeg, distanceMeters float64) (float64, float64) {
	angular := distanceMeters / EarthRadiusMeters
	bearing := toRadians(bearingDeg)
	lat1 := toRadians(lat)
	lon1 := toRadians(lon)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(angular) +
		math.Cos(lat1)*math.Sin(angular)*math.Cos(bearing))
	lon2 := lon1 + math.Atan2(
		math.Sin(bearing)*math.Sin(angular)*math.Cos(lat1),
		math.Cos(angular)-math.Sin(lat1)*math.Sin(lat2),
	)

	// normalise to [-180, 180)
	lon2 = math.Mod(lon2+3*math.Pi, 2*math.Pi) - math.Pi

	return toDegrees(lat2), toDegrees(lon2)
}

// ValidCoordinates reports whether lat/lon are finite and within their ranges.
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
