package utils

import "math"

// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
const EarthRadiusMeters = 6371000

// GeofenceResult is the outcome of a geofence check.
type GeofenceResult struct {
	DistanceMeters float64
	Within         bool
}

// CalculateHaversineDistance returns the great-circle distance between two coordinates in meters.
func CalculateHaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// EvaluateGeofence checks a reported position against a reference point and radius.
// A distance exactly equal to the radius counts as inside. NaN coordinates yield a
// NaN distance and Within == false; callers are expected to reject them first.
func EvaluateGeofence(lat, lng, refLat, refLng, radiusMeters float64) GeofenceResult {
	distance := CalculateHaversineDistance(lat, lng, refLat, refLng)
	return GeofenceResult{
		DistanceMeters: distance,
		Within:         distance <= radiusMeters,
	}
}

// IsWithinRadius reports whether (lat, lng) lies within radiusMeters of (refLat, refLng).
func IsWithinRadius(lat, lng, refLat, refLng, radiusMeters float64) bool {
	return EvaluateGeofence(lat, lng, refLat, refLng, radiusMeters).Within
}
