package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for great-circle math.
const EarthRadiusMeters = 6371000.0

// Haversine returns the great-circle distance in meters between two
// latitude/longitude pairs on a spherical Earth. It is symmetric in its
// arguments and returns 0 for identical points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lon2 - lon1)

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// IsSentinel reports whether the pair is the (0, 0) placeholder that exports
// use for an unknown location. The check is exact equality: real saved points
// are never at the origin, and near-zero coordinates stay valid.
func IsSentinel(lon, lat float64) bool {
	return lon == 0 && lat == 0
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
