package geo

import "math"

// HaversineKM returns the great-circle distance between two points in kilometers.
func HaversineKM(a, b Coordinate) float64 {
	const R = 6371.0
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180
	la1 := a.Latitude * math.Pi / 180
	la2 := b.Latitude * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return R * c
}

// HaversineM returns the great-circle distance in meters.
func HaversineM(a, b Coordinate) float64 {
	return HaversineKM(a, b) * 1000
}

// WalkingMinutes estimates walking time for a distance in meters at the
// given speed in km/h.
func WalkingMinutes(distanceM, speedKMH float64) float64 {
	if speedKMH <= 0 {
		return 0
	}
	return RoundMinutes(distanceM / 1000 / speedKMH * 60)
}

// RoundMinutes rounds a minute value to one decimal, the precision used
// for every duration in the pipeline.
func RoundMinutes(m float64) float64 {
	return math.Round(m*10) / 10
}
