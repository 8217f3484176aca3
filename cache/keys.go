package cache

import (
	"fmt"
	"strings"

	"github.com/urban-housing-tools/commuterank/geo"
)

// Derived cache keys. Coordinates are rounded to six decimal places
// (about 0.1m) before composing a key, and each lookup kind carries its
// own prefix so a stop search and a journey plan for the same coordinates
// can never collide. Stop keys include the search radius: a different
// radius is a materially different query.

// AddressKey builds the cache key for a normalized address.
func AddressKey(normalized string) string {
	return "addr|" + strings.ToLower(normalized)
}

// StopKey builds the cache key for a nearby-stop lookup.
func StopKey(origin geo.Coordinate, radiusM int) string {
	return fmt.Sprintf("stop|%.6f_%.6f|r%d", origin.Latitude, origin.Longitude, radiusM)
}

// JourneyKey builds the cache key for a journey plan between two points.
func JourneyKey(from, to geo.Coordinate) string {
	return fmt.Sprintf("journey|%.6f_%.6f|%.6f_%.6f",
		from.Latitude, from.Longitude, to.Latitude, to.Longitude)
}
