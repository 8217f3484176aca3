package geo

// Coordinate is a geographic point in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// BoundingBox is a plausibility box for coordinates. Geocoding results
// outside the box are treated as misses, not as valid positions.
type BoundingBox struct {
	North float64 `yaml:"north" json:"north"`
	South float64 `yaml:"south" json:"south"`
	East  float64 `yaml:"east" json:"east"`
	West  float64 `yaml:"west" json:"west"`
}

// Berlin is the default plausibility box for the target city.
var Berlin = BoundingBox{North: 52.7, South: 52.3, East: 13.8, West: 13.0}

func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Latitude >= b.South && c.Latitude <= b.North &&
		c.Longitude >= b.West && c.Longitude <= b.East
}

// IsZero reports whether b is the zero box (unset in config).
func (b BoundingBox) IsZero() bool {
	return b.North == 0 && b.South == 0 && b.East == 0 && b.West == 0
}
