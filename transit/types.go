package transit

import (
	"context"
	"strings"

	"github.com/urban-housing-tools/commuterank/geo"
)

// Stop is a transit stop near an origin coordinate, with the straight-line
// distance from that origin in meters.
type Stop struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Coordinate geo.Coordinate `json:"coordinate"`
	DistanceM  float64        `json:"distanceM"`
}

// Leg is one segment of a journey.
type Leg struct {
	Mode        string `json:"mode"`
	Line        string `json:"line,omitempty"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// Journey is one itinerary between two coordinates. ArrivalSeconds orders
// candidates when a planner returns several; it is not surfaced downstream.
type Journey struct {
	DurationMinutes float64 `json:"durationMinutes"`
	Transfers       int     `json:"transfers"`
	Legs            []Leg   `json:"legs,omitempty"`

	ArrivalSeconds int64 `json:"-"`
}

// StopSource finds transit stops near a coordinate, closest first.
type StopSource interface {
	NearbyStops(ctx context.Context, origin geo.Coordinate, radiusM, max int) ([]Stop, error)
}

// JourneyPlanner computes candidate itineraries between two coordinates.
// An empty slice with a nil error means the planner answered but found no
// itinerary; an error means the computation itself failed.
type JourneyPlanner interface {
	Journeys(ctx context.Context, from, to geo.Coordinate) ([]Journey, error)
}

// IsWalking reports whether a leg mode counts as walking rather than a
// transit leg.
func IsWalking(mode string) bool {
	switch strings.ToLower(mode) {
	case "walking", "walk", "foot":
		return true
	}
	return false
}

// TransferCount derives the transfer count from a journey's legs: transit
// legs minus one, clamped to zero. Walking legs do not count.
func TransferCount(legs []Leg) int {
	transit := 0
	for _, l := range legs {
		if !IsWalking(l.Mode) {
			transit++
		}
	}
	if transit <= 1 {
		return 0
	}
	return transit - 1
}

// BestJourney selects the preferred itinerary: earliest arrival, then
// fewest transfers, then input order. Returns nil for an empty candidate
// set.
func BestJourney(candidates []Journey) *Journey {
	if len(candidates) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(candidates); i++ {
		c, b := candidates[i], candidates[best]
		switch {
		case c.ArrivalSeconds < b.ArrivalSeconds:
			best = i
		case c.ArrivalSeconds == b.ArrivalSeconds && c.Transfers < b.Transfers:
			best = i
		}
	}
	j := candidates[best]
	return &j
}
