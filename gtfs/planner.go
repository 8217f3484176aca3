package gtfs

import (
	"context"
	"sort"

	"github.com/urban-housing-tools/commuterank/geo"
	"github.com/urban-housing-tools/commuterank/transit"
)

// Planner answers stop and journey queries over a loaded Index. It
// satisfies transit.StopSource and transit.JourneyPlanner so the resolver
// can run fully offline.
type Planner struct {
	index *Index

	// Heuristic knobs for pairs of stops no single trip connects.
	speedKMH           float64
	transferPenaltyMin float64
	longTripKM         float64
	walkSpeedKMH       float64
}

// NewPlanner creates a Planner over a loaded index.
func NewPlanner(ix *Index) *Planner {
	return &Planner{
		index:              ix,
		speedKMH:           30,
		transferPenaltyMin: 5,
		longTripKM:         10,
		walkSpeedKMH:       5,
	}
}

// NearbyStops returns up to max stops within radiusM meters of origin,
// closest first. Equidistant stops keep feed order.
func (p *Planner) NearbyStops(_ context.Context, origin geo.Coordinate, radiusM, max int) ([]transit.Stop, error) {
	radiusKM := float64(radiusM) / 1000
	// Coarse prefilter: one degree of latitude is ~111 km; longitude
	// shrinks by cos(lat), 0.67 is generous for Berlin.
	latDelta := radiusKM / 111.0
	lonDelta := radiusKM / (111.0 * 0.67)

	var found []transit.Stop
	for _, id := range p.index.stopOrder {
		s := p.index.stops[id]
		if s.Coordinate.Latitude < origin.Latitude-latDelta || s.Coordinate.Latitude > origin.Latitude+latDelta {
			continue
		}
		if s.Coordinate.Longitude < origin.Longitude-lonDelta || s.Coordinate.Longitude > origin.Longitude+lonDelta {
			continue
		}
		dist := geo.HaversineM(origin, s.Coordinate)
		if dist > float64(radiusM) {
			continue
		}
		found = append(found, transit.Stop{
			ID:         s.ID,
			Name:       s.Name,
			Coordinate: s.Coordinate,
			DistanceM:  dist,
		})
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].DistanceM < found[j].DistanceM })
	if max > 0 && len(found) > max {
		found = found[:max]
	}
	return found, nil
}

// Journeys plans an itinerary between two coordinates: direct trips from
// the stop_times table when a single trip connects the endpoints, a
// distance-based estimate otherwise. The walk from the final stop to the
// destination coordinate is folded into the duration.
func (p *Planner) Journeys(ctx context.Context, from, to geo.Coordinate) ([]transit.Journey, error) {
	origin := p.closestStop(ctx, from)
	dest := p.closestStop(ctx, to)
	if origin == nil || dest == nil {
		return nil, nil
	}
	if origin.ID == dest.ID {
		// Already there; only the final walk remains.
		walk := geo.WalkingMinutes(geo.HaversineM(dest.Coordinate, to), p.walkSpeedKMH)
		return []transit.Journey{{DurationMinutes: walk, Transfers: 0}}, nil
	}

	walkOutMin := geo.WalkingMinutes(geo.HaversineM(dest.Coordinate, to), p.walkSpeedKMH)

	if j, ok := p.directJourney(origin, dest, walkOutMin); ok {
		return []transit.Journey{j}, nil
	}
	return []transit.Journey{p.estimatedJourney(origin, dest, walkOutMin)}, nil
}

// closestStop finds the nearest indexed stop to a coordinate, widening
// the search radius until something is found.
func (p *Planner) closestStop(ctx context.Context, c geo.Coordinate) *transit.Stop {
	for _, radius := range []int{500, 2000, 10000} {
		stops, _ := p.NearbyStops(ctx, c, radius, 1)
		if len(stops) > 0 {
			return &stops[0]
		}
	}
	return nil
}

// directJourney scans the trips serving the origin stop for one that also
// serves the destination stop later in its sequence, and keeps the
// fastest. Scheduled ride time comes straight from stop_times.
func (p *Planner) directJourney(origin, dest *transit.Stop, walkOutMin float64) (transit.Journey, bool) {
	bestSec := -1
	bestRoute := ""
	for _, tripID := range p.index.stopTrips[origin.ID] {
		rows := p.index.tripStops[tripID]
		originIdx, destIdx := -1, -1
		for i, r := range rows {
			if r.StopID == origin.ID && originIdx == -1 {
				originIdx = i
			}
			if r.StopID == dest.ID {
				destIdx = i
			}
		}
		if originIdx == -1 || destIdx == -1 || destIdx <= originIdx {
			continue
		}
		rideSec := rows[destIdx].ArrivalSec - rows[originIdx].DepartureSec
		if rideSec <= 0 {
			continue
		}
		if bestSec == -1 || rideSec < bestSec {
			bestSec = rideSec
			bestRoute = p.index.tripRoute[tripID]
		}
	}
	if bestSec == -1 {
		return transit.Journey{}, false
	}

	legs := []transit.Leg{{
		Mode:        p.index.RouteMode(bestRoute),
		Line:        p.index.RouteName(bestRoute),
		Origin:      origin.Name,
		Destination: dest.Name,
	}}
	rideMin := float64(bestSec) / 60
	return transit.Journey{
		DurationMinutes: geo.RoundMinutes(rideMin + walkOutMin),
		Transfers:       0,
		Legs:            legs,
		ArrivalSeconds:  int64(bestSec),
	}, true
}

// estimatedJourney approximates a connection no single trip covers:
// straight-line distance at an average network speed plus a fixed penalty
// per assumed transfer. Stops sharing a route are assumed reachable
// without transfer.
func (p *Planner) estimatedJourney(origin, dest *transit.Stop, walkOutMin float64) transit.Journey {
	distKM := geo.HaversineKM(origin.Coordinate, dest.Coordinate)

	transfers := 1
	if p.index.sharesRoute(origin.ID, dest.ID) {
		transfers = 0
	} else if distKM > p.longTripKM {
		transfers = 2
	}

	rideMin := distKM/p.speedKMH*60 + float64(transfers)*p.transferPenaltyMin
	legs := make([]transit.Leg, 0, transfers+1)
	for i := 0; i <= transfers; i++ {
		legs = append(legs, transit.Leg{
			Mode:        "transit",
			Origin:      origin.Name,
			Destination: dest.Name,
		})
	}
	return transit.Journey{
		DurationMinutes: geo.RoundMinutes(rideMin + walkOutMin),
		Transfers:       transfers,
		Legs:            legs,
		ArrivalSeconds:  int64(rideMin * 60),
	}
}
