// Package gtfs loads static GTFS schedule tables (stops, routes, trips,
// stop times) and answers nearby-stop and journey queries over them, as an
// offline alternative to a live journey-planning service.
package gtfs

import (
	"github.com/urban-housing-tools/commuterank/geo"
)

// StopInfo is one row of stops.txt kept in the index.
type StopInfo struct {
	ID         string
	Name       string
	Coordinate geo.Coordinate
}

// stopTime is one stop_times.txt row attached to its trip, times in
// seconds since service midnight.
type stopTime struct {
	StopID       string
	Seq          int
	ArrivalSec   int
	DepartureSec int
}

// Index stores the loaded GTFS tables in memory for fast lookups. Stops
// outside the bounding box given at load time are dropped, together with
// their stop_times rows.
type Index struct {
	bounds geo.BoundingBox

	stops     map[string]StopInfo
	stopOrder []string // stop IDs in file order, keeps queries deterministic

	routeNames map[string]string // route_id -> short name
	routeModes map[string]string // route_id -> mode derived from route_type

	tripRoute map[string]string     // trip_id -> route_id
	tripStops map[string][]stopTime // trip_id -> rows ordered by stop_sequence

	stopTrips  map[string][]string            // stop_id -> trip_ids in file order
	stopRoutes map[string]map[string]struct{} // stop_id -> route_ids serving it
}

func newIndex(bounds geo.BoundingBox) *Index {
	return &Index{
		bounds:     bounds,
		stops:      map[string]StopInfo{},
		routeNames: map[string]string{},
		routeModes: map[string]string{},
		tripRoute:  map[string]string{},
		tripStops:  map[string][]stopTime{},
		stopTrips:  map[string][]string{},
		stopRoutes: map[string]map[string]struct{}{},
	}
}

// StopCount reports how many stops survived the bounding-box filter.
func (ix *Index) StopCount() int { return len(ix.stops) }

// TripCount reports how many trips carry stop_times rows.
func (ix *Index) TripCount() int { return len(ix.tripStops) }

// Stop returns the indexed stop for an ID.
func (ix *Index) Stop(id string) (StopInfo, bool) {
	s, ok := ix.stops[id]
	return s, ok
}

// RouteName returns the short name for a route ID.
func (ix *Index) RouteName(routeID string) string { return ix.routeNames[routeID] }

// RouteMode returns the mode string for a route ID ("bus", "subway", ...).
func (ix *Index) RouteMode(routeID string) string { return ix.routeModes[routeID] }

// routeModeFromType maps the GTFS route_type enum to a mode string.
func routeModeFromType(routeType int) string {
	switch routeType {
	case 0:
		return "tram"
	case 1:
		return "subway"
	case 2:
		return "suburban"
	case 3:
		return "bus"
	case 4:
		return "ferry"
	default:
		return "transit"
	}
}

// addStop records a stop if it lies inside the bounding box.
func (ix *Index) addStop(s StopInfo) {
	if !ix.bounds.IsZero() && !ix.bounds.Contains(s.Coordinate) {
		return
	}
	if _, exists := ix.stops[s.ID]; exists {
		return
	}
	ix.stops[s.ID] = s
	ix.stopOrder = append(ix.stopOrder, s.ID)
}

// addStopTimes attaches a trip's ordered stop_times rows, skipping rows
// for stops the bounding-box filter dropped, and maintains the inverted
// stop -> trips and stop -> routes indexes.
func (ix *Index) addStopTimes(tripID string, rows []stopTime) {
	kept := make([]stopTime, 0, len(rows))
	for _, r := range rows {
		if _, ok := ix.stops[r.StopID]; !ok {
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) < 2 {
		return
	}
	ix.tripStops[tripID] = kept

	routeID := ix.tripRoute[tripID]
	for _, r := range kept {
		ix.stopTrips[r.StopID] = append(ix.stopTrips[r.StopID], tripID)
		if routeID != "" {
			set, ok := ix.stopRoutes[r.StopID]
			if !ok {
				set = map[string]struct{}{}
				ix.stopRoutes[r.StopID] = set
			}
			set[routeID] = struct{}{}
		}
	}
}

// sharesRoute reports whether any single route serves both stops.
func (ix *Index) sharesRoute(stopA, stopB string) bool {
	a, b := ix.stopRoutes[stopA], ix.stopRoutes[stopB]
	if len(a) > len(b) {
		a, b = b, a
	}
	for routeID := range a {
		if _, ok := b[routeID]; ok {
			return true
		}
	}
	return false
}
