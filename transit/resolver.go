package transit

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/urban-housing-tools/commuterank/cache"
	"github.com/urban-housing-tools/commuterank/geo"
	"github.com/urban-housing-tools/commuterank/retry"
)

// Resolver caches nearest-stop and journey lookups in front of a
// StopSource and a JourneyPlanner. Confirmed-empty answers ("no stop
// within radius", "no itinerary") are cached so repeated misses do not
// re-trigger the lookup; failures are never cached.
type Resolver struct {
	stops    StopSource
	planner  JourneyPlanner
	store    *cache.Store
	retry    retry.Policy
	log      zerolog.Logger
	maxStops int

	cacheHits  int
	newLookups int
}

// NewResolver creates a Resolver over the given sources.
func NewResolver(stops StopSource, planner JourneyPlanner, store *cache.Store, policy retry.Policy, log zerolog.Logger) *Resolver {
	return &Resolver{
		stops:    stops,
		planner:  planner,
		store:    store,
		retry:    policy,
		log:      log,
		maxStops: 8,
	}
}

// Stats reports how resolutions split between cache hits and lookups that
// reached the underlying source.
func (r *Resolver) Stats() (cacheHits, newLookups int) {
	return r.cacheHits, r.newLookups
}

// stopEntry is the cached shape of a nearest-stop lookup. An empty Stops
// slice records a confirmed "no stop within radius".
type stopEntry struct {
	Stops []Stop `json:"stops"`
}

// FindNearestStop returns the closest stop within radiusM meters of
// origin, or nil when no stop exists there or the lookup failed. A
// non-positive radius is a hard error.
func (r *Resolver) FindNearestStop(ctx context.Context, origin geo.Coordinate, radiusM int) (*Stop, error) {
	if radiusM <= 0 {
		return nil, fmt.Errorf("stop search radius must be positive, got %d", radiusM)
	}
	key := cache.StopKey(origin, radiusM)

	var entry stopEntry
	if r.store.Get(key, &entry) {
		r.cacheHits++
		if len(entry.Stops) == 0 {
			return nil, nil
		}
		return &entry.Stops[0], nil
	}

	var stops []Stop
	err := r.retry.Do(ctx, "nearby stops", func() error {
		var lookupErr error
		stops, lookupErr = r.stops.NearbyStops(ctx, origin, radiusM, r.maxStops)
		return lookupErr
	})
	if err != nil {
		r.log.Warn().
			Float64("lat", origin.Latitude).
			Float64("lon", origin.Longitude).
			Err(err).
			Msg("stop lookup failed")
		return nil, nil
	}
	r.newLookups++

	nearest := nearestStop(origin, stops)
	entry = stopEntry{Stops: []Stop{}}
	if nearest != nil {
		entry.Stops = []Stop{*nearest}
	}
	if err := r.store.Put(key, entry); err != nil {
		r.log.Warn().Err(err).Msg("could not persist stop lookup")
	}
	return nearest, nil
}

// nearestStop picks the closest candidate, filling in the haversine
// distance when the source did not report one.
func nearestStop(origin geo.Coordinate, stops []Stop) *Stop {
	var best *Stop
	for i := range stops {
		s := stops[i]
		if s.DistanceM <= 0 {
			s.DistanceM = geo.HaversineM(origin, s.Coordinate)
		}
		if best == nil || s.DistanceM < best.DistanceM {
			c := s
			best = &c
		}
	}
	return best
}

// journeyEntry is the cached shape of a journey lookup. A nil Journey
// records a confirmed "no itinerary between these coordinates".
type journeyEntry struct {
	Journey *Journey `json:"journey"`
}

// PlanJourney returns the best itinerary between two coordinates, or nil
// when none exists or the lookup failed.
func (r *Resolver) PlanJourney(ctx context.Context, from, to geo.Coordinate) *Journey {
	key := cache.JourneyKey(from, to)

	var entry journeyEntry
	if r.store.Get(key, &entry) {
		r.cacheHits++
		return entry.Journey
	}

	var candidates []Journey
	err := r.retry.Do(ctx, "plan journey", func() error {
		var lookupErr error
		candidates, lookupErr = r.planner.Journeys(ctx, from, to)
		return lookupErr
	})
	if err != nil {
		r.log.Warn().
			Float64("fromLat", from.Latitude).
			Float64("fromLon", from.Longitude).
			Err(err).
			Msg("journey lookup failed")
		return nil
	}
	r.newLookups++

	best := BestJourney(candidates)
	if err := r.store.Put(key, journeyEntry{Journey: best}); err != nil {
		r.log.Warn().Err(err).Msg("could not persist journey lookup")
	}
	return best
}
