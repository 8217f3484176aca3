// Package commute combines nearest-stop and journey lookups into commute
// records for listings, preserving whatever partial data each lookup
// produced.
package commute

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/urban-housing-tools/commuterank/geo"
	"github.com/urban-housing-tools/commuterank/transit"
)

const (
	// DefaultRadiusM is the stop search radius around a listing.
	DefaultRadiusM = 1000
	// DefaultWalkSpeedKMH converts stop distance into walking minutes.
	DefaultWalkSpeedKMH = 5.0
)

// Record is the commute result for one listing. Nil fields mean the
// corresponding lookup produced nothing; a record is never discarded for
// being partial.
type Record struct {
	NearestStop         *transit.Stop    `json:"nearestStop,omitempty"`
	WalkingMinutes      *float64         `json:"walkingMinutes,omitempty"`
	Journey             *transit.Journey `json:"journey,omitempty"`
	TotalCommuteMinutes *float64         `json:"totalCommuteMinutes,omitempty"`
}

// Input is one listing the batch driver should resolve.
type Input struct {
	ID         string
	Coordinate geo.Coordinate
}

// Progress reports batch progress in the same shape the geocoder uses.
type Progress func(processed, success, cacheHits, newLookups int)

// Aggregator drives the transit resolver for each listing.
type Aggregator struct {
	resolver     *transit.Resolver
	radiusM      int
	walkSpeedKMH float64
	log          zerolog.Logger
}

// New creates an Aggregator. Zero radius and speed fall back to the
// defaults; negative values are rejected.
func New(resolver *transit.Resolver, radiusM int, walkSpeedKMH float64, log zerolog.Logger) (*Aggregator, error) {
	if radiusM == 0 {
		radiusM = DefaultRadiusM
	}
	if walkSpeedKMH == 0 {
		walkSpeedKMH = DefaultWalkSpeedKMH
	}
	if radiusM < 0 {
		return nil, fmt.Errorf("stop search radius must be positive, got %d", radiusM)
	}
	if walkSpeedKMH < 0 {
		return nil, fmt.Errorf("walking speed must be positive, got %v", walkSpeedKMH)
	}
	return &Aggregator{
		resolver:     resolver,
		radiusM:      radiusM,
		walkSpeedKMH: walkSpeedKMH,
		log:          log,
	}, nil
}

// Commute resolves one listing coordinate against the destination. Each
// step that fails leaves its fields nil and the earlier fields intact.
func (a *Aggregator) Commute(ctx context.Context, origin, destination geo.Coordinate) Record {
	var rec Record

	stop, err := a.resolver.FindNearestStop(ctx, origin, a.radiusM)
	if err != nil {
		a.log.Error().Err(err).Msg("stop lookup misconfigured")
		return rec
	}
	if stop == nil {
		return rec
	}
	rec.NearestStop = stop

	walking := geo.WalkingMinutes(stop.DistanceM, a.walkSpeedKMH)
	rec.WalkingMinutes = &walking

	journey := a.resolver.PlanJourney(ctx, stop.Coordinate, destination)
	if journey == nil {
		return rec
	}
	rec.Journey = journey

	total := geo.RoundMinutes(walking + journey.DurationMinutes)
	rec.TotalCommuteMinutes = &total
	return rec
}

// Batch resolves all inputs against the destination. One listing's
// failure never aborts the run; the context is checked between listings
// so a cancelled run stops at a listing boundary. The callback, when set,
// fires every `every` listings and once at the end.
func (a *Aggregator) Batch(ctx context.Context, inputs []Input, destination geo.Coordinate, every int, progress Progress) map[string]Record {
	if every <= 0 {
		every = 10
	}

	a.log.Info().Int("listings", len(inputs)).Msg("computing commutes")

	results := make(map[string]Record, len(inputs))
	startHits, startLookups := a.resolver.Stats()
	success := 0
	for i, in := range inputs {
		if ctx.Err() != nil {
			a.log.Warn().Int("processed", i).Msg("commute batch interrupted")
			break
		}
		rec := a.Commute(ctx, in.Coordinate, destination)
		results[in.ID] = rec
		if rec.TotalCommuteMinutes != nil {
			success++
		}
		processed := i + 1
		if progress != nil && (processed%every == 0 || processed == len(inputs)) {
			hits, lookups := a.resolver.Stats()
			progress(processed, success, hits-startHits, lookups-startLookups)
		}
	}

	a.log.Info().Int("complete", success).Int("total", len(results)).Msg("commutes finished")
	return results
}
