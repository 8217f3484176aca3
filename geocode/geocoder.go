package geocode

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/urban-housing-tools/commuterank/cache"
	"github.com/urban-housing-tools/commuterank/geo"
	"github.com/urban-housing-tools/commuterank/retry"
)

// Geocoder resolves addresses to coordinates with a persistent cache in
// front of the external service. Cache hits are free; new lookups are
// throttled to one per MinDelay and retried with backoff on transient
// failures. Failures are never cached, so a later run can try again.
type Geocoder struct {
	svc      Service
	store    *cache.Store
	retry    retry.Policy
	log      zerolog.Logger
	city     string
	country  string
	bounds   geo.BoundingBox
	minDelay time.Duration

	lastRequest time.Time
	sleep       func(time.Duration) // test seam
}

// Options configure a Geocoder. Zero values fall back to the Berlin
// defaults the pipeline was built for.
type Options struct {
	City     string
	Country  string
	Bounds   geo.BoundingBox
	MinDelay time.Duration
}

// New creates a Geocoder over svc backed by store.
func New(svc Service, store *cache.Store, policy retry.Policy, opts Options, log zerolog.Logger) *Geocoder {
	if opts.City == "" {
		opts.City = "Berlin"
	}
	if opts.Country == "" {
		opts.Country = "Germany"
	}
	if opts.Bounds.IsZero() {
		opts.Bounds = geo.Berlin
	}
	if opts.MinDelay == 0 {
		opts.MinDelay = time.Second
	}
	return &Geocoder{
		svc:      svc,
		store:    store,
		retry:    policy,
		log:      log,
		city:     opts.City,
		country:  opts.Country,
		bounds:   opts.Bounds,
		minDelay: opts.MinDelay,
		sleep:    time.Sleep,
	}
}

// Geocode resolves one address. It returns nil when the address cannot be
// resolved; lookup failures degrade to nil instead of propagating. The
// second return value reports whether the result came from the cache.
func (g *Geocoder) Geocode(ctx context.Context, address string) (*geo.Coordinate, bool) {
	normalized := NormalizeAddress(address, g.city, g.country)
	if normalized == "" {
		return nil, false
	}
	key := cache.AddressKey(normalized)

	var cached geo.Coordinate
	if g.store.Get(key, &cached) {
		return &cached, true
	}

	g.throttle()

	var coord *geo.Coordinate
	err := g.retry.Do(ctx, "geocode", func() error {
		var lookupErr error
		coord, lookupErr = g.svc.Lookup(ctx, normalized)
		return lookupErr
	})
	if err != nil {
		g.log.Warn().Str("address", normalized).Err(err).Msg("geocoding failed")
		return nil, false
	}
	if coord == nil {
		g.log.Debug().Str("address", normalized).Msg("address not found")
		return nil, false
	}
	if !g.bounds.Contains(*coord) {
		g.log.Warn().
			Str("address", normalized).
			Float64("lat", coord.Latitude).
			Float64("lon", coord.Longitude).
			Msg("geocoded outside plausible bounds, discarding")
		return nil, false
	}

	if err := g.store.Put(key, coord); err != nil {
		g.log.Warn().Err(err).Msg("could not persist geocode result")
	}
	return coord, false
}

// throttle enforces the minimum spacing between requests that actually hit
// the external service. Cached hits never pass through here.
func (g *Geocoder) throttle() {
	if !g.lastRequest.IsZero() {
		if wait := g.minDelay - time.Since(g.lastRequest); wait > 0 {
			g.sleep(wait)
		}
	}
	g.lastRequest = time.Now()
}

// Progress reports batch progress: how many distinct addresses have been
// processed, how many resolved, and how the resolutions split between
// cache hits and new lookups.
type Progress func(processed, success, cacheHits, newLookups int)

// GeocodeBatch resolves the distinct set of addresses (first-seen order)
// and returns a map from the raw address to its coordinate. Unresolvable
// addresses are simply absent from the result. The callback, when set, is
// invoked every `every` addresses and once at the end.
func (g *Geocoder) GeocodeBatch(ctx context.Context, addresses []string, every int, progress Progress) map[string]*geo.Coordinate {
	if every <= 0 {
		every = 10
	}

	distinct := make([]string, 0, len(addresses))
	seen := map[string]struct{}{}
	for _, a := range addresses {
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		distinct = append(distinct, a)
	}

	g.log.Info().Int("distinct", len(distinct)).Int("rows", len(addresses)).Msg("geocoding addresses")

	results := make(map[string]*geo.Coordinate, len(distinct))
	var success, cacheHits, newLookups int
	for i, addr := range distinct {
		if ctx.Err() != nil {
			g.log.Warn().Int("processed", i).Msg("geocoding interrupted")
			break
		}
		coord, fromCache := g.Geocode(ctx, addr)
		if coord != nil {
			results[addr] = coord
			success++
			if fromCache {
				cacheHits++
			} else {
				newLookups++
			}
		}
		processed := i + 1
		if progress != nil && (processed%every == 0 || processed == len(distinct)) {
			progress(processed, success, cacheHits, newLookups)
		}
	}

	g.log.Info().
		Int("resolved", success).
		Int("cacheHits", cacheHits).
		Int("newLookups", newLookups).
		Msg("geocoding finished")
	return results
}
