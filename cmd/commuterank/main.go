package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/urban-housing-tools/commuterank/cache"
	"github.com/urban-housing-tools/commuterank/commute"
	"github.com/urban-housing-tools/commuterank/config"
	"github.com/urban-housing-tools/commuterank/geo"
	"github.com/urban-housing-tools/commuterank/geocode"
	"github.com/urban-housing-tools/commuterank/gtfs"
	"github.com/urban-housing-tools/commuterank/listing"
	"github.com/urban-housing-tools/commuterank/retry"
	"github.com/urban-housing-tools/commuterank/score"
	"github.com/urban-housing-tools/commuterank/transit"
)

func main() {
	listingsPath := flag.String("listings", "", "listings CSV file (required)")
	destination := flag.String("destination", "TU Berlin", "commute destination: university preset or free-text address")
	configPath := flag.String("config", "config.yml", "configuration file")
	outPath := flag.String("out", "ranked_listings.csv", "enriched CSV output path")
	jsonPath := flag.String("json", "", "optional enriched JSON output path")
	planner := flag.String("planner", "", "journey planner: api|gtfs (overrides config)")
	gtfsPath := flag.String("gtfs", "", "GTFS feed directory or zip (overrides config)")
	provider := flag.String("provider", "", "keep only listings from this provider")
	limit := flag.Int("limit", 0, "limit the number of listings processed")
	progressEvery := flag.Int("progressEvery", 10, "log progress every N items")
	listDestinations := flag.Bool("destinations", false, "list the university presets and exit")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if *listDestinations {
		for _, name := range config.DestinationNames() {
			fmt.Println(name)
		}
		return
	}
	if *listingsPath == "" {
		flag.Usage()
		log.Fatal().Msg("-listings is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration invalid")
	}
	if *planner != "" {
		cfg.Transit.Planner = *planner
	}
	if *gtfsPath != "" {
		cfg.Transit.GTFSPath = *gtfsPath
	}
	if *provider != "" {
		cfg.Listings.ProviderFilter = *provider
	}
	if *limit > 0 {
		cfg.Listings.Limit = *limit
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *listingsPath, *destination, *outPath, *jsonPath, *progressEvery, log); err != nil {
		log.Fatal().Err(err).Msg("pipeline failed")
	}
}

func run(ctx context.Context, cfg config.AppConfig, listingsPath, destination, outPath, jsonPath string, progressEvery int, log zerolog.Logger) error {
	store := cache.Open(cfg.Cache.Path, log)
	policy := retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   time.Duration(cfg.Retry.BaseDelayMS) * time.Millisecond,
		Log:         log,
	}

	listings, err := listing.Load(listingsPath, listing.Options{
		CityFilter:     cfg.Listings.CityFilter,
		ProviderFilter: cfg.Listings.ProviderFilter,
		Limit:          cfg.Listings.Limit,
	})
	if err != nil {
		return err
	}
	log.Info().Int("listings", len(listings)).Str("file", listingsPath).Msg("listings loaded")

	geocoder := geocode.New(
		geocode.NewClient(cfg.Geocoding.BaseURL, cfg.Geocoding.UserAgent, time.Duration(cfg.Geocoding.TimeoutMS)*time.Millisecond),
		store, policy,
		geocode.Options{
			City:     cfg.Geocoding.City,
			Country:  cfg.Geocoding.Country,
			Bounds:   cfg.Geocoding.Bounds,
			MinDelay: time.Duration(cfg.Geocoding.MinDelayMS) * time.Millisecond,
		},
		log,
	)

	addresses := make([]string, 0, len(listings))
	for _, l := range listings {
		addresses = append(addresses, l.Address)
	}
	coords := geocoder.GeocodeBatch(ctx, addresses, progressEvery, func(processed, success, hits, lookups int) {
		log.Info().
			Int("processed", processed).
			Int("resolved", success).
			Int("cacheHits", hits).
			Int("newLookups", lookups).
			Msg("geocoding progress")
	})
	for i := range listings {
		listings[i].Coordinate = coords[listings[i].Address]
	}

	destCoord, err := resolveDestination(ctx, destination, geocoder, log)
	if err != nil {
		return err
	}

	stopSource, journeyPlanner, err := buildPlanner(cfg, log)
	if err != nil {
		return err
	}
	resolver := transit.NewResolver(stopSource, journeyPlanner, store, policy, log)

	agg, err := commute.New(resolver, cfg.Commute.StopRadiusM, cfg.Commute.WalkSpeedKMH, log)
	if err != nil {
		return err
	}
	var inputs []commute.Input
	for _, l := range listings {
		if l.Coordinate == nil {
			continue
		}
		inputs = append(inputs, commute.Input{ID: l.ID, Coordinate: *l.Coordinate})
	}
	commutes := agg.Batch(ctx, inputs, destCoord, progressEvery, func(processed, success, hits, lookups int) {
		log.Info().
			Int("processed", processed).
			Int("complete", success).
			Int("cacheHits", hits).
			Int("newLookups", lookups).
			Msg("commute progress")
	})

	ranked, err := rankListings(listings, commutes, cfg.Weights)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output %q: %w", outPath, err)
	}
	defer func() { _ = out.Close() }()
	if err := listing.WriteCSV(out, ranked); err != nil {
		return err
	}
	log.Info().Str("file", outPath).Int("rows", len(ranked)).Msg("ranked CSV written")

	if jsonPath != "" {
		jf, err := os.Create(jsonPath)
		if err != nil {
			return fmt.Errorf("create output %q: %w", jsonPath, err)
		}
		defer func() { _ = jf.Close() }()
		if err := listing.WriteJSON(jf, ranked); err != nil {
			return err
		}
		log.Info().Str("file", jsonPath).Msg("ranked JSON written")
	}
	return nil
}

// resolveDestination tries the university presets first and falls back to
// geocoding the free text.
func resolveDestination(ctx context.Context, destination string, geocoder *geocode.Geocoder, log zerolog.Logger) (geo.Coordinate, error) {
	if d, ok := config.FindDestination(destination); ok {
		log.Info().Str("destination", d.Name).Msg("using destination preset")
		return d.Coordinate, nil
	}
	coord, _ := geocoder.Geocode(ctx, destination)
	if coord == nil {
		return geo.Coordinate{}, fmt.Errorf("destination %q is neither a known preset nor a resolvable address (see -destinations)", destination)
	}
	log.Info().
		Str("destination", destination).
		Float64("lat", coord.Latitude).
		Float64("lon", coord.Longitude).
		Msg("destination geocoded")
	return *coord, nil
}

func buildPlanner(cfg config.AppConfig, log zerolog.Logger) (transit.StopSource, transit.JourneyPlanner, error) {
	switch strings.ToLower(cfg.Transit.Planner) {
	case "gtfs":
		if cfg.Transit.GTFSPath == "" {
			return nil, nil, fmt.Errorf("planner gtfs requires a GTFS feed path (-gtfs or transit.gtfsPath)")
		}
		ix, err := gtfs.Load(cfg.Transit.GTFSPath, cfg.Geocoding.Bounds)
		if err != nil {
			return nil, nil, err
		}
		log.Info().
			Int("stops", ix.StopCount()).
			Int("trips", ix.TripCount()).
			Str("feed", cfg.Transit.GTFSPath).
			Msg("GTFS feed loaded")
		p := gtfs.NewPlanner(ix)
		return p, p, nil
	default:
		c := transit.NewRestClient(cfg.Transit.APIBaseURL, time.Duration(cfg.Transit.TimeoutMS)*time.Millisecond)
		return c, c, nil
	}
}

// rankListings scores the listings and returns the enriched rows in rank
// order. Listings with missing components still rank via neutral scores.
func rankListings(listings []listing.Listing, commutes map[string]commute.Record, weights score.Weights) ([]listing.Enriched, error) {
	inputs := make([]score.Input, 0, len(listings))
	for _, l := range listings {
		rec := commutes[l.ID]
		in := score.Input{
			ListingID:      l.ID,
			Rent:           l.RentEUR,
			CommuteMinutes: rec.TotalCommuteMinutes,
			WalkingMinutes: rec.WalkingMinutes,
		}
		if rec.Journey != nil {
			transfers := rec.Journey.Transfers
			in.Transfers = &transfers
		}
		inputs = append(inputs, in)
	}

	records, err := score.Rank(inputs, weights)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]listing.Listing, len(listings))
	for _, l := range listings {
		byID[l.ID] = l
	}

	enriched := make([]listing.Enriched, 0, len(records))
	for i := range records {
		rec := records[i]
		l := byID[rec.ListingID]
		enriched = append(enriched, listing.Enriched{
			Listing: l,
			Commute: commutes[l.ID],
			Score:   &rec,
		})
	}
	return enriched, nil
}
