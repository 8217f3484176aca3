package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/urban-housing-tools/commuterank/geo"
	"github.com/urban-housing-tools/commuterank/score"
)

// Load reads the application configuration from a YAML file, fills in
// defaults, applies environment overrides (a .env file is honored when
// present) and validates the result. A missing config file is not an
// error; the defaults describe a working Berlin setup.
func Load(path string) (AppConfig, error) {
	_ = godotenv.Load()

	var cfg AppConfig
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %q: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("validate config %q: %w", path, err)
	}
	return cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = "commute_cache.json"
	}
	if cfg.Geocoding.BaseURL == "" {
		cfg.Geocoding.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if cfg.Geocoding.UserAgent == "" {
		cfg.Geocoding.UserAgent = "commuterank/1.0"
	}
	if cfg.Geocoding.City == "" {
		cfg.Geocoding.City = "Berlin"
	}
	if cfg.Geocoding.Country == "" {
		cfg.Geocoding.Country = "Germany"
	}
	if cfg.Geocoding.MinDelayMS == 0 {
		cfg.Geocoding.MinDelayMS = 1000
	}
	if cfg.Geocoding.TimeoutMS == 0 {
		cfg.Geocoding.TimeoutMS = 10000
	}
	if cfg.Geocoding.Bounds.IsZero() {
		cfg.Geocoding.Bounds = geo.Berlin
	}
	if cfg.Transit.Planner == "" {
		cfg.Transit.Planner = "api"
	}
	if cfg.Transit.APIBaseURL == "" {
		cfg.Transit.APIBaseURL = "https://v6.bvg.transport.rest"
	}
	if cfg.Transit.TimeoutMS == 0 {
		cfg.Transit.TimeoutMS = 15000
	}
	if cfg.Commute.StopRadiusM == 0 {
		cfg.Commute.StopRadiusM = 1000
	}
	if cfg.Commute.WalkSpeedKMH == 0 {
		cfg.Commute.WalkSpeedKMH = 5.0
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.BaseDelayMS == 0 {
		cfg.Retry.BaseDelayMS = 1000
	}
	if cfg.Weights == (score.Weights{}) {
		cfg.Weights = score.DefaultWeights()
	}
}

// applyEnvOverrides lets deployment environments override the endpoints
// and cache location without editing the config file.
func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("COMMUTERANK_CACHE_PATH"); v != "" {
		cfg.Cache.Path = v
	}
	if v := os.Getenv("COMMUTERANK_GEOCODER_URL"); v != "" {
		cfg.Geocoding.BaseURL = v
	}
	if v := os.Getenv("COMMUTERANK_GEOCODER_USER_AGENT"); v != "" {
		cfg.Geocoding.UserAgent = v
	}
	if v := os.Getenv("COMMUTERANK_TRANSIT_URL"); v != "" {
		cfg.Transit.APIBaseURL = v
	}
	if v := os.Getenv("COMMUTERANK_GTFS_PATH"); v != "" {
		cfg.Transit.GTFSPath = v
	}
	if v := os.Getenv("COMMUTERANK_LISTING_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Listings.Limit = n
		}
	}
}
