package config

import (
	"github.com/urban-housing-tools/commuterank/geo"
	"github.com/urban-housing-tools/commuterank/score"
)

// CacheConfig locates the persistent lookup cache.
type CacheConfig struct {
	Path string `yaml:"path"`
}

// GeocodingConfig configures the address resolution stage.
type GeocodingConfig struct {
	BaseURL    string          `yaml:"baseURL" validate:"omitempty,url"`
	UserAgent  string          `yaml:"userAgent"`
	City       string          `yaml:"city"`
	Country    string          `yaml:"country"`
	MinDelayMS int             `yaml:"minDelayMS" validate:"gte=0"`
	TimeoutMS  int             `yaml:"timeoutMS" validate:"gte=0"`
	Bounds     geo.BoundingBox `yaml:"bounds"`
}

// TransitConfig selects and configures the journey planner.
type TransitConfig struct {
	Planner    string `yaml:"planner" validate:"omitempty,oneof=api gtfs"`
	APIBaseURL string `yaml:"apiBaseURL" validate:"omitempty,url"`
	GTFSPath   string `yaml:"gtfsPath"`
	TimeoutMS  int    `yaml:"timeoutMS" validate:"gte=0"`
}

// CommuteConfig configures the per-listing commute computation.
type CommuteConfig struct {
	StopRadiusM  int     `yaml:"stopRadiusM" validate:"gte=0"`
	WalkSpeedKMH float64 `yaml:"walkSpeedKMH" validate:"gte=0"`
}

// ListingsConfig filters the input rows.
type ListingsConfig struct {
	CityFilter     string `yaml:"cityFilter"`
	ProviderFilter string `yaml:"providerFilter"`
	Limit          int    `yaml:"limit" validate:"gte=0"`
}

// RetryConfig shapes the backoff applied to external lookups.
type RetryConfig struct {
	MaxAttempts int `yaml:"maxAttempts" validate:"gte=0"`
	BaseDelayMS int `yaml:"baseDelayMS" validate:"gte=0"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Cache     CacheConfig     `yaml:"cache"`
	Geocoding GeocodingConfig `yaml:"geocoding"`
	Transit   TransitConfig   `yaml:"transit"`
	Commute   CommuteConfig   `yaml:"commute"`
	Retry     RetryConfig     `yaml:"retry"`
	Weights   score.Weights   `yaml:"weights"`
	Listings  ListingsConfig  `yaml:"listings"`
}
