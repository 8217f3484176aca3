package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/urban-housing-tools/commuterank/score"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Geocoding.MinDelayMS != 1000 {
		t.Errorf("MinDelayMS = %d, want 1000", cfg.Geocoding.MinDelayMS)
	}
	if cfg.Commute.StopRadiusM != 1000 || cfg.Commute.WalkSpeedKMH != 5.0 {
		t.Errorf("commute defaults = %+v", cfg.Commute)
	}
	if cfg.Weights != score.DefaultWeights() {
		t.Errorf("weights = %+v, want defaults", cfg.Weights)
	}
	if cfg.Transit.Planner != "api" {
		t.Errorf("planner = %q, want api", cfg.Transit.Planner)
	}
	if cfg.Geocoding.Bounds.IsZero() {
		t.Error("bounds should default to the Berlin box")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
cache:
  path: /tmp/test_cache.json
transit:
  planner: gtfs
  gtfsPath: /data/gtfs
commute:
  stopRadiusM: 1500
weights:
  rent: 0.5
  commute: 0.5
listings:
  cityFilter: Berlin
  limit: 25
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.Path != "/tmp/test_cache.json" {
		t.Errorf("cache path = %q", cfg.Cache.Path)
	}
	if cfg.Transit.Planner != "gtfs" || cfg.Transit.GTFSPath != "/data/gtfs" {
		t.Errorf("transit = %+v", cfg.Transit)
	}
	if cfg.Commute.StopRadiusM != 1500 {
		t.Errorf("StopRadiusM = %d, want 1500", cfg.Commute.StopRadiusM)
	}
	if cfg.Weights.Rent != 0.5 || cfg.Weights.Walking != 0 {
		t.Errorf("weights = %+v", cfg.Weights)
	}
	// Untouched sections still get defaults.
	if cfg.Geocoding.BaseURL == "" || cfg.Commute.WalkSpeedKMH != 5.0 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoad_InvalidPlannerRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("transit:\n  planner: teleport\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("unknown planner should fail validation")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COMMUTERANK_CACHE_PATH", "/tmp/env_cache.json")
	t.Setenv("COMMUTERANK_TRANSIT_URL", "https://transit.example.org")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.Path != "/tmp/env_cache.json" {
		t.Errorf("cache path = %q, want env override", cfg.Cache.Path)
	}
	if cfg.Transit.APIBaseURL != "https://transit.example.org" {
		t.Errorf("transit URL = %q, want env override", cfg.Transit.APIBaseURL)
	}
}

func TestFindDestination(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"TU Berlin", "Technische Universität Berlin", true},
		{"tu berlin", "Technische Universität Berlin", true},
		{"Humboldt-Universität zu Berlin", "Humboldt-Universität zu Berlin", true},
		{"charité", "Charité - Universitätsmedizin Berlin", true},
		{"Sorbonne", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		d, ok := FindDestination(tt.in)
		if ok != tt.wantOK {
			t.Errorf("FindDestination(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			continue
		}
		if ok && d.Name != tt.want {
			t.Errorf("FindDestination(%q) = %q, want %q", tt.in, d.Name, tt.want)
		}
	}
}

func TestDestinationNames_SortedAndComplete(t *testing.T) {
	names := DestinationNames()
	if len(names) != len(berlinUniversities) {
		t.Fatalf("names = %d, want %d", len(names), len(berlinUniversities))
	}
	for i := 1; i < len(names); i++ {
		if names[i] < names[i-1] {
			t.Errorf("names not sorted at %d: %q before %q", i, names[i-1], names[i])
		}
	}
}
