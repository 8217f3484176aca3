package transit

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/urban-housing-tools/commuterank/cache"
	"github.com/urban-housing-tools/commuterank/geo"
	"github.com/urban-housing-tools/commuterank/retry"
)

type fakeSource struct {
	stopCalls    int
	journeyCalls int
	stops        []Stop
	journeys     []Journey
	stopErr      error
	journeyErr   error
}

func (f *fakeSource) NearbyStops(context.Context, geo.Coordinate, int, int) ([]Stop, error) {
	f.stopCalls++
	return f.stops, f.stopErr
}

func (f *fakeSource) Journeys(context.Context, geo.Coordinate, geo.Coordinate) ([]Journey, error) {
	f.journeyCalls++
	return f.journeys, f.journeyErr
}

func newTestResolver(t *testing.T, src *fakeSource) *Resolver {
	t.Helper()
	store := cache.Open(filepath.Join(t.TempDir(), "cache.json"), zerolog.Nop())
	policy := retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, Log: zerolog.Nop()}
	return NewResolver(src, src, store, policy, zerolog.Nop())
}

var origin = geo.Coordinate{Latitude: 52.5200, Longitude: 13.4050}

func TestFindNearestStop_PicksClosest(t *testing.T) {
	src := &fakeSource{stops: []Stop{
		{ID: "b", Name: "Hackescher Markt", DistanceM: 420},
		{ID: "a", Name: "Alexanderplatz", DistanceM: 150},
	}}
	r := newTestResolver(t, src)

	stop, err := r.FindNearestStop(context.Background(), origin, 1000)
	if err != nil {
		t.Fatalf("FindNearestStop: %v", err)
	}
	if stop == nil || stop.ID != "a" {
		t.Fatalf("stop = %+v, want Alexanderplatz", stop)
	}
}

func TestFindNearestStop_EquidistantTieKeepsInputOrder(t *testing.T) {
	src := &fakeSource{stops: []Stop{
		{ID: "first", Name: "Stop A", DistanceM: 300},
		{ID: "second", Name: "Stop B", DistanceM: 300},
	}}
	r := newTestResolver(t, src)

	stop, err := r.FindNearestStop(context.Background(), origin, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if stop == nil || stop.ID != "first" {
		t.Errorf("stop = %+v, want the first equidistant candidate", stop)
	}
}

func TestFindNearestStop_SecondCallIsCached(t *testing.T) {
	src := &fakeSource{stops: []Stop{{ID: "a", Name: "Alexanderplatz", DistanceM: 150}}}
	r := newTestResolver(t, src)

	first, _ := r.FindNearestStop(context.Background(), origin, 1000)
	second, _ := r.FindNearestStop(context.Background(), origin, 1000)
	if src.stopCalls != 1 {
		t.Errorf("source calls = %d, want 1", src.stopCalls)
	}
	if first == nil || second == nil || first.ID != second.ID {
		t.Errorf("cached stop %+v differs from first %+v", second, first)
	}
	if hits, lookups := r.Stats(); hits != 1 || lookups != 1 {
		t.Errorf("stats = (%d, %d), want (1, 1)", hits, lookups)
	}
}

func TestFindNearestStop_EmptyResultIsCached(t *testing.T) {
	src := &fakeSource{}
	r := newTestResolver(t, src)

	for i := 0; i < 3; i++ {
		stop, err := r.FindNearestStop(context.Background(), origin, 1000)
		if err != nil {
			t.Fatalf("FindNearestStop: %v", err)
		}
		if stop != nil {
			t.Fatalf("stop = %+v, want nil", stop)
		}
	}
	if src.stopCalls != 1 {
		t.Errorf("source calls = %d, want 1 (empty result should be cached)", src.stopCalls)
	}
}

func TestFindNearestStop_FailureNotCached(t *testing.T) {
	src := &fakeSource{stopErr: errors.New("HTTP 503")}
	r := newTestResolver(t, src)

	if stop, _ := r.FindNearestStop(context.Background(), origin, 1000); stop != nil {
		t.Fatalf("stop = %+v, want nil on failure", stop)
	}
	callsAfterFirst := src.stopCalls

	src.stopErr = nil
	src.stops = []Stop{{ID: "a", Name: "Alexanderplatz", DistanceM: 150}}
	stop, _ := r.FindNearestStop(context.Background(), origin, 1000)
	if stop == nil {
		t.Fatal("recovered lookup should succeed")
	}
	if src.stopCalls <= callsAfterFirst {
		t.Error("second attempt did not reach the source; failure was cached")
	}
}

func TestFindNearestStop_RadiusKeysAreDistinct(t *testing.T) {
	src := &fakeSource{stops: []Stop{{ID: "a", Name: "Alexanderplatz", DistanceM: 150}}}
	r := newTestResolver(t, src)

	if _, err := r.FindNearestStop(context.Background(), origin, 1000); err != nil {
		t.Fatal(err)
	}
	if _, err := r.FindNearestStop(context.Background(), origin, 2000); err != nil {
		t.Fatal(err)
	}
	if src.stopCalls != 2 {
		t.Errorf("source calls = %d, want 2 (different radii must not share a key)", src.stopCalls)
	}
}

func TestFindNearestStop_InvalidRadius(t *testing.T) {
	r := newTestResolver(t, &fakeSource{})
	for _, radius := range []int{0, -500} {
		if _, err := r.FindNearestStop(context.Background(), origin, radius); err == nil {
			t.Errorf("radius %d: want error", radius)
		}
	}
}

func TestPlanJourney_BestByArrivalThenTransfers(t *testing.T) {
	src := &fakeSource{journeys: []Journey{
		{DurationMinutes: 25, Transfers: 1, ArrivalSeconds: 1000},
		{DurationMinutes: 22, Transfers: 2, ArrivalSeconds: 900},
		{DurationMinutes: 24, Transfers: 0, ArrivalSeconds: 900},
	}}
	r := newTestResolver(t, src)

	j := r.PlanJourney(context.Background(), origin, geo.Coordinate{Latitude: 52.51, Longitude: 13.39})
	if j == nil {
		t.Fatal("PlanJourney returned nil")
	}
	// Arrival 900 beats 1000; between the two at 900 the fewer-transfer
	// itinerary wins.
	if j.DurationMinutes != 24 || j.Transfers != 0 {
		t.Errorf("best journey = %+v, want the 24 min, 0 transfer one", j)
	}
}

func TestPlanJourney_NoItineraryIsCached(t *testing.T) {
	src := &fakeSource{}
	r := newTestResolver(t, src)
	dest := geo.Coordinate{Latitude: 52.51, Longitude: 13.39}

	for i := 0; i < 3; i++ {
		if j := r.PlanJourney(context.Background(), origin, dest); j != nil {
			t.Fatalf("journey = %+v, want nil", j)
		}
	}
	if src.journeyCalls != 1 {
		t.Errorf("source calls = %d, want 1 (no-itinerary should be cached)", src.journeyCalls)
	}
}

func TestPlanJourney_FailureNotCached(t *testing.T) {
	src := &fakeSource{journeyErr: errors.New("HTTP 503")}
	r := newTestResolver(t, src)
	dest := geo.Coordinate{Latitude: 52.51, Longitude: 13.39}

	if j := r.PlanJourney(context.Background(), origin, dest); j != nil {
		t.Fatalf("journey = %+v, want nil on failure", j)
	}
	callsAfterFirst := src.journeyCalls

	src.journeyErr = nil
	src.journeys = []Journey{{DurationMinutes: 25, Transfers: 1}}
	if j := r.PlanJourney(context.Background(), origin, dest); j == nil {
		t.Fatal("recovered lookup should succeed")
	}
	if src.journeyCalls <= callsAfterFirst {
		t.Error("second attempt did not reach the source; failure was cached")
	}
}

func TestTransferCount(t *testing.T) {
	tests := []struct {
		name string
		legs []Leg
		want int
	}{
		{"empty", nil, 0},
		{"single transit leg", []Leg{{Mode: "subway"}}, 0},
		{"two transit legs", []Leg{{Mode: "subway"}, {Mode: "bus"}}, 1},
		{"walking legs excluded", []Leg{
			{Mode: "walking"},
			{Mode: "subway"},
			{Mode: "walking"},
			{Mode: "tram"},
			{Mode: "walking"},
		}, 1},
		{"all walking", []Leg{{Mode: "walking"}, {Mode: "walking"}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TransferCount(tt.legs); got != tt.want {
				t.Errorf("TransferCount = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBestJourney_EmptyAndOrder(t *testing.T) {
	if BestJourney(nil) != nil {
		t.Error("BestJourney(nil) should be nil")
	}
	// Full tie: input order wins.
	tied := []Journey{
		{DurationMinutes: 20, Transfers: 1, ArrivalSeconds: 500, Legs: []Leg{{Line: "U2"}}},
		{DurationMinutes: 20, Transfers: 1, ArrivalSeconds: 500, Legs: []Leg{{Line: "U5"}}},
	}
	best := BestJourney(tied)
	if best == nil || best.Legs[0].Line != "U2" {
		t.Errorf("tied journeys should keep input order, got %+v", best)
	}
}
