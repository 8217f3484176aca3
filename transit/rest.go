package transit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/urban-housing-tools/commuterank/geo"
)

// RestClient talks to a transport.rest style journey service. It implements
// both StopSource and JourneyPlanner.
type RestClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewRestClient creates a client for the given endpoint.
func NewRestClient(baseURL string, timeout time.Duration) *RestClient {
	return &RestClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type restLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type restStop struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Location restLocation `json:"location"`
	Distance float64      `json:"distance"`
}

// NearbyStops queries /stops/nearby for stops within radiusM meters of
// origin, closest first.
func (c *RestClient) NearbyStops(ctx context.Context, origin geo.Coordinate, radiusM, max int) ([]Stop, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(origin.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(origin.Longitude, 'f', -1, 64))
	q.Set("distance", strconv.Itoa(radiusM))
	q.Set("results", strconv.Itoa(max))

	var raw []restStop
	if err := c.getJSON(ctx, "/stops/nearby", q, &raw); err != nil {
		return nil, err
	}

	stops := make([]Stop, 0, len(raw))
	for _, s := range raw {
		stops = append(stops, Stop{
			ID:   s.ID,
			Name: s.Name,
			Coordinate: geo.Coordinate{
				Latitude:  s.Location.Latitude,
				Longitude: s.Location.Longitude,
			},
			DistanceM: s.Distance,
		})
	}
	return stops, nil
}

type restLeg struct {
	Origin struct {
		Name string `json:"name"`
	} `json:"origin"`
	Destination struct {
		Name string `json:"name"`
	} `json:"destination"`
	Departure string `json:"departure"`
	Arrival   string `json:"arrival"`
	Walking   bool   `json:"walking"`
	Line      struct {
		Name    string `json:"name"`
		Mode    string `json:"mode"`
		Product string `json:"product"`
	} `json:"line"`
}

type restJourney struct {
	Legs []restLeg `json:"legs"`
}

type journeysResponse struct {
	Journeys []restJourney `json:"journeys"`
}

// Journeys queries /journeys for itineraries between two coordinates.
func (c *RestClient) Journeys(ctx context.Context, from, to geo.Coordinate) ([]Journey, error) {
	q := url.Values{}
	q.Set("from.latitude", strconv.FormatFloat(from.Latitude, 'f', -1, 64))
	q.Set("from.longitude", strconv.FormatFloat(from.Longitude, 'f', -1, 64))
	q.Set("to.latitude", strconv.FormatFloat(to.Latitude, 'f', -1, 64))
	q.Set("to.longitude", strconv.FormatFloat(to.Longitude, 'f', -1, 64))
	q.Set("results", "3")

	var resp journeysResponse
	if err := c.getJSON(ctx, "/journeys", q, &resp); err != nil {
		return nil, err
	}

	journeys := make([]Journey, 0, len(resp.Journeys))
	for _, rj := range resp.Journeys {
		j, err := convertJourney(rj)
		if err != nil {
			// A malformed candidate does not poison the others.
			continue
		}
		journeys = append(journeys, j)
	}
	return journeys, nil
}

func convertJourney(rj restJourney) (Journey, error) {
	if len(rj.Legs) == 0 {
		return Journey{}, fmt.Errorf("journey has no legs")
	}

	departure, err := time.Parse(time.RFC3339, rj.Legs[0].Departure)
	if err != nil {
		return Journey{}, fmt.Errorf("parse departure %q: %w", rj.Legs[0].Departure, err)
	}
	arrival, err := time.Parse(time.RFC3339, rj.Legs[len(rj.Legs)-1].Arrival)
	if err != nil {
		return Journey{}, fmt.Errorf("parse arrival %q: %w", rj.Legs[len(rj.Legs)-1].Arrival, err)
	}

	legs := make([]Leg, 0, len(rj.Legs))
	for _, rl := range rj.Legs {
		// The line's product ("suburban", "bus") is more specific than
		// its coarse mode ("train").
		mode := rl.Line.Product
		if mode == "" {
			mode = rl.Line.Mode
		}
		if rl.Walking || mode == "" {
			mode = "walking"
		}
		legs = append(legs, Leg{
			Mode:        mode,
			Line:        rl.Line.Name,
			Origin:      rl.Origin.Name,
			Destination: rl.Destination.Name,
		})
	}

	return Journey{
		DurationMinutes: geo.RoundMinutes(arrival.Sub(departure).Seconds() / 60),
		Transfers:       TransferCount(legs),
		Legs:            legs,
		ArrivalSeconds:  arrival.Unix(),
	}, nil
}

func (c *RestClient) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: HTTP %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
