// Package listing loads accommodation listings from CSV exports and
// writes the enriched rows the pipeline produces.
package listing

import (
	"github.com/urban-housing-tools/commuterank/commute"
	"github.com/urban-housing-tools/commuterank/geo"
	"github.com/urban-housing-tools/commuterank/score"
)

// Listing is one accommodation row. RentEUR is nil when the rent cell
// was missing or unparseable; the row is kept either way. Coordinate is
// filled in by the geocoding stage.
type Listing struct {
	ID         string          `json:"id"`
	Address    string          `json:"address"`
	Provider   string          `json:"provider,omitempty"`
	City       string          `json:"city,omitempty"`
	RentEUR    *float64        `json:"rentEUR,omitempty"`
	Coordinate *geo.Coordinate `json:"coordinate,omitempty"`
}

// Enriched is a listing with the pipeline's commute and score results
// attached.
type Enriched struct {
	Listing
	Commute commute.Record `json:"commute"`
	Score   *score.Record  `json:"score,omitempty"`
}
