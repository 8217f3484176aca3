// Package score ranks listings by a weighted composite of rent, commute
// time, walking distance and transfer count.
package score

import (
	"fmt"
	"sort"
)

// Weights blend the component scores into the composite. They are
// rescaled to sum to 1, so only their ratios matter.
type Weights struct {
	Rent      float64 `yaml:"rent" json:"rent"`
	Commute   float64 `yaml:"commute" json:"commute"`
	Walking   float64 `yaml:"walking" json:"walking"`
	Transfers float64 `yaml:"transfers" json:"transfers"`
}

// DefaultWeights favors commute time slightly over rent.
func DefaultWeights() Weights {
	return Weights{Rent: 0.35, Commute: 0.40, Walking: 0.15, Transfers: 0.10}
}

// neutral is the component score substituted for missing values, so a
// listing with gaps still ranks somewhere in the middle.
const neutral = 50.0

// Input carries one listing's raw ranking components. Nil means the
// value is unknown for that listing.
type Input struct {
	ListingID      string
	Rent           *float64
	CommuteMinutes *float64
	WalkingMinutes *float64
	Transfers      *int
}

// Record is one listing's scores, each in [0, 100] with higher better.
type Record struct {
	ListingID      string  `json:"listingId"`
	RentScore      float64 `json:"rentScore"`
	CommuteScore   float64 `json:"commuteScore"`
	WalkingScore   float64 `json:"walkingScore"`
	TransfersScore float64 `json:"transfersScore"`
	CompositeScore float64 `json:"compositeScore"`
}

// Rank scores all inputs and returns them ordered by composite score,
// best first. Listings with equal composites keep their input order. A
// non-positive weight sum is a configuration error.
func Rank(inputs []Input, w Weights) ([]Record, error) {
	sum := w.Rent + w.Commute + w.Walking + w.Transfers
	if sum <= 0 {
		return nil, fmt.Errorf("score weights must sum to a positive value, got %v", sum)
	}
	w = Weights{
		Rent:      w.Rent / sum,
		Commute:   w.Commute / sum,
		Walking:   w.Walking / sum,
		Transfers: w.Transfers / sum,
	}

	rents := collect(inputs, func(in Input) *float64 { return in.Rent })
	commutes := collect(inputs, func(in Input) *float64 { return in.CommuteMinutes })
	walks := collect(inputs, func(in Input) *float64 { return in.WalkingMinutes })
	transfers := collect(inputs, func(in Input) *float64 { return floatTransfers(in) })

	records := make([]Record, 0, len(inputs))
	for _, in := range inputs {
		rec := Record{
			ListingID:      in.ListingID,
			RentScore:      rents.score(in.Rent),
			CommuteScore:   commutes.score(in.CommuteMinutes),
			WalkingScore:   walks.score(in.WalkingMinutes),
			TransfersScore: transfers.score(floatTransfers(in)),
		}
		rec.CompositeScore = w.Rent*rec.RentScore +
			w.Commute*rec.CommuteScore +
			w.Walking*rec.WalkingScore +
			w.Transfers*rec.TransfersScore
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CompositeScore > records[j].CompositeScore
	})
	return records, nil
}

func floatTransfers(in Input) *float64 {
	if in.Transfers == nil {
		return nil
	}
	f := float64(*in.Transfers)
	return &f
}

// valueRange holds the observed min and max of a component across the
// listings that have it.
type valueRange struct {
	min, max float64
	seen     bool
}

func collect(inputs []Input, get func(Input) *float64) valueRange {
	var r valueRange
	for _, in := range inputs {
		v := get(in)
		if v == nil {
			continue
		}
		if !r.seen || *v < r.min {
			r.min = *v
		}
		if !r.seen || *v > r.max {
			r.max = *v
		}
		r.seen = true
	}
	return r
}

// score min-max normalizes a value and inverts it: lower raw values
// (cheaper, closer, fewer transfers) score higher. When every listing
// shares the same value, all of them get the full score.
func (r valueRange) score(v *float64) float64 {
	if v == nil {
		return neutral
	}
	if !r.seen || r.max == r.min {
		return 100
	}
	norm := (*v - r.min) / (r.max - r.min)
	return (1 - norm) * 100
}
