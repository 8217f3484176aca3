package score

import (
	"math"
	"testing"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

func TestRank_OrdersByComposite(t *testing.T) {
	inputs := []Input{
		{ListingID: "expensive-far", Rent: fp(1200), CommuteMinutes: fp(55), WalkingMinutes: fp(12), Transfers: ip(3)},
		{ListingID: "cheap-close", Rent: fp(400), CommuteMinutes: fp(15), WalkingMinutes: fp(2), Transfers: ip(0)},
		{ListingID: "middle", Rent: fp(800), CommuteMinutes: fp(35), WalkingMinutes: fp(7), Transfers: ip(1)},
	}

	records, err := Rank(inputs, DefaultWeights())
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if records[0].ListingID != "cheap-close" || records[2].ListingID != "expensive-far" {
		t.Errorf("order = %s, %s, %s", records[0].ListingID, records[1].ListingID, records[2].ListingID)
	}
	if records[0].CompositeScore != 100 {
		t.Errorf("best-everywhere listing composite = %v, want 100", records[0].CompositeScore)
	}
	if records[2].CompositeScore != 0 {
		t.Errorf("worst-everywhere listing composite = %v, want 0", records[2].CompositeScore)
	}
	for _, rec := range records {
		if rec.CompositeScore < 0 || rec.CompositeScore > 100 {
			t.Errorf("%s composite %v outside [0, 100]", rec.ListingID, rec.CompositeScore)
		}
	}
}

func TestRank_IdenticalValuesScoreFull(t *testing.T) {
	inputs := []Input{
		{ListingID: "a", Rent: fp(600), CommuteMinutes: fp(30), WalkingMinutes: fp(5), Transfers: ip(1)},
		{ListingID: "b", Rent: fp(600), CommuteMinutes: fp(30), WalkingMinutes: fp(5), Transfers: ip(1)},
	}
	records, err := Rank(inputs, DefaultWeights())
	if err != nil {
		t.Fatal(err)
	}
	for _, rec := range records {
		if rec.CompositeScore != 100 {
			t.Errorf("%s composite = %v, want 100 when all values are equal", rec.ListingID, rec.CompositeScore)
		}
	}
	// Stable: input order preserved on full tie.
	if records[0].ListingID != "a" || records[1].ListingID != "b" {
		t.Errorf("tie order = %s, %s, want a, b", records[0].ListingID, records[1].ListingID)
	}
}

func TestRank_MissingComponentsAreNeutral(t *testing.T) {
	inputs := []Input{
		{ListingID: "complete", Rent: fp(500), CommuteMinutes: fp(20), WalkingMinutes: fp(3), Transfers: ip(0)},
		{ListingID: "no-commute", Rent: fp(700)},
	}
	records, err := Rank(inputs, DefaultWeights())
	if err != nil {
		t.Fatal(err)
	}
	for _, rec := range records {
		if rec.ListingID != "no-commute" {
			continue
		}
		if rec.CommuteScore != 50 || rec.WalkingScore != 50 || rec.TransfersScore != 50 {
			t.Errorf("missing components scored %v/%v/%v, want neutral 50", rec.CommuteScore, rec.WalkingScore, rec.TransfersScore)
		}
		if rec.CompositeScore < 0 || rec.CompositeScore > 100 {
			t.Errorf("composite %v outside [0, 100]", rec.CompositeScore)
		}
	}
}

func TestRank_WeightsAreRescaled(t *testing.T) {
	inputs := []Input{
		{ListingID: "a", Rent: fp(400), CommuteMinutes: fp(20), WalkingMinutes: fp(2), Transfers: ip(0)},
		{ListingID: "b", Rent: fp(900), CommuteMinutes: fp(45), WalkingMinutes: fp(9), Transfers: ip(2)},
		{ListingID: "c", Rent: fp(650), CommuteMinutes: fp(30), WalkingMinutes: fp(5), Transfers: ip(1)},
	}
	doubled := Weights{Rent: 0.70, Commute: 0.80, Walking: 0.30, Transfers: 0.20}

	base, err := Rank(inputs, DefaultWeights())
	if err != nil {
		t.Fatal(err)
	}
	scaled, err := Rank(inputs, doubled)
	if err != nil {
		t.Fatal(err)
	}
	for i := range base {
		if base[i].ListingID != scaled[i].ListingID {
			t.Fatalf("order differs at %d: %s vs %s", i, base[i].ListingID, scaled[i].ListingID)
		}
		if math.Abs(base[i].CompositeScore-scaled[i].CompositeScore) > 1e-9 {
			t.Errorf("%s: composite %v vs %v under scaled weights", base[i].ListingID, base[i].CompositeScore, scaled[i].CompositeScore)
		}
	}
}

func TestRank_NonPositiveWeightSum(t *testing.T) {
	if _, err := Rank(nil, Weights{}); err == nil {
		t.Error("zero weights should be rejected")
	}
	if _, err := Rank(nil, Weights{Rent: -1, Commute: 0.5}); err == nil {
		t.Error("negative weight sum should be rejected")
	}
}
