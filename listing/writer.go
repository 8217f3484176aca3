package listing

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

var csvHeader = []string{
	"id", "address", "provider", "city", "rent_eur",
	"latitude", "longitude",
	"nearest_stop", "stop_distance_m", "walking_minutes",
	"journey_minutes", "transfers", "total_commute_minutes",
	"rent_score", "commute_score", "walking_score", "transfers_score",
	"composite_score",
}

// WriteCSV writes the enriched rows as CSV. Absent values become empty
// cells so spreadsheet consumers see gaps, not zeros.
func WriteCSV(w io.Writer, rows []Enriched) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for _, row := range rows {
		rec := []string{
			row.ID,
			row.Address,
			row.Provider,
			row.City,
			formatFloat(row.RentEUR),
		}
		if row.Coordinate != nil {
			rec = append(rec,
				strconv.FormatFloat(row.Coordinate.Latitude, 'f', 6, 64),
				strconv.FormatFloat(row.Coordinate.Longitude, 'f', 6, 64))
		} else {
			rec = append(rec, "", "")
		}
		if stop := row.Commute.NearestStop; stop != nil {
			rec = append(rec, stop.Name, strconv.FormatFloat(stop.DistanceM, 'f', 0, 64))
		} else {
			rec = append(rec, "", "")
		}
		rec = append(rec, formatFloat(row.Commute.WalkingMinutes))
		if j := row.Commute.Journey; j != nil {
			rec = append(rec,
				strconv.FormatFloat(j.DurationMinutes, 'f', 1, 64),
				strconv.Itoa(j.Transfers))
		} else {
			rec = append(rec, "", "")
		}
		rec = append(rec, formatFloat(row.Commute.TotalCommuteMinutes))
		if s := row.Score; s != nil {
			rec = append(rec,
				strconv.FormatFloat(s.RentScore, 'f', 1, 64),
				strconv.FormatFloat(s.CommuteScore, 'f', 1, 64),
				strconv.FormatFloat(s.WalkingScore, 'f', 1, 64),
				strconv.FormatFloat(s.TransfersScore, 'f', 1, 64),
				strconv.FormatFloat(s.CompositeScore, 'f', 1, 64))
		} else {
			rec = append(rec, "", "", "", "", "")
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write CSV row %s: %w", row.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the enriched rows as an indented JSON array. Absent
// values are omitted or null per the struct tags.
func WriteJSON(w io.Writer, rows []Enriched) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("write JSON output: %w", err)
	}
	return nil
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}
