package listing

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Column keyword sets for the export formats seen in the wild. Address
// keywords are grouped by priority: an exact address column beats a
// street column beats a bare city column.
var (
	rentKeywords = []string{
		"rent", "price", "miete", "all-in", "all in", "all-inclusive",
		"all inclusive", "cost", "kosten", "preis", "fee", "charge",
		"amount", "betrag",
	}
	addressKeywordGroups = [][]string{
		{"address", "adresse"},
		{"street", "strasse", "straße", "weg", "allee", "platz"},
		{"location"},
		{"city", "stadt"},
	}
	providerKeywords = []string{"provider", "platform", "source", "company", "brand", "supplier"}
	cityKeywords     = []string{"city", "stadt", "city name"}
)

// Options filter and limit what Load returns.
type Options struct {
	CityFilter     string // keep rows whose city cell contains this, case-insensitive
	ProviderFilter string // keep rows whose provider cell contains this, case-insensitive
	Limit          int    // 0 means no limit
}

// columns holds the resolved header indexes, -1 for absent.
type columns struct {
	id       int
	rent     int
	address  int
	provider int
	city     int
}

// Load reads a listings CSV. The separator (semicolon or comma) is
// sniffed from the header line and the column layout is resolved once
// from the header keywords, so differently-labelled exports load without
// configuration.
func Load(path string, opts Options) ([]Listing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open listings %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	br := bufio.NewReader(f)
	sep, err := sniffSeparator(br)
	if err != nil {
		return nil, fmt.Errorf("read listings %q: %w", path, err)
	}

	r := csv.NewReader(br)
	r.Comma = sep
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse listings %q: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("listings %q have no data rows", path)
	}

	cols := resolveColumns(rows[0])
	if cols.address == -1 {
		return nil, fmt.Errorf("listings %q have no recognizable address column", path)
	}

	field := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var listings []Listing
	for i, row := range rows[1:] {
		city := field(row, cols.city)
		if opts.CityFilter != "" && !containsFold(city, opts.CityFilter) {
			continue
		}
		provider := field(row, cols.provider)
		if opts.ProviderFilter != "" && !containsFold(provider, opts.ProviderFilter) {
			continue
		}

		address := cleanAddress(field(row, cols.address))
		if address == "" {
			continue
		}

		id := field(row, cols.id)
		if id == "" {
			id = fmt.Sprintf("listing-%04d", i+1)
		}

		listings = append(listings, Listing{
			ID:       id,
			Address:  address,
			Provider: provider,
			City:     city,
			RentEUR:  cleanRent(field(row, cols.rent)),
		})
		if opts.Limit > 0 && len(listings) >= opts.Limit {
			break
		}
	}
	return listings, nil
}

// sniffSeparator peeks at the header line and picks whichever of
// semicolon and comma occurs more often.
func sniffSeparator(br *bufio.Reader) (rune, error) {
	const peekSize = 4096
	head, err := br.Peek(peekSize)
	if err != nil && len(head) == 0 {
		return 0, err
	}
	line := string(head)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if strings.Count(line, ";") >= strings.Count(line, ",") && strings.Contains(line, ";") {
		return ';', nil
	}
	return ',', nil
}

func resolveColumns(header []string) columns {
	cols := columns{id: -1, rent: -1, address: -1, provider: -1, city: -1}
	lower := make([]string, len(header))
	for i, h := range header {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}

	for i, h := range lower {
		if cols.id == -1 && h == "id" {
			cols.id = i
		}
		if cols.rent == -1 && matchesAny(h, rentKeywords) {
			cols.rent = i
		}
		if cols.provider == -1 && matchesAny(h, providerKeywords) {
			cols.provider = i
		}
		if cols.city == -1 && matchesAny(h, cityKeywords) {
			cols.city = i
		}
	}
	for _, group := range addressKeywordGroups {
		for i, h := range lower {
			if matchesAny(h, group) {
				cols.address = i
				break
			}
		}
		if cols.address != -1 {
			break
		}
	}
	return cols
}

func matchesAny(header string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(header, k) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

var (
	rentJunkRe   = regexp.MustCompile(`[^\d.]`)
	addrSpacesRe = regexp.MustCompile(`[\s\r\n\t]+`)
)

// cleanRent parses a rent cell into euros: currency markers stripped,
// decimal comma converted, remaining junk dropped. Unparseable cells
// become nil rather than failing the row.
func cleanRent(s string) *float64 {
	s = strings.ReplaceAll(s, "€", "")
	for _, marker := range []string{"EUR", "eur", "Euro", "euro", "EURO"} {
		s = strings.ReplaceAll(s, marker, "")
	}
	s = strings.ReplaceAll(s, ",", ".")
	s = rentJunkRe.ReplaceAllString(s, "")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

func cleanAddress(s string) string {
	return strings.TrimSpace(addrSpacesRe.ReplaceAllString(s, " "))
}
