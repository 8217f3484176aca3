package geocode

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`[\s\r\n\t]+`)
	commaRunsRe  = regexp.MustCompile(`,\s*,+`)
)

// NormalizeAddress produces the canonical form of a free-text address used
// both as the cache key base and as the lookup query: whitespace collapsed,
// stray commas removed, and the city and country suffix guaranteed so that
// bare street addresses resolve inside the target city.
func NormalizeAddress(address, city, country string) string {
	a := strings.TrimSpace(address)
	a = whitespaceRe.ReplaceAllString(a, " ")
	// Listing exports occasionally glue the city and country together
	// ("BerlinGermany", "Berlin Germany").
	a = strings.ReplaceAll(a, city+country, city+", "+country)
	a = strings.ReplaceAll(a, city+" "+country, city+", "+country)
	a = commaRunsRe.ReplaceAllString(a, ",")
	a = strings.Trim(a, " ,")

	if a == "" {
		return ""
	}
	if !strings.Contains(strings.ToLower(a), strings.ToLower(city)) {
		a = a + ", " + city
	}
	if !strings.Contains(strings.ToLower(a), strings.ToLower(country)) {
		a = a + ", " + country
	}
	return a
}
