package config

import (
	"sort"
	"strings"

	"github.com/urban-housing-tools/commuterank/geo"
)

// Destination is a commute target with a known location, so choosing a
// preset skips the geocoding step.
type Destination struct {
	Name         string
	Abbreviation string
	Address      string
	Coordinate   geo.Coordinate
}

// Major Berlin universities, the usual commute targets for student
// housing searches.
var berlinUniversities = []Destination{
	{
		Name:         "Technische Universität Berlin",
		Abbreviation: "TU Berlin",
		Address:      "Straße des 17. Juni 135, 10623 Berlin, Germany",
		Coordinate:   geo.Coordinate{Latitude: 52.5125, Longitude: 13.3269},
	},
	{
		Name:         "Humboldt-Universität zu Berlin",
		Abbreviation: "HU Berlin",
		Address:      "Unter den Linden 6, 10117 Berlin, Germany",
		Coordinate:   geo.Coordinate{Latitude: 52.5170, Longitude: 13.3939},
	},
	{
		Name:         "Freie Universität Berlin",
		Abbreviation: "FU Berlin",
		Address:      "Kaiserswerther Str. 16-18, 14195 Berlin, Germany",
		Coordinate:   geo.Coordinate{Latitude: 52.4538, Longitude: 13.2900},
	},
	{
		Name:         "Universität der Künste Berlin",
		Abbreviation: "UdK Berlin",
		Address:      "Einsteinufer 43, 10587 Berlin, Germany",
		Coordinate:   geo.Coordinate{Latitude: 52.5156, Longitude: 13.3281},
	},
	{
		Name:         "Charité - Universitätsmedizin Berlin",
		Abbreviation: "Charité",
		Address:      "Charitéplatz 1, 10117 Berlin, Germany",
		Coordinate:   geo.Coordinate{Latitude: 52.5275, Longitude: 13.3786},
	},
	{
		Name:         "ESMT Berlin",
		Abbreviation: "ESMT",
		Address:      "Schlossplatz 1, 10178 Berlin, Germany",
		Coordinate:   geo.Coordinate{Latitude: 52.5163, Longitude: 13.4014},
	},
	{
		Name:         "Hertie School",
		Abbreviation: "Hertie School",
		Address:      "Friedrichstraße 180, 10117 Berlin, Germany",
		Coordinate:   geo.Coordinate{Latitude: 52.5156, Longitude: 13.3881},
	},
	{
		Name:         "CODE University of Applied Sciences",
		Abbreviation: "CODE",
		Address:      "Lohmühlenstraße 65, 12435 Berlin, Germany",
		Coordinate:   geo.Coordinate{Latitude: 52.4908, Longitude: 13.4564},
	},
	{
		Name:         "Hochschule für Technik und Wirtschaft Berlin",
		Abbreviation: "HTW Berlin",
		Address:      "Treskowallee 8, 10318 Berlin, Germany",
		Coordinate:   geo.Coordinate{Latitude: 52.4567, Longitude: 13.5314},
	},
	{
		Name:         "Hochschule für Wirtschaft und Recht Berlin",
		Abbreviation: "HWR Berlin",
		Address:      "Badensche Straße 52, 10825 Berlin, Germany",
		Coordinate:   geo.Coordinate{Latitude: 52.4800, Longitude: 13.3400},
	},
}

// FindDestination matches a preset by full name or abbreviation,
// case-insensitive. Callers fall back to geocoding the free text when no
// preset matches.
func FindDestination(name string) (Destination, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return Destination{}, false
	}
	for _, d := range berlinUniversities {
		if strings.ToLower(d.Name) == needle || strings.ToLower(d.Abbreviation) == needle {
			return d, true
		}
	}
	return Destination{}, false
}

// DestinationNames lists the preset names for help output, sorted.
func DestinationNames() []string {
	names := make([]string, 0, len(berlinUniversities))
	for _, d := range berlinUniversities {
		names = append(names, d.Name)
	}
	sort.Strings(names)
	return names
}
