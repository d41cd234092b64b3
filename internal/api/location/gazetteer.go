package location

import (
	"strings"

	"github.com/amirulhz/go-trip-planner/internal/types"
)

// gazetteerEntry maps a well-known place name to curated coordinates.
// The table is deliberately small: it exists to disambiguate short regional
// names the geocoding provider routinely gets wrong, and to keep resolution
// working when the provider is down.
type gazetteerEntry struct {
	Key  string
	Name string
	Lat  float64
	Lng  float64
}

// Gazetteer is a static place-name lookup table with process-wide lifetime.
// It is constructed once by the composition root and never mutated.
type Gazetteer struct {
	entries []gazetteerEntry
}

// NewGazetteer returns the built-in regional table.
func NewGazetteer() *Gazetteer {
	return &Gazetteer{entries: []gazetteerEntry{
		{Key: "kuala lumpur", Name: "Kuala Lumpur, Malaysia", Lat: 3.139003, Lng: 101.686855},
		{Key: "kl", Name: "Kuala Lumpur, Malaysia", Lat: 3.139003, Lng: 101.686855},
		{Key: "penang", Name: "Penang, Malaysia", Lat: 5.416393, Lng: 100.332680},
		{Key: "george town", Name: "George Town, Penang, Malaysia", Lat: 5.414130, Lng: 100.329290},
		{Key: "langkawi", Name: "Langkawi, Kedah, Malaysia", Lat: 6.350000, Lng: 99.800000},
		{Key: "malacca", Name: "Malacca, Malaysia", Lat: 2.189594, Lng: 102.250132},
		{Key: "melaka", Name: "Malacca, Malaysia", Lat: 2.189594, Lng: 102.250132},
		{Key: "ipoh", Name: "Ipoh, Perak, Malaysia", Lat: 4.597479, Lng: 101.090106},
		{Key: "cameron highlands", Name: "Cameron Highlands, Pahang, Malaysia", Lat: 4.471537, Lng: 101.377023},
		{Key: "genting highlands", Name: "Genting Highlands, Pahang, Malaysia", Lat: 3.423056, Lng: 101.793056},
		{Key: "kota kinabalu", Name: "Kota Kinabalu, Sabah, Malaysia", Lat: 5.980408, Lng: 116.073460},
		{Key: "kuching", Name: "Kuching, Sarawak, Malaysia", Lat: 1.553504, Lng: 110.359299},
		{Key: "johor bahru", Name: "Johor Bahru, Johor, Malaysia", Lat: 1.492659, Lng: 103.741359},
		{Key: "kuantan", Name: "Kuantan, Pahang, Malaysia", Lat: 3.807884, Lng: 103.326128},
		{Key: "kota bharu", Name: "Kota Bharu, Kelantan, Malaysia", Lat: 6.125200, Lng: 102.238100},
		{Key: "singapore", Name: "Singapore", Lat: 1.352083, Lng: 103.819836},
	}}
}

// Lookup does a case-insensitive substring match against the table. Short
// keys like "kl" only match whole words so "klang" does not resolve to
// Kuala Lumpur.
func (g *Gazetteer) Lookup(query string) (types.ResolvedLocation, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return types.ResolvedLocation{}, false
	}
	for _, e := range g.entries {
		if len(e.Key) <= 2 {
			if !containsWord(q, e.Key) {
				continue
			}
		} else if !strings.Contains(q, e.Key) {
			continue
		}
		return types.ResolvedLocation{
			Point:         types.GeoPoint{Lat: e.Lat, Lng: e.Lng},
			FormattedName: e.Name,
			Source:        types.LocationSourceGazetteer,
		}, true
	}
	return types.ResolvedLocation{}, false
}

func containsWord(haystack, word string) bool {
	for _, part := range strings.FieldsFunc(haystack, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '-'
	}) {
		if part == word {
			return true
		}
	}
	return false
}
