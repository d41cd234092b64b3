package types

// LocationSource records which backend produced a resolved location.
type LocationSource string

const (
	LocationSourceProvider  LocationSource = "PROVIDER"
	LocationSourceGazetteer LocationSource = "GAZETTEER"
)

// EstimateSource records whether a travel estimate came from the routing
// provider or from the great-circle fallback.
type EstimateSource string

const (
	EstimateSourceProvider  EstimateSource = "PROVIDER"
	EstimateSourceHaversine EstimateSource = "HAVERSINE_ESTIMATE"
)

// GeoPoint is a WGS84 coordinate pair. Immutable once resolved.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point lies inside the WGS84 coordinate ranges.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// ResolvedLocation is the canonical result of geocoding a free-text place
// name or a raw coordinate pair. Source tells downstream rendering whether
// the coordinates came from the provider or from the static gazetteer.
type ResolvedLocation struct {
	Point         GeoPoint       `json:"point"`
	FormattedName string         `json:"formatted_name"`
	Source        LocationSource `json:"source"`
}

// TravelEstimate is a distance/duration pair between two resolved points.
// DurationSeconds is always positive when DistanceMeters is.
type TravelEstimate struct {
	DistanceMeters  float64        `json:"distance_meters"`
	DistanceText    string         `json:"distance_text"`
	DurationSeconds float64        `json:"duration_seconds"`
	DurationText    string         `json:"duration_text"`
	Source          EstimateSource `json:"source"`
}
