package types

// VenueCategory distinguishes lodging results from activity results.
type VenueCategory string

const (
	VenueCategoryLodging  VenueCategory = "LODGING"
	VenueCategoryActivity VenueCategory = "ACTIVITY"
)

// DefaultCurrency is assumed when a provider record carries no currency code.
const DefaultCurrency = "MYR"

// PriceUnavailable is the display fallback when no numeric price could be
// extracted from a provider record.
const PriceUnavailable = "Price unavailable"

// NormalizedVenue is the canonical hotel/activity record produced by the
// provider record normalizer. Absent fields stay nil; PriceDisplay is always
// a non-empty human-readable string. Raw keeps the original provider payload
// for debugging and is never interpreted beyond extraction.
type NormalizedVenue struct {
	ID           string         `json:"id,omitempty"`
	Name         string         `json:"name"`
	Address      *string        `json:"address,omitempty"`
	Price        *float64       `json:"price,omitempty"`
	Currency     string         `json:"currency"`
	PriceDisplay string         `json:"price_display"`
	Rating       *float64       `json:"rating,omitempty"`
	ReviewCount  *int           `json:"review_count,omitempty"`
	ThumbnailURL *string        `json:"thumbnail_url,omitempty"`
	Category     VenueCategory  `json:"category"`
	Raw          map[string]any `json:"-"`
}

// VenuePatch carries fields backfilled by the secondary enrichment resolver.
// Nil members leave the venue untouched.
type VenuePatch struct {
	Address      *string
	Rating       *float64
	ReviewCount  *int
	ThumbnailURL *string
}

// Apply copies the non-nil patch fields onto the venue, filling only fields
// that are still missing. A venue is enriched at most once.
func (p *VenuePatch) Apply(v *NormalizedVenue) {
	if p == nil || v == nil {
		return
	}
	if v.Address == nil && p.Address != nil {
		v.Address = p.Address
	}
	if v.Rating == nil && p.Rating != nil {
		v.Rating = p.Rating
	}
	if v.ReviewCount == nil && p.ReviewCount != nil {
		v.ReviewCount = p.ReviewCount
	}
	if v.ThumbnailURL == nil && p.ThumbnailURL != nil {
		v.ThumbnailURL = p.ThumbnailURL
	}
}

// NeedsEnrichment reports whether the venue is missing any of the fields the
// enrichment resolver can backfill.
func (v *NormalizedVenue) NeedsEnrichment() bool {
	return v.Address == nil || v.Rating == nil || v.ThumbnailURL == nil
}
