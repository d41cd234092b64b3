package venue

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/amirulhz/go-trip-planner/internal/types"
)

// ProviderKind selects the ordered candidate paths for a provider's record
// shape. Unknown kinds fall back to the generic set.
type ProviderKind string

const (
	ProviderBooking ProviderKind = "booking"
	ProviderGeneric ProviderKind = "generic"
)

// deepSearchMaxDepth bounds the fallback depth-first search over nested
// payloads. Provider records are shallow in practice; anything deeper is a
// pathological payload not worth walking.
const deepSearchMaxDepth = 6

// priceKeyPatterns are matched (case-insensitive substring) against map keys
// during the deep-search fallback.
var priceKeyPatterns = []string{"price", "amount", "total", "gross", "rate", "cost", "offer"}

// fieldPaths is an ordered candidate list for one canonical field: the first
// path that yields a usable value wins.
type fieldPaths [][]string

type candidateSet struct {
	id        fieldPaths
	name      fieldPaths
	address   fieldPaths
	price     fieldPaths
	currency  fieldPaths
	rating    fieldPaths
	reviews   fieldPaths
	thumbnail fieldPaths
}

// bookingCandidates covers the hotel/activity search shapes we have seen
// from the inventory provider, old and new API versions both.
var bookingCandidates = candidateSet{
	id: fieldPaths{
		{"hotel_id"}, {"property", "id"}, {"id"}, {"location_id"}, {"place_id"},
	},
	name: fieldPaths{
		{"hotel_name"}, {"property", "name"}, {"name"}, {"title"},
	},
	address: fieldPaths{
		{"address"}, {"address_trans"}, {"location", "address"}, {"property", "address"}, {"formatted_address"},
	},
	price: fieldPaths{
		{"price"},
		{"property", "priceBreakdown", "grossPrice", "value"},
		{"priceBreakdown", "grossPrice", "value"},
		{"composite_price_breakdown", "gross_amount", "value"},
		{"price_breakdown", "gross_price"},
		{"min_total_price"},
		{"representativePrice", "chargeAmount"},
		{"offers", "0", "price", "total"},
	},
	currency: fieldPaths{
		{"currency"}, {"currencycode"},
		{"property", "priceBreakdown", "grossPrice", "currency"},
		{"composite_price_breakdown", "gross_amount", "currency"},
		{"price_breakdown", "currency"},
		{"representativePrice", "currency"},
	},
	rating: fieldPaths{
		{"review_score"}, {"property", "reviewScore"}, {"rating"}, {"reviewsStats", "combinedNumericStats", "average"},
	},
	reviews: fieldPaths{
		{"review_nr"}, {"property", "reviewCount"}, {"reviewCount"}, {"num_reviews"}, {"reviewsStats", "allReviewsCount"}, {"user_ratings_total"},
	},
	thumbnail: fieldPaths{
		{"main_photo_url"}, {"max_photo_url"}, {"property", "photoUrls", "0"}, {"primaryPhoto", "small"}, {"thumbnail_url"}, {"photo", "images", "small", "url"},
	},
}

var genericCandidates = candidateSet{
	id:        fieldPaths{{"id"}, {"place_id"}, {"location_id"}},
	name:      fieldPaths{{"name"}, {"title"}},
	address:   fieldPaths{{"address"}, {"formatted_address"}, {"vicinity"}, {"location", "address"}},
	price:     fieldPaths{{"price"}, {"price", "amount"}, {"cost"}},
	currency:  fieldPaths{{"currency"}, {"price", "currency"}},
	rating:    fieldPaths{{"rating"}, {"review_score"}},
	reviews:   fieldPaths{{"review_count"}, {"user_ratings_total"}, {"num_reviews"}},
	thumbnail: fieldPaths{{"thumbnail"}, {"thumbnail_url"}, {"image"}, {"photo", "url"}},
}

// Normalizer converts arbitrary provider records into NormalizedVenue. It
// never fails: every extraction is total over JSON-like input, and absent
// fields become nil with defaulted display text.
type Normalizer struct {
	logger *slog.Logger
}

func NewNormalizer(logger *slog.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize extracts the canonical fields from one raw provider record.
func (n *Normalizer) Normalize(raw map[string]any, kind ProviderKind, category types.VenueCategory) types.NormalizedVenue {
	cands := genericCandidates
	if kind == ProviderBooking {
		cands = bookingCandidates
	}

	v := types.NormalizedVenue{
		Category: category,
		Currency: types.DefaultCurrency,
		Raw:      raw,
	}
	if raw == nil {
		v.Name = "Unknown venue"
		v.PriceDisplay = types.PriceUnavailable
		return v
	}

	if id, ok := firstString(raw, cands.id); ok {
		v.ID = id
	}
	if name, ok := firstString(raw, cands.name); ok && name != "" {
		v.Name = name
	} else {
		v.Name = "Unknown venue"
	}
	if addr, ok := firstString(raw, cands.address); ok && addr != "" {
		v.Address = &addr
	}
	if cur, ok := firstString(raw, cands.currency); ok && cur != "" {
		v.Currency = strings.ToUpper(cur)
	}
	if rating, ok := firstFloat(raw, cands.rating); ok {
		v.Rating = &rating
	}
	if reviews, ok := firstFloat(raw, cands.reviews); ok {
		count := int(reviews)
		v.ReviewCount = &count
	}
	if thumb, ok := firstString(raw, cands.thumbnail); ok && thumb != "" {
		v.ThumbnailURL = &thumb
	}

	// Price: ordered known paths first, bounded deep search second.
	if price, ok := firstFloat(raw, cands.price); ok {
		v.Price = &price
	} else if price, ok := deepFindPrice(raw); ok {
		v.Price = &price
		n.logger.Debug("Recovered price via deep search", slog.String("venue", v.Name), slog.Float64("price", price))
	}
	v.PriceDisplay = FormatPrice(v.Price, v.Currency)

	return v
}

// FormatPrice renders a numeric price with currency-aware display rules.
// A nil price always yields the non-empty unavailable marker.
func FormatPrice(price *float64, currency string) string {
	if price == nil {
		return types.PriceUnavailable
	}
	if currency == "" {
		currency = types.DefaultCurrency
	}
	if currency == types.DefaultCurrency {
		return fmt.Sprintf("RM %s", formatAmount(*price))
	}
	return fmt.Sprintf("%s %s", currency, formatAmount(*price))
}

func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	dot := strings.Index(s, ".")
	intPart, frac := s[:dot], s[dot:]
	if len(intPart) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String() + frac
}

// firstFloat walks the ordered candidate paths and returns the first value
// that parses as a number.
func firstFloat(raw map[string]any, paths fieldPaths) (float64, bool) {
	for _, path := range paths {
		if val, ok := lookupPath(raw, path); ok {
			if f, ok := asFloat(val); ok {
				return f, true
			}
		}
	}
	return 0, false
}

// firstString walks the ordered candidate paths and returns the first value
// representable as a non-empty string.
func firstString(raw map[string]any, paths fieldPaths) (string, bool) {
	for _, path := range paths {
		if val, ok := lookupPath(raw, path); ok {
			if s, ok := asString(val); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// lookupPath descends maps by key and slices by numeric segment.
func lookupPath(root any, path []string) (any, bool) {
	cur := root
	for _, seg := range path {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// deepFindPrice is the heuristic fallback: a bounded depth-first search over
// the record for a numeric value under a price-like key. Key order is sorted
// so extraction is deterministic, and the visited set guards against payload
// cycles (impossible from encoding/json, cheap to keep for hand-built maps).
func deepFindPrice(raw map[string]any) (float64, bool) {
	visited := make(map[uintptr]struct{})
	return deepFind(raw, "", 0, visited)
}

func deepFind(node any, key string, depth int, visited map[uintptr]struct{}) (float64, bool) {
	if depth > deepSearchMaxDepth {
		return 0, false
	}
	switch n := node.(type) {
	case map[string]any:
		ptr := reflect.ValueOf(n).Pointer()
		if _, seen := visited[ptr]; seen {
			return 0, false
		}
		visited[ptr] = struct{}{}

		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		// Matching leaf values at this level win over deeper matches.
		for _, k := range keys {
			if !priceLikeKey(k) {
				continue
			}
			if f, ok := asFloat(n[k]); ok {
				return f, true
			}
		}
		for _, k := range keys {
			if f, ok := deepFind(n[k], k, depth+1, visited); ok {
				return f, true
			}
		}
	case []any:
		ptr := reflect.ValueOf(n).Pointer()
		if _, seen := visited[ptr]; seen {
			return 0, false
		}
		visited[ptr] = struct{}{}
		for _, item := range n {
			if f, ok := deepFind(item, key, depth+1, visited); ok {
				return f, true
			}
		}
	default:
		if priceLikeKey(key) {
			return asFloat(node)
		}
	}
	return 0, false
}

func priceLikeKey(key string) bool {
	k := strings.ToLower(key)
	for _, p := range priceKeyPatterns {
		if strings.Contains(k, p) {
			return true
		}
	}
	return false
}

// asFloat accepts the numeric encodings providers actually send: JSON
// numbers, integer types, and strings with currency noise ("RM 1,250.00").
func asFloat(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(v)
		s = strings.TrimPrefix(s, "RM")
		s = strings.TrimPrefix(s, "MYR")
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

func asString(val any) (string, bool) {
	switch v := val.(type) {
	case string:
		return v, true
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10), true
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case json.Number:
		return v.String(), true
	}
	return "", false
}
