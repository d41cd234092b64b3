package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/amirulhz/go-trip-planner/internal/types"
)

// PlaceCandidate is one match from a proximity or text search.
type PlaceCandidate struct {
	PlaceID string
	Name    string
	Address string
	Lat     float64
	Lng     float64
}

// PlaceDetails carries the backfillable fields for one place.
type PlaceDetails struct {
	Address     string
	Rating      float64
	ReviewCount int
	PhotoURL    string
}

// PlacesProvider is the outbound boundary for the general places service.
type PlacesProvider interface {
	NearbySearch(ctx context.Context, point types.GeoPoint, keyword string) ([]PlaceCandidate, error)
	TextSearch(ctx context.Context, query string) ([]PlaceCandidate, error)
	PlaceDetails(ctx context.Context, placeID string) (*PlaceDetails, error)
}

// HTTPPlacesClient speaks the Google Places web service API. Details
// lookups are cached in-process: the same venues come back for every
// planning request against a popular destination.
type HTTPPlacesClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      *gocache.Cache
	logger     *slog.Logger
}

func NewHTTPPlacesClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *HTTPPlacesClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPPlacesClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		cache:      gocache.New(30*time.Minute, 10*time.Minute),
		logger:     logger,
	}
}

type placesSearchResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID  string `json:"place_id"`
		Name     string `json:"name"`
		Vicinity string `json:"vicinity"`
		Address  string `json:"formatted_address"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (c *HTTPPlacesClient) NearbySearch(ctx context.Context, point types.GeoPoint, keyword string) ([]PlaceCandidate, error) {
	q := url.Values{}
	q.Set("location", fmt.Sprintf("%f,%f", point.Lat, point.Lng))
	q.Set("radius", "1500")
	q.Set("keyword", keyword)
	q.Set("key", c.apiKey)
	return c.searchCall(ctx, "/maps/api/place/nearbysearch/json", q)
}

func (c *HTTPPlacesClient) TextSearch(ctx context.Context, query string) ([]PlaceCandidate, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("key", c.apiKey)
	return c.searchCall(ctx, "/maps/api/place/textsearch/json", q)
}

func (c *HTTPPlacesClient) searchCall(ctx context.Context, path string, q url.Values) ([]PlaceCandidate, error) {
	body, err := c.get(ctx, path, q)
	if err != nil {
		return nil, err
	}
	var resp placesSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode places response: %w", err)
	}
	if resp.Status != "OK" {
		return nil, fmt.Errorf("places search returned status %s", resp.Status)
	}
	candidates := make([]PlaceCandidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		addr := r.Address
		if addr == "" {
			addr = r.Vicinity
		}
		candidates = append(candidates, PlaceCandidate{
			PlaceID: r.PlaceID,
			Name:    r.Name,
			Address: addr,
			Lat:     r.Geometry.Location.Lat,
			Lng:     r.Geometry.Location.Lng,
		})
	}
	return candidates, nil
}

type placeDetailsResponse struct {
	Status string `json:"status"`
	Result struct {
		FormattedAddress string  `json:"formatted_address"`
		Rating           float64 `json:"rating"`
		UserRatingsTotal int     `json:"user_ratings_total"`
		Photos           []struct {
			PhotoReference string `json:"photo_reference"`
		} `json:"photos"`
	} `json:"result"`
}

func (c *HTTPPlacesClient) PlaceDetails(ctx context.Context, placeID string) (*PlaceDetails, error) {
	cacheKey := "details:" + placeID
	if cached, found := c.cache.Get(cacheKey); found {
		details := cached.(PlaceDetails)
		return &details, nil
	}

	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", "formatted_address,rating,user_ratings_total,photos")
	q.Set("key", c.apiKey)
	body, err := c.get(ctx, "/maps/api/place/details/json", q)
	if err != nil {
		return nil, err
	}
	var resp placeDetailsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode place details: %w", err)
	}
	if resp.Status != "OK" {
		return nil, fmt.Errorf("place details returned status %s", resp.Status)
	}

	details := &PlaceDetails{
		Address:     resp.Result.FormattedAddress,
		Rating:      resp.Result.Rating,
		ReviewCount: resp.Result.UserRatingsTotal,
	}
	if len(resp.Result.Photos) > 0 {
		details.PhotoURL = fmt.Sprintf(
			"%s/maps/api/place/photo?maxwidth=400&photo_reference=%s&key=%s",
			c.baseURL, resp.Result.Photos[0].PhotoReference, c.apiKey)
	}
	c.cache.Set(cacheKey, *details, gocache.DefaultExpiration)
	return details, nil
}

func (c *HTTPPlacesClient) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places provider returned HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
