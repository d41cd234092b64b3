package location

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

// HTTPRoutingClient is the default RoutingProvider speaking the Google Maps
// web service API. Geocode responses are cached in-process because place
// names repeat heavily across planning requests.
type HTTPRoutingClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      *gocache.Cache
	logger     *slog.Logger
}

func NewHTTPRoutingClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *HTTPRoutingClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPRoutingClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		cache:      gocache.New(30*time.Minute, 10*time.Minute),
		logger:     logger,
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (c *HTTPRoutingClient) Geocode(ctx context.Context, query string) (*GeocodeResult, error) {
	cacheKey := "geocode:" + query
	if cached, found := c.cache.Get(cacheKey); found {
		res := cached.(GeocodeResult)
		return &res, nil
	}

	q := url.Values{}
	q.Set("address", query)
	q.Set("key", c.apiKey)
	body, err := c.get(ctx, "/maps/api/geocode/json", q)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}

	var resp geocodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if resp.Status != "OK" || len(resp.Results) == 0 {
		return nil, fmt.Errorf("geocode returned no results (status %s)", resp.Status)
	}

	first := resp.Results[0]
	result := GeocodeResult{
		Lat:              first.Geometry.Location.Lat,
		Lng:              first.Geometry.Location.Lng,
		FormattedAddress: first.FormattedAddress,
	}
	c.cache.Set(cacheKey, result, gocache.DefaultExpiration)
	return &result, nil
}

type distanceMatrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Text  string  `json:"text"`
				Value float64 `json:"value"`
			} `json:"distance"`
			Duration struct {
				Text  string  `json:"text"`
				Value float64 `json:"value"`
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

func (c *HTTPRoutingClient) DistanceMatrix(ctx context.Context, origin, destination types.GeoPoint, mode string) (*MatrixResult, error) {
	q := url.Values{}
	q.Set("origins", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	q.Set("destinations", fmt.Sprintf("%f,%f", destination.Lat, destination.Lng))
	q.Set("mode", mode)
	q.Set("key", c.apiKey)
	body, err := c.get(ctx, "/maps/api/distancematrix/json", q)
	if err != nil {
		return nil, fmt.Errorf("distance matrix request failed: %w", err)
	}

	var resp distanceMatrixResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode distance matrix response: %w", err)
	}
	if resp.Status != "OK" || len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return nil, fmt.Errorf("distance matrix returned no elements (status %s)", resp.Status)
	}

	el := resp.Rows[0].Elements[0]
	return &MatrixResult{
		Status:          el.Status,
		DistanceMeters:  el.Distance.Value,
		DistanceText:    el.Distance.Text,
		DurationSeconds: el.Duration.Value,
		DurationText:    el.Duration.Text,
	}, nil
}

func (c *HTTPRoutingClient) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
