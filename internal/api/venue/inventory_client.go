package venue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/amirulhz/go-trip-planner/internal/types"
)

// DateRange is a check-in/check-out pair in YYYY-MM-DD form.
type DateRange struct {
	Start string
	End   string
}

// InventoryProvider is the outbound boundary for hotel and activity search.
// Results are raw provider records: the normalizer owns their interpretation.
type InventoryProvider interface {
	SearchLodging(ctx context.Context, point types.GeoPoint, dates DateRange, partySize int) ([]map[string]any, error)
	SearchActivities(ctx context.Context, point types.GeoPoint, theme string) ([]map[string]any, error)
}

// HTTPInventoryClient speaks the RapidAPI travel-inventory service.
type HTTPInventoryClient struct {
	baseURL    string
	apiKey     string
	apiHost    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPInventoryClient(baseURL, apiKey, apiHost string, timeout time.Duration, logger *slog.Logger) *HTTPInventoryClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPInventoryClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		apiHost:    apiHost,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *HTTPInventoryClient) SearchLodging(ctx context.Context, point types.GeoPoint, dates DateRange, partySize int) ([]map[string]any, error) {
	if partySize <= 0 {
		partySize = 2
	}
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%f", point.Lat))
	q.Set("longitude", fmt.Sprintf("%f", point.Lng))
	q.Set("arrival_date", dates.Start)
	q.Set("departure_date", dates.End)
	q.Set("adults", fmt.Sprintf("%d", partySize))
	q.Set("currency_code", types.DefaultCurrency)

	return c.search(ctx, "/api/v1/hotels/searchHotelsByCoordinates", q)
}

func (c *HTTPInventoryClient) SearchActivities(ctx context.Context, point types.GeoPoint, theme string) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%f", point.Lat))
	q.Set("longitude", fmt.Sprintf("%f", point.Lng))
	if theme != "" {
		q.Set("query", theme)
	}
	q.Set("currency_code", types.DefaultCurrency)

	return c.search(ctx, "/api/v1/attraction/searchAttractions", q)
}

// search performs one provider call and digs the record list out of the
// envelope. Providers disagree on the envelope key, so several are tried.
func (c *HTTPInventoryClient) search(ctx context.Context, path string, q url.Values) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inventory request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inventory provider returned HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory response: %w", err)
	}

	var envelope map[string]any
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode inventory response: %w", err)
	}
	return extractRecords(envelope), nil
}

// extractRecords finds the first plausible record list in a response
// envelope, checking the envelope keys seen across provider API versions.
func extractRecords(envelope map[string]any) []map[string]any {
	candidates := []([]string){
		{"data", "hotels"},
		{"data", "products"},
		{"data", "results"},
		{"data"},
		{"results"},
		{"result"},
	}
	for _, path := range candidates {
		val, ok := lookupPath(envelope, path)
		if !ok {
			continue
		}
		list, ok := val.([]any)
		if !ok {
			continue
		}
		records := make([]map[string]any, 0, len(list))
		for _, item := range list {
			if rec, ok := item.(map[string]any); ok {
				records = append(records, rec)
			}
		}
		if len(records) > 0 {
			return records
		}
	}
	return nil
}
