package googlemaps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/resource-finder-geocode/internal/domain"
	"github.com/couchcryptid/resource-finder-geocode/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// statusOK is the Geocoding API's only success sentinel.
const statusOK = "OK"

// maxErrorBody bounds how much of a non-2xx body ends up in the failure text.
const maxErrorBody = 512

// Client implements domain.Geocoder using the Google Maps Geocoding API.
// Every lookup is a single GET with no retries.
type Client struct {
	keys       *domain.KeyResolver
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Google Maps geocoding client.
func NewClient(baseURL string, timeout time.Duration, keys *domain.KeyResolver, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		keys: keys,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Forward converts a free-text address to coordinates.
func (c *Client) Forward(ctx context.Context, address, apiKey string) domain.GeocodeResult {
	query := domain.ForwardRequest(address)
	if failed, ok := domain.ValidateForward(address); !ok {
		return c.record(failed)
	}

	key, origin := c.keys.Resolve(ctx, apiKey)
	if origin == domain.KeyOriginNone {
		return c.record(domain.Failed(query, domain.ErrMissingAPIKey, domain.MissingKeyDetail))
	}

	params := url.Values{
		"address": {address},
		"key":     {key},
	}
	resp, err := c.doRequest(ctx, params, domain.MethodForward)
	if err != nil {
		return c.record(domain.Failed(query, domain.ErrRequestFailed, err.Error()))
	}
	if detail, ok := resp.failureStatus(); !ok {
		return c.record(domain.Failed(query, domain.ErrGeocodeStatus, detail))
	}

	first := resp.Results[0]
	lat, lon, ok := first.coordinates()
	if !ok {
		return c.record(domain.Failed(query, domain.ErrMalformedResponse, "result has no geometry.location"))
	}

	c.logger.Debug("forward geocode resolved", "key_origin", origin, "place_id", first.PlaceID)
	return c.record(domain.Matched(query, domain.Match{
		NormalizedAddress: first.FormattedAddress,
		Latitude:          lat,
		Longitude:         lon,
		PlaceID:           first.PlaceID,
		LocationTypes:     first.Types,
	}))
}

// Reverse converts coordinates to a formatted address.
func (c *Client) Reverse(ctx context.Context, lat, lon float64, apiKey string) domain.GeocodeResult {
	query := domain.ReverseRequest(lat, lon)
	if failed, ok := domain.ValidateReverse(lat, lon); !ok {
		return c.record(failed)
	}

	key, origin := c.keys.Resolve(ctx, apiKey)
	if origin == domain.KeyOriginNone {
		return c.record(domain.Failed(query, domain.ErrMissingAPIKey, domain.MissingKeyDetail))
	}

	params := url.Values{
		"latlng": {domain.FormatLatLng(lat, lon)},
		"key":    {key},
	}
	resp, err := c.doRequest(ctx, params, domain.MethodReverse)
	if err != nil {
		return c.record(domain.Failed(query, domain.ErrRequestFailed, err.Error()))
	}
	if detail, ok := resp.failureStatus(); !ok {
		return c.record(domain.Failed(query, domain.ErrReverseGeocodeStatus, detail))
	}

	first := resp.Results[0]
	// Reverse results usually carry the matched address point; when they
	// don't, the queried coordinates are the best answer available.
	matchLat, matchLon, ok := first.coordinates()
	if !ok {
		matchLat, matchLon = lat, lon
	}

	c.logger.Debug("reverse geocode resolved", "key_origin", origin, "place_id", first.PlaceID)
	return c.record(domain.Matched(query, domain.Match{
		NormalizedAddress: first.FormattedAddress,
		Latitude:          matchLat,
		Longitude:         matchLon,
		PlaceID:           first.PlaceID,
		LocationTypes:     first.Types,
	}))
}

func (c *Client) doRequest(ctx context.Context, params url.Values, method domain.Method) (*response, error) {
	timer := prometheus.NewTimer(c.metrics.GeocodeAPIDuration.WithLabelValues(string(method)))
	defer timer.ObserveDuration()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, redactKey(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("geocoding API error: status %d: %s", resp.StatusCode, body)
	}

	var gr response
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &gr, nil
}

// record updates metrics and logs failures. Returns r unchanged.
func (c *Client) record(r domain.GeocodeResult) domain.GeocodeResult {
	c.metrics.GeocodeRequests.WithLabelValues(string(r.Query.Method), r.Outcome()).Inc()
	if !r.OK {
		c.logger.Warn("geocode lookup failed",
			"method", r.Query.Method,
			"kind", r.Kind,
			"error", r.Error,
		)
	}
	return r
}

// redactKey strips the API key from the URL that net/http embeds in
// transport errors.
func redactKey(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	u, parseErr := url.Parse(urlErr.URL)
	if parseErr != nil {
		return err
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return &url.Error{Op: urlErr.Op, URL: u.String(), Err: urlErr.Err}
}

// Geocoding API response types.

type response struct {
	Status       string   `json:"status"`
	ErrorMessage string   `json:"error_message,omitempty"`
	Results      []result `json:"results"`
}

// failureStatus reports the status detail and false unless the response is
// "OK" with at least one result.
func (r *response) failureStatus() (string, bool) {
	if r.Status == statusOK && len(r.Results) > 0 {
		return "", true
	}
	status := r.Status
	if status == "" {
		status = "<missing status>"
	}
	if r.ErrorMessage != "" {
		return fmt.Sprintf("%s (%s)", status, r.ErrorMessage), false
	}
	return status, false
}

type result struct {
	FormattedAddress string    `json:"formatted_address"`
	Geometry         *geometry `json:"geometry"`
	PlaceID          string    `json:"place_id"`
	Types            []string  `json:"types"`
}

type geometry struct {
	Location     *latLng `json:"location"`
	LocationType string  `json:"location_type"` // ROOFTOP, RANGE_INTERPOLATED, GEOMETRIC_CENTER, APPROXIMATE
}

type latLng struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func (r result) coordinates() (lat, lon float64, ok bool) {
	if r.Geometry == nil || r.Geometry.Location == nil {
		return 0, 0, false
	}
	loc := r.Geometry.Location
	if loc.Lat == nil || loc.Lng == nil {
		return 0, 0, false
	}
	return *loc.Lat, *loc.Lng, true
}
