package domain

import (
	"context"
	"fmt"
	"math"
	"slices"
)

// Method distinguishes forward from reverse lookups.
type Method string

const (
	MethodForward Method = "forward"
	MethodReverse Method = "reverse"
)

// ErrorKind classifies a failed lookup.
type ErrorKind string

const (
	ErrMissingAPIKey        ErrorKind = "missing_api_key"
	ErrRequestFailed        ErrorKind = "request_failed"
	ErrGeocodeStatus        ErrorKind = "geocode_status"
	ErrReverseGeocodeStatus ErrorKind = "reverse_geocode_status"
	ErrMalformedResponse    ErrorKind = "malformed_response"
	ErrInvalidRequest       ErrorKind = "invalid_request"
)

// GeocodeRequest is the caller's input, echoed back on every result. Forward
// requests carry only Address; reverse requests carry only the coordinates.
// The struct is also the published tool output schema, so the JSON shape
// must follow the field tags exactly.
type GeocodeRequest struct {
	Method    Method   `json:"method"`
	Address   string   `json:"address,omitempty"`
	Latitude  *float64 `json:"lat,omitempty"`
	Longitude *float64 `json:"lon,omitempty"`
}

// ForwardRequest builds an address lookup.
func ForwardRequest(address string) GeocodeRequest {
	return GeocodeRequest{Method: MethodForward, Address: address}
}

// ReverseRequest builds a coordinate lookup. Non-finite coordinates are not
// representable in JSON and are left out of the echo.
func ReverseRequest(lat, lon float64) GeocodeRequest {
	q := GeocodeRequest{Method: MethodReverse}
	if isFinite(lat) && isFinite(lon) {
		q.Latitude, q.Longitude = &lat, &lon
	}
	return q
}

// Coordinates returns the echoed lat/lon of a reverse request.
func (q GeocodeRequest) Coordinates() (lat, lon float64, ok bool) {
	if q.Latitude == nil || q.Longitude == nil {
		return 0, 0, false
	}
	return *q.Latitude, *q.Longitude, true
}

// Match holds the fields extracted from the first vendor result.
type Match struct {
	NormalizedAddress string   `json:"normalized_address"`
	Latitude          float64  `json:"latitude"`
	Longitude         float64  `json:"longitude"`
	PlaceID           string   `json:"place_id"`
	LocationTypes     []string `json:"location_types"`
}

// GeocodeResult is the outcome of a single lookup.
// OK is true exactly when Match is set and Error is empty.
type GeocodeResult struct {
	OK    bool           `json:"ok"`
	Query GeocodeRequest `json:"query"`
	Match *Match         `json:"match,omitempty"`
	Error string         `json:"error,omitempty"`
	Kind  ErrorKind      `json:"error_kind,omitempty"`
}

// Matched returns a successful result.
func Matched(query GeocodeRequest, m Match) GeocodeResult {
	if m.LocationTypes == nil {
		m.LocationTypes = []string{}
	}
	return GeocodeResult{OK: true, Query: query, Match: &m}
}

// Failed returns a failed result whose Error reads "<kind>: <detail>".
func Failed(query GeocodeRequest, kind ErrorKind, detail string) GeocodeResult {
	return GeocodeResult{
		OK:    false,
		Query: query,
		Error: fmt.Sprintf("%s: %s", kind, detail),
		Kind:  kind,
	}
}

// Clone returns a deep copy that shares no pointers or slices with r.
func (r GeocodeResult) Clone() GeocodeResult {
	if lat, lon, ok := r.Query.Coordinates(); ok {
		r.Query.Latitude, r.Query.Longitude = &lat, &lon
	}
	if r.Match != nil {
		m := *r.Match
		m.LocationTypes = slices.Clone(m.LocationTypes)
		r.Match = &m
	}
	return r
}

// Outcome is a short label for metrics: "success" or the error kind.
func (r GeocodeResult) Outcome() string {
	if r.OK {
		return "success"
	}
	return string(r.Kind)
}

// Geocoder resolves addresses and coordinates. Failures are reported in the
// result, never as a Go error. An empty apiKey defers to key resolution.
type Geocoder interface {
	// Forward converts a free-text address to coordinates.
	Forward(ctx context.Context, address, apiKey string) GeocodeResult

	// Reverse converts coordinates to a formatted address.
	Reverse(ctx context.Context, lat, lon float64, apiKey string) GeocodeResult
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
