package googlemaps

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/resource-finder-geocode/internal/domain"
	"github.com/couchcryptid/resource-finder-geocode/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey           = "test-key"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
	googleplexAddress = "1600 Amphitheatre Pkwy, Mountain View, CA"
)

const forwardFixture = `{
  "status": "OK",
  "results": [{
    "formatted_address": "1600 Amphitheatre Pkwy, Mountain View, CA 94043, USA",
    "geometry": {"location": {"lat": 37.4224764, "lng": -122.0842499}, "location_type": "ROOFTOP"},
    "place_id": "ChIJ2eUgeAK6j4ARbn5u_wAGqWA",
    "types": ["street_address"]
  }, {
    "formatted_address": "Amphitheatre Pkwy, Mountain View, CA, USA",
    "geometry": {"location": {"lat": 37.42, "lng": -122.08}, "location_type": "GEOMETRIC_CENTER"},
    "place_id": "second",
    "types": ["route"]
  }]
}`

const reverseFixture = `{
  "status": "OK",
  "results": [{
    "formatted_address": "1600 Amphitheatre Pkwy, Mountain View, CA 94043, USA",
    "geometry": {"location": {"lat": 37.4223878, "lng": -122.0841877}, "location_type": "ROOFTOP"},
    "place_id": "ChIJtYuu0V25j4ARwu5e4wwRYgE",
    "types": ["premise", "street_address"]
  }]
}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(baseURL string) *Client {
	return &Client{
		keys:       domain.NewKeyResolver(discardLogger()),
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     discardLogger(),
	}
}

// fixtureServer serves body for every request and counts hits.
func fixtureServer(t *testing.T, body string, check func(r *http.Request)) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if check != nil {
			check(r)
		}
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func assertExclusive(t *testing.T, r domain.GeocodeResult) {
	t.Helper()
	if r.OK {
		assert.NotNil(t, r.Match)
		assert.Empty(t, r.Error)
		assert.Empty(t, r.Kind)
		return
	}
	assert.Nil(t, r.Match)
	assert.NotEmpty(t, r.Error)
	assert.NotEmpty(t, r.Kind)
}

func TestClient_Forward_Success(t *testing.T) {
	srv, hits := fixtureServer(t, forwardFixture, func(r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, googleplexAddress, r.URL.Query().Get("address"))
		assert.Equal(t, testKey, r.URL.Query().Get("key"))
		assert.Empty(t, r.URL.Query().Get("latlng"))
	})

	c := testClient(srv.URL)
	result := c.Forward(context.Background(), googleplexAddress, testKey)

	require.True(t, result.OK, result.Error)
	assertExclusive(t, result)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, googleplexAddress, result.Query.Address)
	assert.Equal(t, domain.MethodForward, result.Query.Method)
	assert.InDelta(t, 37.422, result.Match.Latitude, 0.001)
	assert.InDelta(t, -122.084, result.Match.Longitude, 0.001)
	assert.Equal(t, "1600 Amphitheatre Pkwy, Mountain View, CA 94043, USA", result.Match.NormalizedAddress)
	assert.Equal(t, "ChIJ2eUgeAK6j4ARbn5u_wAGqWA", result.Match.PlaceID, "first result wins")
	assert.Equal(t, []string{"street_address"}, result.Match.LocationTypes)

	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("forward", "success")), 0)
}

func TestClient_Reverse_Success(t *testing.T) {
	srv, _ := fixtureServer(t, reverseFixture, func(r *http.Request) {
		assert.Equal(t, "37.4224764,-122.0842499", r.URL.Query().Get("latlng"))
		assert.Equal(t, testKey, r.URL.Query().Get("key"))
		assert.Empty(t, r.URL.Query().Get("address"))
	})

	c := testClient(srv.URL)
	result := c.Reverse(context.Background(), 37.4224764, -122.0842499, testKey)

	require.True(t, result.OK, result.Error)
	assertExclusive(t, result)
	assert.Contains(t, result.Match.NormalizedAddress, "Mountain View")
	assert.Equal(t, []string{"premise", "street_address"}, result.Match.LocationTypes)
	assert.Equal(t, domain.ReverseRequest(37.4224764, -122.0842499), result.Query)

	// Match carries the vendor's address point, Query the coordinates asked for.
	assert.Equal(t, 37.4223878, result.Match.Latitude)
	assert.Equal(t, -122.0841877, result.Match.Longitude)
}

func TestClient_ForwardThenReverse_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		if r.URL.Query().Get("latlng") != "" {
			_, _ = io.WriteString(w, reverseFixture)
			return
		}
		_, _ = io.WriteString(w, forwardFixture)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	fwd := c.Forward(context.Background(), googleplexAddress, testKey)
	require.True(t, fwd.OK)

	rev := c.Reverse(context.Background(), fwd.Match.Latitude, fwd.Match.Longitude, testKey)
	require.True(t, rev.OK)
	assert.Contains(t, rev.Match.NormalizedAddress, "Mountain View")
}

func TestClient_Forward_ZeroResults(t *testing.T) {
	srv, _ := fixtureServer(t, `{"status":"ZERO_RESULTS","results":[]}`, nil)

	c := testClient(srv.URL)
	result := c.Forward(context.Background(), "XYZNONEXISTENT99", testKey)

	assert.False(t, result.OK)
	assertExclusive(t, result)
	assert.Equal(t, domain.ErrGeocodeStatus, result.Kind)
	assert.Contains(t, result.Error, "ZERO_RESULTS")
	assert.Equal(t, "XYZNONEXISTENT99", result.Query.Address, "input echoed on failure")
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("forward", "geocode_status")), 0)
}

func TestClient_Reverse_StatusFailureEchoesCoordinates(t *testing.T) {
	srv, _ := fixtureServer(t, `{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid.","results":[]}`, nil)

	c := testClient(srv.URL)
	result := c.Reverse(context.Background(), 10.5, -20.25, testKey)

	assert.False(t, result.OK)
	assertExclusive(t, result)
	assert.Equal(t, domain.ErrReverseGeocodeStatus, result.Kind)
	assert.Equal(t, "reverse_geocode_status: REQUEST_DENIED (The provided API key is invalid.)", result.Error)
	assert.Equal(t, domain.ReverseRequest(10.5, -20.25), result.Query)
}

func TestClient_Forward_OKWithoutResults(t *testing.T) {
	srv, _ := fixtureServer(t, `{"status":"OK","results":[]}`, nil)

	result := testClient(srv.URL).Forward(context.Background(), "somewhere", testKey)

	assert.False(t, result.OK)
	assert.Equal(t, "geocode_status: OK", result.Error)
}

func TestClient_MissingKey_NoHTTPCall(t *testing.T) {
	t.Setenv(domain.APIKeyEnv, "")
	srv, hits := fixtureServer(t, forwardFixture, nil)
	c := testClient(srv.URL)

	fwd := c.Forward(context.Background(), googleplexAddress, "")
	rev := c.Reverse(context.Background(), 37.42, -122.08, "")

	assert.Equal(t, int32(0), hits.Load())
	for _, r := range []domain.GeocodeResult{fwd, rev} {
		assert.False(t, r.OK)
		assertExclusive(t, r)
		assert.Equal(t, domain.ErrMissingAPIKey, r.Kind)
		assert.Contains(t, r.Error, "missing_api_key")
	}
	assert.Equal(t, domain.ReverseRequest(37.42, -122.08), rev.Query)
}

func TestClient_KeyPrecedence(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.URL.Query().Get("key"))
		mu.Unlock()
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = io.WriteString(w, forwardFixture)
	}))
	defer srv.Close()

	t.Setenv(domain.APIKeyEnv, "env-key")
	c := testClient(srv.URL)

	c.Forward(context.Background(), googleplexAddress, "explicit-key")
	c.Forward(context.Background(), googleplexAddress, "")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"explicit-key", "env-key"}, seen)
}

func TestClient_Forward_BlankAddress(t *testing.T) {
	srv, hits := fixtureServer(t, forwardFixture, nil)

	result := testClient(srv.URL).Forward(context.Background(), "  ", testKey)

	assert.False(t, result.OK)
	assert.Equal(t, domain.ErrInvalidRequest, result.Kind)
	assert.Equal(t, int32(0), hits.Load())
}

func TestClient_Reverse_OutOfRange(t *testing.T) {
	srv, hits := fixtureServer(t, reverseFixture, nil)

	result := testClient(srv.URL).Reverse(context.Background(), 123, 0, testKey)

	assert.False(t, result.OK)
	assert.Equal(t, domain.ErrInvalidRequest, result.Kind)
	assert.Equal(t, int32(0), hits.Load())
}

func TestClient_Forward_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error_message":"forbidden"}`))
	}))
	defer srv.Close()

	result := testClient(srv.URL).Forward(context.Background(), googleplexAddress, testKey)

	assert.False(t, result.OK)
	assertExclusive(t, result)
	assert.Equal(t, domain.ErrRequestFailed, result.Kind)
	assert.Contains(t, result.Error, "403")
}

func TestClient_Forward_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	result := c.Forward(context.Background(), googleplexAddress, testKey)

	assert.False(t, result.OK)
	assert.Equal(t, domain.ErrRequestFailed, result.Kind)
}

func TestClient_Forward_UndecodableBody(t *testing.T) {
	srv, _ := fixtureServer(t, `<html>oops</html>`, nil)

	result := testClient(srv.URL).Forward(context.Background(), googleplexAddress, testKey)

	assert.False(t, result.OK)
	assert.Equal(t, domain.ErrRequestFailed, result.Kind)
	assert.Contains(t, result.Error, "decode response")
}

func TestClient_Forward_MissingGeometry(t *testing.T) {
	srv, _ := fixtureServer(t, `{"status":"OK","results":[{"formatted_address":"Somewhere","place_id":"p1","types":[]}]}`, nil)

	result := testClient(srv.URL).Forward(context.Background(), "Somewhere", testKey)

	assert.False(t, result.OK)
	assertExclusive(t, result)
	assert.Equal(t, domain.ErrMalformedResponse, result.Kind)
}

func TestClient_Forward_MissingLongitude(t *testing.T) {
	srv, _ := fixtureServer(t, `{"status":"OK","results":[{"geometry":{"location":{"lat":1.5}}}]}`, nil)

	result := testClient(srv.URL).Forward(context.Background(), "Somewhere", testKey)

	assert.Equal(t, domain.ErrMalformedResponse, result.Kind)
}

func TestClient_Reverse_MissingGeometryUsesQuery(t *testing.T) {
	srv, _ := fixtureServer(t, `{"status":"OK","results":[{"formatted_address":"Null Island","place_id":"p0"}]}`, nil)

	result := testClient(srv.URL).Reverse(context.Background(), 1.25, 2.5, testKey)

	require.True(t, result.OK)
	assert.Equal(t, 1.25, result.Match.Latitude)
	assert.Equal(t, 2.5, result.Match.Longitude)
	assert.Equal(t, []string{}, result.Match.LocationTypes)
}

func TestClient_TransportErrorRedactsKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	result := testClient(url).Forward(context.Background(), googleplexAddress, "super-secret")

	assert.False(t, result.OK)
	assert.Equal(t, domain.ErrRequestFailed, result.Kind)
	assert.NotContains(t, result.Error, "super-secret")
	assert.Contains(t, result.Error, "REDACTED")
}

func TestClient_ResultJSONShape(t *testing.T) {
	srv, _ := fixtureServer(t, forwardFixture, nil)
	result := testClient(srv.URL).Forward(context.Background(), googleplexAddress, testKey)

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, true, body["ok"])
	assert.NotContains(t, body, "error")
	match, ok := body["match"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ChIJ2eUgeAK6j4ARbn5u_wAGqWA", match["place_id"])
}
