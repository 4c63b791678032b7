// Package selftest exercises the geocoding tools end to end against the live
// (or configured) Geocoding endpoint: a forward lookup of a known address
// followed by a reverse lookup of the coordinates it returns.
package selftest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/couchcryptid/resource-finder-geocode/internal/domain"
	"github.com/couchcryptid/resource-finder-geocode/internal/tools"
)

// SampleAddress is the address looked up by Run.
const SampleAddress = "1600 Amphitheatre Pkwy, Mountain View, CA"

// ErrForwardFailed is returned when the forward lookup does not succeed, so
// the reverse lookup was skipped.
var ErrForwardFailed = errors.New("forward geocode failed")

// Report holds both lookups. Reverse is nil when the forward lookup failed.
type Report struct {
	Forward domain.GeocodeResult  `json:"forward"`
	Reverse *domain.GeocodeResult `json:"reverse,omitempty"`
}

// Run geocodes SampleAddress, then reverse geocodes the result, printing each
// result to w as indented JSON.
func Run(ctx context.Context, geoTools []tools.GeoTool, w io.Writer) (Report, error) {
	fwd, ok := tools.Find(geoTools, tools.GeocodeToolName)
	if !ok {
		return Report{}, fmt.Errorf("tool %s not registered", tools.GeocodeToolName)
	}
	rev, ok := tools.Find(geoTools, tools.ReverseGeocodeToolName)
	if !ok {
		return Report{}, fmt.Errorf("tool %s not registered", tools.ReverseGeocodeToolName)
	}

	var report Report

	fmt.Fprintf(w, "Geocoding: %s\n", SampleAddress)
	result, err := fwd.Invoke(ctx, map[string]any{"address": SampleAddress})
	if err != nil {
		return report, fmt.Errorf("invoke %s: %w", fwd.Name(), err)
	}
	report.Forward = result
	if err := printJSON(w, result); err != nil {
		return report, err
	}
	if !result.OK {
		return report, fmt.Errorf("%w: %s", ErrForwardFailed, result.Error)
	}

	lat, lon := result.Match.Latitude, result.Match.Longitude
	fmt.Fprintf(w, "Reverse geocoding: %s\n", domain.FormatLatLng(lat, lon))
	reverse, err := rev.Invoke(ctx, map[string]any{"lat": lat, "lon": lon})
	if err != nil {
		return report, fmt.Errorf("invoke %s: %w", rev.Name(), err)
	}
	report.Reverse = &reverse
	if err := printJSON(w, reverse); err != nil {
		return report, err
	}
	return report, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("print result: %w", err)
	}
	return nil
}
