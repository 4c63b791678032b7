package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/couchcryptid/resource-finder-geocode/internal/domain"
	"github.com/mitchellh/mapstructure"
)

// GeocodeArgs is the declarative forward tool's parameter schema.
type GeocodeArgs struct {
	Address string `json:"address" jsonschema:"The street address to geocode"`
	APIKey  string `json:"api_key,omitempty" jsonschema:"Google Maps API key; defaults to GOOGLE_MAPS_API_KEY when omitted"`
}

// ReverseGeocodeArgs is the declarative reverse tool's parameter schema.
type ReverseGeocodeArgs struct {
	Lat    float64 `json:"lat" jsonschema:"Latitude coordinate"`
	Lon    float64 `json:"lon" jsonschema:"Longitude coordinate"`
	APIKey string  `json:"api_key,omitempty" jsonschema:"Google Maps API key; defaults to GOOGLE_MAPS_API_KEY when omitted"`
}

// Legacy tools take keyword arguments only, with no key override.
type legacyGeocodeKwargs struct {
	Address string `json:"address" jsonschema:"The street address to geocode"`
}

type legacyReverseKwargs struct {
	Lat float64 `json:"lat" jsonschema:"Latitude coordinate"`
	Lon float64 `json:"lon" jsonschema:"Longitude coordinate"`
}

const apiKeyParam = "api_key"

func geocodeFunc(g domain.Geocoder) func(context.Context, GeocodeArgs) (domain.GeocodeResult, error) {
	return func(ctx context.Context, in GeocodeArgs) (domain.GeocodeResult, error) {
		return g.Forward(ctx, in.Address, in.APIKey), nil
	}
}

func reverseGeocodeFunc(g domain.Geocoder) func(context.Context, ReverseGeocodeArgs) (domain.GeocodeResult, error) {
	return func(ctx context.Context, in ReverseGeocodeArgs) (domain.GeocodeResult, error) {
		return g.Reverse(ctx, in.Lat, in.Lon, in.APIKey), nil
	}
}

// decodeParams fills out from params. Unknown keys are rejected and every
// field not named in optional must be present.
func decodeParams(params map[string]any, out any, optional ...string) error {
	if params == nil {
		params = map[string]any{}
	}

	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Metadata:         &md,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}

	var missing []string
	for _, name := range md.Unset {
		if !slices.Contains(optional, name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("%w: missing %s", ErrInvalidParams, strings.Join(missing, ", "))
	}
	return nil
}

// structParams renders typed args as the generic map used for auditing.
func structParams(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}
