package tools

import (
	"context"

	"github.com/couchcryptid/resource-finder-geocode/internal/domain"
	"github.com/google/jsonschema-go/jsonschema"
)

// LegacyTool is a callable object: a name, a description and a keyword-only
// call operator mirroring the underlying operation's parameters.
type LegacyTool struct {
	name        string
	description string
	call        func(ctx context.Context, kwargs map[string]any) (domain.GeocodeResult, error)
	schema      func() (*jsonschema.Schema, error)
	observer    Observer
}

func (t *LegacyTool) Name() string           { return t.name }
func (t *LegacyTool) Description() string    { return t.description }
func (t *LegacyTool) Convention() Convention { return ConventionLegacy }

// ParamsSchema describes the keyword arguments Call accepts.
func (t *LegacyTool) ParamsSchema() (*jsonschema.Schema, error) {
	return t.schema()
}

// Call invokes the tool with keyword arguments. Unknown or missing keywords
// fail with ErrInvalidParams.
func (t *LegacyTool) Call(ctx context.Context, kwargs map[string]any) (domain.GeocodeResult, error) {
	return t.observer.ObserveInvocation(ctx, t.name, ConventionLegacy, kwargs, func() (domain.GeocodeResult, error) {
		return t.call(ctx, kwargs)
	})
}

// Invoke implements GeoTool.
func (t *LegacyTool) Invoke(ctx context.Context, params map[string]any) (domain.GeocodeResult, error) {
	return t.Call(ctx, params)
}

// NewLegacyGeocodeTool wraps g.Forward as a legacy "maps_geocode" tool taking
// an "address" keyword.
func NewLegacyGeocodeTool(g domain.Geocoder, observer Observer) *LegacyTool {
	return &LegacyTool{
		name:        GeocodeToolName,
		description: GeocodeToolDescription,
		observer:    orNop(observer),
		schema: func() (*jsonschema.Schema, error) {
			return jsonschema.For[legacyGeocodeKwargs](nil)
		},
		call: func(ctx context.Context, kwargs map[string]any) (domain.GeocodeResult, error) {
			var in legacyGeocodeKwargs
			if err := decodeParams(kwargs, &in); err != nil {
				return domain.GeocodeResult{}, err
			}
			return g.Forward(ctx, in.Address, ""), nil
		},
	}
}

// NewLegacyReverseGeocodeTool wraps g.Reverse as a legacy
// "maps_reverse_geocode" tool taking "lat" and "lon" keywords.
func NewLegacyReverseGeocodeTool(g domain.Geocoder, observer Observer) *LegacyTool {
	return &LegacyTool{
		name:        ReverseGeocodeToolName,
		description: ReverseGeocodeToolDescription,
		observer:    orNop(observer),
		schema: func() (*jsonschema.Schema, error) {
			return jsonschema.For[legacyReverseKwargs](nil)
		},
		call: func(ctx context.Context, kwargs map[string]any) (domain.GeocodeResult, error) {
			var in legacyReverseKwargs
			if err := decodeParams(kwargs, &in); err != nil {
				return domain.GeocodeResult{}, err
			}
			return g.Reverse(ctx, in.Lat, in.Lon, ""), nil
		},
	}
}
