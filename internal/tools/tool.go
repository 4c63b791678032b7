package tools

import (
	"context"
	"errors"

	"github.com/couchcryptid/resource-finder-geocode/internal/domain"
)

// Tool names and descriptions shown to the model.
const (
	GeocodeToolName        = "maps_geocode"
	GeocodeToolDescription = "Convert a street address to latitude/longitude using Google Maps Geocoding API."

	ReverseGeocodeToolName        = "maps_reverse_geocode"
	ReverseGeocodeToolDescription = "Convert latitude/longitude coordinates to a street address using Google Maps Geocoding API."
)

// Convention names how a tool is presented to the hosting agent framework.
type Convention string

const (
	ConventionLegacy      Convention = "legacy"
	ConventionDeclarative Convention = "declarative"
)

// ErrInvalidParams is returned by Invoke when params don't match the tool's signature.
var ErrInvalidParams = errors.New("invalid tool parameters")

// GeoTool is a geocoding operation callable by an agent.
type GeoTool interface {
	Name() string
	Description() string
	Convention() Convention

	// Invoke runs the tool. Lookup failures are reported in the result;
	// the error is reserved for params that don't fit the signature.
	Invoke(ctx context.Context, params map[string]any) (domain.GeocodeResult, error)
}

// Find returns the tool with the given name.
func Find(tools []GeoTool, name string) (GeoTool, bool) {
	for _, t := range tools {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}
