package tools

import (
	"context"
	"fmt"

	"github.com/couchcryptid/resource-finder-geocode/internal/domain"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"
)

// DeclarativeTool is registered from a name, a description and a function
// reference; In is the parameter schema.
type DeclarativeTool[In any] struct {
	name        string
	description string
	fn          func(context.Context, In) (domain.GeocodeResult, error)
	optional    []string
	observer    Observer
	adk         tool.Tool
}

// NewDeclarativeTool registers fn with ADK's functiontool. Parameters named
// in optional may be omitted by callers of Invoke.
func NewDeclarativeTool[In any](
	name, description string,
	fn func(context.Context, In) (domain.GeocodeResult, error),
	observer Observer,
	optional ...string,
) (*DeclarativeTool[In], error) {
	t := &DeclarativeTool[In]{
		name:        name,
		description: description,
		fn:          fn,
		optional:    optional,
		observer:    orNop(observer),
	}

	adkTool, err := functiontool.New(functiontool.Config{
		Name:        name,
		Description: description,
	}, t.handle)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	t.adk = adkTool
	return t, nil
}

func (t *DeclarativeTool[In]) Name() string           { return t.name }
func (t *DeclarativeTool[In]) Description() string    { return t.description }
func (t *DeclarativeTool[In]) Convention() Convention { return ConventionDeclarative }

// ADK returns the functiontool registration for an llmagent tool list.
func (t *DeclarativeTool[In]) ADK() tool.Tool { return t.adk }

// Invoke decodes params into In and calls the function directly.
func (t *DeclarativeTool[In]) Invoke(ctx context.Context, params map[string]any) (domain.GeocodeResult, error) {
	return t.observer.ObserveInvocation(ctx, t.name, ConventionDeclarative, params, func() (domain.GeocodeResult, error) {
		var in In
		if err := decodeParams(params, &in, t.optional...); err != nil {
			return domain.GeocodeResult{}, err
		}
		return t.fn(ctx, in)
	})
}

// handle is the path taken when the agent framework calls the tool; ADK has
// already decoded and validated the arguments against the schema.
func (t *DeclarativeTool[In]) handle(ctx tool.Context, in In) (domain.GeocodeResult, error) {
	return t.observer.ObserveInvocation(ctx, t.name, ConventionDeclarative, structParams(in), func() (domain.GeocodeResult, error) {
		return t.fn(ctx, in)
	})
}

// NewDeclarativeGeocodeTool registers g.Forward as "maps_geocode".
func NewDeclarativeGeocodeTool(g domain.Geocoder, observer Observer) (*DeclarativeTool[GeocodeArgs], error) {
	return NewDeclarativeTool(GeocodeToolName, GeocodeToolDescription, geocodeFunc(g), observer, apiKeyParam)
}

// NewDeclarativeReverseGeocodeTool registers g.Reverse as "maps_reverse_geocode".
func NewDeclarativeReverseGeocodeTool(g domain.Geocoder, observer Observer) (*DeclarativeTool[ReverseGeocodeArgs], error) {
	return NewDeclarativeTool(ReverseGeocodeToolName, ReverseGeocodeToolDescription, reverseGeocodeFunc(g), observer, apiKeyParam)
}
