package tools

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/resource-finder-geocode/internal/domain"
	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"
)

// Mode selects the registration convention.
type Mode string

const (
	ModeAuto        Mode = "auto"
	ModeDeclarative Mode = "declarative"
	ModeLegacy      Mode = "legacy"
)

// declarativeSupported runs the capability probe at most once per process.
var declarativeSupported = sync.OnceValue(probeDeclarative)

type probeArgs struct {
	Probe string `json:"probe"`
}

// probeDeclarative reports whether the agent framework can build a
// declarative tool in this process.
func probeDeclarative() bool {
	_, err := functiontool.New(functiontool.Config{
		Name:        "capability_probe",
		Description: "Reports whether declarative tools can be registered.",
	}, func(_ tool.Context, in probeArgs) (probeArgs, error) {
		return in, nil
	})
	return err == nil
}

type options struct {
	mode     Mode
	probe    func() bool
	observer Observer
	logger   *slog.Logger

	// buildDeclarative is swapped in tests to force a registration failure.
	buildDeclarative func(domain.Geocoder, Observer) ([]GeoTool, error)
}

// Option configures GetGeocodingTools.
type Option func(*options)

// WithMode forces a convention. ModeAuto (the default) uses the probe.
func WithMode(m Mode) Option {
	return func(o *options) { o.mode = m }
}

// WithProbe replaces the process-wide capability probe.
func WithProbe(p func() bool) Option {
	return func(o *options) { o.probe = p }
}

// WithObserver wraps every invocation of the returned tools.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithLogger sets the logger used to report a fallback to legacy tools.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// GetGeocodingTools returns the forward and reverse geocoding tools, in that
// order, using a single convention. If declarative registration is selected
// but fails, the legacy tools are returned instead.
func GetGeocodingTools(g domain.Geocoder, opts ...Option) []GeoTool {
	o := options{
		mode:             ModeAuto,
		probe:            declarativeSupported,
		logger:           slog.Default(),
		buildDeclarative: declarativeTools,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.observer = orNop(o.observer)

	useDeclarative := false
	switch o.mode {
	case ModeDeclarative:
		useDeclarative = true
	case ModeLegacy:
	default:
		useDeclarative = o.probe()
	}

	if useDeclarative {
		tools, err := o.buildDeclarative(g, o.observer)
		if err == nil {
			return tools
		}
		o.logger.Warn("could not create declarative geocoding tools, using legacy tools", "error", err)
	}
	return legacyTools(g, o.observer)
}

func legacyTools(g domain.Geocoder, obs Observer) []GeoTool {
	return []GeoTool{
		NewLegacyGeocodeTool(g, obs),
		NewLegacyReverseGeocodeTool(g, obs),
	}
}

func declarativeTools(g domain.Geocoder, obs Observer) ([]GeoTool, error) {
	fwd, err := NewDeclarativeGeocodeTool(g, obs)
	if err != nil {
		return nil, err
	}
	rev, err := NewDeclarativeReverseGeocodeTool(g, obs)
	if err != nil {
		return nil, err
	}
	return []GeoTool{fwd, rev}, nil
}

// adkProvider is implemented by tools that already carry an ADK registration.
type adkProvider interface {
	ADK() tool.Tool
}

// schemaProvider is implemented by tools that describe their own params.
type schemaProvider interface {
	ParamsSchema() (*jsonschema.Schema, error)
}

// AsADKTools converts GeoTools into ADK tools for an llmagent. Other tools
// are registered under their own params schema, or a free-form object when
// they have none, and forward to Invoke.
func AsADKTools(geoTools []GeoTool) ([]tool.Tool, error) {
	out := make([]tool.Tool, 0, len(geoTools))
	for _, gt := range geoTools {
		if p, ok := gt.(adkProvider); ok {
			out = append(out, p.ADK())
			continue
		}
		var schema *jsonschema.Schema
		if p, ok := gt.(schemaProvider); ok {
			var err error
			if schema, err = p.ParamsSchema(); err != nil {
				return nil, fmt.Errorf("infer params schema for %s: %w", gt.Name(), err)
			}
		}
		wrapped, err := functiontool.New(functiontool.Config{
			Name:        gt.Name(),
			Description: gt.Description(),
			InputSchema: schema,
		}, func(ctx tool.Context, args map[string]any) (domain.GeocodeResult, error) {
			return gt.Invoke(ctx, args)
		})
		if err != nil {
			return nil, fmt.Errorf("wrap legacy tool %s: %w", gt.Name(), err)
		}
		out = append(out, wrapped)
	}
	return out, nil
}
