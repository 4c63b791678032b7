package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultGeocodeURL is the Google Maps Geocoding JSON endpoint.
const DefaultGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Tool registration conventions accepted by TOOL_CONVENTION.
const (
	ConventionAuto        = "auto"
	ConventionDeclarative = "declarative"
	ConventionLegacy      = "legacy"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Google Maps geocoding configuration. MapsAPIKey is only a startup
	// snapshot; the key resolver re-reads GOOGLE_MAPS_API_KEY on every call.
	MapsAPIKey         string
	MapsAPIKeyResource string
	GeocodeBaseURL     string
	GeocodeTimeout     time.Duration
	GeocodeCacheSize   int

	ToolConvention string

	// Tool invocation audit trail.
	AuditEnabled    bool
	KafkaBrokers    []string
	KafkaAuditTopic string

	// Agent model configuration.
	AgentModel   string
	GoogleAPIKey string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	geocodeTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("GEOCODE_TIMEOUT", "10s"))
	if err != nil || geocodeTimeout <= 0 {
		return nil, errors.New("invalid GEOCODE_TIMEOUT")
	}

	cacheSize, err := parseCacheSize()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		MapsAPIKey:         os.Getenv("GOOGLE_MAPS_API_KEY"),
		MapsAPIKeyResource: os.Getenv("GOOGLE_MAPS_API_KEY_RESOURCE"),
		GeocodeBaseURL:     sharedcfg.EnvOrDefault("GEOCODE_BASE_URL", DefaultGeocodeURL),
		GeocodeTimeout:     geocodeTimeout,
		GeocodeCacheSize:   cacheSize,

		ToolConvention: strings.ToLower(sharedcfg.EnvOrDefault("TOOL_CONVENTION", ConventionAuto)),

		AuditEnabled:    os.Getenv("AUDIT_ENABLED") == "true",
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaAuditTopic: sharedcfg.EnvOrDefault("KAFKA_AUDIT_TOPIC", "geocode-tool-invocations"),

		AgentModel:   sharedcfg.EnvOrDefault("AGENT_MODEL", "gemini-2.5-flash"),
		GoogleAPIKey: os.Getenv("GOOGLE_API_KEY"),
	}

	switch cfg.ToolConvention {
	case ConventionAuto, ConventionDeclarative, ConventionLegacy:
	default:
		return nil, fmt.Errorf("invalid TOOL_CONVENTION %q: want auto, declarative, or legacy", cfg.ToolConvention)
	}
	if cfg.MapsAPIKeyResource != "" && !strings.HasPrefix(cfg.MapsAPIKeyResource, "projects/") {
		return nil, errors.New("GOOGLE_MAPS_API_KEY_RESOURCE must look like projects/<project>/locations/global/keys/<id>")
	}
	if cfg.AuditEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("AUDIT_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaAuditTopic == "" {
			return nil, errors.New("KAFKA_AUDIT_TOPIC is required when AUDIT_ENABLED is true")
		}
	}

	return cfg, nil
}

// parseCacheSize reads GEOCODE_CACHE_SIZE. Zero disables caching.
func parseCacheSize() (int, error) {
	s := os.Getenv("GEOCODE_CACHE_SIZE")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid GEOCODE_CACHE_SIZE")
	}
	return n, nil
}
