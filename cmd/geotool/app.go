package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/resource-finder-geocode/internal/adapter/googlemaps"
	kafkaadapter "github.com/couchcryptid/resource-finder-geocode/internal/adapter/kafka"
	"github.com/couchcryptid/resource-finder-geocode/internal/config"
	"github.com/couchcryptid/resource-finder-geocode/internal/domain"
	"github.com/couchcryptid/resource-finder-geocode/internal/observability"
	"github.com/couchcryptid/resource-finder-geocode/internal/tools"
)

// app holds the wired components shared by every subcommand.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	keys     *domain.KeyResolver
	geocoder domain.Geocoder
	tools    []tools.GeoTool
	audit    *kafkaadapter.AuditWriter
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	var sources []domain.KeySource
	if cfg.MapsAPIKeyResource != "" {
		sources = append(sources, googlemaps.NewManagedKeySource(cfg.MapsAPIKeyResource))
		logger.Info("managed api key source enabled", "resource", cfg.MapsAPIKeyResource)
	}
	keys := domain.NewKeyResolver(logger, sources...)
	if _, origin := keys.Resolve(ctx, ""); origin == domain.KeyOriginNone {
		logger.Warn("no Google Maps API key available; lookups will fail with missing_api_key")
	}

	var geocoder domain.Geocoder = googlemaps.NewClient(cfg.GeocodeBaseURL, cfg.GeocodeTimeout, keys, metrics, logger)
	if cfg.GeocodeCacheSize > 0 {
		cached, err := googlemaps.NewCachedGeocoder(geocoder, cfg.GeocodeCacheSize, metrics)
		if err != nil {
			return nil, err
		}
		geocoder = cached
		logger.Info("geocode cache enabled", "cache_size", cfg.GeocodeCacheSize)
	}

	a := &app{cfg: cfg, logger: logger, keys: keys, geocoder: geocoder}

	var sink tools.AuditSink
	if cfg.AuditEnabled {
		a.audit = kafkaadapter.NewAuditWriter(cfg.KafkaBrokers, cfg.KafkaAuditTopic, logger)
		sink = a.audit
		logger.Info("tool audit enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaAuditTopic)
	}

	a.tools = tools.GetGeocodingTools(geocoder,
		tools.WithMode(tools.Mode(cfg.ToolConvention)),
		tools.WithObserver(tools.NewRecorder(metrics, sink, logger)),
		tools.WithLogger(logger),
	)
	logger.Debug("geocoding tools registered", "convention", a.tools[0].Convention())

	return a, nil
}

func (a *app) Close() {
	if a.audit == nil {
		return
	}
	if err := a.audit.Close(); err != nil {
		a.logger.Error("kafka audit writer close error", "error", err)
	}
}
