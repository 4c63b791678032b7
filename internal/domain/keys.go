package domain

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
)

// APIKeyEnv is the environment variable consulted when no explicit key is given.
const APIKeyEnv = "GOOGLE_MAPS_API_KEY"

// MissingKeyDetail is the failure text attached to ErrMissingAPIKey results.
const MissingKeyDetail = APIKeyEnv + " env var not set and no API key provided"

var errNoAPIKey = errors.New(APIKeyEnv + " not set and no API key source configured")

// KeyOrigin records which link of the resolution chain produced a key.
type KeyOrigin string

const (
	KeyOriginNone     KeyOrigin = ""
	KeyOriginExplicit KeyOrigin = "explicit"
	KeyOriginEnv      KeyOrigin = "env"
	KeyOriginManaged  KeyOrigin = "managed"
)

// KeySource supplies an API key from outside the process environment.
type KeySource interface {
	// LookupKey returns "" and a nil error when the source holds no key.
	LookupKey(ctx context.Context) (string, error)
}

// KeyResolver applies the key precedence: explicit argument, then the
// environment, then each configured source in order.
type KeyResolver struct {
	sources []KeySource
	logger  *slog.Logger
}

// NewKeyResolver creates a resolver. Sources are consulted after the
// environment and may be empty.
func NewKeyResolver(logger *slog.Logger, sources ...KeySource) *KeyResolver {
	return &KeyResolver{sources: sources, logger: logger}
}

// Resolve returns the first non-blank key and where it came from. An empty
// key with KeyOriginNone means nothing resolved. The environment is read on
// every call.
func (r *KeyResolver) Resolve(ctx context.Context, explicit string) (string, KeyOrigin) {
	if k := strings.TrimSpace(explicit); k != "" {
		return k, KeyOriginExplicit
	}
	if k := strings.TrimSpace(os.Getenv(APIKeyEnv)); k != "" {
		return k, KeyOriginEnv
	}
	for _, src := range r.sources {
		k, err := src.LookupKey(ctx)
		if err != nil {
			r.logger.Warn("api key source lookup failed", "error", err)
			continue
		}
		if k = strings.TrimSpace(k); k != "" {
			return k, KeyOriginManaged
		}
	}
	return "", KeyOriginNone
}

// CheckReadiness reports whether any key is currently resolvable.
func (r *KeyResolver) CheckReadiness(ctx context.Context) error {
	if _, origin := r.Resolve(ctx, ""); origin == KeyOriginNone {
		return errNoAPIKey
	}
	return nil
}
