package googlemaps

import (
	"context"
	"fmt"
	"sync"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	"google.golang.org/api/option"
)

// ManagedKeySource reads the key string of a Google Cloud API key resource
// using Application Default Credentials. A successful lookup is memoized for
// the life of the process; failures are retried on the next call.
type ManagedKeySource struct {
	resource string
	fetch    func(ctx context.Context, name string) (string, error)

	mu  sync.Mutex
	key string
}

// NewManagedKeySource creates a source for a key resource named like
// projects/<project>/locations/global/keys/<id>.
func NewManagedKeySource(resource string, opts ...option.ClientOption) *ManagedKeySource {
	return &ManagedKeySource{
		resource: resource,
		fetch: func(ctx context.Context, name string) (string, error) {
			return fetchKeyString(ctx, name, opts...)
		},
	}
}

// LookupKey implements domain.KeySource.
func (s *ManagedKeySource) LookupKey(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != "" {
		return s.key, nil
	}
	key, err := s.fetch(ctx, s.resource)
	if err != nil {
		return "", fmt.Errorf("managed api key %s: %w", s.resource, err)
	}
	s.key = key
	return key, nil
}

func fetchKeyString(ctx context.Context, name string, opts ...option.ClientOption) (string, error) {
	client, err := apikeys.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("creating apikeys client: %w", err)
	}
	defer client.Close()

	// GetKey redacts the secret; GetKeyString is the only call that returns it.
	resp, err := client.GetKeyString(ctx, &apikeyspb.GetKeyStringRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("getting key string: %w", err)
	}
	return resp.GetKeyString(), nil
}
