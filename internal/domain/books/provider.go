package books

import (
	"context"
	"time"
)

// Provider is an external book catalog. Implementations return
// ErrCatalogBookNotFound for unknown ids.
type Provider interface {
	Find(ctx context.Context, externalID string) (*Metadata, error)
	Search(ctx context.Context, query string, limit int) ([]Metadata, error)
}

type SearchCache interface {
	Get(key string) ([]Metadata, bool)
	Set(key string, results []Metadata, ttl time.Duration)
}

type noopCache struct{}

func (noopCache) Get(string) ([]Metadata, bool) {
	return nil, false
}

func (noopCache) Set(string, []Metadata, time.Duration) {}
