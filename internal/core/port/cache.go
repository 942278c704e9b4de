package port

import (
	"context"
	"time"

	"github.com/achaudhary7/SilverInfo-sub003/internal/core/domain"
)

// ComputeFunc produces a fresh derived price on a cache miss.
type ComputeFunc func(ctx context.Context) (domain.DerivedPrice, error)

// ResultCache is the short-TTL cache in front of the fetch+formula
// pipeline. Errors from compute are returned, never stored, so a
// failed computation is retried on the very next call.
type ResultCache interface {
	// Return the cached value for key, or compute, store and return it
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc) (domain.DerivedPrice, error)

	// Overwrite the entry for key (used by the scheduled refresh path)
	Set(ctx context.Context, key string, value domain.DerivedPrice, ttl time.Duration) error

	// Health check
	Ping(ctx context.Context) error
}
