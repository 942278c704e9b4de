package port

import (
	"context"

	"github.com/achaudhary7/SilverInfo-sub003/internal/core/domain"
)

type PriceService interface {
	// Get the current retail price, served from cache within one TTL window
	GetPrice(ctx context.Context, instrument domain.Instrument) (*domain.PriceSnapshot, error)

	// Recompute now and overwrite the cache entry (scheduled invocations)
	Refresh(ctx context.Context, instrument domain.Instrument) (*domain.PriceSnapshot, error)

	// Cache TTL in seconds, exposed so the HTTP layer can emit a
	// matching Cache-Control max-age
	TTLSeconds() int
}
