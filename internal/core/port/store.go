package port

import (
	"context"

	"github.com/achaudhary7/SilverInfo-sub003/internal/core/domain"
)

// ExtremesStore persists the single "today's extremes" record per
// instrument. It must survive process restarts: the compute layer runs
// as short-lived instances with no shared memory, and an in-memory-only
// record would silently reset the day's high/low on every cold start.
type ExtremesStore interface {
	// Load the stored record, domain.ErrNoData when absent
	LoadExtremes(ctx context.Context, instrument domain.Instrument) (domain.DailyExtremes, error)

	// Replace the stored record (last write wins across instances)
	SaveExtremes(ctx context.Context, rec domain.DailyExtremes) error
}

// CloseStore persists one close row per instrument per calendar date.
type CloseStore interface {
	// Insert or update the row for rec.Date
	UpsertClose(ctx context.Context, rec domain.DailyClose) error

	// Fetch the row for a date, domain.ErrNoData when absent
	GetClose(ctx context.Context, instrument domain.Instrument, date string) (domain.DailyClose, error)

	// Fetch the most recent row strictly before a date, domain.ErrNoData when absent
	LatestCloseBefore(ctx context.Context, instrument domain.Instrument, date string) (domain.DailyClose, error)
}
