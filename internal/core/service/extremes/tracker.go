package extremes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/achaudhary7/SilverInfo-sub003/internal/core/domain"
	"github.com/achaudhary7/SilverInfo-sub003/internal/core/port"
)

// DateLayout keys extremes and close records by calendar date.
const DateLayout = "2006-01-02"

// Tracker maintains the open/high/low record for the current calendar
// day. "Today" is computed in the market's local timezone, not UTC:
// the reset transition at midnight is a market-local event.
//
// The read-modify-write against the store is not atomic across
// instances; concurrent writers race and the last write wins. The
// client-side reconciliation view carries the monotonicity guarantee
// that matters to the user.
type Tracker struct {
	store port.ExtremesStore
	loc   *time.Location
}

func New(store port.ExtremesStore, loc *time.Location) *Tracker {
	return &Tracker{store: store, loc: loc}
}

// Update folds one computed price into the day's record and returns
// the stored result. A record from a different date is fully replaced,
// never merged, so yesterday's high cannot leak across the boundary.
func (t *Tracker) Update(ctx context.Context, instrument domain.Instrument, price decimal.Decimal, now time.Time) (domain.DailyExtremes, error) {
	localNow := now.In(t.loc)
	today := localNow.Format(DateLayout)

	rec, err := t.store.LoadExtremes(ctx, instrument)
	switch {
	case errors.Is(err, domain.ErrNoData):
		rec = newDay(instrument, today, price, localNow)
	case err != nil:
		return domain.DailyExtremes{}, fmt.Errorf("%w: load extremes: %v", domain.ErrStorageFailure, err)
	case rec.Date != today:
		rec = newDay(instrument, today, price, localNow)
	default:
		if price.GreaterThan(rec.High) {
			rec.High = price
			rec.HighAt = localNow
		}
		if price.LessThan(rec.Low) {
			rec.Low = price
			rec.LowAt = localNow
		}
		rec.LastUpdated = localNow
	}

	if err := t.store.SaveExtremes(ctx, rec); err != nil {
		return domain.DailyExtremes{}, fmt.Errorf("%w: save extremes: %v", domain.ErrStorageFailure, err)
	}
	return rec, nil
}

// Today returns the stored record for the current local day, or
// domain.ErrNoData when the store holds nothing for today.
func (t *Tracker) Today(ctx context.Context, instrument domain.Instrument, now time.Time) (domain.DailyExtremes, error) {
	rec, err := t.store.LoadExtremes(ctx, instrument)
	if err != nil {
		return domain.DailyExtremes{}, err
	}
	if rec.Date != now.In(t.loc).Format(DateLayout) {
		return domain.DailyExtremes{}, domain.ErrNoData
	}
	return rec, nil
}

// Location exposes the configured market timezone.
func (t *Tracker) Location() *time.Location {
	return t.loc
}

func newDay(instrument domain.Instrument, date string, price decimal.Decimal, now time.Time) domain.DailyExtremes {
	return domain.DailyExtremes{
		Instrument:  instrument,
		Date:        date,
		Open:        price,
		High:        price,
		HighAt:      now,
		Low:         price,
		LowAt:       now,
		LastUpdated: now,
	}
}
