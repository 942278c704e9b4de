package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/achaudhary7/SilverInfo-sub003/internal/core/domain"
)

// Store persists today's extremes and the daily close history. One row
// per instrument for extremes (replaced on day rollover), one row per
// instrument per date for closes.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Schema for reference; applied by migration tooling outside this binary.
//
//	CREATE TABLE IF NOT EXISTS daily_extremes (
//	    instrument   TEXT PRIMARY KEY,
//	    date         TEXT NOT NULL,
//	    open_price   NUMERIC NOT NULL,
//	    high         NUMERIC NOT NULL,
//	    high_at      TIMESTAMPTZ NOT NULL,
//	    low          NUMERIC NOT NULL,
//	    low_at       TIMESTAMPTZ NOT NULL,
//	    last_updated TIMESTAMPTZ NOT NULL
//	);
//
//	CREATE TABLE IF NOT EXISTS daily_closes (
//	    instrument      TEXT NOT NULL,
//	    date            TEXT NOT NULL,
//	    per_gram        NUMERIC NOT NULL,
//	    per_kilogram    NUMERIC NOT NULL,
//	    benchmark_quote NUMERIC NOT NULL,
//	    exchange_rate   NUMERIC NOT NULL,
//	    source          TEXT NOT NULL,
//	    ts              TIMESTAMPTZ NOT NULL,
//	    PRIMARY KEY (instrument, date)
//	);

func (s *Store) LoadExtremes(ctx context.Context, instrument domain.Instrument) (domain.DailyExtremes, error) {
	const query = `
		SELECT date, open_price, high, high_at, low, low_at, last_updated
		FROM daily_extremes
		WHERE instrument = $1`

	var (
		rec                 domain.DailyExtremes
		open, high, low     string
		highAt, lowAt, last time.Time
	)
	rec.Instrument = instrument

	err := s.db.QueryRowContext(ctx, query, string(instrument)).
		Scan(&rec.Date, &open, &high, &highAt, &low, &lowAt, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DailyExtremes{}, domain.ErrNoData
	}
	if err != nil {
		return domain.DailyExtremes{}, fmt.Errorf("failed to load extremes: %w", err)
	}

	if rec.Open, err = decimal.NewFromString(open); err != nil {
		return domain.DailyExtremes{}, fmt.Errorf("failed to parse open price: %w", err)
	}
	if rec.High, err = decimal.NewFromString(high); err != nil {
		return domain.DailyExtremes{}, fmt.Errorf("failed to parse high: %w", err)
	}
	if rec.Low, err = decimal.NewFromString(low); err != nil {
		return domain.DailyExtremes{}, fmt.Errorf("failed to parse low: %w", err)
	}
	rec.HighAt = highAt
	rec.LowAt = lowAt
	rec.LastUpdated = last

	return rec, nil
}

func (s *Store) SaveExtremes(ctx context.Context, rec domain.DailyExtremes) error {
	const query = `
		INSERT INTO daily_extremes (instrument, date, open_price, high, high_at, low, low_at, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (instrument) DO UPDATE SET
			date = EXCLUDED.date,
			open_price = EXCLUDED.open_price,
			high = EXCLUDED.high,
			high_at = EXCLUDED.high_at,
			low = EXCLUDED.low,
			low_at = EXCLUDED.low_at,
			last_updated = EXCLUDED.last_updated`

	_, err := s.db.ExecContext(ctx, query,
		string(rec.Instrument), rec.Date,
		rec.Open.String(), rec.High.String(), rec.HighAt,
		rec.Low.String(), rec.LowAt, rec.LastUpdated)
	if err != nil {
		return fmt.Errorf("failed to save extremes: %w", err)
	}
	return nil
}

func (s *Store) UpsertClose(ctx context.Context, rec domain.DailyClose) error {
	const query = `
		INSERT INTO daily_closes (instrument, date, per_gram, per_kilogram, benchmark_quote, exchange_rate, source, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (instrument, date) DO UPDATE SET
			per_gram = EXCLUDED.per_gram,
			per_kilogram = EXCLUDED.per_kilogram,
			benchmark_quote = EXCLUDED.benchmark_quote,
			exchange_rate = EXCLUDED.exchange_rate,
			source = EXCLUDED.source,
			ts = EXCLUDED.ts`

	_, err := s.db.ExecContext(ctx, query,
		string(rec.Instrument), rec.Date,
		rec.PerGram.String(), rec.PerKilogram.String(),
		rec.BenchmarkQuote.String(), rec.ExchangeRate.String(),
		rec.Source, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to upsert close: %w", err)
	}
	return nil
}

func (s *Store) GetClose(ctx context.Context, instrument domain.Instrument, date string) (domain.DailyClose, error) {
	const query = `
		SELECT date, per_gram, per_kilogram, benchmark_quote, exchange_rate, source, ts
		FROM daily_closes
		WHERE instrument = $1 AND date = $2`

	return s.scanClose(s.db.QueryRowContext(ctx, query, string(instrument), date), instrument)
}

func (s *Store) LatestCloseBefore(ctx context.Context, instrument domain.Instrument, date string) (domain.DailyClose, error) {
	const query = `
		SELECT date, per_gram, per_kilogram, benchmark_quote, exchange_rate, source, ts
		FROM daily_closes
		WHERE instrument = $1 AND date < $2
		ORDER BY date DESC
		LIMIT 1`

	return s.scanClose(s.db.QueryRowContext(ctx, query, string(instrument), date), instrument)
}

func (s *Store) scanClose(row *sql.Row, instrument domain.Instrument) (domain.DailyClose, error) {
	var rec domain.DailyClose
	var perGram, perKg, quote, rate string
	rec.Instrument = instrument

	err := row.Scan(&rec.Date, &perGram, &perKg, &quote, &rate, &rec.Source, &rec.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DailyClose{}, domain.ErrNoData
	}
	if err != nil {
		return domain.DailyClose{}, fmt.Errorf("failed to load close: %w", err)
	}

	if rec.PerGram, err = decimal.NewFromString(perGram); err != nil {
		return domain.DailyClose{}, fmt.Errorf("failed to parse per_gram: %w", err)
	}
	if rec.PerKilogram, err = decimal.NewFromString(perKg); err != nil {
		return domain.DailyClose{}, fmt.Errorf("failed to parse per_kilogram: %w", err)
	}
	if rec.BenchmarkQuote, err = decimal.NewFromString(quote); err != nil {
		return domain.DailyClose{}, fmt.Errorf("failed to parse benchmark_quote: %w", err)
	}
	if rec.ExchangeRate, err = decimal.NewFromString(rate); err != nil {
		return domain.DailyClose{}, fmt.Errorf("failed to parse exchange_rate: %w", err)
	}

	return rec, nil
}
