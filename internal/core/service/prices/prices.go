package prices

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/achaudhary7/SilverInfo-sub003/internal/core/domain"
	"github.com/achaudhary7/SilverInfo-sub003/internal/core/port"
	"github.com/achaudhary7/SilverInfo-sub003/internal/core/service/extremes"
	"github.com/achaudhary7/SilverInfo-sub003/internal/core/service/formula"
)

// PriceService runs the derived-price pipeline: result cache in front
// of fetch+formula, then best-effort enrichment from the durable
// stores. Fetch and formula failures propagate immediately so the HTTP
// layer can answer 503 without holding the connection; extremes and
// close-history failures are logged and degrade the response instead
// of failing it.
type PriceService struct {
	cache   port.ResultCache
	fetcher port.QuoteFetcher
	engine  *formula.Engine
	tracker *extremes.Tracker
	closes  port.CloseStore
	ttl     time.Duration
	base    string
	target  string
	group   singleflight.Group
	now     func() time.Time
}

func NewPriceService(
	cache port.ResultCache,
	fetcher port.QuoteFetcher,
	engine *formula.Engine,
	tracker *extremes.Tracker,
	closes port.CloseStore,
	ttlSeconds int,
	baseCurrency, targetCurrency string,
) *PriceService {
	return &PriceService{
		cache:   cache,
		fetcher: fetcher,
		engine:  engine,
		tracker: tracker,
		closes:  closes,
		ttl:     time.Duration(ttlSeconds) * time.Second,
		base:    baseCurrency,
		target:  targetCurrency,
		now:     time.Now,
	}
}

func (s *PriceService) GetPrice(ctx context.Context, instrument domain.Instrument) (*domain.PriceSnapshot, error) {
	if _, ok := domain.QuoteBands[instrument]; !ok {
		return nil, fmt.Errorf("%w: unsupported instrument %q", domain.ErrInvalidInput, instrument)
	}

	key := s.cacheKey(instrument)

	// Collapse concurrent in-process misses onto one computation; the
	// cache itself makes independent instances converge within one TTL.
	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.cache.GetOrCompute(ctx, key, s.ttl, func(ctx context.Context) (domain.DerivedPrice, error) {
			return s.compute(ctx, instrument)
		})
	})
	if err != nil {
		return nil, err
	}
	price := result.(domain.DerivedPrice)

	return s.enrich(ctx, price), nil
}

// Refresh recomputes immediately and overwrites the cache entry. Used
// by scheduled background invocations so readers inside the TTL window
// still pick up the new value.
func (s *PriceService) Refresh(ctx context.Context, instrument domain.Instrument) (*domain.PriceSnapshot, error) {
	if _, ok := domain.QuoteBands[instrument]; !ok {
		return nil, fmt.Errorf("%w: unsupported instrument %q", domain.ErrInvalidInput, instrument)
	}

	price, err := s.compute(ctx, instrument)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, s.cacheKey(instrument), price, s.ttl); err != nil {
		slog.Warn("Failed to overwrite cache entry on refresh", "instrument", instrument, "error", err)
	}

	return s.enrich(ctx, price), nil
}

func (s *PriceService) TTLSeconds() int {
	return int(s.ttl / time.Second)
}

func (s *PriceService) cacheKey(instrument domain.Instrument) string {
	return fmt.Sprintf("price:%s:%s:v1", instrument, s.target)
}

// compute is the cache-miss path: fetch quote and rate, run the markup
// formula, persist today's close row.
func (s *PriceService) compute(ctx context.Context, instrument domain.Instrument) (domain.DerivedPrice, error) {
	quote, err := s.fetcher.FetchQuote(ctx, instrument)
	if err != nil {
		return domain.DerivedPrice{}, err
	}
	rate, err := s.fetcher.FetchRate(ctx, s.base, s.target)
	if err != nil {
		return domain.DerivedPrice{}, err
	}

	price, err := s.engine.Compute(quote, rate, s.now())
	if err != nil {
		return domain.DerivedPrice{}, err
	}

	s.upsertClose(ctx, price)
	return price, nil
}

// enrich adds today's extremes and the 24h change. Both are best
// effort: storage trouble is logged, never fatal to the price.
func (s *PriceService) enrich(ctx context.Context, price domain.DerivedPrice) *domain.PriceSnapshot {
	snapshot := &domain.PriceSnapshot{Price: price}

	rec, err := s.tracker.Update(ctx, price.Instrument, price.PerGram, s.now())
	if err != nil {
		slog.Error("Failed to update daily extremes, serving price without them",
			"instrument", price.Instrument, "error", err)
	} else {
		snapshot.Extremes = &rec
	}

	s.addChange(ctx, snapshot)
	return snapshot
}

func (s *PriceService) addChange(ctx context.Context, snapshot *domain.PriceSnapshot) {
	today := s.now().In(s.tracker.Location()).Format(extremes.DateLayout)

	prev, err := s.closes.LatestCloseBefore(ctx, snapshot.Price.Instrument, today)
	if errors.Is(err, domain.ErrNoData) {
		return
	}
	if err != nil {
		slog.Warn("Failed to load previous close for 24h change",
			"instrument", snapshot.Price.Instrument, "error", err)
		return
	}
	if !prev.PerGram.IsPositive() {
		return
	}

	change := snapshot.Price.PerGram.Sub(prev.PerGram)
	snapshot.Change24h = change
	snapshot.ChangePercent24h = change.Div(prev.PerGram).Mul(decimal.NewFromInt(100)).Round(2)
	snapshot.HasChange = true
}

func (s *PriceService) upsertClose(ctx context.Context, price domain.DerivedPrice) {
	now := s.now().In(s.tracker.Location())
	rec := domain.DailyClose{
		Instrument:     price.Instrument,
		Date:           now.Format(extremes.DateLayout),
		PerGram:        price.PerGram,
		PerKilogram:    price.PerKilogram,
		BenchmarkQuote: price.SourceQuote.Value,
		ExchangeRate:   price.SourceRate.Rate,
		Source:         price.SourceQuote.Provider,
		Timestamp:      now,
	}
	if err := s.closes.UpsertClose(ctx, rec); err != nil {
		slog.Warn("Failed to upsert daily close", "instrument", price.Instrument, "error", err)
	}
}
