package memory

import (
	"context"
	"sync"

	"github.com/achaudhary7/SilverInfo-sub003/internal/core/domain"
)

// Store is a process-local implementation of the extremes and close
// store ports. It is the degraded fallback when PostgreSQL is
// unreachable at startup and the backing store in tests. A price
// served through it loses intraday extremes on restart, which is
// exactly the hazard the durable store exists to avoid, so the server
// logs loudly when it falls back here.
type Store struct {
	mu       sync.RWMutex
	extremes map[domain.Instrument]domain.DailyExtremes
	closes   map[domain.Instrument]map[string]domain.DailyClose
}

func NewStore() *Store {
	return &Store{
		extremes: make(map[domain.Instrument]domain.DailyExtremes),
		closes:   make(map[domain.Instrument]map[string]domain.DailyClose),
	}
}

func (s *Store) LoadExtremes(_ context.Context, instrument domain.Instrument) (domain.DailyExtremes, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.extremes[instrument]
	if !ok {
		return domain.DailyExtremes{}, domain.ErrNoData
	}
	return rec, nil
}

func (s *Store) SaveExtremes(_ context.Context, rec domain.DailyExtremes) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.extremes[rec.Instrument] = rec
	return nil
}

func (s *Store) UpsertClose(_ context.Context, rec domain.DailyClose) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byDate, ok := s.closes[rec.Instrument]
	if !ok {
		byDate = make(map[string]domain.DailyClose)
		s.closes[rec.Instrument] = byDate
	}
	byDate[rec.Date] = rec
	return nil
}

func (s *Store) GetClose(_ context.Context, instrument domain.Instrument, date string) (domain.DailyClose, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.closes[instrument][date]
	if !ok {
		return domain.DailyClose{}, domain.ErrNoData
	}
	return rec, nil
}

func (s *Store) LatestCloseBefore(_ context.Context, instrument domain.Instrument, date string) (domain.DailyClose, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best domain.DailyClose
	found := false
	for d, rec := range s.closes[instrument] {
		if d >= date {
			continue
		}
		if !found || d > best.Date {
			best = rec
			found = true
		}
	}
	if !found {
		return domain.DailyClose{}, domain.ErrNoData
	}
	return best, nil
}
