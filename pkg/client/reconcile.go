// Package client holds the consumer-side pieces of the price pipeline:
// a reconciliation view that keeps the displayed intraday high/low
// monotonic across inconsistent server replicas, and a visibility-aware
// poll scheduler that drives refreshes.
package client

import (
	"sync"
	"time"
)

// PriceUpdate is one observed server response, reduced to what the
// reconciliation view needs.
type PriceUpdate struct {
	Price        float64
	ServerHigh   float64
	ServerHighAt time.Time
	ServerLow    float64
	ServerLowAt  time.Time
	ReceivedAt   time.Time
}

// ObservedPrice is one bound of the merged view, tagged with the time
// of whichever observation won.
type ObservedPrice struct {
	Value      float64
	ObservedAt time.Time
}

// ExtremesView merges locally remembered extremes with whatever the
// server currently reports. Independent server instances can each hold
// a stale or freshly reset extremes record, so the raw server high/low
// may regress between polls; the merged view never does, for the
// lifetime of one session.
//
// This is a compensating control for the server's last-write-wins
// store, not a replacement for it: the view is never the system of
// record and starts empty on every new session.
type ExtremesView struct {
	mu       sync.Mutex
	bestHigh ObservedPrice
	bestLow  ObservedPrice
	seeded   bool
}

func NewExtremesView() *ExtremesView {
	return &ExtremesView{}
}

// Merge folds one server response into the view. Merging the same
// response twice is a no-op.
func (v *ExtremesView) Merge(update PriceUpdate) {
	v.mu.Lock()
	defer v.mu.Unlock()

	serverHigh := ObservedPrice{Value: update.ServerHigh, ObservedAt: update.ServerHighAt}
	serverLow := ObservedPrice{Value: update.ServerLow, ObservedAt: update.ServerLowAt}
	current := ObservedPrice{Value: update.Price, ObservedAt: update.ReceivedAt}

	if !v.seeded {
		v.bestHigh = maxObserved(serverHigh, current)
		v.bestLow = minObserved(serverLow, current)
		v.seeded = true
		return
	}

	v.bestHigh = maxObserved(v.bestHigh, maxObserved(serverHigh, current))
	v.bestLow = minObserved(v.bestLow, minObserved(serverLow, current))
}

// BestHigh returns the highest price observed this session, from any
// replica or from the polled price itself.
func (v *ExtremesView) BestHigh() (ObservedPrice, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bestHigh, v.seeded
}

// BestLow returns the lowest price observed this session.
func (v *ExtremesView) BestLow() (ObservedPrice, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bestLow, v.seeded
}

func maxObserved(a, b ObservedPrice) ObservedPrice {
	if b.Value > a.Value {
		return b
	}
	return a
}

func minObserved(a, b ObservedPrice) ObservedPrice {
	if b.Value < a.Value {
		return b
	}
	return a
}
