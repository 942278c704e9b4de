package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/achaudhary7/SilverInfo-sub003/internal/core/domain"
)

func testPrice(perGram string) domain.DerivedPrice {
	return domain.DerivedPrice{
		Instrument: domain.Silver,
		PerGram:    decimal.RequireFromString(perGram),
		Currency:   "INR",
		ComputedAt: time.Now(),
	}
}

// Concurrent callers inside one TTL window must share a single
// computation.
func TestGetOrComputeSharesOneComputation(t *testing.T) {
	adapter := NewMemoryAdapter()
	ctx := context.Background()

	var calls int32
	compute := func(context.Context) (domain.DerivedPrice, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(10 * time.Millisecond)
		return testPrice("91.11"), nil
	}

	const workers = 25
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := adapter.GetOrCompute(ctx, "price:silver:INR:v1", time.Minute, compute)
			if err != nil {
				t.Errorf("GetOrCompute returned error: %v", err)
				return
			}
			if got.PerGram.String() != "91.11" {
				t.Errorf("PerGram = %s, want 91.11", got.PerGram)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("compute called %d times for %d concurrent callers, want 1", got, workers)
	}
}

// A failed computation must be retried on the very next call, not
// suppressed for the TTL.
func TestErrorsAreNotCached(t *testing.T) {
	adapter := NewMemoryAdapter()
	ctx := context.Background()

	var calls int
	boom := errors.New("upstream exploded")
	compute := func(context.Context) (domain.DerivedPrice, error) {
		calls++
		if calls == 1 {
			return domain.DerivedPrice{}, boom
		}
		return testPrice("90.00"), nil
	}

	if _, err := adapter.GetOrCompute(ctx, "k", time.Minute, compute); !errors.Is(err, boom) {
		t.Fatalf("first call error = %v, want %v", err, boom)
	}
	got, err := adapter.GetOrCompute(ctx, "k", time.Minute, compute)
	if err != nil {
		t.Fatalf("second call returned error: %v", err)
	}
	if got.PerGram.String() != "90" {
		t.Errorf("PerGram = %s, want 90", got.PerGram)
	}
	if calls != 2 {
		t.Errorf("compute called %d times, want 2", calls)
	}
}

func TestEntriesExpireAfterTTL(t *testing.T) {
	adapter := NewMemoryAdapter()
	current := time.Now()
	adapter.now = func() time.Time { return current }
	ctx := context.Background()

	var calls int
	compute := func(context.Context) (domain.DerivedPrice, error) {
		calls++
		return testPrice("91.11"), nil
	}

	if _, err := adapter.GetOrCompute(ctx, "k", 30*time.Second, compute); err != nil {
		t.Fatal(err)
	}
	if _, err := adapter.GetOrCompute(ctx, "k", 30*time.Second, compute); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("compute called %d times within TTL, want 1", calls)
	}

	current = current.Add(31 * time.Second)
	if _, err := adapter.GetOrCompute(ctx, "k", 30*time.Second, compute); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("compute called %d times after expiry, want 2", calls)
	}
}

// Unrelated keys must not collide.
func TestKeysAreScoped(t *testing.T) {
	adapter := NewMemoryAdapter()
	ctx := context.Background()

	silver := func(context.Context) (domain.DerivedPrice, error) { return testPrice("91.11"), nil }
	gold := func(context.Context) (domain.DerivedPrice, error) { return testPrice("7200.00"), nil }

	s, err := adapter.GetOrCompute(ctx, "price:silver:INR:v1", time.Minute, silver)
	if err != nil {
		t.Fatal(err)
	}
	g, err := adapter.GetOrCompute(ctx, "price:gold:INR:v1", time.Minute, gold)
	if err != nil {
		t.Fatal(err)
	}
	if s.PerGram.Equal(g.PerGram) {
		t.Errorf("silver and gold keys returned the same value %s", s.PerGram)
	}
}
