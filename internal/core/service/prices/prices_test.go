package prices

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/achaudhary7/SilverInfo-sub003/internal/adapters/cache"
	"github.com/achaudhary7/SilverInfo-sub003/internal/adapters/repository/memory"
	"github.com/achaudhary7/SilverInfo-sub003/internal/config"
	"github.com/achaudhary7/SilverInfo-sub003/internal/core/domain"
	"github.com/achaudhary7/SilverInfo-sub003/internal/core/service/extremes"
	"github.com/achaudhary7/SilverInfo-sub003/internal/core/service/formula"
)

// stubFetcher counts upstream calls and can be told to fail.
type stubFetcher struct {
	quoteCalls int32
	rateCalls  int32
	fail       bool
	quoteValue string
}

func (f *stubFetcher) FetchQuote(_ context.Context, instrument domain.Instrument) (domain.RawQuote, error) {
	atomic.AddInt32(&f.quoteCalls, 1)
	if f.fail {
		return domain.RawQuote{}, domain.ErrUpstreamUnavailable
	}
	return domain.RawQuote{
		Instrument: instrument,
		Value:      decimal.RequireFromString(f.quoteValue),
		Currency:   "USD",
		CapturedAt: time.Now(),
		Provider:   "stub",
	}, nil
}

func (f *stubFetcher) FetchRate(_ context.Context, base, quote string) (domain.ExchangeRate, error) {
	atomic.AddInt32(&f.rateCalls, 1)
	if f.fail {
		return domain.ExchangeRate{}, domain.ErrUpstreamUnavailable
	}
	return domain.ExchangeRate{
		Base:       base,
		Quote:      quote,
		Rate:       decimal.RequireFromString("84"),
		CapturedAt: time.Now(),
		Provider:   "stub",
	}, nil
}

func (f *stubFetcher) Providers() []string { return []string{"stub"} }

// failingExtremesStore simulates the durable store being unreachable.
type failingExtremesStore struct{}

func (failingExtremesStore) LoadExtremes(context.Context, domain.Instrument) (domain.DailyExtremes, error) {
	return domain.DailyExtremes{}, errors.New("connection refused")
}

func (failingExtremesStore) SaveExtremes(context.Context, domain.DailyExtremes) error {
	return errors.New("connection refused")
}

func testPricing() config.Pricing {
	return config.Pricing{
		ImportDutyRate:   0.06,
		TaxRate:          0.03,
		LocalPremiumRate: 0.03,
	}
}

func marketLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("failed to load timezone: %v", err)
	}
	return loc
}

func newTestService(t *testing.T, fetcher *stubFetcher) (*PriceService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	tracker := extremes.New(store, marketLocation(t))
	svc := NewPriceService(
		cache.NewMemoryAdapter(),
		fetcher,
		formula.New(testPricing()),
		tracker,
		store,
		60,
		"USD", "INR",
	)
	return svc, store
}

func TestGetPriceComputesAndTracksExtremes(t *testing.T) {
	fetcher := &stubFetcher{quoteValue: "30.00"}
	svc, _ := newTestService(t, fetcher)

	snapshot, err := svc.GetPrice(context.Background(), domain.Silver)
	if err != nil {
		t.Fatalf("GetPrice returned error: %v", err)
	}

	if snapshot.Price.PerGram.String() != "91.11" {
		t.Errorf("PerGram = %s, want 91.11", snapshot.Price.PerGram)
	}
	if snapshot.Extremes == nil {
		t.Fatal("Extremes is nil, want today's record")
	}
	if !snapshot.Extremes.Open.Equal(snapshot.Price.PerGram) {
		t.Errorf("Open = %s, want %s on first computation of the day",
			snapshot.Extremes.Open, snapshot.Price.PerGram)
	}
}

// N concurrent callers within one TTL window must produce at most one
// upstream fetch.
func TestConcurrentCallersShareOneUpstreamFetch(t *testing.T) {
	fetcher := &stubFetcher{quoteValue: "30.00"}
	svc, _ := newTestService(t, fetcher)

	const callers = 20
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.GetPrice(context.Background(), domain.Silver); err != nil {
				t.Errorf("GetPrice returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&fetcher.quoteCalls); got != 1 {
		t.Errorf("upstream quote fetched %d times for %d concurrent callers, want 1", got, callers)
	}
}

func TestUpstreamFailurePropagatesWithoutRetry(t *testing.T) {
	fetcher := &stubFetcher{fail: true}
	svc, _ := newTestService(t, fetcher)

	_, err := svc.GetPrice(context.Background(), domain.Silver)
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("error = %v, want ErrUpstreamUnavailable", err)
	}
	if got := atomic.LoadInt32(&fetcher.quoteCalls); got != 1 {
		t.Errorf("upstream fetched %d times, want exactly 1 (no inline retry)", got)
	}

	// The failure must not be cached: the next call retries upstream.
	fetcher.fail = false
	fetcher.quoteValue = "30.00"
	if _, err := svc.GetPrice(context.Background(), domain.Silver); err != nil {
		t.Fatalf("GetPrice after provider recovery returned error: %v", err)
	}
}

// Extremes are a best-effort enhancement: a broken durable store must
// degrade the response, not fail it.
func TestStorageFailureDegradesToPriceWithoutExtremes(t *testing.T) {
	fetcher := &stubFetcher{quoteValue: "30.00"}
	store := memory.NewStore()
	tracker := extremes.New(failingExtremesStore{}, marketLocation(t))
	svc := NewPriceService(
		cache.NewMemoryAdapter(),
		fetcher,
		formula.New(testPricing()),
		tracker,
		store,
		60,
		"USD", "INR",
	)

	snapshot, err := svc.GetPrice(context.Background(), domain.Silver)
	if err != nil {
		t.Fatalf("GetPrice returned error: %v", err)
	}
	if snapshot.Price.PerGram.String() != "91.11" {
		t.Errorf("PerGram = %s, want 91.11", snapshot.Price.PerGram)
	}
	if snapshot.Extremes != nil {
		t.Errorf("Extremes = %+v, want nil when the store is unreachable", snapshot.Extremes)
	}
}

func TestChange24hAgainstPreviousClose(t *testing.T) {
	fetcher := &stubFetcher{quoteValue: "30.00"}
	svc, store := newTestService(t, fetcher)

	yesterday := time.Now().In(marketLocation(t)).AddDate(0, 0, -1).Format(extremes.DateLayout)
	err := store.UpsertClose(context.Background(), domain.DailyClose{
		Instrument:  domain.Silver,
		Date:        yesterday,
		PerGram:     decimal.RequireFromString("90.11"),
		PerKilogram: decimal.RequireFromString("90110"),
		Source:      "stub",
		Timestamp:   time.Now().AddDate(0, 0, -1),
	})
	if err != nil {
		t.Fatalf("UpsertClose returned error: %v", err)
	}

	snapshot, err := svc.GetPrice(context.Background(), domain.Silver)
	if err != nil {
		t.Fatalf("GetPrice returned error: %v", err)
	}

	if !snapshot.HasChange {
		t.Fatal("HasChange = false, want 24h change against yesterday's close")
	}
	if snapshot.Change24h.String() != "1" {
		t.Errorf("Change24h = %s, want 1", snapshot.Change24h)
	}
	if snapshot.ChangePercent24h.String() != "1.11" {
		t.Errorf("ChangePercent24h = %s, want 1.11", snapshot.ChangePercent24h)
	}
}

func TestRefreshOverwritesCacheEntry(t *testing.T) {
	fetcher := &stubFetcher{quoteValue: "30.00"}
	svc, _ := newTestService(t, fetcher)

	if _, err := svc.GetPrice(context.Background(), domain.Silver); err != nil {
		t.Fatalf("GetPrice returned error: %v", err)
	}

	// Upstream moves; the TTL window would normally hide it.
	fetcher.quoteValue = "31.00"
	refreshed, err := svc.Refresh(context.Background(), domain.Silver)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}

	served, err := svc.GetPrice(context.Background(), domain.Silver)
	if err != nil {
		t.Fatalf("GetPrice returned error: %v", err)
	}
	if !served.Price.PerGram.Equal(refreshed.Price.PerGram) {
		t.Errorf("served %s after refresh, want %s", served.Price.PerGram, refreshed.Price.PerGram)
	}
}

func TestUnknownInstrumentRejected(t *testing.T) {
	fetcher := &stubFetcher{quoteValue: "30.00"}
	svc, _ := newTestService(t, fetcher)

	_, err := svc.GetPrice(context.Background(), domain.Instrument("platinum"))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}
