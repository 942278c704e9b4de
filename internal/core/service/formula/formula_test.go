package formula

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/achaudhary7/SilverInfo-sub003/internal/config"
	"github.com/achaudhary7/SilverInfo-sub003/internal/core/domain"
)

func testEngine() *Engine {
	return New(config.Pricing{
		ImportDutyRate:   0.06,
		TaxRate:          0.03,
		LocalPremiumRate: 0.03,
	})
}

func silverQuote(value string) domain.RawQuote {
	return domain.RawQuote{
		Instrument: domain.Silver,
		Value:      decimal.RequireFromString(value),
		Currency:   "USD",
		CapturedAt: time.Now(),
		Provider:   "test",
	}
}

func usdinr(rate string) domain.ExchangeRate {
	return domain.ExchangeRate{
		Base:       "USD",
		Quote:      "INR",
		Rate:       decimal.RequireFromString(rate),
		CapturedAt: time.Now(),
		Provider:   "test",
	}
}

// 30 USD/oz at 84 INR/USD is 2520 INR per ounce. With duty 6%, tax 3%
// and premium 3% compounded in that order the per-gram price is
// 2520 / 31.1035 * 1.06 * 1.03 * 1.03 = 91.11 after rounding.
func TestComputeWorkedExample(t *testing.T) {
	engine := testEngine()

	got, err := engine.Compute(silverQuote("30.00"), usdinr("84"), time.Now())
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	if got.PerGram.String() != "91.11" {
		t.Errorf("PerGram = %s, want 91.11", got.PerGram)
	}
	if got.PerTenGrams.String() != "911.1" {
		t.Errorf("PerTenGrams = %s, want 911.1", got.PerTenGrams)
	}
	if got.PerKilogram.String() != "91110" {
		t.Errorf("PerKilogram = %s, want 91110", got.PerKilogram)
	}
	if got.PerTola.String() != "1062.69" {
		t.Errorf("PerTola = %s, want 1062.69", got.PerTola)
	}
	if got.Currency != "INR" {
		t.Errorf("Currency = %s, want INR", got.Currency)
	}
}

func TestComputeDeterminism(t *testing.T) {
	engine := testEngine()
	q := silverQuote("31.47")
	r := usdinr("83.12")
	now := time.Now()

	first, err := engine.Compute(q, r, now)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	for i := 0; i < 1000; i++ {
		again, err := engine.Compute(q, r, now)
		if err != nil {
			t.Fatalf("Compute returned error on iteration %d: %v", i, err)
		}
		if !again.PerGram.Equal(first.PerGram) || !again.PerTola.Equal(first.PerTola) {
			t.Fatalf("iteration %d produced %s/%s, first run produced %s/%s",
				i, again.PerGram, again.PerTola, first.PerGram, first.PerTola)
		}
	}
}

// Every denomination must be an exact multiple of the rounded per-gram
// figure, so the displayed numbers agree with manual multiplication.
func TestDenominationConsistency(t *testing.T) {
	engine := testEngine()
	ten := decimal.NewFromInt(10)
	thousand := decimal.NewFromInt(1000)

	for _, value := range []string{"5.01", "18.50", "30.00", "77.77", "499.99"} {
		got, err := engine.Compute(silverQuote(value), usdinr("83.50"), time.Now())
		if err != nil {
			t.Fatalf("Compute(%s) returned error: %v", value, err)
		}

		if want := got.PerGram.Mul(ten).Round(2); !got.PerTenGrams.Equal(want) {
			t.Errorf("quote %s: PerTenGrams = %s, want %s", value, got.PerTenGrams, want)
		}
		if want := got.PerGram.Mul(thousand).Round(0); !got.PerKilogram.Equal(want) {
			t.Errorf("quote %s: PerKilogram = %s, want %s", value, got.PerKilogram, want)
		}
		if want := got.PerGram.Mul(domain.GramsPerTola).Round(2); !got.PerTola.Equal(want) {
			t.Errorf("quote %s: PerTola = %s, want %s", value, got.PerTola, want)
		}
	}
}

func TestComputeRejectsBadInput(t *testing.T) {
	engine := testEngine()

	tests := []struct {
		name  string
		quote domain.RawQuote
		rate  domain.ExchangeRate
	}{
		{"zero quote", silverQuote("0"), usdinr("84")},
		{"negative quote", silverQuote("-12.5"), usdinr("84")},
		{"zero rate", silverQuote("30"), usdinr("0")},
		{"negative rate", silverQuote("30"), usdinr("-84")},
		{"quote above band", silverQuote("1200"), usdinr("84")},
		{"quote below band", silverQuote("0.40"), usdinr("84")},
		{"rate outside band", silverQuote("30"), usdinr("700")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Compute(tt.quote, tt.rate, time.Now())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestComputeGoldBand(t *testing.T) {
	engine := testEngine()
	q := domain.RawQuote{
		Instrument: domain.Gold,
		Value:      decimal.RequireFromString("2400"),
		Currency:   "USD",
		CapturedAt: time.Now(),
		Provider:   "test",
	}

	got, err := engine.Compute(q, usdinr("84"), time.Now())
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if !got.PerGram.IsPositive() {
		t.Errorf("PerGram = %s, want positive", got.PerGram)
	}

	// A gold quote in the silver range is out of band for gold.
	q.Value = decimal.RequireFromString("30")
	if _, err := engine.Compute(q, usdinr("84"), time.Now()); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}
