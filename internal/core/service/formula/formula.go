package formula

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/achaudhary7/SilverInfo-sub003/internal/config"
	"github.com/achaudhary7/SilverInfo-sub003/internal/core/domain"
)

// Engine converts a benchmark quote plus an exchange rate into the
// local retail price. It is pure: no clock, no I/O, no globals.
type Engine struct {
	duty    decimal.Decimal
	tax     decimal.Decimal
	premium decimal.Decimal
}

func New(cfg config.Pricing) *Engine {
	return &Engine{
		duty:    decimal.NewFromFloat(cfg.ImportDutyRate),
		tax:     decimal.NewFromFloat(cfg.TaxRate),
		premium: decimal.NewFromFloat(cfg.LocalPremiumRate),
	}
}

// Compute derives the retail price. The computation order is fixed:
//
//  1. ounce price in target currency = quote value * exchange rate
//  2. per-gram = ounce price / 31.1035
//  3. multiply by (1+duty), then (1+tax), then (1+premium) - compounded
//     in that order, never summed
//  4. round per-gram to 2 decimals, then derive every other
//     denomination from the rounded figure
//
// Deriving from the rounded per-gram keeps the displayed denominations
// consistent with what a reader can verify by multiplication.
func (e *Engine) Compute(q domain.RawQuote, r domain.ExchangeRate, now time.Time) (domain.DerivedPrice, error) {
	if err := validate(q, r); err != nil {
		return domain.DerivedPrice{}, err
	}

	one := decimal.NewFromInt(1)

	ouncePrice := q.Value.Mul(r.Rate)
	gram := ouncePrice.Div(domain.GramsPerTroyOunce)
	gram = gram.Mul(one.Add(e.duty))
	gram = gram.Mul(one.Add(e.tax))
	gram = gram.Mul(one.Add(e.premium))

	perGram := gram.Round(2)

	return domain.DerivedPrice{
		Instrument:  q.Instrument,
		PerGram:     perGram,
		PerTenGrams: perGram.Mul(decimal.NewFromInt(10)).Round(2),
		PerKilogram: perGram.Mul(decimal.NewFromInt(1000)).Round(0),
		PerTola:     perGram.Mul(domain.GramsPerTola).Round(2),
		Currency:    r.Quote,
		SourceQuote: q,
		SourceRate:  r,
		ComputedAt:  now,
	}, nil
}

func validate(q domain.RawQuote, r domain.ExchangeRate) error {
	if !q.Value.IsPositive() {
		return fmt.Errorf("%w: quote value %s must be positive", domain.ErrInvalidInput, q.Value)
	}
	if !r.Rate.IsPositive() {
		return fmt.Errorf("%w: exchange rate %s must be positive", domain.ErrInvalidInput, r.Rate)
	}
	if band, ok := domain.QuoteBands[q.Instrument]; ok && !band.Contains(q.Value) {
		return fmt.Errorf("%w: quote %s for %s outside plausible range [%s, %s]",
			domain.ErrInvalidInput, q.Value, q.Instrument, band.Min, band.Max)
	}
	if band, ok := domain.RateBands[r.Base+r.Quote]; ok && !band.Contains(r.Rate) {
		return fmt.Errorf("%w: rate %s for %s%s outside plausible range [%s, %s]",
			domain.ErrInvalidInput, r.Rate, r.Base, r.Quote, band.Min, band.Max)
	}
	return nil
}
