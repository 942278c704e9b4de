package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Instrument identifies a traded metal.
type Instrument string

const (
	Silver Instrument = "silver"
	Gold   Instrument = "gold"
)

// Mass conversion constants. Benchmark quotes are per troy ounce,
// retail denominations are metric plus the tola.
var (
	GramsPerTroyOunce = decimal.RequireFromString("31.1035")
	GramsPerTola      = decimal.RequireFromString("11.6638")
)

// RawQuote is a benchmark spot price as received from an upstream
// provider, per troy ounce, in the provider's currency.
type RawQuote struct {
	Instrument Instrument      `json:"instrument"`
	Value      decimal.Decimal `json:"value"`
	Currency   string          `json:"currency"`
	CapturedAt time.Time       `json:"captured_at"`
	Provider   string          `json:"provider"`
}

// ExchangeRate is a currency conversion rate from an upstream provider.
type ExchangeRate struct {
	Base       string          `json:"base"`
	Quote      string          `json:"quote"`
	Rate       decimal.Decimal `json:"rate"`
	CapturedAt time.Time       `json:"captured_at"`
	Provider   string          `json:"provider"`
}

// DerivedPrice is the retail price produced by the markup formula.
// Every denomination is derived from the rounded per-gram figure so a
// reader can verify any of them by multiplication.
type DerivedPrice struct {
	Instrument  Instrument      `json:"instrument"`
	PerGram     decimal.Decimal `json:"per_gram"`
	PerTenGrams decimal.Decimal `json:"per_ten_grams"`
	PerKilogram decimal.Decimal `json:"per_kilogram"`
	PerTola     decimal.Decimal `json:"per_tola"`
	Currency    string          `json:"currency"`
	SourceQuote RawQuote        `json:"source_quote"`
	SourceRate  ExchangeRate    `json:"source_rate"`
	ComputedAt  time.Time       `json:"computed_at"`
}

// DailyClose is one row of price history, keyed by ISO calendar date
// in the market's local timezone.
type DailyClose struct {
	Instrument     Instrument      `json:"instrument"`
	Date           string          `json:"date"`
	PerGram        decimal.Decimal `json:"per_gram"`
	PerKilogram    decimal.Decimal `json:"per_kilogram"`
	BenchmarkQuote decimal.Decimal `json:"benchmark_quote"`
	ExchangeRate   decimal.Decimal `json:"exchange_rate"`
	Source         string          `json:"source"`
	Timestamp      time.Time       `json:"timestamp"`
}

// PriceSnapshot is what the price service hands to the HTTP layer:
// the derived price plus best-effort enrichments. Extremes is nil when
// the durable store was unreachable; Change24h is meaningful only when
// HasChange is set (a previous close existed).
type PriceSnapshot struct {
	Price            DerivedPrice
	Extremes         *DailyExtremes
	Change24h        decimal.Decimal
	ChangePercent24h decimal.Decimal
	HasChange        bool
}

// Band is a hard plausibility range for an upstream numeric value.
// Values outside the band are treated as provider failure, not data.
type Band struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Contains reports whether v lies inside the band (inclusive).
func (b Band) Contains(v decimal.Decimal) bool {
	return v.GreaterThanOrEqual(b.Min) && v.LessThanOrEqual(b.Max)
}

// QuoteBands holds the plausible USD-per-ounce range per instrument.
var QuoteBands = map[Instrument]Band{
	Silver: {Min: decimal.NewFromInt(5), Max: decimal.NewFromInt(500)},
	Gold:   {Min: decimal.NewFromInt(500), Max: decimal.NewFromInt(10000)},
}

// RateBands holds plausible ranges per currency pair (base+quote).
var RateBands = map[string]Band{
	"USDINR": {Min: decimal.NewFromInt(50), Max: decimal.NewFromInt(150)},
}
