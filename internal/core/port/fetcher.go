package port

import (
	"context"

	"github.com/achaudhary7/SilverInfo-sub003/internal/core/domain"
)

// QuoteProvider is one upstream source of benchmark quotes and
// exchange rates.
type QuoteProvider interface {
	// Get provider name/identifier
	Name() string

	// Fetch the benchmark spot quote for an instrument (per troy ounce)
	FetchQuote(ctx context.Context, instrument domain.Instrument) (domain.RawQuote, error)

	// Fetch the conversion rate for a currency pair
	FetchRate(ctx context.Context, base, quote string) (domain.ExchangeRate, error)
}

// QuoteFetcher is what the price service consumes: a provider chain
// with fallback and plausibility validation behind it.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, instrument domain.Instrument) (domain.RawQuote, error)
	FetchRate(ctx context.Context, base, quote string) (domain.ExchangeRate, error)

	// Names of the configured providers, in priority order
	Providers() []string
}
