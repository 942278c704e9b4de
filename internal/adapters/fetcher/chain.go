package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/achaudhary7/SilverInfo-sub003/internal/config"
	"github.com/achaudhary7/SilverInfo-sub003/internal/core/domain"
	"github.com/achaudhary7/SilverInfo-sub003/internal/core/port"
)

// Chain tries providers in their configured priority order. Each call
// gets an independent timeout, and a response counts only if the value
// falls inside the instrument's hard plausibility band; an out-of-band
// number is provider failure, not data. When every provider fails the
// fetch fails - stale or fabricated values are never substituted.
type Chain struct {
	providers []port.QuoteProvider
	timeout   time.Duration
}

func NewChain(cfg config.Providers) (*Chain, error) {
	providers := make([]port.QuoteProvider, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		switch pc.Type {
		case "yahoo":
			providers = append(providers, NewYahooProvider(pc))
		case "json":
			providers = append(providers, NewJSONProvider(pc))
		default:
			return nil, fmt.Errorf("unknown provider type %q for provider %s", pc.Type, pc.Name)
		}
	}
	return NewChainWithProviders(providers, time.Duration(cfg.TimeoutSeconds)*time.Second), nil
}

func NewChainWithProviders(providers []port.QuoteProvider, timeout time.Duration) *Chain {
	return &Chain{providers: providers, timeout: timeout}
}

func (c *Chain) FetchQuote(ctx context.Context, instrument domain.Instrument) (domain.RawQuote, error) {
	band, hasBand := domain.QuoteBands[instrument]

	for _, p := range c.providers {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		quote, err := p.FetchQuote(callCtx, instrument)
		cancel()

		if err != nil {
			slog.Warn("Provider quote fetch failed", "provider", p.Name(), "instrument", instrument, "error", err)
			continue
		}
		if hasBand && !band.Contains(quote.Value) {
			slog.Warn("Provider quote outside plausible range, skipping",
				"provider", p.Name(), "instrument", instrument, "value", quote.Value.String())
			continue
		}
		return quote, nil
	}

	return domain.RawQuote{}, fmt.Errorf("%w: no provider returned a plausible %s quote", domain.ErrUpstreamUnavailable, instrument)
}

func (c *Chain) FetchRate(ctx context.Context, base, quote string) (domain.ExchangeRate, error) {
	band, hasBand := domain.RateBands[base+quote]

	for _, p := range c.providers {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		rate, err := p.FetchRate(callCtx, base, quote)
		cancel()

		if err != nil {
			slog.Warn("Provider rate fetch failed", "provider", p.Name(), "pair", base+quote, "error", err)
			continue
		}
		if hasBand && !band.Contains(rate.Rate) {
			slog.Warn("Provider rate outside plausible range, skipping",
				"provider", p.Name(), "pair", base+quote, "value", rate.Rate.String())
			continue
		}
		return rate, nil
	}

	return domain.ExchangeRate{}, fmt.Errorf("%w: no provider returned a plausible %s%s rate", domain.ErrUpstreamUnavailable, base, quote)
}

// Providers returns the configured provider names in priority order.
func (c *Chain) Providers() []string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return names
}
