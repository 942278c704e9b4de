package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/achaudhary7/SilverInfo-sub003/internal/config"
	"github.com/achaudhary7/SilverInfo-sub003/internal/core/domain"
)

// JSONProvider fetches a configured URL per instrument or pair and
// extracts the numeric value at a gjson path. It lets an alternate
// upstream be wired in through configuration alone, credentials
// included.
type JSONProvider struct {
	name         string
	client       *http.Client
	quoteURLs    map[string]string
	rateURLs     map[string]string
	pricePath    string
	apiKeyHeader string
	apiKey       string
}

func NewJSONProvider(cfg config.ProviderConfig) *JSONProvider {
	pricePath := cfg.PricePath
	if pricePath == "" {
		pricePath = "price"
	}
	return &JSONProvider{
		name:         cfg.Name,
		client:       &http.Client{},
		quoteURLs:    prefixed(cfg.BaseURL, cfg.QuoteSymbols),
		rateURLs:     prefixed(cfg.BaseURL, cfg.RateSymbols),
		pricePath:    pricePath,
		apiKeyHeader: cfg.APIKeyHeader,
		apiKey:       cfg.APIKey,
	}
}

// Symbols that look like full URLs are used as-is; bare symbols are
// appended to the base URL.
func prefixed(baseURL string, symbols map[string]string) map[string]string {
	urls := make(map[string]string, len(symbols))
	for key, symbol := range symbols {
		if strings.HasPrefix(symbol, "http://") || strings.HasPrefix(symbol, "https://") {
			urls[key] = symbol
		} else {
			urls[key] = strings.TrimSuffix(baseURL, "/") + "/" + symbol
		}
	}
	return urls
}

func (p *JSONProvider) Name() string {
	return p.name
}

func (p *JSONProvider) FetchQuote(ctx context.Context, instrument domain.Instrument) (domain.RawQuote, error) {
	url, ok := p.quoteURLs[string(instrument)]
	if !ok {
		return domain.RawQuote{}, fmt.Errorf("provider %s has no endpoint for instrument %s", p.name, instrument)
	}

	value, err := p.fetchValue(ctx, url)
	if err != nil {
		return domain.RawQuote{}, err
	}

	return domain.RawQuote{
		Instrument: instrument,
		Value:      value,
		Currency:   "USD",
		CapturedAt: time.Now(),
		Provider:   p.name,
	}, nil
}

func (p *JSONProvider) FetchRate(ctx context.Context, base, quote string) (domain.ExchangeRate, error) {
	url, ok := p.rateURLs[base+quote]
	if !ok {
		return domain.ExchangeRate{}, fmt.Errorf("provider %s has no endpoint for pair %s%s", p.name, base, quote)
	}

	rate, err := p.fetchValue(ctx, url)
	if err != nil {
		return domain.ExchangeRate{}, err
	}

	return domain.ExchangeRate{
		Base:       base,
		Quote:      quote,
		Rate:       rate,
		CapturedAt: time.Now(),
		Provider:   p.name,
	}, nil
}

func (p *JSONProvider) fetchValue(ctx context.Context, url string) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to build request: %w", err)
	}
	if p.apiKeyHeader != "" && p.apiKey != "" {
		req.Header.Set(p.apiKeyHeader, p.apiKey)
	}

	res, err := p.client.Do(req)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("request to %s failed: %w", p.name, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return decimal.Decimal{}, fmt.Errorf("provider %s returned status %d", p.name, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to read response body: %w", err)
	}

	result := gjson.GetBytes(body, p.pricePath)
	if !result.Exists() {
		return decimal.Decimal{}, fmt.Errorf("provider %s response has no value at %q", p.name, p.pricePath)
	}

	value, err := decimal.NewFromString(result.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("provider %s returned non-numeric value %q: %w", p.name, result.String(), err)
	}
	return value, nil
}
