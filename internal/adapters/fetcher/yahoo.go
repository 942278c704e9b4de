package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/achaudhary7/SilverInfo-sub003/internal/config"
	"github.com/achaudhary7/SilverInfo-sub003/internal/core/domain"
)

const yahooPricePath = "chart.result.0.meta.regularMarketPrice"

// YahooProvider reads benchmark quotes and currency rates from the
// Yahoo finance chart API. Symbols are configured per instrument
// (SI=F, GC=F) and per pair (USDINR=X).
type YahooProvider struct {
	name         string
	baseURL      string
	client       *http.Client
	quoteSymbols map[string]string
	rateSymbols  map[string]string
}

func NewYahooProvider(cfg config.ProviderConfig) *YahooProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	}
	return &YahooProvider{
		name:         cfg.Name,
		baseURL:      baseURL,
		client:       &http.Client{},
		quoteSymbols: cfg.QuoteSymbols,
		rateSymbols:  cfg.RateSymbols,
	}
}

func (p *YahooProvider) Name() string {
	return p.name
}

func (p *YahooProvider) FetchQuote(ctx context.Context, instrument domain.Instrument) (domain.RawQuote, error) {
	symbol, ok := p.quoteSymbols[string(instrument)]
	if !ok {
		return domain.RawQuote{}, fmt.Errorf("provider %s has no symbol for instrument %s", p.name, instrument)
	}

	value, err := p.fetchMarketPrice(ctx, symbol)
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

func (p *YahooProvider) FetchRate(ctx context.Context, base, quote string) (domain.ExchangeRate, error) {
	symbol, ok := p.rateSymbols[base+quote]
	if !ok {
		symbol = fmt.Sprintf("%s%s=X", base, quote)
	}

	rate, err := p.fetchMarketPrice(ctx, symbol)
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

func (p *YahooProvider) fetchMarketPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/%s?range=1d&interval=1d", p.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("request to %s failed: %w", p.name, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return decimal.Decimal{}, fmt.Errorf("provider %s returned status %d for %s", p.name, res.StatusCode, symbol)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to read response body: %w", err)
	}

	// digs into the json and pulls out the value we want
	result := gjson.GetBytes(body, yahooPricePath)
	if !result.Exists() {
		return decimal.Decimal{}, fmt.Errorf("provider %s response has no market price for %s", p.name, symbol)
	}

	value, err := decimal.NewFromString(result.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("provider %s returned non-numeric price %q: %w", p.name, result.String(), err)
	}
	return value, nil
}
