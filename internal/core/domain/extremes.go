package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyExtremes is the running open/high/low record for one calendar
// day in the market's local timezone. High is never lowered and Low is
// never raised within a day; a date mismatch replaces the whole record.
type DailyExtremes struct {
	Instrument  Instrument      `json:"instrument"`
	Date        string          `json:"date"`
	Open        decimal.Decimal `json:"open"`
	High        decimal.Decimal `json:"high"`
	HighAt      time.Time       `json:"high_at"`
	Low         decimal.Decimal `json:"low"`
	LowAt       time.Time       `json:"low_at"`
	LastUpdated time.Time       `json:"last_updated"`
}
