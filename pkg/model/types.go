package model

import "time"

// Bar represents a single daily OHLCV bar for a Taiwan-listed equity.
// Volume is in board lots (1 lot = 1000 shares on TWSE). Turnover is the
// notional value traded in TWD; zero means the provider did not supply it
// and the indicator engine derives it from close and volume.
type Bar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   int64     `json:"volume"`
	Turnover float64   `json:"turnover,omitempty"`
}

// Stock represents basic stock information
type Stock struct {
	Symbol string `json:"symbol"` // TWSE/TPEx numeric code, e.g. "2330"
	Name   string `json:"name"`
	Market string `json:"market"` // "tse" or "otc"
}

// Quote is a live quote snapshot from the exchange feed. Price may be zero
// when the market is closed or no trade has printed yet; callers fall back
// to the last daily close.
type Quote struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	Volume int64     `json:"volume"` // cumulative lots traded today
	Time   time.Time `json:"time"`
}

// Valid reports whether the quote carries a usable price.
func (q *Quote) Valid() bool {
	return q != nil && q.Price > 0
}
