package provider

import (
	"context"
	"time"

	"github.com/kissncome-byte/stock-app/pkg/model"
)

// BarProvider fetches daily OHLCV history for a symbol. Implementations
// normalize provider-specific column names into the canonical Bar shape;
// nothing downstream branches on raw field variants.
type BarProvider interface {
	// Name returns the provider name
	Name() string

	// GetDailyBars fetches daily bars from start up to the latest session
	GetDailyBars(ctx context.Context, symbol string, start time.Time) ([]model.Bar, error)

	// IsAvailable checks if the provider is available (has valid API key)
	IsAvailable() bool
}

// QuoteProvider fetches a live quote. A closed market or a feed gap is
// not an error: the returned quote simply carries no usable price and
// the decision engine falls back to the last close.
type QuoteProvider interface {
	Name() string
	GetQuote(ctx context.Context, symbol string) (*model.Quote, error)
}

// Error represents a provider-specific error
type Error struct {
	Provider  string
	Err       error
	Retryable bool
}

func (e *Error) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
