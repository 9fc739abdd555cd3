package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kissncome-byte/stock-app/internal/decision"
	"github.com/kissncome-byte/stock-app/internal/indicator"
	"github.com/kissncome-byte/stock-app/internal/provider"
	"github.com/kissncome-byte/stock-app/pkg/model"
)

// Planner resolves the external collaborators — historical bars and a
// live quote — into memory and runs the two engines over them. Each Plan
// call is an independent snapshot computation; Planner holds no state
// between calls beyond what the providers cache.
type Planner struct {
	bars   provider.BarProvider
	quotes provider.QuoteProvider
	start  time.Time
	opts   indicator.Options
	risk   decision.RiskParameters
	gates  decision.Thresholds
	logger zerolog.Logger
}

// New creates a Planner. quotes may be nil; plans are then priced off the
// last close.
func New(bars provider.BarProvider, quotes provider.QuoteProvider, start time.Time,
	opts indicator.Options, risk decision.RiskParameters, gates decision.Thresholds) *Planner {
	return &Planner{
		bars:   bars,
		quotes: quotes,
		start:  start,
		opts:   opts,
		risk:   risk,
		gates:  gates,
		logger: log.With().Str("component", "planner").Logger(),
	}
}

// Plan computes the full decision for one symbol. A failed quote fetch is
// tolerated and logged; anything preventing a complete computation over
// the historical series is returned as a typed failure.
func (p *Planner) Plan(ctx context.Context, symbol string) (*decision.Decision, error) {
	bars, err := p.bars.GetDailyBars(ctx, symbol, p.start)
	if err != nil {
		return nil, fmt.Errorf("fetching bars for %s: %w", symbol, err)
	}

	series, err := indicator.Compute(bars, p.opts)
	if err != nil {
		return nil, fmt.Errorf("indicators for %s: %w", symbol, err)
	}

	quote := p.fetchQuote(ctx, symbol)

	d, err := decision.Compute(symbol, series, quote, p.risk, p.gates)
	if err != nil {
		return nil, fmt.Errorf("decision for %s: %w", symbol, err)
	}

	p.logger.Debug().
		Str("symbol", symbol).
		Str("price_source", d.PriceSource).
		Bool("breakout_enabled", d.Breakout.Enabled).
		Bool("pullback_enabled", d.Pullback.Enabled).
		Msg("plan computed")

	return d, nil
}

func (p *Planner) fetchQuote(ctx context.Context, symbol string) *model.Quote {
	if p.quotes == nil {
		return nil
	}
	q, err := p.quotes.GetQuote(ctx, symbol)
	if err != nil {
		p.logger.Warn().Err(err).Str("symbol", symbol).Msg("quote unavailable, using last close")
		return nil
	}
	return q
}
