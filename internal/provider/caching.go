package provider

import (
	"context"
	"sync"
	"time"

	"github.com/kissncome-byte/stock-app/pkg/model"
)

// CachingBarProvider wraps a BarProvider with an in-memory cache keyed by
// symbol. Designed for scan runs where both scenario legs and the journal
// read the same history within one invocation.
type CachingBarProvider struct {
	inner BarProvider
	cache map[string][]model.Bar
	mu    sync.Mutex
}

// NewCachingBarProvider creates a caching wrapper.
func NewCachingBarProvider(inner BarProvider) *CachingBarProvider {
	return &CachingBarProvider{
		inner: inner,
		cache: make(map[string][]model.Bar),
	}
}

func (p *CachingBarProvider) Name() string      { return p.inner.Name() }
func (p *CachingBarProvider) IsAvailable() bool { return p.inner.IsAvailable() }

// GetDailyBars returns cached bars when present, fetching once otherwise.
func (p *CachingBarProvider) GetDailyBars(ctx context.Context, symbol string, start time.Time) ([]model.Bar, error) {
	p.mu.Lock()
	if cached, ok := p.cache[symbol]; ok {
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	bars, err := p.inner.GetDailyBars(ctx, symbol, start)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cache[symbol] = bars
	p.mu.Unlock()

	return bars, nil
}
