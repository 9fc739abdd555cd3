package scanner

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kissncome-byte/stock-app/internal/decision"
	"github.com/kissncome-byte/stock-app/internal/indicator"
	"github.com/kissncome-byte/stock-app/internal/planner"
	"github.com/kissncome-byte/stock-app/pkg/model"
)

// stubBars serves a canned history per symbol, with optional failures.
type stubBars struct {
	bars map[string][]model.Bar
}

func (s *stubBars) Name() string      { return "stub" }
func (s *stubBars) IsAvailable() bool { return true }

func (s *stubBars) GetDailyBars(ctx context.Context, symbol string, start time.Time) ([]model.Bar, error) {
	bars, ok := s.bars[symbol]
	if !ok {
		return nil, fmt.Errorf("unknown symbol %s", symbol)
	}
	return bars, nil
}

func fixtureBars(n int) []model.Bar {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, n)
	for i := range bars {
		c := 100 + float64(i)*0.2
		bars[i] = model.Bar{
			Date: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 2000,
		}
	}
	return bars
}

func testPlanner(bars map[string][]model.Bar) *planner.Planner {
	return planner.New(
		&stubBars{bars: bars},
		nil, // no quote feed: plans price off last closes
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		indicator.DefaultOptions(),
		decision.RiskParameters{TotalCapital: 1000000, RiskPerTradePct: 1},
		decision.DefaultThresholds(),
	)
}

func TestScanComputesAllSymbols(t *testing.T) {
	p := testPlanner(map[string][]model.Bar{
		"2330": fixtureBars(300),
		"2454": fixtureBars(300),
		"2603": fixtureBars(300),
	})

	s := NewScanner(p, 3, 10*time.Second)
	results := s.Scan(context.Background(), []string{"2330", "2454", "2603"})

	require.Len(t, results, 3)
	for _, r := range results {
		assert.NoError(t, r.Err, "symbol %s", r.Symbol)
		require.NotNil(t, r.Decision)
		assert.Equal(t, "last_close", r.Decision.PriceSource)
	}
}

func TestScanCarriesPerSymbolFailures(t *testing.T) {
	p := testPlanner(map[string][]model.Bar{
		"2330": fixtureBars(300),
		"2609": fixtureBars(40), // too short for a plan
	})

	s := NewScanner(p, 2, 10*time.Second)
	results := s.Scan(context.Background(), []string{"2330", "2609", "9999"})

	require.Len(t, results, 3)

	byModel := map[string]Result{}
	for _, r := range results {
		byModel[r.Symbol] = r
	}

	assert.NoError(t, byModel["2330"].Err)
	assert.ErrorIs(t, byModel["2609"].Err, indicator.ErrInsufficientHistory)
	assert.Error(t, byModel["9999"].Err)
}

func TestScanProgressCallback(t *testing.T) {
	p := testPlanner(map[string][]model.Bar{
		"2330": fixtureBars(300),
		"2454": fixtureBars(300),
	})

	var calls int64
	s := NewScanner(p, 2, 10*time.Second)
	s.SetProgressCallback(func(scanned, total int) {
		atomic.AddInt64(&calls, 1)
		assert.Equal(t, 2, total)
	})

	s.Scan(context.Background(), []string{"2330", "2454"})
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestScanEmptySymbolList(t *testing.T) {
	p := testPlanner(nil)
	s := NewScanner(p, 2, time.Second)
	assert.Nil(t, s.Scan(context.Background(), nil))
}
