package journal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kissncome-byte/stock-app/internal/decision"
)

func testDecision(symbol string) *decision.Decision {
	return &decision.Decision{
		Symbol:       symbol,
		CurrentPrice: 112.8,
		PriceSource:  "quote",
		Breakout: decision.Leg{
			Scenario:   decision.ScenarioBreakout,
			Entry:      112.5,
			Stop:       108.5,
			Target:     160,
			RewardRisk: 11.875,
			Setup:      true,
			Enabled:    true,
			Lots:       2,
			Strength:   100,
		},
		Pullback: decision.Leg{
			Scenario: decision.ScenarioPullback,
			Entry:    109.5,
			Stop:     106,
			Target:   111.8,
			Note:     "reward:risk 0.66 below 3.0",
		},
	}
}

func TestRecordAndListDecision(t *testing.T) {
	j, err := NewSQLite(filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.RecordDecision(testDecision("2330")))
	require.NoError(t, j.RecordDecision(testDecision("2454")))

	records, err := j.ListBySymbol("2330", 10)
	require.NoError(t, err)
	require.Len(t, records, 2) // one row per scenario leg

	bySc := map[string]PlanRecord{}
	for _, r := range records {
		bySc[r.Scenario] = r
	}

	b := bySc["breakout"]
	assert.Equal(t, "2330", b.Symbol)
	assert.Equal(t, 112.5, b.Entry)
	assert.True(t, b.Enabled)
	assert.Equal(t, 2, b.Lots)

	p := bySc["pullback"]
	assert.False(t, p.Enabled)
	assert.Zero(t, p.Lots)
	assert.Contains(t, p.Note, "reward:risk")
}

func TestListLimit(t *testing.T) {
	j, err := NewSQLite(filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	defer j.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, j.RecordDecision(testDecision("2330")))
	}

	records, err := j.ListBySymbol("2330", 4)
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestListUnknownSymbolEmpty(t *testing.T) {
	j, err := NewSQLite(filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	defer j.Close()

	records, err := j.ListBySymbol("0000", 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
