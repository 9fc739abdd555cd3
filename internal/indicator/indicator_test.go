package indicator

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kissncome-byte/stock-app/pkg/model"
)

func makeBars(closes []float64, volume int64) []model.Bar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: volume,
		}
	}
	return bars
}

func constantCloses(n int, price float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = price
	}
	return closes
}

func risingCloses(n int, start, step float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + float64(i)*step
	}
	return closes
}

func TestComputeInsufficientHistory(t *testing.T) {
	bars := makeBars(risingCloses(MAPeriod-1, 100, 0.5), 1000)

	_, err := Compute(bars, DefaultOptions())
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestComputeRejectsOutOfOrderDates(t *testing.T) {
	bars := makeBars(risingCloses(30, 100, 0.5), 1000)
	bars[10].Date = bars[9].Date // duplicate

	_, err := Compute(bars, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestComputeRejectsBadOptions(t *testing.T) {
	bars := makeBars(risingCloses(30, 100, 0.5), 1000)

	_, err := Compute(bars, Options{SharesPerLot: 0, TurnoverUnit: 1e8})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Compute(bars, Options{SharesPerLot: 1000, TurnoverUnit: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTrueRangeFlatSeries(t *testing.T) {
	// Constant close with a 2-point range: TR is 2 on every bar, so the
	// Wilder ATR stays exactly 2 regardless of the seed path.
	bars := makeBars(constantCloses(30, 100), 1000)

	s, err := Compute(bars, DefaultOptions())
	require.NoError(t, err)

	for _, row := range s.Rows() {
		assert.Equal(t, 2.0, row.TrueRange)
	}
	last := s.Last()
	assert.True(t, last.ATR14.Valid)
	assert.InDelta(t, 2.0, last.ATR14.V, 1e-9)
}

func TestTrueRangeIncludesGap(t *testing.T) {
	closes := constantCloses(25, 100)
	closes[12] = 110 // gap up: TR must span back to the prior close

	bars := makeBars(closes, 1000)
	s, err := Compute(bars, DefaultOptions())
	require.NoError(t, err)

	row := s.Rows()[12]
	// high = 111, prior close = 100
	assert.InDelta(t, 11.0, row.TrueRange, 1e-9)

	for _, r := range s.Rows() {
		assert.GreaterOrEqual(t, r.TrueRange, r.High-r.Low)
		if r.ATR14.Valid {
			assert.GreaterOrEqual(t, r.ATR14.V, 0.0)
		}
	}
}

func TestATRValidityWindow(t *testing.T) {
	bars := makeBars(risingCloses(40, 100, 0.5), 1000)
	s, err := Compute(bars, DefaultOptions())
	require.NoError(t, err)

	rows := s.Rows()
	assert.False(t, rows[ATRPeriod-2].ATR14.Valid)
	assert.True(t, rows[ATRPeriod-1].ATR14.Valid)
}

func TestMA20Value(t *testing.T) {
	closes := risingCloses(25, 1, 1) // closes 1..25
	bars := makeBars(closes, 1000)

	s, err := Compute(bars, DefaultOptions())
	require.NoError(t, err)

	// Last 20 closes are 6..25, mean 15.5
	last := s.Last()
	require.True(t, last.MA20.Valid)
	assert.InDelta(t, 15.5, last.MA20.V, 1e-9)

	rows := s.Rows()
	assert.False(t, rows[MAPeriod-2].MA20.Valid)
	assert.True(t, rows[MAPeriod-1].MA20.Valid)
}

func TestOBVDecomposition(t *testing.T) {
	closes := []float64{100, 101, 101, 99, 102, 102, 98, 103, 104, 100,
		101, 105, 105, 103, 106, 107, 104, 108, 109, 110, 108, 111, 112, 110, 113}
	bars := makeBars(closes, 500)

	s, err := Compute(bars, DefaultOptions())
	require.NoError(t, err)

	rows := s.Rows()
	for i := 1; i < len(rows); i++ {
		delta := rows[i].OBV - rows[i-1].OBV
		switch {
		case rows[i].Close > rows[i-1].Close:
			assert.Equal(t, float64(rows[i].Volume), delta, "up day at %d", i)
		case rows[i].Close < rows[i-1].Close:
			assert.Equal(t, -float64(rows[i].Volume), delta, "down day at %d", i)
		default:
			assert.Zero(t, delta, "flat day at %d", i)
		}
	}
}

func TestOBVMA10(t *testing.T) {
	bars := makeBars(risingCloses(30, 100, 1), 700)
	s, err := Compute(bars, DefaultOptions())
	require.NoError(t, err)

	rows := s.Rows()
	var sum float64
	for i := len(rows) - OBVMAPeriod; i < len(rows); i++ {
		sum += rows[i].OBV
	}
	last := s.Last()
	require.True(t, last.OBVMA10.Valid)
	assert.InDelta(t, sum/OBVMAPeriod, last.OBVMA10.V, 1e-6)

	assert.False(t, rows[OBVMAPeriod-2].OBVMA10.Valid)
	assert.True(t, rows[OBVMAPeriod-1].OBVMA10.Valid)
}

func TestTurnoverDerivedFromCloseAndVolume(t *testing.T) {
	bars := makeBars(constantCloses(25, 100), 2000)
	opts := DefaultOptions()

	s, err := Compute(bars, opts)
	require.NoError(t, err)

	// 100 TWD x 2000 lots x 1000 shares = 2e8 TWD = 2.0 hundred-million
	last := s.Last()
	require.True(t, last.TurnoverMA20.Valid)
	assert.InDelta(t, 2.0, last.TurnoverMA20.V, 1e-9)
}

func TestTurnoverSuppliedByProvider(t *testing.T) {
	bars := makeBars(constantCloses(25, 100), 2000)
	for i := range bars {
		bars[i].Turnover = 3e8
	}

	s, err := Compute(bars, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 3.0, s.Last().TurnoverMA20.V, 1e-9)
}

func TestZeroVolumeRowsExcluded(t *testing.T) {
	closes := risingCloses(30, 100, 0.5)
	withPlaceholder := makeBars(closes, 1000)
	// Inject a non-trading placeholder mid-series
	placeholder := withPlaceholder[14]
	placeholder.Volume = 0
	withPlaceholder = append(withPlaceholder[:15],
		append([]model.Bar{placeholder}, withPlaceholder[15:]...)...)
	// Keep dates strictly ascending after the insert
	for i := range withPlaceholder {
		withPlaceholder[i].Date = withPlaceholder[0].Date.AddDate(0, 0, i)
	}

	without := makeBars(closes, 1000)

	a, err := Compute(withPlaceholder, DefaultOptions())
	require.NoError(t, err)
	b, err := Compute(without, DefaultOptions())
	require.NoError(t, err)

	require.Equal(t, b.Len(), a.Len())
	ra, rb := a.Rows(), b.Rows()
	for i := range rb {
		assert.Equal(t, rb[i].Close, ra[i].Close, "row %d", i)
		assert.InDelta(t, rb[i].ATR14.V, ra[i].ATR14.V, 1e-9, "atr row %d", i)
		assert.InDelta(t, rb[i].OBV, ra[i].OBV, 1e-9, "obv row %d", i)
		assert.InDelta(t, rb[i].MA20.V, ra[i].MA20.V, 1e-9, "ma20 row %d", i)
	}
}

func TestUnusablePriceRowsDropped(t *testing.T) {
	bars := makeBars(risingCloses(30, 100, 0.5), 1000)
	bars[5].Close = math.NaN()

	clean, err := Normalize(bars)
	require.NoError(t, err)
	assert.Len(t, clean, 29)
}

func TestHighestHigh(t *testing.T) {
	closes := risingCloses(30, 100, 1)
	closes[10] = 200 // spike
	bars := makeBars(closes, 1000)

	s, err := Compute(bars, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 201.0, s.HighestHigh(30))  // includes the spike high
	assert.Equal(t, 130.0, s.HighestHigh(10))  // trailing 10 bars only
	assert.Equal(t, 0.0, s.HighestHigh(31))    // not enough bars
	assert.Equal(t, 0.0, s.HighestHigh(0))
}

func TestErrorsAreTyped(t *testing.T) {
	_, err := Compute(nil, DefaultOptions())
	assert.True(t, errors.Is(err, ErrInsufficientHistory))
}
