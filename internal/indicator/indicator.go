package indicator

import (
	"errors"
	"fmt"
	"math"

	"github.com/kissncome-byte/stock-app/pkg/model"
)

var (
	// ErrInvalidInput marks malformed bar input: non-positive prices,
	// duplicate or out-of-order dates.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientHistory marks a series too short for every indicator
	// to be defined on the last row.
	ErrInsufficientHistory = errors.New("insufficient history")
)

// Lookback windows. MAPeriod is the longest, so it determines the minimum
// series length for a fully-defined last row.
const (
	ATRPeriod   = 14
	MAPeriod    = 20
	OBVMAPeriod = 10
)

// Value is an indicator sample that may lack enough lookback at a given
// row. Rows keep their place in the series; only the sample is marked
// unavailable.
type Value struct {
	V     float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// Row is a daily bar augmented with indicator columns.
type Row struct {
	model.Bar

	TrueRange    float64 `json:"true_range"`
	ATR14        Value   `json:"atr14"`
	MA20         Value   `json:"ma20"`
	VolumeMA20   Value   `json:"ma20_volume"`
	TurnoverMA20 Value   `json:"ma20_turnover"` // in Options.TurnoverUnit
	OBV          float64 `json:"obv"`
	OBVMA10      Value   `json:"obv_ma10"`
}

// Options controls unit scaling for turnover-derived indicators.
type Options struct {
	SharesPerLot int     // shares per board lot (1000 on TWSE)
	TurnoverUnit float64 // divisor for turnover averages (1e8 = hundred-million TWD)
}

// DefaultOptions returns TWSE conventions.
func DefaultOptions() Options {
	return Options{
		SharesPerLot: 1000,
		TurnoverUnit: 1e8,
	}
}

// Series is an immutable indicator-augmented bar sequence. Compute is the
// only constructor; rows are ordered by date ascending.
type Series struct {
	rows []Row
	opts Options
}

// Len returns the number of rows.
func (s *Series) Len() int { return len(s.rows) }

// Rows returns the augmented rows in date order.
func (s *Series) Rows() []Row { return s.rows }

// Last returns the most recent row. Compute guarantees at least MAPeriod
// rows, so Last is always safe on a constructed Series.
func (s *Series) Last() Row { return s.rows[len(s.rows)-1] }

// At returns the row offset bars back from the end (0 = last row).
func (s *Series) At(offset int) (Row, bool) {
	i := len(s.rows) - 1 - offset
	if i < 0 {
		return Row{}, false
	}
	return s.rows[i], true
}

// HighestHigh returns the maximum high over the trailing period bars,
// or 0 when the series is shorter than period.
func (s *Series) HighestHigh(period int) float64 {
	if period <= 0 || len(s.rows) < period {
		return 0
	}
	high := 0.0
	for i := len(s.rows) - period; i < len(s.rows); i++ {
		if s.rows[i].High > high {
			high = s.rows[i].High
		}
	}
	return high
}

// Options returns the unit options the series was computed with.
func (s *Series) Options() Options { return s.opts }

// Normalize filters a raw bar sequence down to real trading sessions:
// zero-volume placeholder rows and rows with unusable prices are dropped.
// Duplicate or out-of-order dates are rejected, not reordered.
func Normalize(bars []model.Bar) ([]model.Bar, error) {
	out := make([]model.Bar, 0, len(bars))
	for _, b := range bars {
		if b.Volume == 0 {
			continue // non-trading placeholder
		}
		if b.Volume < 0 {
			return nil, fmt.Errorf("%w: negative volume on %s", ErrInvalidInput, b.Date.Format("2006-01-02"))
		}
		if !usablePrice(b.High) || !usablePrice(b.Low) || !usablePrice(b.Close) {
			continue // unparsable/missing price fields
		}
		if n := len(out); n > 0 {
			prev := out[n-1].Date
			if !b.Date.After(prev) {
				return nil, fmt.Errorf("%w: bar date %s not after %s",
					ErrInvalidInput, b.Date.Format("2006-01-02"), prev.Format("2006-01-02"))
			}
		}
		out = append(out, b)
	}
	return out, nil
}

func usablePrice(p float64) bool {
	return p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}

// Compute builds the indicator series for a raw daily bar sequence.
// It fails with ErrInsufficientHistory unless the last row has every
// indicator available (MAPeriod bars after normalization).
func Compute(bars []model.Bar, opts Options) (*Series, error) {
	if opts.SharesPerLot <= 0 {
		return nil, fmt.Errorf("%w: shares per lot must be positive", ErrInvalidInput)
	}
	if opts.TurnoverUnit <= 0 {
		return nil, fmt.Errorf("%w: turnover unit must be positive", ErrInvalidInput)
	}

	clean, err := Normalize(bars)
	if err != nil {
		return nil, err
	}
	if len(clean) < MAPeriod {
		return nil, fmt.Errorf("%w: need %d trading bars, got %d", ErrInsufficientHistory, MAPeriod, len(clean))
	}

	rows := make([]Row, len(clean))

	var atr, obv, closeSum, volSum, turnSum, obvSum float64
	obvWindow := make([]float64, 0, OBVMAPeriod)

	for i, b := range clean {
		row := Row{Bar: b}

		// True Range; the first row has no prior close to gap against.
		if i == 0 {
			row.TrueRange = b.High - b.Low
		} else {
			prevClose := clean[i-1].Close
			row.TrueRange = math.Max(b.High-b.Low,
				math.Max(math.Abs(b.High-prevClose), math.Abs(b.Low-prevClose)))
		}

		// Wilder ATR: seeded with the first TR, then recursive smoothing.
		// A boxcar mean overreacts to single-day spikes; stop distances
		// are sized off this value, so the slower response is required.
		if i == 0 {
			atr = row.TrueRange
		} else {
			atr += (row.TrueRange - atr) / float64(ATRPeriod)
		}
		row.ATR14 = Value{V: atr, Valid: i >= ATRPeriod-1}

		// OBV: signed volume cumulative sum.
		if i > 0 {
			switch {
			case b.Close > clean[i-1].Close:
				obv += float64(b.Volume)
			case b.Close < clean[i-1].Close:
				obv -= float64(b.Volume)
			}
		}
		row.OBV = obv

		obvWindow = append(obvWindow, obv)
		obvSum += obv
		if len(obvWindow) > OBVMAPeriod {
			obvSum -= obvWindow[0]
			obvWindow = obvWindow[1:]
		}
		if len(obvWindow) == OBVMAPeriod {
			row.OBVMA10 = Value{V: obvSum / OBVMAPeriod, Valid: true}
		}

		// 20-bar rolling means of close, volume and turnover.
		turnover := b.Turnover
		if turnover == 0 {
			turnover = b.Close * float64(b.Volume) * float64(opts.SharesPerLot)
		}
		closeSum += b.Close
		volSum += float64(b.Volume)
		turnSum += turnover
		if i >= MAPeriod {
			old := clean[i-MAPeriod]
			closeSum -= old.Close
			volSum -= float64(old.Volume)
			oldTurn := old.Turnover
			if oldTurn == 0 {
				oldTurn = old.Close * float64(old.Volume) * float64(opts.SharesPerLot)
			}
			turnSum -= oldTurn
		}
		if i >= MAPeriod-1 {
			row.MA20 = Value{V: closeSum / MAPeriod, Valid: true}
			row.VolumeMA20 = Value{V: volSum / MAPeriod, Valid: true}
			row.TurnoverMA20 = Value{V: turnSum / MAPeriod / opts.TurnoverUnit, Valid: true}
		}

		rows[i] = row
	}

	last := rows[len(rows)-1]
	if !last.ATR14.Valid || !last.MA20.Valid || !last.VolumeMA20.Valid ||
		!last.TurnoverMA20.Valid || !last.OBVMA10.Valid {
		return nil, fmt.Errorf("%w: last row indicators not fully available", ErrInsufficientHistory)
	}

	return &Series{rows: rows, opts: opts}, nil
}
