package decision

import "github.com/kissncome-byte/stock-app/internal/indicator"

// Reference-level lookbacks in trading days.
const (
	PivotPeriod  = 60
	Res120Period = 120
	Res252Period = 252
)

// Levels are historical resistance references used as profit targets.
// Targets come from actual prior highs rather than ATR multiples: an ATR
// multiple lands wherever volatility says, with no supply behind it, while
// a prior high is a level other holders are watching.
type Levels struct {
	Pivot60 float64 `json:"pivot_60"`
	Res120  float64 `json:"res_120"`
	Res252  float64 `json:"res_252"`
}

// ComputeLevels derives the resistance ladder from the series. The caller
// must guarantee at least PivotPeriod bars; the longer lookbacks fall back
// to the next shorter level when history is thinner.
func ComputeLevels(s *indicator.Series) Levels {
	l := Levels{Pivot60: s.HighestHigh(PivotPeriod)}

	l.Res120 = s.HighestHigh(Res120Period)
	if l.Res120 == 0 {
		l.Res120 = l.Pivot60
	}

	l.Res252 = s.HighestHigh(Res252Period)
	if l.Res252 == 0 {
		l.Res252 = l.Res120
	}

	return l
}

// NextResistanceAbove returns the lowest level on the ladder strictly
// above the given price, or 0 when every level is at or below it.
func (l Levels) NextResistanceAbove(price float64) float64 {
	for _, level := range []float64{l.Pivot60, l.Res120, l.Res252} {
		if level > price {
			return level
		}
	}
	return 0
}
