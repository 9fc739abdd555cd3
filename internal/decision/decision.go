package decision

import (
	"fmt"
	"math"

	"github.com/kissncome-byte/stock-app/internal/indicator"
	"github.com/kissncome-byte/stock-app/pkg/model"
)

// Scenario identifies a trade-plan template.
type Scenario string

const (
	ScenarioBreakout Scenario = "breakout"
	ScenarioPullback Scenario = "pullback"
)

// SetupPolicy controls whether a failed setup disables a leg or is shown
// as context only.
type SetupPolicy string

const (
	// SetupInformational prices and sizes a leg on gates and reward:risk
	// alone; the setup flag is reported alongside the plan.
	SetupInformational SetupPolicy = "informational"

	// SetupStrict additionally requires the scenario setup to hold.
	SetupStrict SetupPolicy = "strict"
)

// RiskParameters define the capital-risk budget for one trade.
type RiskParameters struct {
	TotalCapital    float64 `json:"total_capital" yaml:"total_capital"`
	RiskPerTradePct float64 `json:"risk_per_trade_pct" yaml:"risk_per_trade_pct"`
}

// Budget returns the currency amount risked per trade.
func (r RiskParameters) Budget() float64 {
	return r.TotalCapital * r.RiskPerTradePct / 100
}

// Thresholds hold the hard gate and enablement limits, constant per request.
type Thresholds struct {
	MinHistoryBars       int         `json:"min_history_bars" yaml:"min_history_bars"`
	MinLiquidityTurnover float64     `json:"min_liquidity_turnover" yaml:"min_liquidity_turnover"` // hundred-million TWD
	MaxATRPctBreakout    float64     `json:"max_atr_pct_breakout" yaml:"max_atr_pct_breakout"`
	MaxATRPctPullback    float64     `json:"max_atr_pct_pullback" yaml:"max_atr_pct_pullback"`
	MinRRBreakout        float64     `json:"min_rr_breakout" yaml:"min_rr_breakout"`
	MinRRPullback        float64     `json:"min_rr_pullback" yaml:"min_rr_pullback"`
	SlippageTicks        int         `json:"slippage_ticks" yaml:"slippage_ticks"`
	SetupPolicy          SetupPolicy `json:"setup_policy" yaml:"setup_policy"`
}

// DefaultThresholds returns the standard gate configuration. Pullback
// demands a higher reward:risk than breakout: buying into a decline
// carries the adverse-selection risk that the decline continues.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinHistoryBars:       120,
		MinLiquidityTurnover: 0.5, // 50M TWD average daily turnover
		MaxATRPctBreakout:    0.06,
		MaxATRPctPullback:    0.045,
		MinRRBreakout:        2.0,
		MinRRPullback:        3.0,
		SlippageTicks:        2,
		SetupPolicy:          SetupInformational,
	}
}

// Gates are the hard pass/fail preconditions for one leg.
type Gates struct {
	History    bool `json:"history"`
	Liquidity  bool `json:"liquidity"`
	Volatility bool `json:"volatility"`
}

// Pass reports whether every gate passed.
func (g Gates) Pass() bool { return g.History && g.Liquidity && g.Volatility }

// Leg is one scenario's plan output. A leg that fails its gates or
// reward:risk floor is still priced as a plan on file, but Enabled is
// false and Lots is 0 — it is not actionable.
type Leg struct {
	Scenario   Scenario `json:"scenario"`
	Entry      float64  `json:"entry_price"`
	Stop       float64  `json:"stop_price"`
	Target     float64  `json:"target_price"`
	RewardRisk float64  `json:"reward_to_risk"`
	Setup      bool     `json:"setup_satisfied"`
	Gates      Gates    `json:"gates"`
	Enabled    bool     `json:"enabled"`
	Lots       int      `json:"position_lots"`
	Strength   float64  `json:"strength"`
	Signals    []Signal `json:"signals"`
	Note       string   `json:"note,omitempty"`
}

// Decision is the full structured output of one plan computation.
type Decision struct {
	Symbol         string        `json:"symbol"`
	CurrentPrice   float64       `json:"current_price"`
	PriceSource    string        `json:"price_source"` // "quote" or "last_close"
	Tick           float64       `json:"tick_size"`
	SlippageBuffer float64       `json:"slippage_buffer"`
	Bars           int           `json:"bars"`
	Last           indicator.Row `json:"last"`
	Levels         Levels        `json:"levels"`
	RiskBudget     float64       `json:"risk_budget"`
	Breakout       Leg           `json:"breakout"`
	Pullback       Leg           `json:"pullback"`
}

// Compute evaluates gates, setups and both scenario legs for one symbol.
// It is a pure function of its inputs: same series, quote and parameters
// always produce the same decision.
func Compute(symbol string, series *indicator.Series, quote *model.Quote, risk RiskParameters, th Thresholds) (*Decision, error) {
	if risk.TotalCapital <= 0 {
		return nil, fmt.Errorf("%w: total capital must be positive", indicator.ErrInvalidInput)
	}
	if risk.RiskPerTradePct <= 0 || risk.RiskPerTradePct > 100 {
		return nil, fmt.Errorf("%w: risk per trade must be in (0, 100]", indicator.ErrInvalidInput)
	}

	bars := series.Len()
	if bars < PivotPeriod {
		return nil, fmt.Errorf("%w: need %d bars for pivot, got %d", indicator.ErrInsufficientHistory, PivotPeriod, bars)
	}

	last := series.Last()

	price := last.Close
	source := "last_close"
	if quote.Valid() {
		price = quote.Price
		source = "quote"
	}
	if price <= 0 || math.IsNaN(price) {
		return nil, fmt.Errorf("%w: current price %.4f", indicator.ErrInvalidInput, price)
	}

	tick := TickSize(price)
	slip := float64(th.SlippageTicks) * tick
	levels := ComputeLevels(series)

	atr := last.ATR14.V
	ma20 := last.MA20.V
	atrPct := atr / price

	historyOK := bars >= th.MinHistoryBars
	liquidityOK := last.TurnoverMA20.V >= th.MinLiquidityTurnover

	// Today's volume: live cumulative lots when a quote is present,
	// otherwise the last completed session.
	todayVolume := float64(last.Volume)
	if quote.Valid() && quote.Volume > 0 {
		todayVolume = float64(quote.Volume)
	}
	volumeAboveAvg := todayVolume > last.VolumeMA20.V

	d := &Decision{
		Symbol:         symbol,
		CurrentPrice:   price,
		PriceSource:    source,
		Tick:           tick,
		SlippageBuffer: slip,
		Bars:           bars,
		Last:           last,
		Levels:         levels,
		RiskBudget:     risk.Budget(),
	}

	// Breakout: price has cleared the 60-bar pivot with trend and
	// volume-flow confirmation.
	breakoutCalm := atrPct <= th.MaxATRPctBreakout
	breakoutSetup := price >= levels.Pivot60+tick &&
		price > ma20 &&
		last.OBV > last.OBVMA10.V

	bSignals := breakoutSignals(
		price >= levels.Pivot60+tick,
		price > ma20,
		last.OBV > last.OBVMA10.V,
		volumeAboveAvg,
		liquidityOK,
		breakoutCalm,
	)

	bEntry := RoundToTick(levels.Pivot60+tick, tick)
	bStop := RoundToTick(bEntry-1.5*atr-slip, tick)
	bTarget := levels.NextResistanceAbove(bEntry)
	d.Breakout = buildLeg(ScenarioBreakout, bEntry, bStop, bTarget, breakoutSetup,
		Gates{History: historyOK, Liquidity: liquidityOK, Volatility: breakoutCalm},
		th.MinRRBreakout, th.SetupPolicy, slip, risk.Budget(), series.Options().SharesPerLot, bSignals)

	// Pullback: price has drifted back onto a rising MA20 without
	// breaking it by more than one ATR.
	pullbackCalm := atrPct <= th.MaxATRPctPullback
	ma20Rising := false
	if prior, ok := series.At(6); ok && prior.MA20.Valid {
		ma20Rising = ma20 > prior.MA20.V
	}
	atOrAbove := price >= ma20
	withinOneATR := price <= ma20+atr
	pullbackSetup := ma20Rising && atOrAbove && withinOneATR

	pSignals := pullbackSignals(
		ma20Rising,
		atOrAbove,
		withinOneATR,
		todayVolume < last.VolumeMA20.V,
		liquidityOK,
		pullbackCalm,
	)

	pEntry := RoundToTick(ma20+0.2*atr, tick)
	pStop := RoundToTick(pEntry-1.2*atr-slip, tick)
	pTarget := levels.Pivot60
	if pTarget <= pEntry {
		pTarget = levels.NextResistanceAbove(pEntry)
	}
	d.Pullback = buildLeg(ScenarioPullback, pEntry, pStop, pTarget, pullbackSetup,
		Gates{History: historyOK, Liquidity: liquidityOK, Volatility: pullbackCalm},
		th.MinRRPullback, th.SetupPolicy, slip, risk.Budget(), series.Options().SharesPerLot, pSignals)

	return d, nil
}

// buildLeg prices, scores and sizes one scenario leg. A zero or negative
// stop distance, or no resistance above entry, degrades the leg to a
// non-actionable plan on file instead of raising.
func buildLeg(scenario Scenario, entry, stop, target float64, setup bool, gates Gates,
	minRR float64, policy SetupPolicy, slip, budget float64, sharesPerLot int, signals []Signal) Leg {

	leg := Leg{
		Scenario: scenario,
		Entry:    entry,
		Stop:     stop,
		Target:   target,
		Setup:    setup,
		Gates:    gates,
		Strength: Score(signals),
		Signals:  signals,
	}

	dist := entry - stop
	switch {
	case entry <= 0:
		leg.Note = "entry price unavailable"
		return leg
	case dist <= 0:
		leg.Note = "degenerate stop distance"
		return leg
	case target <= entry:
		leg.Note = "no resistance above entry"
		return leg
	}

	leg.RewardRisk = (target - entry) / dist

	leg.Enabled = gates.Pass() && leg.RewardRisk >= minRR
	if policy == SetupStrict {
		leg.Enabled = leg.Enabled && setup
	}

	if leg.Enabled {
		perLot := (dist + slip) * float64(sharesPerLot)
		if perLot > 0 {
			leg.Lots = int(math.Floor(budget / perLot))
		}
	}

	switch {
	case !leg.Enabled && !gates.Pass():
		leg.Note = "gates failed"
	case !leg.Enabled && leg.RewardRisk < minRR:
		leg.Note = fmt.Sprintf("reward:risk %.2f below %.1f", leg.RewardRisk, minRR)
	case !leg.Enabled:
		leg.Note = "setup not satisfied"
	}

	return leg
}
