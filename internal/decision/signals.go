package decision

// Signal is one named scenario condition with a documented score weight.
// Scenario strength is the sum of hit signal weights through Score — every
// contribution to the aggregate is enumerable and testable on its own.
type Signal struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Hit    bool    `json:"hit"`
}

// Score aggregates hit signal weights, capped at 100.
func Score(signals []Signal) float64 {
	var score float64
	for _, s := range signals {
		if s.Hit {
			score += s.Weight
		}
	}
	if score > 100 {
		score = 100
	}
	return score
}

// breakoutSignals enumerates the breakout scenario conditions.
// Core price/flow confirmations carry 65 points, context the rest.
func breakoutSignals(clearedPivot, aboveMA20, obvConfirm, volumeAboveAvg, liquid, calm bool) []Signal {
	return []Signal{
		{Name: "price_cleared_pivot", Weight: 25, Hit: clearedPivot},
		{Name: "above_ma20", Weight: 20, Hit: aboveMA20},
		{Name: "obv_above_ma10", Weight: 20, Hit: obvConfirm},
		{Name: "volume_above_avg", Weight: 15, Hit: volumeAboveAvg},
		{Name: "liquidity_ok", Weight: 10, Hit: liquid},
		{Name: "volatility_in_range", Weight: 10, Hit: calm},
	}
}

// pullbackSignals enumerates the pullback scenario conditions.
// Low volume is a positive here: a quiet drift back to a rising MA20 is
// weak selling, not distribution.
func pullbackSignals(ma20Rising, atOrAboveMA20, withinOneATR, volumeBelowAvg, liquid, calm bool) []Signal {
	return []Signal{
		{Name: "ma20_rising", Weight: 25, Hit: ma20Rising},
		{Name: "at_or_above_ma20", Weight: 20, Hit: atOrAboveMA20},
		{Name: "within_one_atr_of_ma20", Weight: 20, Hit: withinOneATR},
		{Name: "volume_below_avg", Weight: 15, Hit: volumeBelowAvg},
		{Name: "liquidity_ok", Weight: 10, Hit: liquid},
		{Name: "volatility_in_range", Weight: 10, Hit: calm},
	}
}
