package weather

import "math"

const (
	extremeHeatC = 35.0
	extremeColdC = 0.0

	stormRiskHighPct     = 70.0
	stormRiskModeratePct = 40.0
)

// DeriveSignals computes betting hints from the daily forecast. The first
// daily sample is today. With no daily data every signal is zero and the
// storm risk is low.
func DeriveSignals(daily []DailySample) Signals {
	if len(daily) == 0 {
		return Signals{StormRisk: StormRiskLow}
	}

	today := daily[0]

	var sumMax float64
	for _, d := range daily {
		sumMax += d.MaxC
	}
	weekAvgMax := sumMax / float64(len(daily))

	return Signals{
		TempAnomaly:     round1(today.MaxC - weekAvgMax),
		StormRisk:       stormRiskFor(today.PrecipProbMaxPct),
		ExtremeHeatRisk: today.MaxC >= extremeHeatC,
		ExtremeColdRisk: today.MinC <= extremeColdC,
		TodayMaxTemp:    roundInt(today.MaxC),
		TodayMinTemp:    roundInt(today.MinC),
	}
}

func stormRiskFor(precipProbPct float64) StormRisk {
	switch {
	case precipProbPct >= stormRiskHighPct:
		return StormRiskHigh
	case precipProbPct >= stormRiskModeratePct:
		return StormRiskModerate
	default:
		return StormRiskLow
	}
}

// roundInt rounds half up, so -2.5 becomes -2 rather than -3.
func roundInt(f float64) int {
	return int(math.Floor(f + 0.5))
}

func round1(f float64) float64 {
	return math.Floor(f*10+0.5) / 10
}
