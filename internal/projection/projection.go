// Package projection computes investment growth series: periodic monthly
// investments, lump sums, and inflation-adjusted variants. Values are plain
// float64 rather than cents because projections are estimates, not ledger
// entries.
package projection

import (
	"fmt"
	"math"

	"finsmart/internal/core"
)

// Point is one step of a growth series. For a periodic investment Period is
// the 1-based month number; for a lump sum it is the elapsed year (starting
// at 0). Invested carries the cumulative contribution up to that point.
type Point struct {
	Period   int     `json:"period"`
	Invested float64 `json:"invested"`
	Value    float64 `json:"value"`
}

// Summary condenses a series into the headline figures.
type Summary struct {
	TotalInvested float64 `json:"total_invested"`
	FinalValue    float64 `json:"final_value"`
	WealthGained  float64 `json:"wealth_gained"`
	GainPercent   float64 `json:"gain_percent"`
}

// Result is a complete projection: the series plus its summary.
type Result struct {
	Points  []Point `json:"points"`
	Summary Summary `json:"summary"`
}

// MonthlyRate converts an annual percentage rate into the equivalent
// compound monthly rate.
func MonthlyRate(annualPct float64) float64 {
	return math.Pow(1+annualPct/100, 1.0/12) - 1
}

// PeriodicInvestment projects a fixed monthly contribution compounding at the
// given annual rate. Each month grows the running value first, then adds the
// contribution, producing exactly years*12 points.
func PeriodicInvestment(monthly, annualRatePct float64, years int) (Result, error) {
	if err := checkInputs(monthly, annualRatePct, years); err != nil {
		return Result{}, err
	}

	r := MonthlyRate(annualRatePct)
	months := years * 12
	points := make([]Point, 0, months)

	var value float64
	for m := 1; m <= months; m++ {
		value = value*(1+r) + monthly
		points = append(points, Point{
			Period:   m,
			Invested: monthly * float64(m),
			Value:    value,
		})
	}
	return Result{Points: points, Summary: summarize(points)}, nil
}

// LumpSum projects a one-time investment compounding annually. It returns
// years+1 points, from year 0 (the principal itself) through the final year.
func LumpSum(principal, annualRatePct float64, years int) (Result, error) {
	if err := checkInputs(principal, annualRatePct, years); err != nil {
		return Result{}, err
	}

	points := make([]Point, 0, years+1)
	for y := 0; y <= years; y++ {
		points = append(points, Point{
			Period:   y,
			Invested: principal,
			Value:    principal * math.Pow(1+annualRatePct/100, float64(y)),
		})
	}
	return Result{Points: points, Summary: summarize(points)}, nil
}

// InflationAdjust deflates a future value into today's purchasing power.
// Fractional years are fine; zero inflation leaves the value unchanged.
func InflationAdjust(value, annualInflationPct, elapsedYears float64) float64 {
	if annualInflationPct == 0 {
		return value
	}
	return value / math.Pow(1+annualInflationPct/100, elapsedYears)
}

// AdjustSeries returns a copy of a periodic series with every value deflated
// by the elapsed time at that point (Period months for a monthly series).
func AdjustSeries(points []Point, annualInflationPct float64) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		p.Value = InflationAdjust(p.Value, annualInflationPct, float64(p.Period)/12)
		out[i] = p
	}
	return out
}

// RealReturnRate is the inflation-adjusted annual return as a fraction
// (not a percentage): (1+nominal)/(1+inflation) - 1.
func RealReturnRate(nominalPct, inflationPct float64) float64 {
	return (1+nominalPct/100)/(1+inflationPct/100) - 1
}

// PeriodicAdjustedFinal computes the inflation-adjusted final value of a
// monthly investment in closed form over the real rate. When the real rate is
// zero (nominal return exactly offsets inflation) the geometric series
// degenerates and the result is simply the sum of contributions.
func PeriodicAdjustedFinal(monthly, nominalPct, inflationPct float64, years int) (float64, error) {
	if err := checkInputs(monthly, nominalPct, years); err != nil {
		return 0, err
	}

	months := float64(years * 12)
	real := RealReturnRate(nominalPct, inflationPct)
	mr := math.Pow(1+real, 1.0/12) - 1
	if mr == 0 {
		return monthly * months, nil
	}
	return monthly * (math.Pow(1+mr, months) - 1) / mr, nil
}

// RateOutcome pairs one annual rate with its projection summary.
type RateOutcome struct {
	AnnualRatePct float64 `json:"annual_rate_pct"`
	Summary       Summary `json:"summary"`
}

// CompareRates projects the same monthly investment at several annual rates,
// one outcome per rate in input order.
func CompareRates(monthly float64, years int, rates []float64) ([]RateOutcome, error) {
	out := make([]RateOutcome, 0, len(rates))
	for _, rate := range rates {
		res, err := PeriodicInvestment(monthly, rate, years)
		if err != nil {
			return nil, err
		}
		out = append(out, RateOutcome{AnnualRatePct: rate, Summary: res.Summary})
	}
	return out, nil
}

func summarize(points []Point) Summary {
	if len(points) == 0 {
		return Summary{}
	}
	last := points[len(points)-1]
	s := Summary{
		TotalInvested: last.Invested,
		FinalValue:    last.Value,
		WealthGained:  last.Value - last.Invested,
	}
	if s.TotalInvested > 0 {
		s.GainPercent = s.WealthGained / s.TotalInvested * 100
	}
	return s
}

func checkInputs(amount, ratePct float64, years int) error {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: amount must be a non-negative number", core.ErrValidation)
	}
	if ratePct < 0 || math.IsNaN(ratePct) || math.IsInf(ratePct, 0) {
		return fmt.Errorf("%w: rate must be a non-negative percentage", core.ErrValidation)
	}
	if years <= 0 {
		return fmt.Errorf("%w: years must be positive", core.ErrValidation)
	}
	return nil
}
