// Package planner splits a weekly spending budget across the seven days of
// the week.
package planner

import (
	"fmt"
	"math"

	"finsmart/internal/core"
)

// Days in plan order.
var Days = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// shareTolerance is how far the share percentages may drift from 100 and
// still be accepted, absorbing sliders and rounded manual input.
const shareTolerance = 0.1

// DayAllocation is one day's slice of the weekly budget.
type DayAllocation struct {
	Day     string  `json:"day"`
	Percent float64 `json:"percent"`
	Amount  float64 `json:"amount"`
}

// WeeklyPlan is a full Monday-to-Sunday allocation.
type WeeklyPlan struct {
	Budget float64         `json:"budget"`
	Days   []DayAllocation `json:"days"`
}

// EqualSplit returns seven equal shares summing to 100.
func EqualSplit() [7]float64 {
	var shares [7]float64
	for i := range shares {
		shares[i] = 100.0 / 7
	}
	return shares
}

// Plan allocates a weekly budget by the given day shares. The shares must be
// non-negative percentages summing to 100 within the tolerance.
func Plan(weeklyBudget float64, shares [7]float64) (WeeklyPlan, error) {
	if weeklyBudget < 0 || math.IsNaN(weeklyBudget) || math.IsInf(weeklyBudget, 0) {
		return WeeklyPlan{}, fmt.Errorf("%w: weekly budget must be a non-negative number", core.ErrValidation)
	}

	var sum float64
	for i, s := range shares {
		if s < 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return WeeklyPlan{}, fmt.Errorf("%w: %s share must be a non-negative percentage", core.ErrValidation, Days[i])
		}
		sum += s
	}
	if math.Abs(sum-100) > shareTolerance {
		return WeeklyPlan{}, fmt.Errorf("%w: day shares sum to %.2f%%, expected 100%%", core.ErrValidation, sum)
	}

	plan := WeeklyPlan{Budget: weeklyBudget, Days: make([]DayAllocation, 7)}
	for i, s := range shares {
		plan.Days[i] = DayAllocation{
			Day:     Days[i],
			Percent: s,
			Amount:  weeklyBudget * s / 100,
		}
	}
	return plan, nil
}
