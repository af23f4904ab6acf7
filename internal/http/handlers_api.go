// JSON API for investment projections and the weekly planner.
package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"finsmart/internal/core"
	"finsmart/internal/planner"
	"finsmart/internal/projection"
)

// projectionResponse carries the nominal series plus the optional
// inflation-adjusted view when an inflation rate is given.
type projectionResponse struct {
	Points  []projection.Point `json:"points"`
	Summary projection.Summary `json:"summary"`

	AdjustedPoints []projection.Point `json:"adjusted_points,omitempty"`
	AdjustedFinal  *float64           `json:"adjusted_final,omitempty"`
}

// handleProjectionSIP projects a recurring monthly investment.
// Parameters: monthly, rate (annual %), years, inflation (optional %).
func (s *Server) handleProjectionSIP(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	query := r.URL.Query()
	monthly, err := parseFloatParam(query, "monthly", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rate, err := parseFloatParam(query, "rate", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	years, err := parseIntParam(query, "years", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	inflation, err := parseFloatParam(query, "inflation", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := projection.PeriodicInvestment(monthly, rate, years)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := projectionResponse{Points: result.Points, Summary: result.Summary}
	if inflation > 0 {
		resp.AdjustedPoints = projection.AdjustSeries(result.Points, inflation)
		final, err := projection.PeriodicAdjustedFinal(monthly, rate, inflation, years)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.AdjustedFinal = &final
	}
	writeJSON(w, resp)
}

// handleProjectionLumpSum projects a one-time investment.
// Parameters: amount, rate (annual %), years, inflation (optional %).
func (s *Server) handleProjectionLumpSum(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	query := r.URL.Query()
	amount, err := parseFloatParam(query, "amount", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rate, err := parseFloatParam(query, "rate", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	years, err := parseIntParam(query, "years", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	inflation, err := parseFloatParam(query, "inflation", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := projection.LumpSum(amount, rate, years)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := projectionResponse{Points: result.Points, Summary: result.Summary}
	if inflation > 0 {
		resp.AdjustedPoints = projection.AdjustSeries(result.Points, inflation)
	}
	writeJSON(w, resp)
}

// handlePlannerWeekly splits a weekly budget across the days of the week.
// Parameters: budget, shares (optional, seven comma-separated percentages).
func (s *Server) handlePlannerWeekly(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	query := r.URL.Query()
	budget, err := parseFloatParam(query, "budget", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	shares := planner.EqualSplit()
	if v := strings.TrimSpace(query.Get("shares")); v != "" {
		shares, err = parseShares(v)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	plan, err := planner.Plan(budget, shares)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, plan)
}

// parseShares parses seven comma-separated day percentages.
func parseShares(v string) ([7]float64, error) {
	var shares [7]float64
	parts := strings.Split(v, ",")
	if len(parts) != len(shares) {
		return shares, fmt.Errorf("%w: shares needs exactly %d values, got %d",
			core.ErrValidation, len(shares), len(parts))
	}
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return shares, fmt.Errorf("%w: shares[%d]=%q", core.ErrValidation, i, p)
		}
		shares[i] = f
	}
	return shares, nil
}
