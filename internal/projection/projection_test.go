package projection

import (
	"errors"
	"math"
	"testing"

	"finsmart/internal/core"
)

func TestPeriodicInvestment(t *testing.T) {
	res, err := PeriodicInvestment(1000, 12, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Points) != 24 {
		t.Fatalf("expected 24 points, got %d", len(res.Points))
	}

	// First month: no prior value to grow, just the contribution.
	if res.Points[0].Value != 1000 {
		t.Fatalf("first point should equal the contribution, got %.4f", res.Points[0].Value)
	}

	// Growth-before-contribution recurrence holds at every step.
	r := MonthlyRate(12)
	for i := 1; i < len(res.Points); i++ {
		want := res.Points[i-1].Value*(1+r) + 1000
		if math.Abs(res.Points[i].Value-want) > 1e-6 {
			t.Fatalf("point %d breaks the recurrence: got %.6f, want %.6f", i, res.Points[i].Value, want)
		}
		if res.Points[i].Period != i+1 {
			t.Fatalf("point %d: expected period %d, got %d", i, i+1, res.Points[i].Period)
		}
	}

	s := res.Summary
	if s.TotalInvested != 24000 {
		t.Fatalf("expected 24000 invested, got %.2f", s.TotalInvested)
	}
	if s.FinalValue <= s.TotalInvested {
		t.Fatalf("positive rate must beat contributions: %.2f vs %.2f", s.FinalValue, s.TotalInvested)
	}
	if math.Abs(s.WealthGained-(s.FinalValue-s.TotalInvested)) > 1e-9 {
		t.Fatalf("wealth gained inconsistent: %.6f", s.WealthGained)
	}
}

func TestPeriodicInvestmentZeroRate(t *testing.T) {
	res, err := PeriodicInvestment(500, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range res.Points {
		if math.Abs(p.Value-p.Invested) > 1e-9 {
			t.Fatalf("zero rate: value %.6f should equal invested %.6f", p.Value, p.Invested)
		}
	}
	if res.Summary.GainPercent != 0 {
		t.Fatalf("zero rate should gain nothing, got %.6f%%", res.Summary.GainPercent)
	}
}

func TestLumpSum(t *testing.T) {
	res, err := LumpSum(100000, 12, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Points) != 11 {
		t.Fatalf("expected 11 points (year 0 through 10), got %d", len(res.Points))
	}
	if res.Points[0].Value != 100000 || res.Points[0].Period != 0 {
		t.Fatalf("year 0 should be the principal, got %+v", res.Points[0])
	}
	if math.Abs(res.Summary.FinalValue-310584.82) > 0.01 {
		t.Fatalf("expected final value 310584.82, got %.2f", res.Summary.FinalValue)
	}
	if math.Abs(res.Summary.WealthGained-210584.82) > 0.01 {
		t.Fatalf("expected gain 210584.82, got %.2f", res.Summary.WealthGained)
	}
}

func TestInflationAdjust(t *testing.T) {
	if got := InflationAdjust(1234.56, 0, 10); got != 1234.56 {
		t.Fatalf("zero inflation must be a no-op, got %.4f", got)
	}
	if got := InflationAdjust(1050, 5, 1); math.Abs(got-1000) > 1e-9 {
		t.Fatalf("expected 1000, got %.6f", got)
	}
	// Fractional years.
	want := 1000 / math.Pow(1.06, 2.5)
	if got := InflationAdjust(1000, 6, 2.5); math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %.6f, got %.6f", want, got)
	}
}

func TestAdjustSeries(t *testing.T) {
	res, err := PeriodicInvestment(1000, 12, 1)
	if err != nil {
		t.Fatal(err)
	}
	adj := AdjustSeries(res.Points, 6)
	if len(adj) != len(res.Points) {
		t.Fatalf("adjusted series length mismatch")
	}
	for i, p := range adj {
		if p.Value >= res.Points[i].Value {
			t.Fatalf("point %d: adjusted value %.4f not below nominal %.4f", i, p.Value, res.Points[i].Value)
		}
		if p.Invested != res.Points[i].Invested {
			t.Fatalf("adjustment must not touch invested amounts")
		}
	}
	// Input untouched.
	if res.Points[5].Value == adj[5].Value {
		t.Fatal("AdjustSeries must copy, not mutate")
	}
}

func TestRealReturnRate(t *testing.T) {
	if got := RealReturnRate(12, 12); got != 0 {
		t.Fatalf("equal rates should cancel, got %.10f", got)
	}
	want := 1.12/1.06 - 1
	if got := RealReturnRate(12, 6); math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected %.10f, got %.10f", want, got)
	}
	// Inflation above nominal yields a negative real rate.
	if got := RealReturnRate(4, 8); got >= 0 {
		t.Fatalf("expected negative real rate, got %.6f", got)
	}
}

func TestPeriodicAdjustedFinal(t *testing.T) {
	t.Run("zero real rate falls back to contributions", func(t *testing.T) {
		got, err := PeriodicAdjustedFinal(2000, 10, 10, 5)
		if err != nil {
			t.Fatal(err)
		}
		if got != 2000*60 {
			t.Fatalf("expected %.2f, got %.2f", 2000.0*60, got)
		}
	})

	t.Run("zero inflation matches nominal projection", func(t *testing.T) {
		got, err := PeriodicAdjustedFinal(1000, 12, 0, 3)
		if err != nil {
			t.Fatal(err)
		}
		res, err := PeriodicInvestment(1000, 12, 3)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got-res.Summary.FinalValue) > 1e-6 {
			t.Fatalf("closed form %.6f diverges from recurrence %.6f", got, res.Summary.FinalValue)
		}
	})

	t.Run("inflation reduces the outcome", func(t *testing.T) {
		nominal, err := PeriodicAdjustedFinal(1000, 12, 0, 10)
		if err != nil {
			t.Fatal(err)
		}
		adjusted, err := PeriodicAdjustedFinal(1000, 12, 6, 10)
		if err != nil {
			t.Fatal(err)
		}
		if adjusted >= nominal {
			t.Fatalf("expected %.2f < %.2f", adjusted, nominal)
		}
	})
}

func TestCompareRates(t *testing.T) {
	out, err := CompareRates(1000, 10, []float64{8, 12, 15})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i].Summary.FinalValue <= out[i-1].Summary.FinalValue {
			t.Fatalf("higher rate must yield a higher final value: %.2f vs %.2f",
				out[i].Summary.FinalValue, out[i-1].Summary.FinalValue)
		}
		if out[i].Summary.TotalInvested != out[0].Summary.TotalInvested {
			t.Fatal("invested amount must not depend on the rate")
		}
	}
}

func TestProjectionValidation(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"negative amount", func() error { _, err := PeriodicInvestment(-1, 12, 10); return err }()},
		{"negative rate", func() error { _, err := LumpSum(1000, -5, 10); return err }()},
		{"zero years", func() error { _, err := PeriodicInvestment(1000, 12, 0); return err }()},
		{"nan amount", func() error { _, err := LumpSum(math.NaN(), 12, 10); return err }()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !errors.Is(tc.err, core.ErrValidation) {
				t.Fatalf("expected validation error, got %v", tc.err)
			}
		})
	}
}
