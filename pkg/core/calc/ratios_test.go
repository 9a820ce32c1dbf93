package calc

import (
	"math"
	"testing"

	"bundesanzeiger/pkg/models"
)

func f(v float64) *float64 { return &v }

func TestComputeRatios(t *testing.T) {
	fields := &models.FinancialFields{
		NetProfit:        f(50000),
		Umsatz:           f(1000000),
		BilanzsummeTotal: f(500000),
		Eigenkapital:     f(200000),
		Schulden:         f(300000),
	}

	r := ComputeRatios(fields)
	if r == nil {
		t.Fatal("Expected ratios")
	}

	checks := []struct {
		name string
		got  *float64
		want float64
	}{
		{"equity ratio", r.EquityRatio, 0.4},
		{"debt to assets", r.DebtToAssets, 0.6},
		{"return on assets", r.ReturnOnAssets, 0.1},
		{"profit margin", r.ProfitMargin, 0.05},
	}
	for _, c := range checks {
		if c.got == nil {
			t.Errorf("%s: expected %v, got nil", c.name, c.want)
			continue
		}
		if math.Abs(*c.got-c.want) > 1e-9 {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, *c.got)
		}
	}
}

func TestComputeRatiosMissingInputs(t *testing.T) {
	r := ComputeRatios(&models.FinancialFields{
		NetProfit: f(-5000),
		Umsatz:    f(100000),
	})
	if r == nil {
		t.Fatal("Profit margin alone should still yield ratios")
	}
	if r.ProfitMargin == nil || *r.ProfitMargin != -0.05 {
		t.Errorf("Expected profit margin -0.05, got %v", r.ProfitMargin)
	}
	if r.EquityRatio != nil || r.DebtToAssets != nil || r.ReturnOnAssets != nil {
		t.Error("Ratios without inputs must stay nil")
	}
}

func TestComputeRatiosZeroDenominator(t *testing.T) {
	r := ComputeRatios(&models.FinancialFields{
		NetProfit: f(1000),
		Umsatz:    f(0),
	})
	if r != nil {
		t.Errorf("Division by zero must not produce ratios, got %+v", r)
	}
}

func TestComputeRatiosNil(t *testing.T) {
	if r := ComputeRatios(nil); r != nil {
		t.Errorf("Expected nil for nil fields, got %+v", r)
	}
	if r := ComputeRatios(&models.FinancialFields{}); r != nil {
		t.Errorf("Expected nil for empty fields, got %+v", r)
	}
}
