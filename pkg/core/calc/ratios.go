// Package calc derives standard balance-sheet and profitability
// ratios from extracted financial fields.
package calc

import (
	"bundesanzeiger/pkg/models"
)

// ComputeRatios derives ratios from the raw fields. A ratio is only
// populated when both inputs are present and the denominator is
// non-zero; otherwise it stays nil. Returns nil when no ratio can be
// derived at all.
func ComputeRatios(f *models.FinancialFields) *models.Ratios {
	if f == nil {
		return nil
	}

	r := &models.Ratios{
		EquityRatio:    divide(f.Eigenkapital, f.BilanzsummeTotal),
		DebtToAssets:   divide(f.Schulden, f.BilanzsummeTotal),
		ReturnOnAssets: divide(f.NetProfit, f.BilanzsummeTotal),
		ProfitMargin:   divide(f.NetProfit, f.Umsatz),
	}
	if r.EquityRatio == nil && r.DebtToAssets == nil && r.ReturnOnAssets == nil && r.ProfitMargin == nil {
		return nil
	}
	return r
}

func divide(numerator, denominator *float64) *float64 {
	if numerator == nil || denominator == nil || *denominator == 0 {
		return nil
	}
	v := *numerator / *denominator
	return &v
}
