package roi

import (
	"github.com/iwvelando/property-roi/pkg/constants"
	"github.com/iwvelando/property-roi/pkg/mathutil"
)

// Sanitize returns a copy of input that Compute can always evaluate: negative,
// NaN and infinite numbers become zero, the down payment is bounded to
// [0, 100], rates and amounts are capped so compounding stays finite, and the
// horizon falls back to the default when unset.
func Sanitize(input Input) Input {
	out := input

	out.PurchasePrice = amount(input.PurchasePrice)
	out.MonthlyRent = amount(input.MonthlyRent)
	out.AnnualMaintenanceAmount = amount(input.AnnualMaintenanceAmount)
	out.MonthlyMaintenanceAmount = amount(input.MonthlyMaintenanceAmount)
	out.AnnualPropertyTaxAmount = amount(input.AnnualPropertyTaxAmount)

	out.AnnualAppreciationRatePercent = rate(input.AnnualAppreciationRatePercent)
	out.AnnualInterestRatePercent = rate(input.AnnualInterestRatePercent)
	out.ManagementFeePercent = rate(input.ManagementFeePercent)
	out.VacancyRatePercent = rate(input.VacancyRatePercent)
	out.DownPaymentPercent = mathutil.Clamp(mathutil.NonNegative(input.DownPaymentPercent), 0, constants.MaxPercentage)

	out.LoanTenureYears = clampInt(input.LoanTenureYears, 0, constants.MaxLoanTenureYears)

	switch {
	case input.ProjectionHorizonYears <= 0:
		out.ProjectionHorizonYears = constants.DefaultProjectionYears
	case input.ProjectionHorizonYears > constants.MaxProjectionYears:
		out.ProjectionHorizonYears = constants.MaxProjectionYears
	}

	return out
}

func amount(val float64) float64 {
	return mathutil.Clamp(mathutil.NonNegative(val), 0, constants.MaxAmount)
}

func rate(val float64) float64 {
	return mathutil.Clamp(mathutil.NonNegative(val), 0, constants.MaxRatePercent)
}

func clampInt(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
