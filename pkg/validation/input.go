package validation

import (
	"fmt"

	"github.com/iwvelando/property-roi/pkg/constants"
	"github.com/iwvelando/property-roi/pkg/mathutil"
	"github.com/iwvelando/property-roi/pkg/roi"
)

// ValidateInput reports every value the engine will clamp or ignore. The
// engine accepts any input; these warnings let the caller surface hygiene
// problems instead of silently changing the user's numbers.
func ValidateInput(name string, input roi.Input) []string {
	var warnings []string
	warn := func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf("Scenario '%s': ", name)+fmt.Sprintf(format, args...))
	}

	amounts := []struct {
		field string
		value float64
	}{
		{"purchasePrice", input.PurchasePrice},
		{"monthlyRent", input.MonthlyRent},
		{"annualMaintenanceAmount", input.AnnualMaintenanceAmount},
		{"monthlyMaintenanceAmount", input.MonthlyMaintenanceAmount},
		{"annualPropertyTaxAmount", input.AnnualPropertyTaxAmount},
	}
	for _, a := range amounts {
		switch {
		case !mathutil.IsFinite(a.value):
			warn("%s is not a finite number and will be treated as 0", a.field)
		case a.value < 0:
			warn("%s is negative (%.2f) and will be treated as 0", a.field, a.value)
		case a.value > constants.MaxAmount:
			warn("%s exceeds %.0f and will be capped", a.field, constants.MaxAmount)
		}
	}
	if input.PurchasePrice == 0 {
		warn("purchasePrice is zero; yields and cap rate will be reported as 0")
	}

	rates := []struct {
		field string
		value float64
	}{
		{"annualAppreciationRatePercent", input.AnnualAppreciationRatePercent},
		{"managementFeePercent", input.ManagementFeePercent},
		{"vacancyRatePercent", input.VacancyRatePercent},
	}
	if input.HasLoan {
		rates = append(rates, struct {
			field string
			value float64
		}{"annualInterestRatePercent", input.AnnualInterestRatePercent})
	}
	for _, r := range rates {
		switch {
		case !mathutil.IsFinite(r.value):
			warn("%s is not a finite number and will be treated as 0", r.field)
		case r.value < 0:
			warn("%s is negative (%.2f%%) and will be treated as 0", r.field, r.value)
		case r.value > constants.MaxRatePercent:
			warn("%s exceeds %.0f%% and will be capped", r.field, constants.MaxRatePercent)
		}
	}
	// Values above MaxRatePercent already carry the capping warning.
	if input.VacancyRatePercent > constants.MaxPercentage && input.VacancyRatePercent <= constants.MaxRatePercent {
		warn("vacancyRatePercent exceeds 100%% (%.2f%%)", input.VacancyRatePercent)
	}
	if input.ManagementFeePercent > constants.MaxPercentage && input.ManagementFeePercent <= constants.MaxRatePercent {
		warn("managementFeePercent exceeds 100%% (%.2f%%)", input.ManagementFeePercent)
	}

	if input.HasLoan {
		if !mathutil.IsFinite(input.DownPaymentPercent) || input.DownPaymentPercent < 0 || input.DownPaymentPercent > constants.MaxPercentage {
			warn("downPaymentPercent %.2f%% is outside 0-100%% and will be clamped", input.DownPaymentPercent)
		}
		if input.LoanTenureYears <= 0 && input.DownPaymentPercent < constants.MaxPercentage {
			warn("loan has no tenure; it is treated as settled at purchase and the full price counts as invested")
		}
		if input.LoanTenureYears > constants.MaxLoanTenureYears {
			warn("loanTenureYears %d exceeds %d and will be capped", input.LoanTenureYears, constants.MaxLoanTenureYears)
		}
	} else if input.DownPaymentPercent != 0 || input.AnnualInterestRatePercent != 0 || input.LoanTenureYears != 0 {
		warn("loan parameters are set but hasLoan is false; they will be ignored")
	}

	switch {
	case input.ProjectionHorizonYears < 0:
		warn("projectionHorizonYears is negative; defaulting to %d", constants.DefaultProjectionYears)
	case input.ProjectionHorizonYears > constants.MaxProjectionYears:
		warn("projectionHorizonYears %d exceeds %d and will be capped", input.ProjectionHorizonYears, constants.MaxProjectionYears)
	}

	return warnings
}
