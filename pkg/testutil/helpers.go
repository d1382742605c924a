// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"
	"testing"

	"github.com/iwvelando/property-roi/internal/forecast"
	"github.com/iwvelando/property-roi/pkg/roi"
)

// FindScenario finds a scenario by name in the results slice.
// Returns a pointer to the forecast if found, nil otherwise.
func FindScenario(results []forecast.Forecast, name string) *forecast.Forecast {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// FinancedApartment returns a financed flat with every expense type set. Its
// NOI is 186000 and its EMI 34712.93, so it runs a negative cash flow.
func FinancedApartment() roi.Input {
	return roi.Input{
		PurchasePrice:                 5000000,
		MonthlyRent:                   25000,
		AnnualAppreciationRatePercent: 5,
		HasLoan:                       true,
		DownPaymentPercent:            20,
		AnnualInterestRatePercent:     8.5,
		LoanTenureYears:               20,
		AnnualMaintenanceAmount:       60000,
		AnnualPropertyTaxAmount:       15000,
		ManagementFeePercent:          8,
		VacancyRatePercent:            5,
		ProjectionHorizonYears:        10,
	}
}

// AssertClose fails the test when got and want differ by more than tolerance.
func AssertClose(t testing.TB, field string, got, want, tolerance float64) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Errorf("%s = %.4f, expected %.4f (diff: %.4f)", field, got, want, got-want)
	}
}
