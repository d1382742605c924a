// Package roi implements the real-estate investment ROI model: financing
// split, EMI, operating income, yields, and a multi-year wealth projection.
//
// Every value is derived from an Input by Compute, which is a pure function:
// no I/O, no shared state, and identical inputs always yield identical results.
// Amounts are returned unrounded; rounding is a presentation concern.
package roi

import (
	"github.com/iwvelando/property-roi/pkg/loans"
)

// Input holds the property, financing and operating assumptions for one
// evaluation. Percentages are whole-number percents (8 means 8%). Fields a
// calculator variant does not use are simply left at zero.
type Input struct {
	PurchasePrice                 float64 `json:"purchasePrice" yaml:"purchasePrice" mapstructure:"purchasePrice"`
	MonthlyRent                   float64 `json:"monthlyRent" yaml:"monthlyRent" mapstructure:"monthlyRent"`
	AnnualAppreciationRatePercent float64 `json:"annualAppreciationRatePercent" yaml:"annualAppreciationRatePercent" mapstructure:"annualAppreciationRatePercent"`

	HasLoan                   bool    `json:"hasLoan" yaml:"hasLoan" mapstructure:"hasLoan"`
	DownPaymentPercent        float64 `json:"downPaymentPercent,omitempty" yaml:"downPaymentPercent,omitempty" mapstructure:"downPaymentPercent"`
	AnnualInterestRatePercent float64 `json:"annualInterestRatePercent,omitempty" yaml:"annualInterestRatePercent,omitempty" mapstructure:"annualInterestRatePercent"`
	LoanTenureYears           int     `json:"loanTenureYears,omitempty" yaml:"loanTenureYears,omitempty" mapstructure:"loanTenureYears"`

	AnnualMaintenanceAmount  float64 `json:"annualMaintenanceAmount,omitempty" yaml:"annualMaintenanceAmount,omitempty" mapstructure:"annualMaintenanceAmount"`
	MonthlyMaintenanceAmount float64 `json:"monthlyMaintenanceAmount,omitempty" yaml:"monthlyMaintenanceAmount,omitempty" mapstructure:"monthlyMaintenanceAmount"`
	AnnualPropertyTaxAmount  float64 `json:"annualPropertyTaxAmount,omitempty" yaml:"annualPropertyTaxAmount,omitempty" mapstructure:"annualPropertyTaxAmount"`
	ManagementFeePercent     float64 `json:"managementFeePercent,omitempty" yaml:"managementFeePercent,omitempty" mapstructure:"managementFeePercent"`
	VacancyRatePercent       float64 `json:"vacancyRatePercent,omitempty" yaml:"vacancyRatePercent,omitempty" mapstructure:"vacancyRatePercent"`

	ProjectionHorizonYears int `json:"projectionHorizonYears,omitempty" yaml:"projectionHorizonYears,omitempty" mapstructure:"projectionHorizonYears"`
}

// YearProjection is one point of the wealth projection. Year 0 is the
// purchase date.
type YearProjection struct {
	Year               int     `json:"year" yaml:"year"`
	PropertyValue      float64 `json:"propertyValue" yaml:"propertyValue"`
	LoanBalance        float64 `json:"loanBalance" yaml:"loanBalance"`
	Equity             float64 `json:"equity" yaml:"equity"`
	CumulativeCashFlow float64 `json:"cumulativeCashFlow" yaml:"cumulativeCashFlow"`
	TotalWealth        float64 `json:"totalWealth" yaml:"totalWealth"`
}

// Summary is the headline return over the projection horizon.
type Summary struct {
	HorizonYears        int     `json:"horizonYears" yaml:"horizonYears"`
	EquityGain          float64 `json:"equityGain" yaml:"equityGain"`
	AccumulatedCashFlow float64 `json:"accumulatedCashFlow" yaml:"accumulatedCashFlow"`
	TotalROIPercent     float64 `json:"totalROIPercent" yaml:"totalROIPercent"`
}

// LineItem is a named, strictly positive amount for chart rendering.
type LineItem struct {
	Name   string  `json:"name" yaml:"name"`
	Amount float64 `json:"amount" yaml:"amount"`
}

// CashFlowStatus classifies the monthly cash flow of a result.
type CashFlowStatus string

// Cash flow states.
const (
	CashFlowPositive  CashFlowStatus = "positive"
	CashFlowNegative  CashFlowStatus = "negative"
	CashFlowBreakEven CashFlowStatus = "break-even"
)

// Result holds every metric derived from an Input.
type Result struct {
	DownPaymentAmount float64 `json:"downPaymentAmount" yaml:"downPaymentAmount"`
	LoanAmount        float64 `json:"loanAmount" yaml:"loanAmount"`
	TotalInvestment   float64 `json:"totalInvestment" yaml:"totalInvestment"`

	MonthlyEMI           float64 `json:"monthlyEMI" yaml:"monthlyEMI"`
	AnnualEMI            float64 `json:"annualEMI" yaml:"annualEMI"`
	TotalInterestPayable float64 `json:"totalInterestPayable" yaml:"totalInterestPayable"`

	AnnualGrossRent     float64 `json:"annualGrossRent" yaml:"annualGrossRent"`
	AnnualMaintenance   float64 `json:"annualMaintenance" yaml:"annualMaintenance"`
	AnnualPropertyTax   float64 `json:"annualPropertyTax" yaml:"annualPropertyTax"`
	AnnualManagementFee float64 `json:"annualManagementFee" yaml:"annualManagementFee"`
	VacancyLoss         float64 `json:"vacancyLoss" yaml:"vacancyLoss"`
	TotalAnnualExpenses float64 `json:"totalAnnualExpenses" yaml:"totalAnnualExpenses"`
	NetOperatingIncome  float64 `json:"netOperatingIncome" yaml:"netOperatingIncome"`

	MonthlyCashFlow float64 `json:"monthlyCashFlow" yaml:"monthlyCashFlow"`
	AnnualCashFlow  float64 `json:"annualCashFlow" yaml:"annualCashFlow"`

	NetRentalYield   float64 `json:"netRentalYield" yaml:"netRentalYield"`
	CashOnCashReturn float64 `json:"cashOnCashReturn" yaml:"cashOnCashReturn"`
	CapRate          float64 `json:"capRate" yaml:"capRate"`
	GrossYield       float64 `json:"grossYield" yaml:"grossYield"`

	YearlyProjection     []YearProjection      `json:"yearlyProjection" yaml:"yearlyProjection"`
	AmortizationSchedule []loans.YearlyPayment `json:"amortizationSchedule,omitempty" yaml:"amortizationSchedule,omitempty"`
	Summary              Summary               `json:"summary" yaml:"summary"`

	ExpenseBreakdown  []LineItem `json:"expenseBreakdown" yaml:"expenseBreakdown"`
	CashFlowBreakdown []LineItem `json:"cashFlowBreakdown" yaml:"cashFlowBreakdown"`
}

// CashFlowStatus reports whether the monthly cash flow is positive, negative
// or zero to the paisa.
func (r Result) CashFlowStatus() CashFlowStatus {
	switch {
	case r.MonthlyCashFlow >= 0.005:
		return CashFlowPositive
	case r.MonthlyCashFlow <= -0.005:
		return CashFlowNegative
	default:
		return CashFlowBreakEven
	}
}

// FinalYear returns the last projection entry, or the zero value if the
// projection is empty.
func (r Result) FinalYear() YearProjection {
	if len(r.YearlyProjection) == 0 {
		return YearProjection{}
	}
	return r.YearlyProjection[len(r.YearlyProjection)-1]
}
