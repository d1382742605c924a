package roi

import (
	"math"

	"github.com/iwvelando/property-roi/pkg/constants"
	"github.com/iwvelando/property-roi/pkg/loans"
	"github.com/iwvelando/property-roi/pkg/mathutil"
)

// Compute evaluates input and returns every derived metric. It never fails:
// degenerate inputs (zero rent, zero price, full vacancy, no loan) produce
// defined numbers, and no field is ever NaN or infinite.
//
// The projection includes year 0, so it holds ProjectionHorizonYears+1
// entries, and TotalWealth is Equity + CumulativeCashFlow for every year.
// A loan with no tenure is settled at purchase: the full price is invested and
// the balance is zero from year 0, as for a cash purchase.
func Compute(input Input) Result {
	in := Sanitize(input)

	var res Result
	termMonths := computeFinancing(in, &res)
	computeOperations(in, &res)
	computeReturns(in, &res)
	computeProjection(in, termMonths, &res)
	computeBreakdowns(&res)

	return res
}

// computeFinancing splits the price into down payment and loan and derives the
// debt service. It returns the loan term in months (0 when unfinanced).
func computeFinancing(in Input, res *Result) int {
	if !in.HasLoan || in.LoanTenureYears == 0 {
		res.DownPaymentAmount = in.PurchasePrice
		res.TotalInvestment = in.PurchasePrice
		return 0
	}

	res.DownPaymentAmount = mathutil.ApplyPercentage(in.PurchasePrice, in.DownPaymentPercent)
	res.LoanAmount = mathutil.NonNegative(in.PurchasePrice - res.DownPaymentAmount)
	res.TotalInvestment = res.DownPaymentAmount

	termMonths := in.LoanTenureYears * constants.MonthsPerYear
	if res.LoanAmount > 0 {
		res.MonthlyEMI = loans.CalculateMonthlyPayment(res.LoanAmount, in.AnnualInterestRatePercent, termMonths)
		res.TotalInterestPayable = loans.TotalInterest(res.LoanAmount, res.MonthlyEMI, termMonths)
		res.AmortizationSchedule = loans.GenerateYearlySchedule(res.LoanAmount, in.AnnualInterestRatePercent, termMonths)
	}
	res.AnnualEMI = res.MonthlyEMI * constants.MonthsPerYear

	return termMonths
}

// computeOperations derives rent and operating expenses. Debt service is
// deliberately excluded: NOI is a pre-financing figure.
func computeOperations(in Input, res *Result) {
	res.AnnualGrossRent = in.MonthlyRent * constants.MonthsPerYear
	res.AnnualMaintenance = in.AnnualMaintenanceAmount + in.MonthlyMaintenanceAmount*constants.MonthsPerYear
	res.AnnualPropertyTax = in.AnnualPropertyTaxAmount
	res.AnnualManagementFee = mathutil.ApplyPercentage(res.AnnualGrossRent, in.ManagementFeePercent)
	res.VacancyLoss = mathutil.ApplyPercentage(res.AnnualGrossRent, in.VacancyRatePercent)

	res.TotalAnnualExpenses = res.AnnualMaintenance + res.AnnualPropertyTax + res.AnnualManagementFee + res.VacancyLoss
	res.NetOperatingIncome = res.AnnualGrossRent - res.TotalAnnualExpenses
}

// computeReturns derives cash flow and yields. Cash-on-cash return uses the
// net yield formula because no tax shield is modelled.
func computeReturns(in Input, res *Result) {
	res.AnnualCashFlow = res.NetOperatingIncome - res.AnnualEMI
	res.MonthlyCashFlow = res.AnnualCashFlow / constants.MonthsPerYear

	res.NetRentalYield = mathutil.CalculatePercentage(res.AnnualCashFlow, res.TotalInvestment)
	res.CashOnCashReturn = mathutil.CalculatePercentage(res.AnnualCashFlow, res.TotalInvestment)
	res.CapRate = mathutil.CalculatePercentage(res.NetOperatingIncome, in.PurchasePrice)
	res.GrossYield = mathutil.CalculatePercentage(res.AnnualGrossRent, in.PurchasePrice)
}

func computeProjection(in Input, termMonths int, res *Result) {
	horizon := in.ProjectionHorizonYears
	growth := 1 + in.AnnualAppreciationRatePercent/constants.PercentageMultiplier

	res.YearlyProjection = make([]YearProjection, 0, horizon+1)
	for year := 0; year <= horizon; year++ {
		point := YearProjection{Year: year}
		point.PropertyValue = in.PurchasePrice * math.Pow(growth, float64(year))
		if res.LoanAmount > 0 {
			point.LoanBalance = loans.RemainingBalance(res.LoanAmount, in.AnnualInterestRatePercent,
				termMonths, year*constants.MonthsPerYear)
		}
		point.Equity = point.PropertyValue - point.LoanBalance
		point.CumulativeCashFlow = res.AnnualCashFlow * float64(year)
		point.TotalWealth = point.Equity + point.CumulativeCashFlow
		res.YearlyProjection = append(res.YearlyProjection, point)
	}

	final := res.FinalYear()
	res.Summary = Summary{
		HorizonYears:        horizon,
		EquityGain:          final.PropertyValue - in.PurchasePrice,
		AccumulatedCashFlow: res.AnnualCashFlow * float64(horizon),
	}
	res.Summary.TotalROIPercent = mathutil.CalculatePercentage(
		res.Summary.EquityGain+res.Summary.AccumulatedCashFlow, res.TotalInvestment)
}

func computeBreakdowns(res *Result) {
	res.ExpenseBreakdown = positiveItems(
		LineItem{Name: constants.LineItemEMI, Amount: res.AnnualEMI},
		LineItem{Name: constants.LineItemMaintenance, Amount: res.AnnualMaintenance},
		LineItem{Name: constants.LineItemPropertyTax, Amount: res.AnnualPropertyTax},
		LineItem{Name: constants.LineItemManagementFee, Amount: res.AnnualManagementFee},
		LineItem{Name: constants.LineItemVacancyLoss, Amount: res.VacancyLoss},
	)
	res.CashFlowBreakdown = positiveItems(
		LineItem{Name: constants.LineItemRentalIncome, Amount: res.AnnualGrossRent},
		LineItem{Name: constants.LineItemOperatingExpense, Amount: res.TotalAnnualExpenses},
		LineItem{Name: constants.LineItemLoanPayment, Amount: res.AnnualEMI},
	)
}

// positiveItems drops zero and negative entries; charts cannot draw them.
func positiveItems(items ...LineItem) []LineItem {
	filtered := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.Amount > 0 && mathutil.IsFinite(item.Amount) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
