// Package loans provides fixed-rate, fully-amortizing loan calculations.
package loans

import (
	"math"

	"github.com/iwvelando/property-roi/pkg/constants"
	"github.com/iwvelando/property-roi/pkg/mathutil"
)

// Payment holds the values for a given monthly payment.
type Payment struct {
	Month              int     `json:"month" yaml:"month"`
	Payment            float64 `json:"payment" yaml:"payment"`
	Principal          float64 `json:"principal" yaml:"principal"`
	Interest           float64 `json:"interest" yaml:"interest"`
	RemainingPrincipal float64 `json:"remainingPrincipal" yaml:"remainingPrincipal"`
}

// YearlyPayment aggregates twelve monthly payments (fewer in a partial final year).
type YearlyPayment struct {
	Year           int     `json:"year" yaml:"year"`
	Payment        float64 `json:"payment" yaml:"payment"`
	PrincipalPaid  float64 `json:"principalPaid" yaml:"principalPaid"`
	InterestPaid   float64 `json:"interestPaid" yaml:"interestPaid"`
	ClosingBalance float64 `json:"closingBalance" yaml:"closingBalance"`
}

// MonthlyRate converts a nominal annual percentage into a monthly decimal rate.
func MonthlyRate(annualInterestRate float64) float64 {
	return annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// CalculateMonthlyPayment calculates the EMI for a loan using the standard amortization formula.
// A zero rate falls back to straight-line repayment; a non-positive principal or
// term yields no payment.
func CalculateMonthlyPayment(principal, annualInterestRate float64, termMonths int) float64 {
	if principal <= 0 || termMonths <= 0 {
		return 0
	}

	n := float64(termMonths)
	if annualInterestRate <= 0 {
		return principal / n
	}

	periodicInterestRate := MonthlyRate(annualInterestRate)
	compound := math.Pow(1.00+periodicInterestRate, n)
	if compound-1.00 == 0 || !mathutil.IsFinite(compound) {
		return principal / n
	}
	return principal * periodicInterestRate * compound / (compound - 1.00)
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualInterestRate float64) float64 {
	return remainingPrincipal * MonthlyRate(annualInterestRate)
}

// RemainingBalance returns the outstanding principal after paymentsMade
// scheduled EMIs. The balance is never negative and is exactly zero once the
// term has been served. A loan without a term never amortizes.
func RemainingBalance(principal, annualInterestRate float64, termMonths, paymentsMade int) float64 {
	if principal <= 0 {
		return 0
	}
	if termMonths <= 0 || paymentsMade <= 0 {
		return principal
	}
	if paymentsMade >= termMonths {
		return 0
	}

	n := float64(termMonths)
	p := float64(paymentsMade)
	if annualInterestRate <= 0 {
		return mathutil.NonNegative(principal * (1 - p/n))
	}

	r := MonthlyRate(annualInterestRate)
	compoundTerm := math.Pow(1+r, n)
	compoundPaid := math.Pow(1+r, p)
	if compoundTerm-1 == 0 || !mathutil.IsFinite(compoundTerm) {
		return mathutil.NonNegative(principal * (1 - p/n))
	}
	return mathutil.NonNegative(principal * (compoundTerm - compoundPaid) / (compoundTerm - 1))
}

// GenerateMonthlySchedule produces the month-by-month amortization table. The
// final payment absorbs any floating point residue so the loan closes at zero.
func GenerateMonthlySchedule(principal, annualInterestRate float64, termMonths int) []Payment {
	if principal <= 0 || termMonths <= 0 {
		return nil
	}

	monthlyPayment := CalculateMonthlyPayment(principal, annualInterestRate, termMonths)
	schedule := make([]Payment, 0, termMonths)
	balance := principal

	for month := 1; month <= termMonths; month++ {
		var current Payment
		current.Month = month
		current.Interest = CalculateInterestPayment(balance, annualInterestRate)
		current.Principal = monthlyPayment - current.Interest

		if month == termMonths || mathutil.Round(balance-current.Principal) <= 0 {
			// We will get machine error otherwise so just settle the balance.
			current.Principal = balance
			current.RemainingPrincipal = 0.00
		} else {
			current.RemainingPrincipal = balance - current.Principal
		}
		current.Payment = current.Principal + current.Interest

		schedule = append(schedule, current)
		balance = current.RemainingPrincipal
		if balance == 0 {
			break
		}
	}

	return schedule
}

// GenerateYearlySchedule rolls the monthly schedule up into loan years.
func GenerateYearlySchedule(principal, annualInterestRate float64, termMonths int) []YearlyPayment {
	monthly := GenerateMonthlySchedule(principal, annualInterestRate, termMonths)
	if len(monthly) == 0 {
		return nil
	}

	years := (len(monthly) + constants.MonthsPerYear - 1) / constants.MonthsPerYear
	schedule := make([]YearlyPayment, years)
	for i := range schedule {
		schedule[i].Year = i + 1
	}

	for _, payment := range monthly {
		idx := (payment.Month - 1) / constants.MonthsPerYear
		schedule[idx].Payment += payment.Payment
		schedule[idx].PrincipalPaid += payment.Principal
		schedule[idx].InterestPaid += payment.Interest
		schedule[idx].ClosingBalance = payment.RemainingPrincipal
	}

	return schedule
}

// TotalInterest returns the interest paid over the full term at the given EMI.
func TotalInterest(principal, monthlyPayment float64, termMonths int) float64 {
	if termMonths <= 0 {
		return 0
	}
	return mathutil.NonNegative(monthlyPayment*float64(termMonths) - principal)
}
