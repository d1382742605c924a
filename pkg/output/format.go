// Package output provides utilities for formatting and displaying forecast results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/iwvelando/property-roi/internal/forecast"
	"github.com/iwvelando/property-roi/pkg/constants"
	formatutil "github.com/iwvelando/property-roi/pkg/format"
)

// PrettyFormat writes a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, results []forecast.Forecast, f formatutil.Formatter) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	for i, result := range results {
		r := result.Result
		in := result.Input

		_, _ = fmt.Fprintf(tw, "--- Results for scenario %s ---\n", result.Name)

		section(tw, "Investment")
		row(tw, "Purchase price", f.Money(in.PurchasePrice))
		row(tw, "Down payment", f.Money(r.DownPaymentAmount))
		row(tw, "Loan amount", f.Money(r.LoanAmount))
		row(tw, "Total investment", f.Money(r.TotalInvestment))

		if r.LoanAmount > 0 {
			section(tw, "Financing")
			row(tw, "Monthly EMI", f.Money(r.MonthlyEMI))
			row(tw, "Annual EMI", f.Money(r.AnnualEMI))
			row(tw, "Total interest payable", f.Money(r.TotalInterestPayable))
		}

		section(tw, "Operations")
		row(tw, "Annual gross rent", f.Money(r.AnnualGrossRent))
		for _, item := range r.ExpenseBreakdown {
			if item.Name == constants.LineItemEMI {
				continue
			}
			row(tw, "  "+item.Name, f.Money(item.Amount))
		}
		row(tw, "Total annual expenses", f.Money(r.TotalAnnualExpenses))
		row(tw, "Net operating income", f.Money(r.NetOperatingIncome))

		section(tw, "Returns")
		row(tw, "Monthly cash flow", fmt.Sprintf("%s (%s)", f.Money(r.MonthlyCashFlow), r.CashFlowStatus()))
		row(tw, "Annual cash flow", f.Money(r.AnnualCashFlow))
		row(tw, "Cap rate", formatutil.Percent(r.CapRate))
		row(tw, "Gross yield", formatutil.Percent(r.GrossYield))
		row(tw, "Net rental yield", formatutil.Percent(r.NetRentalYield))
		row(tw, "Cash-on-cash return", formatutil.Percent(r.CashOnCashReturn))

		section(tw, "Projection")
		_, _ = fmt.Fprintf(tw, "Year\tProperty Value\tLoan Balance\tEquity\tCumulative Cash Flow\tTotal Wealth\n")
		_, _ = fmt.Fprintf(tw, "____\t______________\t____________\t______\t____________________\t____________\n")
		for _, year := range r.YearlyProjection {
			_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
				year.Year,
				f.Money(year.PropertyValue),
				f.Money(year.LoanBalance),
				f.Money(year.Equity),
				f.Money(year.CumulativeCashFlow),
				f.Money(year.TotalWealth),
			)
		}

		_, _ = fmt.Fprintf(tw, "\n%d-year summary\n", r.Summary.HorizonYears)
		row(tw, "Equity gain", f.Money(r.Summary.EquityGain))
		row(tw, "Accumulated cash flow", f.Money(r.Summary.AccumulatedCashFlow))
		row(tw, "Total ROI", formatutil.Percent(r.Summary.TotalROIPercent))

		if len(result.Optimizations) > 0 {
			section(tw, "Optimizer")
			for _, summary := range result.Optimizations {
				status := "converged"
				if !summary.Converged {
					status = "not converged"
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s -> %s\t(%s after %d iterations)\n",
					summary.Field, summary.OriginalDisplay, summary.ValueDisplay, status, summary.Iterations)
				for _, note := range summary.Notes {
					_, _ = fmt.Fprintf(tw, "\t%s\n", note)
				}
			}
		}

		if len(result.Warnings) > 0 {
			section(tw, "Warnings")
			for _, warning := range result.Warnings {
				_, _ = fmt.Fprintf(tw, "- %s\n", warning)
			}
		}

		if i < len(results)-1 {
			_, _ = fmt.Fprintf(tw, "\n")
		}
	}

	return tw.Flush()
}

func section(w io.Writer, title string) {
	_, _ = fmt.Fprintf(w, "\n%s\n", title)
}

func row(w io.Writer, label, value string) {
	_, _ = fmt.Fprintf(w, "%s\t%s\n", label, value)
}

// CsvFormat writes the year-by-year projection of every scenario in
// comma-separated value format. Amounts are converted but not grouped.
func CsvFormat(w io.Writer, results []forecast.Forecast, f formatutil.Formatter) error {
	writer := csv.NewWriter(w)

	header := []string{
		"scenario", "year", "property value", "loan balance", "equity",
		"cumulative cash flow", "total wealth",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		for _, year := range result.Result.YearlyProjection {
			record := []string{
				result.Name,
				strconv.Itoa(year.Year),
				f.Numeric(year.PropertyValue),
				f.Numeric(year.LoanBalance),
				f.Numeric(year.Equity),
				f.Numeric(year.CumulativeCashFlow),
				f.Numeric(year.TotalWealth),
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV row for scenario %s: %w", result.Name, err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// JSONFormat writes the full forecasts as indented JSON. Amounts are left
// unrounded and unconverted.
func JSONFormat(w io.Writer, results []forecast.Forecast) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		return fmt.Errorf("failed to encode forecasts: %w", err)
	}
	return nil
}
