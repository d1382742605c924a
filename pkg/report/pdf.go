// Package report renders forecasts as a PDF investment report.
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/iwvelando/property-roi/internal/forecast"
	formatutil "github.com/iwvelando/property-roi/pkg/format"
	"github.com/iwvelando/property-roi/pkg/roi"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
	labelWidth   = 70.0
	barMaxWidth  = contentWidth - labelWidth - 35
)

// PDFReport renders one page per forecast.
type PDFReport struct {
	pdf       *fpdf.Fpdf
	formatter formatutil.Formatter
	translate func(string) string
}

// GeneratePDF creates a PDF report for the provided forecasts.
func GeneratePDF(results []forecast.Forecast, formatter formatutil.Formatter) ([]byte, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("no forecasts to report")
	}

	report := &PDFReport{
		pdf:       fpdf.New("P", "mm", "A4", ""),
		formatter: formatter,
	}
	report.translate = report.pdf.UnicodeTranslatorFromDescriptor("")
	report.pdf.SetMargins(marginLeft, marginTop, marginRight)
	report.pdf.SetAutoPageBreak(true, marginBottom)
	report.pdf.SetTitle("Property ROI Report", true)

	for _, result := range results {
		report.addScenarioPage(result)
	}

	var buf bytes.Buffer
	if err := report.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	return buf.Bytes(), nil
}

// text converts UTF-8 text to the cp1252 encoding of the core fonts. The
// rupee sign has no cp1252 code point and is spelled out.
func (r *PDFReport) text(s string) string {
	return r.translate(strings.ReplaceAll(s, "₹", "Rs. "))
}

func (r *PDFReport) money(amount float64) string {
	return r.text(r.formatter.Money(amount))
}

func (r *PDFReport) addScenarioPage(result forecast.Forecast) {
	res := result.Result
	r.pdf.AddPage()

	r.pdf.SetFont("Arial", "B", 20)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 12, r.text(result.Name), "", 1, "L", false, 0, "")
	r.pdf.SetFont("Arial", "", 11)
	r.pdf.SetTextColor(80, 80, 80)
	r.pdf.CellFormat(contentWidth, 6, r.text(fmt.Sprintf("Monthly cash flow %s (%s)",
		r.formatter.Money(res.MonthlyCashFlow), res.CashFlowStatus())), "", 1, "L", false, 0, "")
	r.pdf.Ln(4)

	r.drawSectionHeader("Key Metrics")
	widths := []float64{labelWidth, contentWidth - labelWidth}
	metrics := [][]string{
		{"Purchase price", r.money(result.Input.PurchasePrice)},
		{"Total investment", r.money(res.TotalInvestment)},
		{"Loan amount", r.money(res.LoanAmount)},
		{"Monthly EMI", r.money(res.MonthlyEMI)},
		{"Net operating income", r.money(res.NetOperatingIncome)},
		{"Annual cash flow", r.money(res.AnnualCashFlow)},
		{"Cap rate", formatutil.Percent(res.CapRate)},
		{"Gross yield", formatutil.Percent(res.GrossYield)},
		{"Net rental yield", formatutil.Percent(res.NetRentalYield)},
		{"Cash-on-cash return", formatutil.Percent(res.CashOnCashReturn)},
		{fmt.Sprintf("%d-year total ROI", res.Summary.HorizonYears), formatutil.Percent(res.Summary.TotalROIPercent)},
	}
	for _, metric := range metrics {
		r.drawTableRow(metric, widths, false)
	}
	r.pdf.Ln(6)

	r.drawSectionHeader("Annual Expenses")
	r.drawBars(res.ExpenseBreakdown)
	r.pdf.Ln(4)

	r.drawSectionHeader("Annual Cash Flow")
	r.drawBars(res.CashFlowBreakdown)
	r.pdf.Ln(4)

	r.drawProjection(res)

	if len(result.Warnings) > 0 {
		r.pdf.Ln(4)
		r.pdf.SetFont("Arial", "I", 9)
		r.pdf.SetTextColor(150, 80, 0)
		for _, warning := range result.Warnings {
			r.pdf.MultiCell(contentWidth, 4.5, r.text(warning), "", "L", false)
		}
	}
}

func (r *PDFReport) drawProjection(res roi.Result) {
	r.drawSectionHeader("Wealth Projection")
	headers := []string{"Year", "Property Value", "Loan Balance", "Equity", "Cum. Cash Flow", "Total Wealth"}
	widths := []float64{15, 33, 33, 33, 33, contentWidth - 15 - 4*33}
	r.drawTableHeader(headers, widths)
	for _, year := range res.YearlyProjection {
		r.drawTableRow([]string{
			strconv.Itoa(year.Year),
			r.money(year.PropertyValue),
			r.money(year.LoanBalance),
			r.money(year.Equity),
			r.money(year.CumulativeCashFlow),
			r.money(year.TotalWealth),
		}, widths, year.Year == res.Summary.HorizonYears)
	}
}

// drawBars renders a horizontal bar per line item, scaled to the largest.
func (r *PDFReport) drawBars(items []roi.LineItem) {
	r.pdf.SetFont("Arial", "", 9)
	r.pdf.SetTextColor(50, 50, 50)
	if len(items) == 0 {
		r.pdf.CellFormat(contentWidth, 5, "None", "", 1, "L", false, 0, "")
		return
	}

	largest := 0.0
	for _, item := range items {
		if item.Amount > largest {
			largest = item.Amount
		}
	}

	r.pdf.SetFillColor(0, 102, 153)
	for _, item := range items {
		y := r.pdf.GetY()
		r.pdf.CellFormat(labelWidth, 6, r.text(item.Name), "", 0, "L", false, 0, "")
		width := barMaxWidth * item.Amount / largest
		r.pdf.Rect(marginLeft+labelWidth, y+1, width, 4, "F")
		r.pdf.SetX(marginLeft + labelWidth + width + 2)
		r.pdf.CellFormat(35, 6, r.money(item.Amount), "", 1, "L", false, 0, "")
	}
}

func (r *PDFReport) drawSectionHeader(title string) {
	r.pdf.SetFont("Arial", "B", 14)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 8, title, "", 1, "L", false, 0, "")
	r.pdf.SetDrawColor(0, 51, 102)
	r.pdf.Line(marginLeft, r.pdf.GetY(), marginLeft+contentWidth, r.pdf.GetY())
	r.pdf.Ln(3)
}

func (r *PDFReport) drawTableHeader(headers []string, widths []float64) {
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont("Arial", "B", 9)

	for i, header := range headers {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 6, header, "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

func (r *PDFReport) drawTableRow(cells []string, widths []float64, isBold bool) {
	r.pdf.SetFillColor(250, 250, 250)
	r.pdf.SetTextColor(50, 50, 50)

	if isBold {
		r.pdf.SetFont("Arial", "B", 9)
		r.pdf.SetFillColor(240, 240, 240)
	} else {
		r.pdf.SetFont("Arial", "", 9)
	}

	for i, cell := range cells {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 5, cell, "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}
