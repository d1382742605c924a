// Package format renders engine amounts for display. All rounding happens
// here, never in the engine.
package format

import (
	"github.com/iwvelando/property-roi/pkg/constants"
	"github.com/iwvelando/property-roi/pkg/mathutil"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var indianLocale = language.MustParse("en-IN")

// Formatter converts and renders monetary amounts in one display currency.
type Formatter struct {
	Symbol       string
	Style        string
	ExchangeRate float64
	Abbreviate   bool
}

// NewFormatter returns a Formatter with defaults applied to empty fields.
func NewFormatter(symbol, style string, exchangeRate float64, abbreviate bool) Formatter {
	if symbol == "" {
		symbol = constants.DefaultCurrencySymbol
	}
	if style == "" {
		style = constants.CurrencyStyleIndian
	}
	return Formatter{Symbol: symbol, Style: style, ExchangeRate: exchangeRate, Abbreviate: abbreviate}
}

// Money converts amount with the exchange rate and renders it, abbreviated if
// the formatter asks for it.
func (f Formatter) Money(amount float64) string {
	converted := Convert(amount, f.ExchangeRate)
	if f.Abbreviate {
		return Compact(converted, f.Symbol, f.Style)
	}
	return Currency(converted, f.Symbol, f.Style)
}

// Numeric converts amount and renders it with two decimals and no grouping,
// for machine-readable output.
func (f Formatter) Numeric(amount float64) string {
	return decimal.NewFromFloat(sanitize(Convert(amount, f.ExchangeRate))).StringFixed(2)
}

// Convert applies a caller-supplied exchange rate. A missing or invalid rate
// leaves the amount unchanged.
func Convert(amount, exchangeRate float64) float64 {
	if exchangeRate <= 0 || !mathutil.IsFinite(exchangeRate) {
		return amount
	}
	return amount * exchangeRate
}

// Currency returns a currency string with separators, e.g. "-₹12,34,567.89"
// in the indian style or "$1,234,567.89" in the international style.
func Currency(amount float64, symbol, style string) string {
	d := decimal.NewFromFloat(sanitize(amount)).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	value, _ := d.Float64()
	return sign + symbol + Printer(style).Sprintf("%.2f", value)
}

// Compact abbreviates large amounts: L and Cr in the indian style, K, M and B
// in the international style. Small amounts render in full without decimals.
// The unit is chosen after rounding, so 99,999.6 is "1.00 L", not "1,00,000".
func Compact(amount float64, symbol, style string) string {
	d := decimal.NewFromFloat(sanitize(amount))
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	type unit struct {
		size   float64
		suffix string
	}
	units := []unit{{constants.Crore, " Cr"}, {constants.Lakh, " L"}}
	if style == constants.CurrencyStyleInternational {
		units = []unit{{1e9, "B"}, {1e6, "M"}, {1e3, "K"}}
	}

	p := Printer(style)
	one := decimal.NewFromInt(1)
	for _, u := range units {
		scaled := d.Div(decimal.NewFromFloat(u.size)).Round(2)
		if scaled.GreaterThanOrEqual(one) {
			value, _ := scaled.Float64()
			return sign + symbol + p.Sprintf("%.2f", value) + u.suffix
		}
	}

	whole := d.Round(0)
	if whole.IsZero() {
		sign = ""
	}
	value, _ := whole.Float64()
	return sign + symbol + p.Sprintf("%.0f", value)
}

// Printer returns the x/text printer that groups digits for style: en-IN
// (12,34,567) for indian and English (1,234,567) for international.
func Printer(style string) *message.Printer {
	if style == constants.CurrencyStyleInternational {
		return message.NewPrinter(language.English)
	}
	return message.NewPrinter(indianLocale)
}

// Percent renders a whole-number percentage with two decimals, e.g. "8.50%".
func Percent(value float64) string {
	return decimal.NewFromFloat(sanitize(value)).StringFixed(2) + "%"
}

func sanitize(val float64) float64 {
	if !mathutil.IsFinite(val) {
		return 0
	}
	return val
}
