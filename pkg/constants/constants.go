// Package constants provides shared constants for the property-roi application.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// MaxPercentage caps percentages that cannot exceed the whole, e.g. a down payment.
	MaxPercentage = 100.0

	// MaxRatePercent caps every other percentage input so compounding stays finite.
	MaxRatePercent = 1000.0

	// MaxAmount caps monetary inputs so projections stay finite.
	MaxAmount = 1e15

	// MaxLoanTenureYears bounds the amortization schedule length.
	MaxLoanTenureYears = 50
)

// Projection constants
const (
	// DefaultProjectionYears is used when a scenario does not set a horizon.
	DefaultProjectionYears = 10

	// MaxProjectionYears bounds the projection loop.
	MaxProjectionYears = 50
)

// Breakdown line item names, shared by the engine and every renderer.
const (
	LineItemEMI              = "Loan EMI"
	LineItemMaintenance      = "Maintenance"
	LineItemPropertyTax      = "Property Tax"
	LineItemManagementFee    = "Management Fee"
	LineItemVacancyLoss      = "Vacancy Loss"
	LineItemRentalIncome     = "Rental Income"
	LineItemOperatingExpense = "Operating Expenses"
	LineItemLoanPayment      = "Loan Payment"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatPDF renders a PDF report to the configured output file
	OutputFormatPDF = "pdf"

	// DefaultPDFFile is used when the pdf format is selected without a file
	DefaultPDFFile = "roi-report.pdf"
)

// Currency display constants
const (
	// DefaultCurrencySymbol is the symbol used when none is configured
	DefaultCurrencySymbol = "₹"

	// CurrencyStyleIndian groups digits as 12,34,567 and abbreviates with L/Cr
	CurrencyStyleIndian = "indian"

	// CurrencyStyleInternational groups digits as 1,234,567 and abbreviates with K/M/B
	CurrencyStyleInternational = "international"

	// Lakh is 1,00,000
	Lakh = 100000.0

	// Crore is 1,00,00,000
	Crore = 10000000.0
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultRateLimitRequests is the number of requests a client may make per window
	DefaultRateLimitRequests = 120

	// DefaultRateLimitWindow is the refill window for the rate limiter, in seconds
	DefaultRateLimitWindow = 60

	// RequestIDHeader carries the per-request identifier
	RequestIDHeader = "X-Request-ID"
)

// Validation constants
const (
	// ToleranceForComparison is the tolerance for financial comparisons
	ToleranceForComparison = 1.0
)

// Optimizer defaults
const (
	// DefaultOptimizerTolerance is the bisection stopping width for percentages
	DefaultOptimizerTolerance = 0.01

	// DefaultOptimizerMaxIterations bounds the bisection loop
	DefaultOptimizerMaxIterations = 60
)
