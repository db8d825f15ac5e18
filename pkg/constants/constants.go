// Package constants provides shared constants for the emi-calculator application.
package constants

// DateTimeLayout is the format for the optional schedule start date and the
// month labels printed next to schedule rows.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// MaxTermMonths is the longest accepted loan term (100 years)
	MaxTermMonths = 1200

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// RelativeTolerance is the relative tolerance for derived totals.
	RelativeTolerance = 1e-6
)

// Tenure units accepted for raw loan input.
const (
	TenureUnitYears  = "years"
	TenureUnitMonths = "months"
)

// Defaults applied to raw loan input.
const (
	DefaultLoanAmount   = "1000000"
	DefaultInterestRate = "8.5"
	DefaultTenure       = "10"
	DefaultTenureUnit   = TenureUnitYears
	DefaultCurrency     = "NPR"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatMarkdown is the loan summary document in Markdown
	OutputFormatMarkdown = "markdown"

	// OutputFormatHTML is the loan summary document rendered to HTML
	OutputFormatHTML = "html"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment variable overrides, e.g. EMI_LOAN_INTERESTRATE.
	EnvPrefix = "EMI"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultMetricsPath is where Prometheus metrics are exposed
	DefaultMetricsPath = "/metrics"

	// DefaultRateLimitRPS is the default per-client request rate
	DefaultRateLimitRPS = 20.0

	// DefaultRateLimitBurst is the default per-client burst size
	DefaultRateLimitBurst = 40
)
