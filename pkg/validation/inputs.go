package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/emi-calculator/pkg/constants"
	"github.com/iwvelando/emi-calculator/pkg/datetime"
	"github.com/iwvelando/emi-calculator/pkg/format"
	"github.com/iwvelando/emi-calculator/pkg/mathutil"
)

// longTenureMonths is the tenure past which a warning is raised.
const longTenureMonths = 40 * constants.MonthsPerYear

// SplitRates parses a comma-separated list of annual rates. Blank tokens are
// skipped; tokens that are not finite positive numbers are returned in
// rejected. A trailing percent sign is accepted.
func SplitRates(raw string) (rates []float64, rejected []string) {
	for _, token := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(token)
		if trimmed == "" {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(trimmed, "%")), 64)
		if err != nil || !mathutil.IsFinite(value) || value <= 0 {
			rejected = append(rejected, trimmed)
			continue
		}
		rates = append(rates, value)
	}
	return rates, rejected
}

// ValidateTenureUnit checks the tenure unit is years or months.
func ValidateTenureUnit(unit string) error {
	if unit != constants.TenureUnitYears && unit != constants.TenureUnitMonths {
		return fmt.Errorf("expected tenure unit of %s or %s, got %s",
			constants.TenureUnitYears, constants.TenureUnitMonths, unit)
	}
	return nil
}

// LoanValidator collects non-fatal problems with raw loan input.
type LoanValidator struct {
	ComparisonRates string
	Currency        string
	StartDate       string
	TermMonths      int
}

// ValidateAll validates the loan input and returns warnings
func (lv *LoanValidator) ValidateAll() []string {
	var warnings []string

	_, rejected := SplitRates(lv.ComparisonRates)
	for _, token := range rejected {
		warnings = append(warnings, fmt.Sprintf("Comparison rate '%s' is not a positive number and will be ignored", token))
	}

	if lv.Currency != "" {
		if _, err := format.Lookup(lv.Currency); err != nil {
			warnings = append(warnings, fmt.Sprintf("Currency '%s' is not supported, falling back to %s",
				lv.Currency, constants.DefaultCurrency))
		}
	}

	if lv.StartDate != "" {
		if _, err := datetime.MonthLabels(lv.StartDate, 1); err != nil {
			warnings = append(warnings, fmt.Sprintf("Start date '%s' is not in %s format and will be ignored",
				lv.StartDate, constants.DateTimeLayout))
		}
	}

	if lv.TermMonths > longTenureMonths && lv.TermMonths <= constants.MaxTermMonths {
		warnings = append(warnings, fmt.Sprintf("Tenure of %d months is unusually long", lv.TermMonths))
	}

	return warnings
}
