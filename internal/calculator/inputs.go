package calculator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/emi-calculator/pkg/constants"
	"github.com/iwvelando/emi-calculator/pkg/loans"
	"github.com/iwvelando/emi-calculator/pkg/validation"
)

// Inputs holds loan details as they arrive from a form, a config file or a
// request body: unparsed text.
type Inputs struct {
	LoanAmount      string `json:"loanAmount" yaml:"loanAmount"`
	InterestRate    string `json:"interestRate" yaml:"interestRate"`
	Tenure          string `json:"tenure" yaml:"tenure"`
	TenureUnit      string `json:"tenureUnit" yaml:"tenureUnit"`
	ComparisonRates string `json:"comparisonRates,omitempty" yaml:"comparisonRates,omitempty"`
	Currency        string `json:"currency,omitempty" yaml:"currency,omitempty"`
	StartDate       string `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	ProviderName    string `json:"providerName,omitempty" yaml:"providerName,omitempty"`
	ReceiverName    string `json:"receiverName,omitempty" yaml:"receiverName,omitempty"`
}

// DefaultInputs returns the inputs a fresh form starts with.
func DefaultInputs() Inputs {
	return Inputs{
		LoanAmount:   constants.DefaultLoanAmount,
		InterestRate: constants.DefaultInterestRate,
		Tenure:       constants.DefaultTenure,
		TenureUnit:   constants.DefaultTenureUnit,
		Currency:     constants.DefaultCurrency,
	}
}

// WithDefaults fills empty fields that have a default. Amount, rate and
// tenure are left alone so that a blank field is reported as invalid.
func (in Inputs) WithDefaults() Inputs {
	if strings.TrimSpace(in.TenureUnit) == "" {
		in.TenureUnit = constants.DefaultTenureUnit
	}
	if strings.TrimSpace(in.Currency) == "" {
		in.Currency = constants.DefaultCurrency
	}
	return in
}

// ParseTerms converts raw inputs into loan terms. The tenure is converted
// from years to months when the unit is years.
func ParseTerms(in Inputs) (loans.Terms, error) {
	principal, err := strconv.ParseFloat(strings.TrimSpace(in.LoanAmount), 64)
	if err != nil {
		return loans.Terms{}, fmt.Errorf("%w: loan amount %q is not a number", loans.ErrInvalidTerms, in.LoanAmount)
	}
	rate, err := strconv.ParseFloat(strings.TrimSpace(in.InterestRate), 64)
	if err != nil {
		return loans.Terms{}, fmt.Errorf("%w: interest rate %q is not a number", loans.ErrInvalidTerms, in.InterestRate)
	}
	tenure, err := strconv.Atoi(strings.TrimSpace(in.Tenure))
	if err != nil {
		return loans.Terms{}, fmt.Errorf("%w: tenure %q is not a whole number", loans.ErrInvalidTerms, in.Tenure)
	}

	unit := strings.ToLower(strings.TrimSpace(in.TenureUnit))
	if unit == "" {
		unit = constants.DefaultTenureUnit
	}
	if err := validation.ValidateTenureUnit(unit); err != nil {
		return loans.Terms{}, fmt.Errorf("%w: %v", loans.ErrInvalidTerms, err)
	}

	termMonths := tenure
	if unit == constants.TenureUnitYears {
		if tenure > constants.MaxTermMonths {
			return loans.Terms{}, fmt.Errorf("%w: tenure of %d years is too long", loans.ErrInvalidTerms, tenure)
		}
		termMonths = tenure * constants.MonthsPerYear
	}

	terms := loans.Terms{Principal: principal, AnnualRatePercent: rate, TermMonths: termMonths}
	if err := terms.Validate(); err != nil {
		return loans.Terms{}, err
	}
	return terms, nil
}

// ParseRates returns the usable rates from a comma-separated list, in order.
func ParseRates(raw string) []float64 {
	rates, _ := validation.SplitRates(raw)
	return rates
}
