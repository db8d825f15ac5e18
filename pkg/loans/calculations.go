// Package loans provides the EMI engine and amortization schedule builder.
package loans

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/emi-calculator/pkg/constants"
	"github.com/iwvelando/emi-calculator/pkg/mathutil"
)

// ErrInvalidTerms is returned whenever a calculation cannot produce a result,
// whether because of non-positive inputs or because the formula overflowed.
var ErrInvalidTerms = errors.New("invalid loan terms")

// Terms holds the validated numeric inputs of a loan calculation.
type Terms struct {
	Principal         float64 `json:"principal"`
	AnnualRatePercent float64 `json:"annualRatePercent"`
	TermMonths        int     `json:"termMonths"`
}

// Result holds the EMI and aggregate totals for a loan.
type Result struct {
	MonthlyEMI     float64 `json:"monthlyEmi"`
	Principal      float64 `json:"principal"`
	TotalInterest  float64 `json:"totalInterest"`
	TotalRepayment float64 `json:"totalRepayment"`
}

// Validate checks the terms without computing anything.
func (t Terms) Validate() error {
	if err := t.ValidatePrincipalAndTerm(); err != nil {
		return err
	}
	switch {
	case !mathutil.IsFinite(t.AnnualRatePercent):
		return fmt.Errorf("%w: annual rate must be a finite number", ErrInvalidTerms)
	case t.AnnualRatePercent <= 0:
		return fmt.Errorf("%w: annual rate must be greater than zero, got %v", ErrInvalidTerms, t.AnnualRatePercent)
	}
	return nil
}

// ValidatePrincipalAndTerm checks everything but the rate, for callers that
// try several rates against one loan.
func (t Terms) ValidatePrincipalAndTerm() error {
	switch {
	case !mathutil.IsFinite(t.Principal):
		return fmt.Errorf("%w: principal must be a finite number", ErrInvalidTerms)
	case t.Principal <= 0:
		return fmt.Errorf("%w: principal must be greater than zero, got %v", ErrInvalidTerms, t.Principal)
	case t.TermMonths <= 0:
		return fmt.Errorf("%w: term must be at least one month, got %d", ErrInvalidTerms, t.TermMonths)
	case t.TermMonths > constants.MaxTermMonths:
		return fmt.Errorf("%w: term of %d months exceeds the maximum of %d",
			ErrInvalidTerms, t.TermMonths, constants.MaxTermMonths)
	}
	return nil
}

// MonthlyRate returns the rate as a decimal fraction per month.
func (t Terms) MonthlyRate() float64 {
	return MonthlyRate(t.AnnualRatePercent)
}

// EMI computes the result for these terms.
func (t Terms) EMI() (Result, error) {
	return ComputeEMI(t.Principal, t.AnnualRatePercent, t.TermMonths)
}

// WithRate returns a copy of the terms at a different annual rate.
func (t Terms) WithRate(annualRatePercent float64) Terms {
	t.AnnualRatePercent = annualRatePercent
	return t
}

// MonthlyRate converts an annual percentage rate into a monthly decimal rate.
func MonthlyRate(annualRatePercent float64) float64 {
	return annualRatePercent / constants.MonthsPerYear / constants.PercentageMultiplier
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the
// standard amortization formula. The result is not checked for finiteness.
func CalculateMonthlyPayment(principal, annualRatePercent float64, termMonths int) float64 {
	monthlyRate := MonthlyRate(annualRatePercent)
	power := math.Pow(1.00+monthlyRate, float64(termMonths))
	return principal * monthlyRate * power / (power - 1.00)
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, monthlyRate float64) float64 {
	return remainingPrincipal * monthlyRate
}

// ComputeEMI returns the EMI and totals for the given loan, or an error
// wrapping ErrInvalidTerms when no meaningful result exists.
func ComputeEMI(principal, annualRatePercent float64, termMonths int) (Result, error) {
	terms := Terms{Principal: principal, AnnualRatePercent: annualRatePercent, TermMonths: termMonths}
	if err := terms.Validate(); err != nil {
		return Result{}, err
	}

	emi := CalculateMonthlyPayment(principal, annualRatePercent, termMonths)
	if !mathutil.IsFinite(emi) {
		return Result{}, fmt.Errorf("%w: monthly payment is not finite at %v%% over %d months",
			ErrInvalidTerms, annualRatePercent, termMonths)
	}

	totalRepayment := emi * float64(termMonths)
	return Result{
		MonthlyEMI:     emi,
		Principal:      principal,
		TotalInterest:  totalRepayment - principal,
		TotalRepayment: totalRepayment,
	}, nil
}
