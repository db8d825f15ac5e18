package calculator

import (
	"testing"

	"github.com/iwvelando/emi-calculator/pkg/loans"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTerms(t *testing.T) {
	tests := []struct {
		name     string
		inputs   Inputs
		expected loans.Terms
	}{
		{
			name:     "Defaults",
			inputs:   DefaultInputs(),
			expected: loans.Terms{Principal: 1000000, AnnualRatePercent: 8.5, TermMonths: 120},
		},
		{
			name:     "Tenure in months",
			inputs:   Inputs{LoanAmount: "250000", InterestRate: "11", Tenure: "18", TenureUnit: "months"},
			expected: loans.Terms{Principal: 250000, AnnualRatePercent: 11, TermMonths: 18},
		},
		{
			name:     "Whitespace and upper case unit",
			inputs:   Inputs{LoanAmount: " 5000.50 ", InterestRate: " 7.25", Tenure: "2 ", TenureUnit: "YEARS"},
			expected: loans.Terms{Principal: 5000.50, AnnualRatePercent: 7.25, TermMonths: 24},
		},
		{
			name:     "Missing unit means years",
			inputs:   Inputs{LoanAmount: "1000", InterestRate: "5", Tenure: "1"},
			expected: loans.Terms{Principal: 1000, AnnualRatePercent: 5, TermMonths: 12},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms, err := ParseTerms(tt.inputs)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, terms)
		})
	}
}

func TestParseTermsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		inputs Inputs
	}{
		{"Empty amount", Inputs{LoanAmount: "", InterestRate: "8", Tenure: "10"}},
		{"Text amount", Inputs{LoanAmount: "lots", InterestRate: "8", Tenure: "10"}},
		{"Zero amount", Inputs{LoanAmount: "0", InterestRate: "8", Tenure: "10"}},
		{"Negative amount", Inputs{LoanAmount: "-5", InterestRate: "8", Tenure: "10"}},
		{"Text rate", Inputs{LoanAmount: "1000", InterestRate: "eight", Tenure: "10"}},
		{"Zero rate", Inputs{LoanAmount: "1000", InterestRate: "0", Tenure: "10"}},
		{"Fractional tenure", Inputs{LoanAmount: "1000", InterestRate: "8", Tenure: "10.5"}},
		{"Zero tenure", Inputs{LoanAmount: "1000", InterestRate: "8", Tenure: "0"}},
		{"Unknown unit", Inputs{LoanAmount: "1000", InterestRate: "8", Tenure: "10", TenureUnit: "weeks"}},
		{"Tenure beyond maximum", Inputs{LoanAmount: "1000", InterestRate: "8", Tenure: "101", TenureUnit: "years"}},
		{"Tenure overflowing years", Inputs{LoanAmount: "1000", InterestRate: "8", Tenure: "9223372036854775807"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTerms(tt.inputs)
			assert.ErrorIs(t, err, loans.ErrInvalidTerms)
		})
	}
}

func TestParseRates(t *testing.T) {
	assert.Equal(t, []float64{8, 8.25, 9}, ParseRates("8, 8.25, 9"))
	assert.Equal(t, []float64{7}, ParseRates("abc, , -2, 7"))
	assert.Empty(t, ParseRates(""))
}

func TestWithDefaults(t *testing.T) {
	in := Inputs{LoanAmount: "1"}.WithDefaults()
	assert.Equal(t, "years", in.TenureUnit)
	assert.Equal(t, "NPR", in.Currency)
	assert.Equal(t, "1", in.LoanAmount)
	assert.Empty(t, in.Tenure)
}
