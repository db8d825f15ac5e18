package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/emi-calculator/internal/calculator"
)

// termsSummary describes the loan in prose, using the amounts as they were
// entered.
func termsSummary(calc *calculator.Calculation, provider, receiver string) string {
	return fmt.Sprintf("This document summarizes the terms of a loan provided by %s to %s. "+
		"The principal amount of %s is to be repaid over a period of %s at an annual interest rate of %s%%. "+
		"The repayment will be made in equated monthly installments (EMIs) as detailed in the schedule below. "+
		"This summary is for informational purposes only and does not constitute a legally binding agreement.",
		orDefault(provider, "(the provider)"),
		orDefault(receiver, "(the receiver)"),
		calc.Currency.WithCode(calc.Result.Principal),
		enteredTenure(calc),
		strings.TrimSpace(calc.Inputs.InterestRate),
	)
}

// enteredTenure returns the tenure in the unit it was given in, e.g. "10 years".
func enteredTenure(calc *calculator.Calculation) string {
	tenure := strings.TrimSpace(calc.Inputs.Tenure)
	unit := strings.TrimSpace(calc.Inputs.TenureUnit)
	if tenure == "" || unit == "" {
		return fmt.Sprintf("%d months", calc.Terms.TermMonths)
	}
	return tenure + " " + unit
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// Markdown outputs the loan summary document. The parties, the general terms
// and the signature block only appear when a provider or receiver is named.
func Markdown(w io.Writer, calc *calculator.Calculation) error {
	cur := calc.Currency
	provider := strings.TrimSpace(calc.Inputs.ProviderName)
	receiver := strings.TrimSpace(calc.Inputs.ReceiverName)
	hasParties := provider != "" || receiver != ""
	ew := &errWriter{w: w}

	ew.printf("# Loan Amortization Summary\n\n")

	if hasParties {
		ew.printf("## Parties Involved\n\n")
		ew.printf("- **Loan Provider:** %s\n", orDefault(provider, "N/A"))
		ew.printf("- **Loan Receiver:** %s\n\n", orDefault(receiver, "N/A"))
	}

	ew.printf("## Loan Summary\n\n")
	ew.printf("| Description | Value |\n|---|---|\n")
	ew.printf("| Loan Amount | %s |\n", cur.WithCode(calc.Result.Principal))
	ew.printf("| Annual Interest Rate | %s%% |\n", strings.TrimSpace(calc.Inputs.InterestRate))
	ew.printf("| Loan Tenure | %s |\n", enteredTenure(calc))
	ew.printf("| Monthly EMI | %s |\n", cur.Money(calc.Result.MonthlyEMI, 2))
	ew.printf("| Total Interest Payable | %s |\n", cur.Money(calc.Result.TotalInterest, 2))
	ew.printf("| Total Repayment | %s |\n\n", cur.Money(calc.Result.TotalRepayment, 2))

	if len(calc.Scenarios) > 1 {
		ew.printf("## Rate Comparison\n\n")
		ew.printf("| Scenario | Monthly EMI | Total Interest | Total Repayment |\n|---|---|---|---|\n")
		for _, s := range calc.Scenarios {
			ew.printf("| %s | %s | %s | %s |\n", s.Label,
				cur.Money(s.MonthlyEMI, 2), cur.Money(s.TotalInterest, 2), cur.Money(s.TotalRepayment, 2))
		}
		ew.printf("\n")
	}

	if hasParties {
		ew.printf("## General Terms Summary\n\n%s\n\n", termsSummary(calc, provider, receiver))
	}

	ew.printf("## Repayment Schedule\n\n")
	ew.printf("| Month | Principal | Interest | Total Payment | Balance |\n|---|---|---|---|---|\n")
	for i, entry := range calc.Schedule {
		ew.printf("| %s | %s | %s | %s | %s |\n", monthLabel(calc, i),
			cur.Money(entry.Principal, 2), cur.Money(entry.Interest, 2),
			cur.Money(entry.TotalPayment, 2), cur.Money(entry.RemainingBalance, 2))
	}
	ew.printf("\n")

	if hasParties {
		ew.printf("## Signatures\n\n")
		ew.printf("| %s | %s |\n|---|---|\n", orDefault(provider, "Loan Provider"), orDefault(receiver, "Loan Receiver"))
		ew.printf("| _________________________ | _________________________ |\n")
		ew.printf("| Date: ____________________ | Date: ____________________ |\n")
	}
	return ew.err
}
