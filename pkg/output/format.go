// Package output provides utilities for formatting and displaying loan calculations.
package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/emi-calculator/internal/calculator"
	"github.com/iwvelando/emi-calculator/pkg/comparison"
	"github.com/iwvelando/emi-calculator/pkg/constants"
	"github.com/iwvelando/emi-calculator/pkg/format"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Write renders calc in the named output format.
func Write(w io.Writer, outputFormat string, calc *calculator.Calculation) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return Pretty(w, calc)
	case constants.OutputFormatCSV:
		return CSV(w, calc)
	case constants.OutputFormatMarkdown:
		return Markdown(w, calc)
	case constants.OutputFormatHTML:
		return HTML(w, calc)
	}
	return fmt.Errorf("unsupported output format %q", outputFormat)
}

// monthLabel returns the calendar month for row i when a start date was
// given, otherwise the installment number.
func monthLabel(calc *calculator.Calculation, i int) string {
	if i < len(calc.Months) {
		return calc.Months[i]
	}
	return strconv.Itoa(calc.Schedule[i].Month)
}

func tenure(calc *calculator.Calculation) string {
	if calc.Terms.TermMonths == 1 {
		return "1 month"
	}
	return fmt.Sprintf("%d months", calc.Terms.TermMonths)
}

// Pretty outputs a human-readable rather than machine-readable table.
func Pretty(w io.Writer, calc *calculator.Calculation) error {
	cur := calc.Currency
	ew := &errWriter{w: w}

	ew.printf("--- Loan summary ---\n")
	ew.printf("Loan amount     | %s\n", cur.Money(calc.Result.Principal, 2))
	ew.printf("Interest rate   | %s%%\n", comparison.FormatRate(calc.Terms.AnnualRatePercent))
	ew.printf("Tenure          | %s\n", tenure(calc))
	ew.printf("Monthly EMI     | %s\n", cur.Money(calc.Result.MonthlyEMI, 2))
	ew.printf("Total interest  | %s\n", cur.Money(calc.Result.TotalInterest, 2))
	ew.printf("Total repayment | %s\n", cur.Money(calc.Result.TotalRepayment, 2))

	ew.printf("\n--- Rate comparison ---\n")
	ew.printf("Scenario | Monthly EMI | Total interest | Total repayment\n")
	ew.printf("________ | ___________ | ______________ | _______________\n")
	for _, s := range calc.Scenarios {
		ew.printf("%s | %s | %s | %s\n", s.Label,
			cur.Money(s.MonthlyEMI, 2), cur.Money(s.TotalInterest, 2), cur.Money(s.TotalRepayment, 2))
	}

	ew.printf("\n--- Repayment schedule ---\n")
	ew.printf("Month | Principal | Interest | Total payment | Balance\n")
	ew.printf("_____ | _________ | ________ | _____________ | _______\n")
	for i, entry := range calc.Schedule {
		ew.printf("%s | %s | %s | %s | %s\n", monthLabel(calc, i),
			cur.Money(entry.Principal, 2), cur.Money(entry.Interest, 2),
			cur.Money(entry.TotalPayment, 2), cur.Money(entry.RemainingBalance, 2))
	}
	return ew.err
}

// CSV outputs the schedule in comma-separated value format followed by the
// rate comparison, separated by a blank line.
func CSV(w io.Writer, calc *calculator.Calculation) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"month", "principal", "interest", "total payment", "remaining balance"})
	for i, entry := range calc.Schedule {
		_ = cw.Write([]string{
			monthLabel(calc, i),
			format.NumericCurrency(entry.Principal),
			format.NumericCurrency(entry.Interest),
			format.NumericCurrency(entry.TotalPayment),
			format.NumericCurrency(entry.RemainingBalance),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	_ = cw.Write([]string{"scenario", "rate", "monthly emi", "total interest", "total repayment"})
	for _, s := range calc.Scenarios {
		_ = cw.Write([]string{
			s.Label,
			comparison.FormatRate(s.Rate),
			format.NumericCurrency(s.MonthlyEMI),
			format.NumericCurrency(s.TotalInterest),
			format.NumericCurrency(s.TotalRepayment),
		})
	}
	cw.Flush()
	return cw.Error()
}

// HTML renders the Markdown document as an HTML fragment.
func HTML(w io.Writer, calc *calculator.Calculation) error {
	var source bytes.Buffer
	if err := Markdown(&source, calc); err != nil {
		return err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	if err := md.Convert(source.Bytes(), w); err != nil {
		return fmt.Errorf("failed to render HTML report: %w", err)
	}
	return nil
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(layout string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, layout, args...)
}
