// Package format renders amounts for display. Currency is only a label here:
// nothing in this package converts between currencies.
package format

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ErrUnsupportedCurrency is returned by Lookup for unknown currency codes.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Currency describes how amounts are labelled and grouped.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Locale string `json:"locale"`
}

// Supported currencies.
var (
	INR = Currency{Code: "INR", Symbol: "₹", Locale: "en-IN"}
	NPR = Currency{Code: "NPR", Symbol: "रू", Locale: "ne-NP"}
)

// Currencies lists every supported currency.
var Currencies = []Currency{INR, NPR}

// Lookup finds a supported currency by its ISO code, ignoring case.
func Lookup(code string) (Currency, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	for _, c := range Currencies {
		if c.Code == normalized {
			return c, nil
		}
	}
	return Currency{}, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
}

func (c Currency) printer() *message.Printer {
	return message.NewPrinter(language.Make(c.Locale))
}

// Digits formats amount with the currency's locale grouping and exactly
// decimals fraction digits.
func (c Currency) Digits(amount float64, decimals int) string {
	return c.printer().Sprint(number.Decimal(amount,
		number.MinFractionDigits(decimals),
		number.MaxFractionDigits(decimals),
	))
}

// Money returns the amount prefixed with the currency symbol.
func (c Currency) Money(amount float64, decimals int) string {
	if amount < 0 {
		return "-" + c.Symbol + " " + c.Digits(math.Abs(amount), decimals)
	}
	return c.Symbol + " " + c.Digits(amount, decimals)
}

// WithCode returns the whole-unit amount followed by the currency code,
// e.g. "10,00,000 INR".
func (c Currency) WithCode(amount float64) string {
	return c.Digits(amount, 0) + " " + c.Code
}

var numericPrinter = message.NewPrinter(language.English)

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	rounded := math.Round(amount*100) / 100
	if rounded == 0 {
		rounded = 0 // drops the sign of -0
	}
	return numericPrinter.Sprint(number.Decimal(rounded, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
