package config

import "github.com/iwvelando/emi-calculator/internal/calculator"

func calculatorInputs(rates, currency, startDate string) calculator.Inputs {
	in := calculator.DefaultInputs()
	in.ComparisonRates = rates
	in.Currency = currency
	in.StartDate = startDate
	return in
}
