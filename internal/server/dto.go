package server

import (
	"strconv"

	"github.com/iwvelando/emi-calculator/internal/calculator"
	"github.com/iwvelando/emi-calculator/pkg/comparison"
	"github.com/iwvelando/emi-calculator/pkg/format"
	"github.com/iwvelando/emi-calculator/pkg/loans"
	"github.com/iwvelando/emi-calculator/pkg/validation"
	"github.com/shopspring/decimal"
)

type termsRequest struct {
	Principal         float64 `json:"principal"`
	AnnualRatePercent float64 `json:"annualRatePercent"`
	TermMonths        int     `json:"termMonths"`
}

func (r termsRequest) terms() loans.Terms {
	return loans.Terms{Principal: r.Principal, AnnualRatePercent: r.AnnualRatePercent, TermMonths: r.TermMonths}
}

type compareRequest struct {
	Principal   float64   `json:"principal"`
	TermMonths  int       `json:"termMonths"`
	PrimaryRate float64   `json:"primaryRate"`
	ExtraRates  []float64 `json:"extraRates"`
}

// money renders amount with exactly two decimals, e.g. "12398.57".
func money(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

type resultDTO struct {
	MonthlyEMI     string `json:"monthlyEmi"`
	Principal      string `json:"principal"`
	TotalInterest  string `json:"totalInterest"`
	TotalRepayment string `json:"totalRepayment"`
}

func newResultDTO(r loans.Result) resultDTO {
	return resultDTO{
		MonthlyEMI:     money(r.MonthlyEMI),
		Principal:      money(r.Principal),
		TotalInterest:  money(r.TotalInterest),
		TotalRepayment: money(r.TotalRepayment),
	}
}

type entryDTO struct {
	Month            int    `json:"month"`
	Label            string `json:"label"`
	Principal        string `json:"principal"`
	Interest         string `json:"interest"`
	TotalPayment     string `json:"totalPayment"`
	RemainingBalance string `json:"remainingBalance"`
}

func newScheduleDTO(schedule loans.Schedule, months []string) []entryDTO {
	entries := make([]entryDTO, len(schedule))
	for i, entry := range schedule {
		label := strconv.Itoa(entry.Month)
		if i < len(months) {
			label = months[i]
		}
		entries[i] = entryDTO{
			Month:            entry.Month,
			Label:            label,
			Principal:        money(entry.Principal),
			Interest:         money(entry.Interest),
			TotalPayment:     money(entry.TotalPayment),
			RemainingBalance: money(entry.RemainingBalance),
		}
	}
	return entries
}

type scenarioDTO struct {
	resultDTO
	Rate    string `json:"rate"`
	Label   string `json:"label"`
	Current bool   `json:"current"`
}

func newScenarioDTOs(scenarios []comparison.ScenarioResult) []scenarioDTO {
	dtos := make([]scenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = scenarioDTO{
			resultDTO: newResultDTO(s.Result),
			Rate:      comparison.FormatRate(s.Rate),
			Label:     s.Label,
			Current:   s.Current,
		}
	}
	return dtos
}

type scheduleResponse struct {
	Result   resultDTO  `json:"result"`
	Schedule []entryDTO `json:"schedule"`
}

type compareResponse struct {
	Scenarios []scenarioDTO `json:"scenarios"`
	Dropped   []float64     `json:"dropped,omitempty"`
}

type calculationResponse struct {
	ID        string            `json:"id"`
	Inputs    calculator.Inputs `json:"inputs"`
	Terms     loans.Terms       `json:"terms"`
	Currency  format.Currency   `json:"currency"`
	Result    resultDTO         `json:"result"`
	Schedule  []entryDTO        `json:"schedule"`
	Scenarios []scenarioDTO     `json:"scenarios"`
	Dropped   []float64         `json:"dropped,omitempty"`
	Warnings  []string          `json:"warnings,omitempty"`
}

func newCalculationResponse(calc *calculator.Calculation) calculationResponse {
	validator := validation.LoanValidator{
		ComparisonRates: calc.Inputs.ComparisonRates,
		Currency:        calc.Inputs.Currency,
		StartDate:       calc.Inputs.StartDate,
		TermMonths:      calc.Terms.TermMonths,
	}
	return calculationResponse{
		ID:        newCalculationID(),
		Inputs:    calc.Inputs,
		Terms:     calc.Terms,
		Currency:  calc.Currency,
		Result:    newResultDTO(calc.Result),
		Schedule:  newScheduleDTO(calc.Schedule, calc.Months),
		Scenarios: newScenarioDTOs(calc.Scenarios),
		Dropped:   calc.Dropped,
		Warnings:  validator.ValidateAll(),
	}
}
