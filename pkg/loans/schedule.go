package loans

import (
	"fmt"

	"go.uber.org/zap"
)

// AmortizationEntry holds the split of a single monthly installment.
type AmortizationEntry struct {
	Month            int     `json:"month"`
	Principal        float64 `json:"principal"`
	Interest         float64 `json:"interest"`
	TotalPayment     float64 `json:"totalPayment"`
	RemainingBalance float64 `json:"remainingBalance"`
}

// Schedule is an amortization schedule ordered by month.
type Schedule []AmortizationEntry

// Totals returns the sums of the principal and interest columns.
func (s Schedule) Totals() (principal, interest float64) {
	for _, entry := range s {
		principal += entry.Principal
		interest += entry.Interest
	}
	return principal, interest
}

// BuildSchedule amortizes a loan month by month. It always yields exactly
// termMonths entries; the emitted balance is clamped at zero so drift on the
// last installment never shows as a negative balance.
func BuildSchedule(principal, monthlyRate float64, termMonths int, monthlyEMI float64) Schedule {
	if termMonths <= 0 {
		return Schedule{}
	}

	schedule := make(Schedule, 0, termMonths)
	balance := principal
	for month := 1; month <= termMonths; month++ {
		interestPayment := CalculateInterestPayment(balance, monthlyRate)
		principalPayment := monthlyEMI - interestPayment
		balance -= principalPayment

		remaining := balance
		if remaining < 0 {
			remaining = 0
		}
		schedule = append(schedule, AmortizationEntry{
			Month:            month,
			Principal:        principalPayment,
			Interest:         interestPayment,
			TotalPayment:     monthlyEMI,
			RemainingBalance: remaining,
		})
	}
	return schedule
}

// ScheduleBuilder computes an EMI and its schedule together so the two can
// never be built from mismatched terms.
type ScheduleBuilder struct {
	logger *zap.Logger
}

// NewScheduleBuilder creates a new builder instance
func NewScheduleBuilder(logger *zap.Logger) *ScheduleBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleBuilder{logger: logger}
}

// Build validates the terms, computes the EMI and amortizes the loan.
func (b *ScheduleBuilder) Build(terms Terms) (Result, Schedule, error) {
	result, err := terms.EMI()
	if err != nil {
		b.logger.Debug("rejected loan terms",
			zap.String("op", "loans.Build"),
			zap.Float64("principal", terms.Principal),
			zap.Float64("rate", terms.AnnualRatePercent),
			zap.Int("termMonths", terms.TermMonths),
			zap.Error(err),
		)
		return Result{}, nil, err
	}

	schedule := BuildSchedule(terms.Principal, terms.MonthlyRate(), terms.TermMonths, result.MonthlyEMI)
	b.logger.Debug(fmt.Sprintf("built %d month schedule with EMI %.2f", len(schedule), result.MonthlyEMI),
		zap.String("op", "loans.Build"),
	)
	return result, schedule, nil
}
