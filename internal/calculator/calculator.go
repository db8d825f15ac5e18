// Package calculator runs the full pipeline from raw loan inputs to an EMI,
// its amortization schedule and a rate comparison.
package calculator

import (
	"fmt"

	"github.com/iwvelando/emi-calculator/pkg/comparison"
	"github.com/iwvelando/emi-calculator/pkg/datetime"
	"github.com/iwvelando/emi-calculator/pkg/format"
	"github.com/iwvelando/emi-calculator/pkg/loans"
	"go.uber.org/zap"
)

// Calculation holds everything derived from one set of inputs.
type Calculation struct {
	Inputs    Inputs                      `json:"inputs"`
	Terms     loans.Terms                 `json:"terms"`
	Currency  format.Currency             `json:"currency"`
	Result    loans.Result                `json:"result"`
	Schedule  loans.Schedule              `json:"schedule"`
	Months    []string                    `json:"months,omitempty"`
	Scenarios []comparison.ScenarioResult `json:"scenarios"`
	Dropped   []float64                   `json:"dropped,omitempty"`
}

// Calculator is safe for concurrent use; it holds no per-calculation state.
type Calculator struct {
	logger  *zap.Logger
	builder *loans.ScheduleBuilder
	metrics *Metrics
}

// New creates a calculator. metrics may be nil.
func New(logger *zap.Logger, metrics *Metrics) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{
		logger:  logger,
		builder: loans.NewScheduleBuilder(logger),
		metrics: metrics,
	}
}

// Calculate parses the inputs and computes the result, schedule and rate
// comparison. Invalid inputs return a nil Calculation and an error wrapping
// loans.ErrInvalidTerms.
func (c *Calculator) Calculate(in Inputs) (*Calculation, error) {
	in = in.WithDefaults()

	terms, err := ParseTerms(in)
	if err != nil {
		c.metrics.observe(nil)
		c.logger.Debug("invalid loan inputs",
			zap.String("op", "calculator.Calculate"),
			zap.Error(err),
		)
		return nil, err
	}

	result, schedule, err := c.builder.Build(terms)
	if err != nil {
		c.metrics.observe(nil)
		return nil, err
	}

	currency, err := format.Lookup(in.Currency)
	if err != nil {
		c.logger.Warn("unsupported currency, using default",
			zap.String("op", "calculator.Calculate"),
			zap.String("currency", in.Currency),
		)
		currency = format.NPR
	}

	months, err := datetime.MonthLabels(in.StartDate, len(schedule))
	if err != nil {
		c.logger.Warn("ignoring start date",
			zap.String("op", "calculator.Calculate"),
			zap.Error(err),
		)
		months = nil
	}

	extraRates := ParseRates(in.ComparisonRates)
	scenarios := comparison.Compare(terms, terms.AnnualRatePercent, extraRates)
	dropped := comparison.Dropped(comparison.CandidateRates(terms.AnnualRatePercent, extraRates), scenarios)
	for _, rate := range dropped {
		c.logger.Debug(fmt.Sprintf("dropping comparison rate %v: no EMI could be computed", rate),
			zap.String("op", "calculator.Calculate"),
		)
	}

	calc := &Calculation{
		Inputs:    in,
		Terms:     terms,
		Currency:  currency,
		Result:    result,
		Schedule:  schedule,
		Months:    months,
		Scenarios: scenarios,
		Dropped:   dropped,
	}
	c.metrics.observe(calc)

	c.logger.Info("loan calculated",
		zap.String("op", "calculator.Calculate"),
		zap.Float64("principal", terms.Principal),
		zap.Float64("rate", terms.AnnualRatePercent),
		zap.Int("termMonths", terms.TermMonths),
		zap.Float64("monthlyEmi", result.MonthlyEMI),
		zap.Int("scenarios", len(scenarios)),
		zap.Int("dropped", len(dropped)),
	)
	return calc, nil
}
