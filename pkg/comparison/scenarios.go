// Package comparison evaluates one loan across several candidate interest
// rates and orders the outcomes by rate.
package comparison

import (
	"fmt"
	"sort"

	"github.com/iwvelando/emi-calculator/pkg/loans"
	"github.com/shopspring/decimal"
)

// ScenarioResult is the outcome of one candidate rate.
type ScenarioResult struct {
	loans.Result
	Rate    float64 `json:"rate"`
	Label   string  `json:"label"`
	Current bool    `json:"current"`
}

// FormatRate renders a rate with exactly two decimals, rounding halves away
// from zero, e.g. 8.5 -> "8.50".
func FormatRate(rate float64) string {
	return decimal.NewFromFloat(rate).StringFixed(2)
}

// Label names a scenario for display.
func Label(rate float64, current bool) string {
	if current {
		return fmt.Sprintf("Current (%s%%)", FormatRate(rate))
	}
	return FormatRate(rate) + "%"
}

// CandidateRates returns the primary rate followed by every extra rate not
// already present. Equality is exact numeric equality.
func CandidateRates(primaryRate float64, extraRates []float64) []float64 {
	seen := make(map[float64]struct{}, len(extraRates)+1)
	candidates := make([]float64, 0, len(extraRates)+1)
	for _, rate := range append([]float64{primaryRate}, extraRates...) {
		if _, ok := seen[rate]; ok {
			continue
		}
		seen[rate] = struct{}{}
		candidates = append(candidates, rate)
	}
	return candidates
}

// Compare runs the EMI engine for the primary rate and every extra rate using
// the principal and term of terms. Rates the engine rejects are left out of
// the result without an error; see Dropped.
func Compare(terms loans.Terms, primaryRate float64, extraRates []float64) []ScenarioResult {
	candidates := CandidateRates(primaryRate, extraRates)

	scenarios := make([]ScenarioResult, 0, len(candidates))
	for _, rate := range candidates {
		result, err := terms.WithRate(rate).EMI()
		if err != nil {
			continue
		}
		current := rate == primaryRate
		scenarios = append(scenarios, ScenarioResult{
			Result:  result,
			Rate:    rate,
			Label:   Label(rate, current),
			Current: current,
		})
	}

	sort.Slice(scenarios, func(i, j int) bool {
		return scenarios[i].Rate < scenarios[j].Rate
	})
	return scenarios
}

// Dropped lists the candidate rates that have no scenario in results, in
// candidate order.
func Dropped(candidates []float64, results []ScenarioResult) []float64 {
	kept := make(map[float64]struct{}, len(results))
	for _, scenario := range results {
		kept[scenario.Rate] = struct{}{}
	}

	var dropped []float64
	for _, rate := range candidates {
		if _, ok := kept[rate]; !ok {
			dropped = append(dropped, rate)
		}
	}
	return dropped
}
