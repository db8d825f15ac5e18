// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/emi-calculator/pkg/constants"
)

const (
	// DateTimeLayout is the format of schedule start dates and month labels.
	DateTimeLayout = constants.DateTimeLayout
)

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// MonthLabels returns count consecutive months beginning at start. An empty
// start yields no labels.
func MonthLabels(start string, count int) ([]string, error) {
	if start == "" {
		return nil, nil
	}
	if _, err := time.Parse(DateTimeLayout, start); err != nil {
		return nil, fmt.Errorf("invalid start date %q, expected %s: %w", start, DateTimeLayout, err)
	}

	labels := make([]string, count)
	for i := range labels {
		label, err := OffsetDate(start, DateTimeLayout, i)
		if err != nil {
			return nil, err
		}
		labels[i] = label
	}
	return labels, nil
}
