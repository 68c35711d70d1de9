// This file implements the Strategy Pattern for resolving the next due date
// of a debt's payment schedule. Each frequency type (weekly, monthly,
// quarterly, yearly) has its own strategy anchored on the debt's start date.
package core

import (
	"fmt"
	"time"
)

// DueChecker is the strategy interface for payment schedules. NextDue
// returns the first scheduled payment date strictly after `after`, anchored
// on the schedule start date.
type DueChecker interface {
	NextDue(after time.Time, anchor Date) time.Time
}

// WeeklyChecker implements DueChecker for weekly payments.
type WeeklyChecker struct{}

func (WeeklyChecker) NextDue(after time.Time, anchor Date) time.Time {
	due := anchor.Time
	for !due.After(after) {
		due = due.AddDate(0, 0, 7)
	}
	return due
}

// MonthlyChecker implements DueChecker for monthly payments. The target day
// of month comes from the anchor; months shorter than the target day clamp
// to their last day.
type MonthlyChecker struct{}

func (MonthlyChecker) NextDue(after time.Time, anchor Date) time.Time {
	return nextByMonths(after, anchor, 1)
}

// QuarterlyChecker implements DueChecker for quarterly payments.
type QuarterlyChecker struct{}

func (QuarterlyChecker) NextDue(after time.Time, anchor Date) time.Time {
	return nextByMonths(after, anchor, 3)
}

// YearlyChecker implements DueChecker for yearly payments.
type YearlyChecker struct{}

func (YearlyChecker) NextDue(after time.Time, anchor Date) time.Time {
	return nextByMonths(after, anchor, 12)
}

// nextByMonths walks month-sized steps from the anchor until past `after`,
// clamping the anchor day to the last day of each candidate month.
func nextByMonths(after time.Time, anchor Date, stepMonths int) time.Time {
	year, month := anchor.Time.Year(), anchor.Time.Month()
	targetDay := anchor.Time.Day()
	for {
		due := time.Date(year, month, clampDay(year, month, targetDay), 0, 0, 0, 0, time.UTC)
		if due.After(after) {
			return due
		}
		month += time.Month(stepMonths)
		for month > 12 {
			month -= 12
			year++
		}
	}
}

// clampDay returns day, capped to the last day of the given month.
func clampDay(year int, month time.Month, day int) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}

// dueStrategies maps payment frequencies to their corresponding checkers.
var dueStrategies = map[PaymentFrequency]DueChecker{
	Weekly:    WeeklyChecker{},
	Monthly:   MonthlyChecker{},
	Quarterly: QuarterlyChecker{},
	Yearly:    YearlyChecker{},
}

// GetDueChecker returns the appropriate checker for a payment frequency.
// Returns an error if the frequency is not supported.
func GetDueChecker(frequency PaymentFrequency) (DueChecker, error) {
	checker, ok := dueStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown payment frequency: %s", frequency)
	}
	return checker, nil
}

// NextDueDate resolves the next scheduled payment date for a debt after the
// given instant.
func NextDueDate(d Debt, after time.Time) (time.Time, error) {
	checker, err := GetDueChecker(d.Frequency)
	if err != nil {
		return time.Time{}, err
	}
	return checker.NextDue(after, d.StartDate), nil
}
