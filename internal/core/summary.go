package core

import (
	"fmt"
	"math"
	"time"
)

// DebtSummary is a pre-aggregated, read-only snapshot of a user's tracked
// debts, used purely for display. It is replaced wholesale on each refresh;
// nothing downstream mutates it.
type DebtSummary struct {
	TotalDebt             Money
	AverageInterestRate   float64
	DebtCount             int
	UpcomingPaymentsCount int
}

// NewDebtSummary validates aggregate values at the aggregation boundary and
// returns the snapshot. Display code renders snapshots without further
// checks, so every field is rejected here if negative or not a number.
// The zero-debt convention: with no debts the total must be zero and the
// average rate is 0.0.
func NewDebtSummary(totalDebtPaise int64, averageRate float64, debtCount, upcomingPayments int) (DebtSummary, error) {
	if totalDebtPaise < 0 {
		return DebtSummary{}, fmt.Errorf("total debt %d: %w", totalDebtPaise, ErrInvalidAmount)
	}
	if math.IsNaN(averageRate) || math.IsInf(averageRate, 0) || averageRate < 0 {
		return DebtSummary{}, fmt.Errorf("average rate %v: %w", averageRate, ErrInvalidRate)
	}
	if debtCount < 0 {
		return DebtSummary{}, fmt.Errorf("negative debt count %d", debtCount)
	}
	if upcomingPayments < 0 {
		return DebtSummary{}, fmt.Errorf("negative upcoming payments count %d", upcomingPayments)
	}
	if debtCount == 0 && totalDebtPaise != 0 {
		return DebtSummary{}, fmt.Errorf("total debt %d with zero debts", totalDebtPaise)
	}
	return DebtSummary{
		TotalDebt:             Money{Paise: totalDebtPaise},
		AverageInterestRate:   averageRate,
		DebtCount:             debtCount,
		UpcomingPaymentsCount: upcomingPayments,
	}, nil
}

// Summarize aggregates raw debt records into a DebtSummary: total outstanding
// balance, arithmetic mean of annual interest rates (0.0 over zero debts),
// record count, and the number of scheduled payments falling due inside
// [now, now+window].
func Summarize(debts []Debt, now time.Time, window time.Duration) DebtSummary {
	var total int64
	var rateSum float64
	upcoming := 0
	for _, d := range debts {
		total += d.Balance.Paise
		rateSum += d.InterestRate
		due, err := NextDueDate(d, now)
		if err != nil {
			continue
		}
		if !due.After(now.Add(window)) {
			upcoming++
		}
	}
	avg := 0.0
	if len(debts) > 0 {
		avg = rateSum / float64(len(debts))
	}
	return DebtSummary{
		TotalDebt:             Money{Paise: total},
		AverageInterestRate:   avg,
		DebtCount:             len(debts),
		UpcomingPaymentsCount: upcoming,
	}
}

// UpcomingPayments itemizes the scheduled payments falling due inside
// [now, now+window], one per debt at most.
func UpcomingPayments(debts []Debt, now time.Time, window time.Duration) []UpcomingPayment {
	var out []UpcomingPayment
	for _, d := range debts {
		due, err := NextDueDate(d, now)
		if err != nil {
			continue
		}
		if due.After(now.Add(window)) {
			continue
		}
		out = append(out, UpcomingPayment{
			DebtID:   d.ID,
			DebtName: d.Name,
			Amount:   d.MinimumPayment,
			DueOn:    due,
		})
	}
	return out
}
