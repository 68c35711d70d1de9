package ledger

import (
	"context"
	"errors"
	"time"

	"debtflow/internal/core"
)

// ErrDebtNotFound is returned by any Store when the referenced debt does not
// exist or is no longer tracked.
var ErrDebtNotFound = errors.New("debt not found")

// Ports for outbound adapters.
type (
	DebtWriter interface {
		CreateDebt(ctx context.Context, d core.Debt) (id int64, err error)
	}

	DebtLister interface {
		ListDebts(ctx context.Context) ([]core.Debt, error)
	}

	DebtDeleter interface {
		DeleteDebt(ctx context.Context, id int64) error
	}

	PaymentRecorder interface {
		// RecordPayment stores the payment and reduces the debt's
		// outstanding balance, never below zero.
		RecordPayment(ctx context.Context, p core.Payment) (id int64, err error)
	}

	// SummaryReader provides the pre-aggregated debt snapshot for display.
	SummaryReader interface {
		// ReadDebtSummary aggregates all tracked debts, counting payments
		// due within [now, now+window].
		ReadDebtSummary(ctx context.Context, now time.Time, window time.Duration) (core.DebtSummary, error)
	}

	// UpcomingLister itemizes the payments the summary only counts.
	UpcomingLister interface {
		ListUpcomingPayments(ctx context.Context, now time.Time, window time.Duration) ([]core.UpcomingPayment, error)
	}
)

// Store is the composite port the HTTP layer is wired against.
type Store interface {
	DebtWriter
	DebtLister
	DebtDeleter
	PaymentRecorder
	SummaryReader
	UpcomingLister
}
