package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"debtflow/internal/core"
	"debtflow/internal/ledger"
)

// Store is an in-memory ledger used for local development and tests.
type Store struct {
	mu     sync.Mutex
	nextID int64
	debts  map[int64]core.Debt
	paid   []core.Payment
}

func New() *Store {
	return &Store{nextID: 1, debts: make(map[int64]core.Debt)}
}

// NewWithDebts seeds the store with validated debts.
func NewWithDebts(debts ...core.Debt) (*Store, error) {
	s := New()
	for _, d := range debts {
		if _, err := s.CreateDebt(context.Background(), d); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// CreateDebt stores the debt and returns its synthetic ID.
func (s *Store) CreateDebt(_ context.Context, d core.Debt) (int64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.nextID
	s.nextID++
	s.debts[d.ID] = d
	return d.ID, nil
}

// ListDebts returns tracked debts ordered by ID.
func (s *Store) ListDebts(_ context.Context) ([]core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), nil
}

// DeleteDebt removes the debt from tracking.
func (s *Store) DeleteDebt(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.debts[id]; !ok {
		return fmt.Errorf("debt %d: %w", id, ledger.ErrDebtNotFound)
	}
	delete(s.debts, id)
	return nil
}

// RecordPayment stores the payment and reduces the debt balance, floored at zero.
func (s *Store) RecordPayment(_ context.Context, p core.Payment) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.debts[p.DebtID]
	if !ok {
		return 0, fmt.Errorf("debt %d: %w", p.DebtID, ledger.ErrDebtNotFound)
	}
	d.Balance.Paise -= p.Amount.Paise
	if d.Balance.Paise < 0 {
		d.Balance.Paise = 0
	}
	s.debts[p.DebtID] = d
	p.ID = int64(len(s.paid) + 1)
	s.paid = append(s.paid, p)
	return p.ID, nil
}

// ReadDebtSummary aggregates the stored debts into a display snapshot.
func (s *Store) ReadDebtSummary(_ context.Context, now time.Time, window time.Duration) (core.DebtSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Summarize(s.snapshotLocked(), now, window), nil
}

// ListUpcomingPayments itemizes payments due within the window.
func (s *Store) ListUpcomingPayments(_ context.Context, now time.Time, window time.Duration) ([]core.UpcomingPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.UpcomingPayments(s.snapshotLocked(), now, window), nil
}

func (s *Store) snapshotLocked() []core.Debt {
	out := make([]core.Debt, 0, len(s.debts))
	for id := int64(1); id < s.nextID; id++ {
		if d, ok := s.debts[id]; ok {
			out = append(out, d)
		}
	}
	return out
}
