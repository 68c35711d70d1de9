package services

import (
	"context"
	"testing"
	"time"

	"debtflow/internal/cache"
	"debtflow/internal/core"
	"debtflow/internal/ledger/memory"
)

type fakePublisher struct {
	syncs   []int64
	deletes []int64
}

func (f *fakePublisher) PublishDebtSync(ctx context.Context, id, version int64) error {
	f.syncs = append(f.syncs, id)
	return nil
}

func (f *fakePublisher) PublishDebtDelete(ctx context.Context, id int64, name string) error {
	f.deletes = append(f.deletes, id)
	return nil
}

func testDebt() core.Debt {
	return core.Debt{
		Name:           "Car loan",
		Type:           core.AutoLoan,
		Balance:        core.Money{Paise: 5000000},
		InterestRate:   9.5,
		MinimumPayment: core.Money{Paise: 500000},
		Frequency:      core.Monthly,
		StartDate:      core.NewDate(2026, 1, 5),
	}
}

func newTestServices() (*DebtService, *SummaryService, *fakePublisher) {
	store := memory.New()
	summaries := NewSummaryService(store, cache.NewLRUCache[core.DebtSummary](4, time.Minute), 7*24*time.Hour)
	pub := &fakePublisher{}
	return NewDebtService(store, nil, pub, summaries), summaries, pub
}

func TestCreateDebtPublishesSync(t *testing.T) {
	svc, _, pub := newTestServices()

	id, err := svc.CreateDebt(context.Background(), testDebt())
	if err != nil {
		t.Fatalf("CreateDebt: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero id")
	}
	if len(pub.syncs) != 1 || pub.syncs[0] != id {
		t.Errorf("syncs = %v, want [%d]", pub.syncs, id)
	}
}

func TestDeleteDebtPublishesDelete(t *testing.T) {
	svc, _, pub := newTestServices()
	ctx := context.Background()

	id, err := svc.CreateDebt(ctx, testDebt())
	if err != nil {
		t.Fatalf("CreateDebt: %v", err)
	}
	if err := svc.DeleteDebt(ctx, id); err != nil {
		t.Fatalf("DeleteDebt: %v", err)
	}
	if len(pub.deletes) != 1 || pub.deletes[0] != id {
		t.Errorf("deletes = %v, want [%d]", pub.deletes, id)
	}
}

func TestMutationsInvalidateSummaryCache(t *testing.T) {
	svc, summaries, _ := newTestServices()
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	first, err := summaries.Get(ctx, now)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if first.DebtCount != 0 {
		t.Fatalf("debt count = %d, want 0", first.DebtCount)
	}

	if _, err := svc.CreateDebt(ctx, testDebt()); err != nil {
		t.Fatalf("CreateDebt: %v", err)
	}

	second, err := summaries.Get(ctx, now)
	if err != nil {
		t.Fatalf("Get after create: %v", err)
	}
	if second.DebtCount != 1 {
		t.Errorf("debt count = %d, want 1 after invalidation", second.DebtCount)
	}
	if second.TotalDebt.Paise != 5000000 {
		t.Errorf("total = %d, want 5000000", second.TotalDebt.Paise)
	}
}

func TestNilPublisherIsTolerated(t *testing.T) {
	store := memory.New()
	summaries := NewSummaryService(store, cache.NewLRUCache[core.DebtSummary](4, time.Minute), 7*24*time.Hour)
	svc := NewDebtService(store, nil, nil, summaries)

	id, err := svc.CreateDebt(context.Background(), testDebt())
	if err != nil {
		t.Fatalf("CreateDebt without publisher: %v", err)
	}
	if err := svc.DeleteDebt(context.Background(), id); err != nil {
		t.Fatalf("DeleteDebt without publisher: %v", err)
	}
}

func TestRecordPaymentReducesSummaryTotal(t *testing.T) {
	svc, summaries, _ := newTestServices()
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	id, err := svc.CreateDebt(ctx, testDebt())
	if err != nil {
		t.Fatalf("CreateDebt: %v", err)
	}

	if _, err := svc.RecordPayment(ctx, core.Payment{
		DebtID: id,
		Amount: core.Money{Paise: 2000000},
		PaidAt: core.NewDate(2026, 2, 1),
	}); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	summary, err := summaries.Get(ctx, now)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if summary.TotalDebt.Paise != 3000000 {
		t.Errorf("total = %d, want 3000000 after payment", summary.TotalDebt.Paise)
	}
}
