package services

import (
	"context"
	"fmt"
	"log/slog"

	"debtflow/internal/core"
	"debtflow/internal/ledger"
	"debtflow/internal/storage"
)

// SyncPublisher publishes export messages for the sync worker. Satisfied by
// *amqp.Client; nil when the broker is not configured.
type SyncPublisher interface {
	PublishDebtSync(ctx context.Context, id, version int64) error
	PublishDebtDelete(ctx context.Context, id int64, name string) error
}

// DebtRecordReader exposes the sync bookkeeping the SQLite backend keeps
// alongside each debt. Nil for the in-memory backend.
type DebtRecordReader interface {
	GetDebt(ctx context.Context, id int64) (*storage.DebtRecord, error)
}

// DebtService orchestrates debt mutations across storage and AMQP.
type DebtService struct {
	store     ledger.Store
	records   DebtRecordReader
	publisher SyncPublisher
	summaries *SummaryService
}

func NewDebtService(store ledger.Store, records DebtRecordReader, publisher SyncPublisher, summaries *SummaryService) *DebtService {
	return &DebtService{
		store:     store,
		records:   records,
		publisher: publisher,
		summaries: summaries,
	}
}

// CreateDebt saves a debt locally and publishes a sync message.
func (s *DebtService) CreateDebt(ctx context.Context, d core.Debt) (int64, error) {
	id, err := s.store.CreateDebt(ctx, d)
	if err != nil {
		return 0, fmt.Errorf("save debt: %w", err)
	}

	s.summaries.Invalidate()

	// Fresh debts are version 1. Publishing is non-blocking: the debt is
	// saved locally even if the broker is down, the worker's catch-up pass
	// picks it up later.
	if err := s.publishSync(ctx, id, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"debt_id", id, "error", err)
	}

	return id, nil
}

// DeleteDebt removes a debt locally and publishes a delete message.
func (s *DebtService) DeleteDebt(ctx context.Context, id int64) error {
	name := s.debtName(ctx, id)

	if err := s.store.DeleteDebt(ctx, id); err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}

	s.summaries.Invalidate()

	if err := s.publishDelete(ctx, id, name); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"debt_id", id, "error", err)
	}

	return nil
}

// RecordPayment stores a payment, reduces the balance and publishes a sync
// message carrying the debt's new version.
func (s *DebtService) RecordPayment(ctx context.Context, p core.Payment) (int64, error) {
	id, err := s.store.RecordPayment(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("record payment: %w", err)
	}

	s.summaries.Invalidate()

	version := int64(0)
	if s.records != nil {
		if rec, err := s.records.GetDebt(ctx, p.DebtID); err == nil {
			version = rec.Version
		}
	}
	if err := s.publishSync(ctx, p.DebtID, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message after payment",
			"debt_id", p.DebtID, "error", err)
	}

	return id, nil
}

func (s *DebtService) publishSync(ctx context.Context, id, version int64) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.publisher.PublishDebtSync(ctx, id, version)
}

func (s *DebtService) publishDelete(ctx context.Context, id int64, name string) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping delete message")
		return nil
	}
	return s.publisher.PublishDebtDelete(ctx, id, name)
}

func (s *DebtService) debtName(ctx context.Context, id int64) string {
	if s.records == nil {
		return ""
	}
	rec, err := s.records.GetDebt(ctx, id)
	if err != nil {
		return ""
	}
	return rec.Debt.Name
}
