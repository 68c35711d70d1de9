package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"debtflow/internal/amqp"
	"debtflow/internal/export"
	applog "debtflow/internal/log"
	"debtflow/internal/storage"
)

// Storage is the slice of the SQLite repository the worker needs.
// Satisfied by *storage.SQLiteRepository.
type Storage interface {
	GetDebt(ctx context.Context, id int64) (*storage.DebtRecord, error)
	GetPendingSyncDebts(ctx context.Context, limit int) ([]storage.PendingSyncDebt, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// SyncWorker mirrors debts from SQLite into the export spreadsheet.
type SyncWorker struct {
	storage   Storage
	exporter  export.DebtExporter
	batchSize int
}

func NewSyncWorker(storage Storage, exporter export.DebtExporter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single debt sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.DebtSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		applog.FieldDebtID, msg.ID,
		"version", msg.Version)

	rec, err := w.storage.GetDebt(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get debt from storage: %w", err)
	}

	// The debt may have been removed between publish and delivery; the
	// delete message that follows handles the spreadsheet side.
	if rec.Deleted {
		slog.InfoContext(ctx, "Debt deleted since sync message was published, skipping",
			applog.FieldDebtID, msg.ID)
		return nil
	}

	return w.exportDebt(ctx, rec)
}

// HandleDeleteMessage processes a single debt delete message from AMQP.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.DebtDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message",
		applog.FieldDebtID, msg.ID,
		"name", msg.Name)

	if err := w.exporter.RemoveDebt(ctx, msg.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to remove debt from sheet",
			applog.FieldDebtID, msg.ID, applog.FieldError, err)
		return fmt.Errorf("remove debt from sheet: %w", err)
	}

	slog.InfoContext(ctx, "Debt removed from sheet", applog.FieldDebtID, msg.ID)
	return nil
}

// ProcessPendingDebts exports debts that missed their AMQP message. Runs
// periodically as a catch-up pass.
func (w *SyncWorker) ProcessPendingDebts(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncDebts(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending debts: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending debts", "count", len(pending))

	for _, p := range pending {
		rec, err := w.storage.GetDebt(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get debt", applog.FieldDebtID, p.ID, applog.FieldError, err)
			w.markSyncError(ctx, p.ID)
			continue
		}
		if rec.Deleted {
			continue
		}
		if err := w.exportDebt(ctx, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to export debt", applog.FieldDebtID, p.ID, applog.FieldError, err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck exports pending debts left over from worker downtime or
// lost messages. Uses a larger batch than the periodic pass.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncDebts(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending debts for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending debts found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending debts on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		rec, err := w.storage.GetDebt(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get debt for startup sync",
				applog.FieldDebtID, p.ID, applog.FieldError, err)
			w.markSyncError(ctx, p.ID)
			errorCount++
			continue
		}
		if rec.Deleted {
			continue
		}
		if err := w.exportDebt(ctx, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to export debt during startup",
				applog.FieldDebtID, p.ID, applog.FieldError, err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *SyncWorker) exportDebt(ctx context.Context, rec *storage.DebtRecord) error {
	ref, err := w.exporter.AppendDebt(ctx, rec.Debt, rec.Version)
	if err != nil {
		w.markSyncError(ctx, rec.Debt.ID)
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, rec.Debt.ID); err != nil {
		// The export itself worked, the pending flag just stays set.
		slog.ErrorContext(ctx, "Failed to mark as synced",
			applog.FieldDebtID, rec.Debt.ID, applog.FieldError, err)
	}

	slog.InfoContext(ctx, "Debt exported",
		applog.FieldDebtID, rec.Debt.ID,
		applog.FieldSheetsRef, ref,
		"version", rec.Version)

	return nil
}

func (w *SyncWorker) markSyncError(ctx context.Context, id int64) {
	if err := w.storage.MarkSyncError(ctx, id); err != nil && !errors.Is(err, storage.ErrDebtNotFound) {
		slog.ErrorContext(ctx, "Failed to mark sync error", applog.FieldDebtID, id, applog.FieldError, err)
	}
}
