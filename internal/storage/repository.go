package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"debtflow/internal/core"
	"debtflow/internal/ledger"

	_ "modernc.org/sqlite"
)

// ErrDebtNotFound aliases the shared ledger sentinel so callers holding the
// concrete repository can match on either.
var ErrDebtNotFound = ledger.ErrDebtNotFound

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateDebt implements ledger.DebtWriter
func (r *SQLiteRepository) CreateDebt(ctx context.Context, d core.Debt) (int64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO debts (name, debt_type, balance_paise, interest_rate,
			minimum_payment_paise, payment_frequency, start_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.Name, string(d.Type), d.Balance.Paise, d.InterestRate,
		d.MinimumPayment.Paise, string(d.Frequency), d.StartDate.Format(dateLayout))
	if err != nil {
		return 0, fmt.Errorf("insert debt: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read debt id: %w", err)
	}

	slog.InfoContext(ctx, "Debt saved to SQLite",
		"debt_id", id,
		"name", d.Name,
		"balance_paise", d.Balance.Paise)

	return id, nil
}

// ListDebts implements ledger.DebtLister
func (r *SQLiteRepository) ListDebts(ctx context.Context) ([]core.Debt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, debt_type, balance_paise, interest_rate,
			minimum_payment_paise, payment_frequency, start_date
		FROM debts
		WHERE deleted_at IS NULL
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	var debts []core.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		debts = append(debts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate debts: %w", err)
	}
	return debts, nil
}

// DebtRecord carries a debt together with its sync bookkeeping columns.
type DebtRecord struct {
	Debt       core.Debt
	Version    int64
	SyncStatus string
	CreatedAt  time.Time
	Deleted    bool
}

// GetDebt returns a single debt by ID, including soft-deleted rows so the
// sync worker can still resolve messages for debts removed in the meantime.
func (r *SQLiteRepository) GetDebt(ctx context.Context, id int64) (*DebtRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, debt_type, balance_paise, interest_rate,
			minimum_payment_paise, payment_frequency, start_date,
			version, sync_status, created_at, deleted_at IS NOT NULL
		FROM debts
		WHERE id = ?`, id)

	var (
		rec       DebtRecord
		debtType  string
		frequency string
		startDate string
	)
	err := row.Scan(&rec.Debt.ID, &rec.Debt.Name, &debtType,
		&rec.Debt.Balance.Paise, &rec.Debt.InterestRate,
		&rec.Debt.MinimumPayment.Paise, &frequency, &startDate,
		&rec.Version, &rec.SyncStatus, &rec.CreatedAt, &rec.Deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDebtNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get debt by id: %w", err)
	}

	rec.Debt.Type = core.DebtType(debtType)
	rec.Debt.Frequency = core.PaymentFrequency(frequency)
	rec.Debt.StartDate, err = parseDate(startDate)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteDebt implements ledger.DebtDeleter with a soft delete so the
// export worker can still reconcile the removal downstream.
func (r *SQLiteRepository) DeleteDebt(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE debts
		SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete debt rows affected: %w", err)
	}
	if affected == 0 {
		return ErrDebtNotFound
	}

	slog.InfoContext(ctx, "Debt soft-deleted", "debt_id", id)
	return nil
}

// RecordPayment implements ledger.PaymentRecorder. The payment insert and
// the balance decrement commit atomically; the balance never goes below zero.
func (r *SQLiteRepository) RecordPayment(ctx context.Context, p core.Payment) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin payment tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM debts WHERE id = ? AND deleted_at IS NULL`,
		p.DebtID).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("check debt exists: %w", err)
	}
	if exists == 0 {
		return 0, ErrDebtNotFound
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO payments (debt_id, amount_paise, paid_at)
		VALUES (?, ?, ?)`,
		p.DebtID, p.Amount.Paise, p.PaidAt.Format(dateLayout))
	if err != nil {
		return 0, fmt.Errorf("insert payment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read payment id: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE debts
		SET balance_paise = MAX(balance_paise - ?, 0),
			version = version + 1,
			sync_status = 'pending',
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		p.Amount.Paise, p.DebtID)
	if err != nil {
		return 0, fmt.Errorf("apply payment to balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit payment tx: %w", err)
	}

	slog.InfoContext(ctx, "Payment recorded",
		"payment_id", id,
		"debt_id", p.DebtID,
		"amount_paise", p.Amount.Paise)

	return id, nil
}

// ReadDebtSummary implements ledger.SummaryReader
func (r *SQLiteRepository) ReadDebtSummary(ctx context.Context, now time.Time, window time.Duration) (core.DebtSummary, error) {
	debts, err := r.ListDebts(ctx)
	if err != nil {
		return core.DebtSummary{}, err
	}
	return core.Summarize(debts, now, window), nil
}

// ListUpcomingPayments implements ledger.UpcomingLister
func (r *SQLiteRepository) ListUpcomingPayments(ctx context.Context, now time.Time, window time.Duration) ([]core.UpcomingPayment, error) {
	debts, err := r.ListDebts(ctx)
	if err != nil {
		return nil, err
	}
	return core.UpcomingPayments(debts, now, window), nil
}

// PendingSyncDebt is the minimal row needed to enqueue a sync message.
type PendingSyncDebt struct {
	ID        int64
	Version   int64
	CreatedAt time.Time
}

// GetPendingSyncDebts returns debts that still need to be exported.
func (r *SQLiteRepository) GetPendingSyncDebts(ctx context.Context, limit int) ([]PendingSyncDebt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, version, created_at
		FROM debts
		WHERE sync_status = 'pending' AND deleted_at IS NULL
		ORDER BY id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync debts: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncDebt
	for rows.Next() {
		var p PendingSyncDebt
		if err := rows.Scan(&p.ID, &p.Version, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending sync debt: %w", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending sync debts: %w", err)
	}
	return pending, nil
}

// MarkSynced marks a debt as successfully exported.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE debts SET sync_status = 'synced', updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark debt synced: %w", err)
	}

	slog.InfoContext(ctx, "Debt marked as synced", "debt_id", id)
	return nil
}

// MarkSyncError marks a debt as having failed export.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE debts SET sync_status = 'error', updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark debt sync error: %w", err)
	}

	slog.WarnContext(ctx, "Debt marked with sync error", "debt_id", id)
	return nil
}

func scanDebt(rows *sql.Rows) (core.Debt, error) {
	var (
		d         core.Debt
		debtType  string
		frequency string
		startDate string
	)
	err := rows.Scan(&d.ID, &d.Name, &debtType, &d.Balance.Paise,
		&d.InterestRate, &d.MinimumPayment.Paise, &frequency, &startDate)
	if err != nil {
		return core.Debt{}, fmt.Errorf("scan debt: %w", err)
	}

	d.Type = core.DebtType(debtType)
	d.Frequency = core.PaymentFrequency(frequency)
	d.StartDate, err = parseDate(startDate)
	if err != nil {
		return core.Debt{}, err
	}
	return d, nil
}

func parseDate(s string) (core.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse stored date %q: %w", s, err)
	}
	return core.Date{Time: t}, nil
}
