package export

import (
	"context"

	"debtflow/internal/core"
)

// DebtExporter mirrors tracked debts into an external spreadsheet. Upserts
// keyed by debt ID so re-syncs after payments overwrite the same row.
type DebtExporter interface {
	// AppendDebt writes or updates the debt's row and returns a range
	// reference for logging.
	AppendDebt(ctx context.Context, d core.Debt, version int64) (string, error)

	// RemoveDebt clears the row for the given debt ID. Removing an ID that
	// was never exported is not an error.
	RemoveDebt(ctx context.Context, id int64) error
}
