// Package memory provides an in-process DebtExporter used in tests and
// local development, where no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"debtflow/internal/core"
	ports "debtflow/internal/export"
)

type row struct {
	Debt    core.Debt
	Version int64
}

type Exporter struct {
	mu   sync.Mutex
	rows map[int64]row
}

var _ ports.DebtExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{rows: make(map[int64]row)}
}

func (e *Exporter) AppendDebt(ctx context.Context, d core.Debt, version int64) (string, error) {
	if err := d.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows[d.ID] = row{Debt: d, Version: version}
	return fmt.Sprintf("memory!%d", d.ID), nil
}

func (e *Exporter) RemoveDebt(ctx context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.rows, id)
	return nil
}

// Exported returns the stored debt and version for an ID.
func (e *Exporter) Exported(id int64) (core.Debt, int64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.rows[id]
	return r.Debt, r.Version, ok
}

// Len reports the number of exported rows.
func (e *Exporter) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.rows)
}
