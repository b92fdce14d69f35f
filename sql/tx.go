package sql

import (
	"context"
	"database/sql/driver"
)

// Compile-time interface check.
var _ driver.Tx = (*otelTx)(nil)

// otelTx wraps a driver.Tx. The context captured at BeginTx parents the
// COMMIT/ROLLBACK spans.
type otelTx struct {
	ctx context.Context
	tx  driver.Tx
	cfg *config
}

// newOtelTx creates a new instrumented transaction.
func newOtelTx(ctx context.Context, tx driver.Tx, cfg *config) *otelTx {
	return &otelTx{
		ctx: ctx,
		tx:  tx,
		cfg: cfg,
	}
}

// Commit implements driver.Tx.
func (t *otelTx) Commit() error {
	ctx, call := t.cfg.startCall(t.ctx, opCommit, "")

	err := t.tx.Commit()

	call.end(ctx, err)
	return err
}

// Rollback implements driver.Tx.
func (t *otelTx) Rollback() error {
	ctx, call := t.cfg.startCall(t.ctx, opRollback, "")

	err := t.tx.Rollback()

	call.end(ctx, err)
	return err
}
