package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// Job numbers come from the code_sequences table: a named monotonic
// counter advanced under the allocation transaction's lock, formatted
// with a prefix and zero padding.
const (
	jobSequenceName    = "picking_job"
	jobSequencePrefix  = "PJ"
	jobSequencePadding = 6
)

// SequenceRepo hands out formatted numbers from named database
// counters.  The UPDATE-then-read order takes the row lock first, so
// two allocations can never obtain the same number.
type SequenceRepo struct {
	db *sql.DB
}

// NewSequenceRepo returns a new SequenceRepo bound to the given database.
func NewSequenceRepo(db *sql.DB) *SequenceRepo { return &SequenceRepo{db: db} }

// NextTx advances the named counter inside the caller's transaction and
// returns the new value formatted as prefix + zero-padded number.
func (r *SequenceRepo) NextTx(ctx context.Context, tx *sql.Tx, name, prefix string, padding int) (string, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE code_sequences SET last_no = last_no + 1 WHERE name = ?`, name)
	if err != nil {
		return "", fmt.Errorf("advance sequence %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", fmt.Errorf("sequence %q not found", name)
	}
	var lastNo int64
	if err := tx.QueryRowContext(ctx,
		`SELECT last_no FROM code_sequences WHERE name = ?`, name).Scan(&lastNo); err != nil {
		return "", fmt.Errorf("read sequence %q: %w", name, err)
	}
	return FormatSequence(prefix, padding, lastNo), nil
}

// NextJobNumberTx returns the next picking job number (PJ000123).
func (r *SequenceRepo) NextJobNumberTx(ctx context.Context, tx *sql.Tx) (string, error) {
	return r.NextTx(ctx, tx, jobSequenceName, jobSequencePrefix, jobSequencePadding)
}

// FormatSequence renders a counter value as prefix + zero-padded digits.
func FormatSequence(prefix string, padding int, n int64) string {
	return fmt.Sprintf("%s%0*d", prefix, padding, n)
}
