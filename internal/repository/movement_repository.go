package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/warehouse-stock-allocation/internal/model"
)

// MovementRepo appends to and reads the movement ledger.  Rows are
// written once by pick events and never mutated afterwards apart from
// the completion stamp set at insert time for instantaneous moves.
type MovementRepo struct {
	db *sql.DB
}

// NewMovementRepo returns a new MovementRepo bound to the given database.
func NewMovementRepo(db *sql.DB) *MovementRepo { return &MovementRepo{db: db} }

// CreateTx appends one movement row inside the caller's transaction.
// PICK_TO_STAGING moves are complete the moment they are recorded, so
// completed_at is stamped together with created_at.
func (r *MovementRepo) CreateTx(ctx context.Context, tx *sql.Tx, m *model.Movement) error {
	var lot any
	if m.Lot != nil && *m.Lot != "" {
		lot = *m.Lot
	}
	if m.Status == "" {
		m.Status = model.MoveDone
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO movements (type, sku, from_location, to_location, quantity, lot, performed_by, status, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, UTC_TIMESTAMP())`,
		m.Type, m.SKU, m.FromLocation, m.ToLocation, m.Quantity, lot, m.PerformedBy, m.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// List returns movement history newest first, optionally filtered by
// SKU, capped at limit rows (200 when limit <= 0).
func (r *MovementRepo) List(ctx context.Context, sku string, limit int) ([]model.Movement, error) {
	if limit <= 0 {
		limit = 200
	}
	q := `SELECT id, type, sku, from_location, to_location, quantity, lot, performed_by, status, created_at, completed_at
	      FROM movements`
	var args []any
	if sku != "" {
		q += ` WHERE sku = ?`
		args = append(args, sku)
	}
	q += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	moves := make([]model.Movement, 0)
	for rows.Next() {
		var m model.Movement
		var lot sql.NullString
		var completedAt sql.NullTime
		if err := rows.Scan(
			&m.ID, &m.Type, &m.SKU, &m.FromLocation, &m.ToLocation,
			&m.Quantity, &lot, &m.PerformedBy, &m.Status, &m.CreatedAt, &completedAt,
		); err != nil {
			return nil, err
		}
		if lot.Valid {
			s := lot.String
			m.Lot = &s
		}
		if completedAt.Valid {
			t := completedAt.Time
			m.CompletedAt = &t
		}
		moves = append(moves, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return moves, nil
}
