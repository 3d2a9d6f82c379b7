package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/warehouse-stock-allocation/internal/model"
)

// OrderRepo persists sales orders and their lines.  The allocation core
// reads orders; creation exists so the system can be exercised end to
// end without an upstream order service.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// Create inserts an order together with its lines in one transaction
// and populates all generated IDs.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order, lines []model.OrderLine) ([]model.OrderLine, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (number, customer) VALUES (?, ?)`, o.Number, o.Customer)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	o.ID = uint64(id)
	for i := range lines {
		var lot any
		if lines[i].Lot != nil && *lines[i].Lot != "" {
			lot = *lines[i].Lot
		}
		lr, err := tx.ExecContext(ctx,
			`INSERT INTO order_lines (order_id, sku, quantity, uom, lot) VALUES (?, ?, ?, ?, ?)`,
			o.ID, lines[i].SKU, lines[i].Quantity, lines[i].UOM, lot)
		if err != nil {
			return nil, err
		}
		lid, err := lr.LastInsertId()
		if err != nil {
			return nil, err
		}
		lines[i].ID = uint64(lid)
		lines[i].OrderID = o.ID
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return lines, nil
}

// GetByID returns an order header.  sql.ErrNoRows when absent.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	var o model.Order
	err := r.db.QueryRowContext(ctx,
		`SELECT id, number, customer, created_at FROM orders WHERE id = ?`, id).
		Scan(&o.ID, &o.Number, &o.Customer, &o.CreatedAt)
	return o, err
}

// GetByIDTx is GetByID inside an existing transaction; allocation uses
// it so the order's existence is checked under the same isolation as
// the job it creates.
func (r *OrderRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Order, error) {
	var o model.Order
	err := tx.QueryRowContext(ctx,
		`SELECT id, number, customer, created_at FROM orders WHERE id = ?`, id).
		Scan(&o.ID, &o.Number, &o.Customer, &o.CreatedAt)
	return o, err
}

// LinesByOrderTx returns the lines of an order in insertion order,
// inside an existing transaction.
func (r *OrderRepo) LinesByOrderTx(ctx context.Context, tx *sql.Tx, orderID uint64) ([]model.OrderLine, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, order_id, sku, quantity, uom, lot FROM order_lines WHERE order_id = ? ORDER BY id ASC`,
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrderLines(rows)
}

// LinesByOrder is LinesByOrderTx without a transaction, for read views.
func (r *OrderRepo) LinesByOrder(ctx context.Context, orderID uint64) ([]model.OrderLine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, sku, quantity, uom, lot FROM order_lines WHERE order_id = ? ORDER BY id ASC`,
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrderLines(rows)
}

func collectOrderLines(rows *sql.Rows) ([]model.OrderLine, error) {
	lines := make([]model.OrderLine, 0)
	for rows.Next() {
		var l model.OrderLine
		var lot sql.NullString
		if err := rows.Scan(&l.ID, &l.OrderID, &l.SKU, &l.Quantity, &l.UOM, &lot); err != nil {
			return nil, err
		}
		if lot.Valid {
			s := lot.String
			l.Lot = &s
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
