package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/warehouse-stock-allocation/internal/model"
)

// InventoryRepo provides access to inventory_items, the reservable view
// of stock keyed by (sku, location, lot).  The (quantity, reserved_qty)
// pair on each row is the shared mutable resource of the system, so
// every mutation goes through a *Tx method holding the row lock.
type InventoryRepo struct {
	db *sql.DB
}

// NewInventoryRepo returns a new InventoryRepo bound to the given database.
func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *InventoryRepo) DB() *sql.DB { return r.db }

const inventoryColumns = `id, sku, location, lot, uom, quantity, reserved_qty, created_at, updated_at`

func scanInventoryItem(row interface{ Scan(...any) error }) (model.InventoryItem, error) {
	var it model.InventoryItem
	var lot sql.NullString
	err := row.Scan(
		&it.ID, &it.SKU, &it.Location, &lot, &it.UOM,
		&it.Quantity, &it.ReservedQty, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return model.InventoryItem{}, err
	}
	if lot.Valid && lot.String != "" {
		s := lot.String
		it.Lot = &s
	}
	return it, nil
}

// lotKey maps an optional lot onto the stored key value.  Lot-less
// stock is stored as the empty string, not NULL: MySQL unique indexes
// treat NULLs as distinct, which would break accumulation on the
// (sku, location, lot) key.
func lotKey(lot *string) string {
	if lot == nil {
		return ""
	}
	return *lot
}

// AvailableBySKUTx returns inventory items of the SKU that still have
// unreserved quantity, oldest-created first, locking each returned row
// for update.  An optional lot narrows the candidates.  Allocation
// walks this list greedily.
func (r *InventoryRepo) AvailableBySKUTx(ctx context.Context, tx *sql.Tx, sku string, lot *string) ([]model.InventoryItem, error) {
	q := `SELECT ` + inventoryColumns + ` FROM inventory_items
	      WHERE sku = ? AND quantity - reserved_qty > 0`
	args := []any{sku}
	if lot != nil && *lot != "" {
		q += ` AND lot = ?`
		args = append(args, *lot)
	}
	q += ` ORDER BY created_at ASC, id ASC FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.InventoryItem
	for rows.Next() {
		it, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetByIDForUpdateTx loads one inventory item with a row lock.
func (r *InventoryRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.InventoryItem, error) {
	const q = `SELECT ` + inventoryColumns + ` FROM inventory_items WHERE id = ? FOR UPDATE`
	return scanInventoryItem(tx.QueryRowContext(ctx, q, id))
}

// AddReservedTx increments reserved_qty by delta (negative delta
// releases).  The guard in the WHERE clause keeps the invariant
// 0 <= reserved_qty <= quantity even if a caller miscomputed; a zero
// row count then surfaces as ErrConflict.
func (r *InventoryRepo) AddReservedTx(ctx context.Context, tx *sql.Tx, id uint64, delta float64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE inventory_items
		 SET reserved_qty = reserved_qty + ?
		 WHERE id = ? AND reserved_qty + ? >= 0 AND reserved_qty + ? <= quantity`,
		delta, id, delta, delta)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// ConsumeTx removes qty from both quantity and reserved_qty of the
// item, as happens when a pick turns a soft hold into a physical
// removal.  The guard rejects consumption beyond either counter.
func (r *InventoryRepo) ConsumeTx(ctx context.Context, tx *sql.Tx, id uint64, qty float64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE inventory_items
		 SET quantity = quantity - ?, reserved_qty = reserved_qty - ?
		 WHERE id = ? AND quantity >= ? AND reserved_qty >= ?`,
		qty, qty, id, qty, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// UpsertAddTx accumulates qty into the row identified by
// (sku, location, lot), creating it when absent.  Used to book picked
// stock into the staging location.  Relies on the unique key over
// (sku, location, lot); lot-less stock is keyed by the empty string so
// repeated picks land on the same row.
func (r *InventoryRepo) UpsertAddTx(ctx context.Context, tx *sql.Tx, sku, location string, lot *string, uom string, qty float64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO inventory_items (sku, location, lot, uom, quantity, reserved_qty)
		 VALUES (?, ?, ?, ?, ?, 0)
		 ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)`,
		sku, location, lotKey(lot), uom, qty)
	return err
}

// ListBySKU returns the inventory rows for a SKU for the on-hand view.
// An empty sku returns everything; history screens page elsewhere.
func (r *InventoryRepo) ListBySKU(ctx context.Context, sku string) ([]model.InventoryItem, error) {
	q := `SELECT ` + inventoryColumns + ` FROM inventory_items`
	var args []any
	if sku != "" {
		q += ` WHERE sku = ?`
		args = append(args, sku)
	}
	q += ` ORDER BY sku ASC, location ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.InventoryItem, 0)
	for rows.Next() {
		it, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
