package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/warehouse-stock-allocation/internal/model"
)

// BatchRepo provides persistence for physical stock batches.  Batches
// are never deleted; exhaustion is recorded by the EMPTY status.  All
// timestamp fields are stored in UTC.
type BatchRepo struct {
	db *sql.DB
}

// NewBatchRepo returns a new BatchRepo bound to the given database.
func NewBatchRepo(db *sql.DB) *BatchRepo { return &BatchRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span multiple repositories.
func (r *BatchRepo) DB() *sql.DB { return r.db }

const batchColumns = `id, sku, uom, initial_quantity, current_quantity, status, location, received_at, transformation_id, source_batch_id`

func scanBatch(row interface{ Scan(...any) error }) (model.Batch, error) {
	var b model.Batch
	var transformationID, sourceBatchID sql.NullInt64
	err := row.Scan(
		&b.ID, &b.SKU, &b.UOM, &b.InitialQuantity, &b.CurrentQuantity,
		&b.Status, &b.Location, &b.ReceivedAt, &transformationID, &sourceBatchID,
	)
	if err != nil {
		return model.Batch{}, err
	}
	if transformationID.Valid {
		v := uint64(transformationID.Int64)
		b.TransformationID = &v
	}
	if sourceBatchID.Valid {
		v := uint64(sourceBatchID.Int64)
		b.SourceBatchID = &v
	}
	return b, nil
}

// Create inserts a batch received from outside (goods receipt) or
// produced by a transformation and populates the generated ID.  A zero
// ReceivedAt defaults to now.
func (r *BatchRepo) Create(ctx context.Context, b *model.Batch) error {
	if b.ReceivedAt.IsZero() {
		b.ReceivedAt = time.Now().UTC()
	}
	if b.Status == "" {
		b.Status = model.BatchStatusFor(b.InitialQuantity, b.CurrentQuantity)
	}
	const q = `INSERT INTO batches (sku, uom, initial_quantity, current_quantity, status, location, received_at, transformation_id, source_batch_id)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		b.SKU, b.UOM, b.InitialQuantity, b.CurrentQuantity, b.Status,
		b.Location, b.ReceivedAt.UTC().Format("2006-01-02 15:04:05"),
		nullableID(b.TransformationID), nullableID(b.SourceBatchID),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// GetByID returns a single batch.  sql.ErrNoRows is returned when the
// batch does not exist.
func (r *BatchRepo) GetByID(ctx context.Context, id uint64) (model.Batch, error) {
	const q = `SELECT ` + batchColumns + ` FROM batches WHERE id = ?`
	return scanBatch(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDForUpdateTx loads a batch inside the given transaction with a
// row lock, serializing concurrent transformations and corrections on
// the same batch.
func (r *BatchRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Batch, error) {
	const q = `SELECT ` + batchColumns + ` FROM batches WHERE id = ? FOR UPDATE`
	return scanBatch(tx.QueryRowContext(ctx, q, id))
}

// EligibleBySKU returns the selection snapshot: every batch of the SKU
// that is not EMPTY and still holds stock, ordered oldest-received
// first with ID as the tie-break.  The snapshot is read without locks;
// callers acting on a choice transactionally must re-lock the chosen
// row.
func (r *BatchRepo) EligibleBySKU(ctx context.Context, sku string) ([]model.Batch, error) {
	const q = `SELECT ` + batchColumns + ` FROM batches
	           WHERE sku = ? AND status <> 'EMPTY' AND current_quantity > 0
	           ORDER BY received_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, sku)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var batches []model.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return batches, nil
}

// UpdateQuantityTx persists a new current quantity together with the
// status derived from it.  Must be called with the batch row locked in
// the same transaction.
func (r *BatchRepo) UpdateQuantityTx(ctx context.Context, tx *sql.Tx, id uint64, initial, current float64) error {
	status := model.BatchStatusFor(initial, current)
	_, err := tx.ExecContext(ctx,
		`UPDATE batches SET current_quantity = ?, status = ? WHERE id = ?`,
		current, status, id)
	return err
}

// LinkOriginTx sets the lineage back-references on a result batch:
// the transformation that produced it and the batch it came from.
func (r *BatchRepo) LinkOriginTx(ctx context.Context, tx *sql.Tx, batchID, transformationID, sourceBatchID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE batches SET transformation_id = ?, source_batch_id = ? WHERE id = ?`,
		transformationID, sourceBatchID, batchID)
	return err
}

// ChildrenOf returns the batches whose source_batch_id points at the
// given batch — the one-hop descendants in the lineage graph.
func (r *BatchRepo) ChildrenOf(ctx context.Context, batchID uint64) ([]model.Batch, error) {
	const q = `SELECT ` + batchColumns + ` FROM batches WHERE source_batch_id = ? ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	children := make([]model.Batch, 0)
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		children = append(children, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return children, nil
}

// nullableID converts an optional uint64 into a driver-friendly value.
func nullableID(v *uint64) any {
	if v == nil {
		return nil
	}
	return *v
}
