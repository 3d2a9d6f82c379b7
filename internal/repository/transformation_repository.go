package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/warehouse-stock-allocation/internal/model"
)

// TransformationRepo persists the transformation ledger: one row per
// irreversible stock-splitting or converting operation.  Rows are
// immutable after creation except for the single permitted update that
// attaches a result batch.
type TransformationRepo struct {
	db *sql.DB
}

// NewTransformationRepo returns a new TransformationRepo bound to the
// given database.
func NewTransformationRepo(db *sql.DB) *TransformationRepo {
	return &TransformationRepo{db: db}
}

const transformationColumns = `id, type, source_batch_id, source_quantity, result_batch_id, result_quantity, waste_quantity, order_ref, performed_by, notes, created_at`

func scanTransformation(row interface{ Scan(...any) error }) (model.Transformation, error) {
	var t model.Transformation
	var resultBatchID sql.NullInt64
	var orderRef, notes sql.NullString
	err := row.Scan(
		&t.ID, &t.Type, &t.SourceBatchID, &t.SourceQuantity, &resultBatchID,
		&t.ResultQuantity, &t.WasteQuantity, &orderRef, &t.PerformedBy, &notes, &t.CreatedAt,
	)
	if err != nil {
		return model.Transformation{}, err
	}
	if resultBatchID.Valid {
		v := uint64(resultBatchID.Int64)
		t.ResultBatchID = &v
	}
	if orderRef.Valid {
		s := orderRef.String
		t.OrderRef = &s
	}
	if notes.Valid {
		s := notes.String
		t.Notes = &s
	}
	return t, nil
}

// CreateTx inserts a transformation row inside the caller's transaction
// and populates the generated ID.  Decrementing the source batch and
// linking a known result batch are separate steps of the same
// transaction, owned by the handler.
func (r *TransformationRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Transformation) error {
	const q = `INSERT INTO transformations
	           (type, source_batch_id, source_quantity, result_batch_id, result_quantity, waste_quantity, order_ref, performed_by, notes)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var orderRef, notes any
	if t.OrderRef != nil {
		orderRef = *t.OrderRef
	}
	if t.Notes != nil {
		notes = *t.Notes
	}
	res, err := tx.ExecContext(ctx, q,
		t.Type, t.SourceBatchID, t.SourceQuantity, nullableID(t.ResultBatchID),
		t.ResultQuantity, t.WasteQuantity, orderRef, t.PerformedBy, notes,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		`SELECT created_at FROM transformations WHERE id = ?`, t.ID,
	).Scan(&t.CreatedAt)
}

// GetByID returns a single transformation.  sql.ErrNoRows is returned
// when it does not exist.
func (r *TransformationRepo) GetByID(ctx context.Context, id uint64) (model.Transformation, error) {
	const q = `SELECT ` + transformationColumns + ` FROM transformations WHERE id = ?`
	return scanTransformation(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDForUpdateTx loads a transformation with a row lock so that two
// concurrent attempts to attach a result serialize; only one can see
// result_batch_id unset.
func (r *TransformationRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Transformation, error) {
	const q = `SELECT ` + transformationColumns + ` FROM transformations WHERE id = ? FOR UPDATE`
	return scanTransformation(tx.QueryRowContext(ctx, q, id))
}

// SetResultTx attaches the result batch to a transformation.  The
// caller must have verified, under lock, that no result is linked yet.
func (r *TransformationRepo) SetResultTx(ctx context.Context, tx *sql.Tx, id, resultBatchID uint64, resultQty, wasteQty float64, notes *string) error {
	var n any
	if notes != nil {
		n = *notes
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE transformations SET result_batch_id = ?, result_quantity = ?, waste_quantity = ?, notes = ? WHERE id = ?`,
		resultBatchID, resultQty, wasteQty, n, id)
	return err
}

// BySourceBatch returns every transformation that consumed quantity
// from the given batch, oldest first.
func (r *TransformationRepo) BySourceBatch(ctx context.Context, batchID uint64) ([]model.Transformation, error) {
	const q = `SELECT ` + transformationColumns + ` FROM transformations WHERE source_batch_id = ? ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]model.Transformation, 0)
	for rows.Next() {
		t, err := scanTransformation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
