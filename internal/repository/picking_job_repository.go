package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/warehouse-stock-allocation/internal/model"
)

// PickingJobRepo persists picking jobs and their items.  Jobs carry the
// state machine NEW → ASSIGNED → IN_PROGRESS → COMPLETED/CANCELLED;
// every transition happens under a FOR UPDATE lock on the job row so
// concurrent accept/pick/complete calls on the same job serialize.
type PickingJobRepo struct {
	db *sql.DB
}

// NewPickingJobRepo returns a new PickingJobRepo bound to the given
// database.
func NewPickingJobRepo(db *sql.DB) *PickingJobRepo { return &PickingJobRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span multiple repositories.
func (r *PickingJobRepo) DB() *sql.DB { return r.db }

const jobColumns = `id, order_id, job_number, status, assigned_to, assigned_at, started_at, completed_at, created_at`

func scanJob(row interface{ Scan(...any) error }) (model.PickingJob, error) {
	var j model.PickingJob
	var assignedTo sql.NullInt64
	var assignedAt, startedAt, completedAt sql.NullTime
	err := row.Scan(
		&j.ID, &j.OrderID, &j.JobNumber, &j.Status,
		&assignedTo, &assignedAt, &startedAt, &completedAt, &j.CreatedAt,
	)
	if err != nil {
		return model.PickingJob{}, err
	}
	if assignedTo.Valid {
		v := uint64(assignedTo.Int64)
		j.AssignedTo = &v
	}
	if assignedAt.Valid {
		t := assignedAt.Time
		j.AssignedAt = &t
	}
	if startedAt.Valid {
		t := startedAt.Time
		j.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		j.CompletedAt = &t
	}
	return j, nil
}

// ActiveJobExistsTx reports whether a non-cancelled job already exists
// for the order.  Runs inside the allocation transaction so a
// concurrent allocation of the same order blocks on the row lock.
func (r *PickingJobRepo) ActiveJobExistsTx(ctx context.Context, tx *sql.Tx, orderID uint64) (bool, error) {
	var id uint64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM picking_jobs WHERE order_id = ? AND status <> 'CANCELLED' LIMIT 1 FOR UPDATE`,
		orderID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateTx inserts a picking job in state NEW and populates the
// generated ID and creation time.
func (r *PickingJobRepo) CreateTx(ctx context.Context, tx *sql.Tx, j *model.PickingJob) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO picking_jobs (order_id, job_number, status) VALUES (?, ?, ?)`,
		j.OrderID, j.JobNumber, model.JobNew)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	j.ID = uint64(id)
	j.Status = model.JobNew
	return tx.QueryRowContext(ctx,
		`SELECT created_at FROM picking_jobs WHERE id = ?`, j.ID).Scan(&j.CreatedAt)
}

// GetByID returns a single job without locking.  sql.ErrNoRows is
// returned when it does not exist.
func (r *PickingJobRepo) GetByID(ctx context.Context, id uint64) (model.PickingJob, error) {
	const q = `SELECT ` + jobColumns + ` FROM picking_jobs WHERE id = ?`
	return scanJob(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDForUpdateTx loads a job with a row lock, serializing state
// transitions on the same job.
func (r *PickingJobRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.PickingJob, error) {
	const q = `SELECT ` + jobColumns + ` FROM picking_jobs WHERE id = ? FOR UPDATE`
	return scanJob(tx.QueryRowContext(ctx, q, id))
}

// List returns jobs filtered by optional status and assignee, newest
// first.
func (r *PickingJobRepo) List(ctx context.Context, status string, assignedTo *uint64) ([]model.PickingJob, error) {
	q := `SELECT ` + jobColumns + ` FROM picking_jobs`
	var conds []string
	var args []any
	if status != "" {
		conds = append(conds, "status = ?")
		args = append(args, status)
	}
	if assignedTo != nil {
		conds = append(conds, "assigned_to = ?")
		args = append(args, *assignedTo)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC, id DESC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	jobs := make([]model.PickingJob, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

// AssignTx marks the job ASSIGNED to userID and stamps assigned_at.
func (r *PickingJobRepo) AssignTx(ctx context.Context, tx *sql.Tx, jobID, userID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE picking_jobs SET status = ?, assigned_to = ?, assigned_at = UTC_TIMESTAMP() WHERE id = ?`,
		model.JobAssigned, userID, jobID)
	return err
}

// StartTx transitions an ASSIGNED job to IN_PROGRESS; the first pick
// starts the clock.
func (r *PickingJobRepo) StartTx(ctx context.Context, tx *sql.Tx, jobID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE picking_jobs SET status = ?, started_at = UTC_TIMESTAMP() WHERE id = ?`,
		model.JobInProgress, jobID)
	return err
}

// FinishTx moves the job to a terminal status (COMPLETED or CANCELLED)
// and stamps completed_at.
func (r *PickingJobRepo) FinishTx(ctx context.Context, tx *sql.Tx, jobID uint64, status string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE picking_jobs SET status = ?, completed_at = UTC_TIMESTAMP() WHERE id = ?`,
		status, jobID)
	return err
}

const jobItemColumns = `id, job_id, order_line_id, sku, requested_qty, picked_qty, uom, lot, status`

func scanJobItem(row interface{ Scan(...any) error }) (model.PickingJobItem, error) {
	var it model.PickingJobItem
	var lot sql.NullString
	err := row.Scan(
		&it.ID, &it.JobID, &it.OrderLineID, &it.SKU,
		&it.RequestedQty, &it.PickedQty, &it.UOM, &lot, &it.Status,
	)
	if err != nil {
		return model.PickingJobItem{}, err
	}
	if lot.Valid {
		s := lot.String
		it.Lot = &s
	}
	return it, nil
}

// CreateItemTx inserts a job item mirroring one order line, in state
// PENDING with nothing picked yet.
func (r *PickingJobRepo) CreateItemTx(ctx context.Context, tx *sql.Tx, it *model.PickingJobItem) error {
	var lot any
	if it.Lot != nil && *it.Lot != "" {
		lot = *it.Lot
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO picking_job_items (job_id, order_line_id, sku, requested_qty, picked_qty, uom, lot, status)
		 VALUES (?, ?, ?, ?, 0, ?, ?, ?)`,
		it.JobID, it.OrderLineID, it.SKU, it.RequestedQty, it.UOM, lot, model.ItemPending)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	it.Status = model.ItemPending
	return nil
}

// ItemsByJob returns all items of a job, in line order.
func (r *PickingJobRepo) ItemsByJob(ctx context.Context, jobID uint64) ([]model.PickingJobItem, error) {
	const q = `SELECT ` + jobItemColumns + ` FROM picking_job_items WHERE job_id = ? ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.PickingJobItem, 0)
	for rows.Next() {
		it, err := scanJobItem(rows)
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

// GetItemForUpdateTx loads one job item by ID with a row lock,
// verifying it belongs to the job.
func (r *PickingJobRepo) GetItemForUpdateTx(ctx context.Context, tx *sql.Tx, jobID, itemID uint64) (model.PickingJobItem, error) {
	const q = `SELECT ` + jobItemColumns + ` FROM picking_job_items WHERE id = ? AND job_id = ? FOR UPDATE`
	return scanJobItem(tx.QueryRowContext(ctx, q, itemID, jobID))
}

// ItemsBySKUForUpdateTx returns the job's items matching a SKU and
// optional lot, locked for update, in line order.  Barcode-driven picks
// resolve through this list: the first not-yet-complete item wins, with
// the first match as fallback when all are complete.
func (r *PickingJobRepo) ItemsBySKUForUpdateTx(ctx context.Context, tx *sql.Tx, jobID uint64, sku string, lot *string) ([]model.PickingJobItem, error) {
	q := `SELECT ` + jobItemColumns + ` FROM picking_job_items WHERE job_id = ? AND sku = ?`
	args := []any{jobID, sku}
	if lot != nil && *lot != "" {
		q += ` AND lot = ?`
		args = append(args, *lot)
	}
	q += ` ORDER BY id ASC FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.PickingJobItem
	for rows.Next() {
		it, err := scanJobItem(rows)
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

// UpdateItemPickedTx persists a new picked quantity together with the
// status derived from it.  Must run with the item row locked.
func (r *PickingJobRepo) UpdateItemPickedTx(ctx context.Context, tx *sql.Tx, itemID uint64, requested, picked float64) error {
	status := model.ItemStatusFor(requested, picked)
	_, err := tx.ExecContext(ctx,
		`UPDATE picking_job_items SET picked_qty = ?, status = ? WHERE id = ?`,
		picked, status, itemID)
	return err
}

// CountNotDoneTx returns how many items of the job are not yet DONE.
// Completion without force requires zero.
func (r *PickingJobRepo) CountNotDoneTx(ctx context.Context, tx *sql.Tx, jobID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM picking_job_items WHERE job_id = ? AND status <> 'DONE'`,
		jobID).Scan(&n)
	return n, err
}

// CountItemsTx returns the total number of items of the job.
func (r *PickingJobRepo) CountItemsTx(ctx context.Context, tx *sql.Tx, jobID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM picking_job_items WHERE job_id = ?`, jobID).Scan(&n)
	return n, err
}
