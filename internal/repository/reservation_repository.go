package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/warehouse-stock-allocation/internal/model"
)

// ReservationRepo persists soft holds of inventory quantity.  One row
// exists per inventory item contributing to an order line, so a line
// can be fulfilled from several lots.  All timestamps are UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given
// database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, order_id, order_line_id, job_id, inventory_item_id, reserved_qty, uom, created_at, released_at`

func scanReservation(row interface{ Scan(...any) error }) (model.Reservation, error) {
	var res model.Reservation
	var releasedAt sql.NullTime
	err := row.Scan(
		&res.ID, &res.OrderID, &res.OrderLineID, &res.JobID, &res.InventoryItemID,
		&res.ReservedQty, &res.UOM, &res.CreatedAt, &releasedAt,
	)
	if err != nil {
		return model.Reservation{}, err
	}
	if releasedAt.Valid {
		t := releasedAt.Time
		res.ReleasedAt = &t
	}
	return res, nil
}

// CreateTx inserts a reservation within the caller's transaction and
// populates the generated ID.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (order_id, order_line_id, job_id, inventory_item_id, reserved_qty, uom)
	           VALUES (?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		res.OrderID, res.OrderLineID, res.JobID, res.InventoryItemID, res.ReservedQty, res.UOM)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// ActiveByLineTx returns the still-active reservations of one job item,
// ordered oldest first and locked for update.  Pick events consume
// these in FIFO order.
func (r *ReservationRepo) ActiveByLineTx(ctx context.Context, tx *sql.Tx, jobID, orderLineID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
	           WHERE job_id = ? AND order_line_id = ? AND released_at IS NULL AND reserved_qty > 0
	           ORDER BY created_at ASC, id ASC FOR UPDATE`
	return r.queryTx(ctx, tx, q, jobID, orderLineID)
}

// ActiveByJobTx returns every still-active reservation of a job, locked
// for update.  Completion and cancellation release these.
func (r *ReservationRepo) ActiveByJobTx(ctx context.Context, tx *sql.Tx, jobID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
	           WHERE job_id = ? AND released_at IS NULL AND reserved_qty > 0
	           ORDER BY created_at ASC, id ASC FOR UPDATE`
	return r.queryTx(ctx, tx, q, jobID)
}

// ApplyStepTx applies one consumption step: the reservation loses Take
// units, and a fully drained reservation is stamped released.  Callers
// hold the row lock from the preceding ActiveBy*Tx query.
func (r *ReservationRepo) ApplyStepTx(ctx context.Context, tx *sql.Tx, step model.ConsumptionStep) error {
	if step.Released {
		_, err := tx.ExecContext(ctx,
			`UPDATE reservations SET reserved_qty = 0, released_at = UTC_TIMESTAMP() WHERE id = ?`,
			step.ReservationID)
		return err
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE reservations SET reserved_qty = reserved_qty - ? WHERE id = ? AND reserved_qty >= ?`,
		step.Take, step.ReservationID, step.Take)
	return err
}

// ListByJob returns all reservations of a job, active and released,
// for inspection views.
func (r *ReservationRepo) ListByJob(ctx context.Context, jobID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE job_id = ? ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (r *ReservationRepo) queryTx(ctx context.Context, tx *sql.Tx, q string, args ...any) ([]model.Reservation, error) {
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func collectReservations(rows *sql.Rows) ([]model.Reservation, error) {
	list := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
