package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/warehouse-stock-allocation/internal/model"
	"github.com/iliyamo/warehouse-stock-allocation/internal/queue"
	"github.com/iliyamo/warehouse-stock-allocation/internal/repository"
	queue_publisher "github.com/iliyamo/warehouse-stock-allocation/internal/service"
)

// PickingHandler drives the picking job lifecycle: allocation of an
// order into a job with reservations, acceptance by a worker,
// incremental picking that consumes reservations, and completion or
// cancellation that releases whatever is left.  Every mutating method
// runs inside one transaction and locks the rows it will read-modify-
// write, so concurrent operations on the same job serialize while
// disjoint jobs proceed in parallel.
type PickingHandler struct {
	Jobs            *repository.PickingJobRepo
	Orders          *repository.OrderRepo
	Inventory       *repository.InventoryRepo
	Reservations    *repository.ReservationRepo
	Movements       *repository.MovementRepo
	Sequences       *repository.SequenceRepo
	StagingLocation string
}

// NewPickingHandler constructs a PickingHandler with its repositories.
// All dependencies must be non-nil.
func NewPickingHandler(jobs *repository.PickingJobRepo, orders *repository.OrderRepo, inv *repository.InventoryRepo, res *repository.ReservationRepo, moves *repository.MovementRepo, seq *repository.SequenceRepo, stagingLocation string) *PickingHandler {
	if jobs == nil || orders == nil || inv == nil || res == nil || moves == nil || seq == nil {
		panic("nil repository passed to NewPickingHandler")
	}
	if stagingLocation == "" {
		stagingLocation = "STAGING"
	}
	return &PickingHandler{
		Jobs:            jobs,
		Orders:          orders,
		Inventory:       inv,
		Reservations:    res,
		Movements:       moves,
		Sequences:       seq,
		StagingLocation: stagingLocation,
	}
}

// Allocate handles POST /v1/orders/:id/allocate.  It creates a picking
// job for the order and greedily reserves stock for each line: oldest
// inventory first, one reservation row per contributing inventory item.
// Running out of stock mid-line is not an error — the line stays under-
// reserved.  The whole procedure is one transaction; any failure leaves
// no partial job behind.
func (h *PickingHandler) Allocate(c echo.Context) error {
	orderID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	ctx := c.Request().Context()
	tx, err := h.Jobs.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	order, err := h.Orders.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	exists, err := h.Jobs.ActiveJobExistsTx(ctx, tx, order.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if exists {
		return c.JSON(http.StatusConflict, echo.Map{"error": "a picking job already exists for this order"})
	}

	number, err := h.Sequences.NextJobNumberTx(ctx, tx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate job number"})
	}
	job := model.PickingJob{OrderID: order.ID, JobNumber: number}
	if err := h.Jobs.CreateTx(ctx, tx, &job); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create job"})
	}

	lines, err := h.Orders.LinesByOrderTx(ctx, tx, order.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load order lines"})
	}
	for _, line := range lines {
		item := model.PickingJobItem{
			JobID:        job.ID,
			OrderLineID:  line.ID,
			SKU:          line.SKU,
			RequestedQty: line.Quantity,
			UOM:          line.UOM,
			Lot:          line.Lot,
		}
		if err := h.Jobs.CreateItemTx(ctx, tx, &item); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create job item"})
		}
		// Greedy FIFO reservation.  Partial coverage is deliberate:
		// the remaining need simply stays unreserved.
		candidates, err := h.Inventory.AvailableBySKUTx(ctx, tx, line.SKU, line.Lot)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to query inventory"})
		}
		remaining := line.Quantity
		for _, inv := range candidates {
			if remaining <= 0 {
				break
			}
			take := inv.Available()
			if take > remaining {
				take = remaining
			}
			res := model.Reservation{
				OrderID:         order.ID,
				OrderLineID:     line.ID,
				JobID:           job.ID,
				InventoryItemID: inv.ID,
				ReservedQty:     take,
				UOM:             inv.UOM,
			}
			if err := h.Reservations.CreateTx(ctx, tx, &res); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
			}
			if err := h.Inventory.AddReservedTx(ctx, tx, inv.ID, take); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reserve inventory"})
			}
			remaining -= take
		}
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusCreated, echo.Map{
		"job":         job,
		"items_count": len(lines),
	})
}

// List handles GET /v1/picking-jobs with optional status and
// assigned_to filters.
func (h *PickingHandler) List(c echo.Context) error {
	status := c.QueryParam("status")
	var assignedTo *uint64
	if s := c.QueryParam("assigned_to"); s != "" {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid assigned_to"})
		}
		assignedTo = &n
	}
	jobs, err := h.Jobs.List(c.Request().Context(), status, assignedTo)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load jobs"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": jobs})
}

// Get handles GET /v1/picking-jobs/:id and returns the job with its
// items.
func (h *PickingHandler) Get(c echo.Context) error {
	jobID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid job id"})
	}
	ctx := c.Request().Context()
	job, err := h.Jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "job not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	items, err := h.Jobs.ItemsByJob(ctx, jobID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load job items"})
	}
	return c.JSON(http.StatusOK, echo.Map{"job": job, "items": items})
}

// Accept handles POST /v1/picking-jobs/:id/accept.  Legal for a NEW
// job, or idempotently for an ASSIGNED job already assigned to the
// caller.  The job row is locked before the status check.
func (h *PickingHandler) Accept(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	jobID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid job id"})
	}
	ctx := c.Request().Context()
	tx, err := h.Jobs.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	job, err := h.Jobs.GetByIDForUpdateTx(ctx, tx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "job not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !model.AcceptAllowed(job.Status, job.AssignedTo, userID) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "job cannot be accepted in status " + job.Status})
	}
	if err := h.Jobs.AssignTx(ctx, tx, jobID, userID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to assign job"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	job, err = h.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"job": job})
}

// pickRequest is the tagged-union input of Pick: either an exact item
// id, or a SKU (plus optional lot) for barcode-driven picking.
type pickRequest struct {
	ItemID   uint64  `json:"item_id"`
	SKU      string  `json:"sku"`
	Lot      *string `json:"lot"`
	Quantity float64 `json:"quantity"`
}

// Pick handles POST /v1/picking-jobs/:id/pick.  It adds quantity to a
// job item (clamped at the requested quantity), consumes the item's
// reservations FIFO, moves the consumed stock into the staging
// location and appends a PICK_TO_STAGING movement.  The first pick on
// an ASSIGNED job starts it.  Everything happens in one transaction;
// on any failure the pick leaves no trace.
func (h *PickingHandler) Pick(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	jobID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid job id"})
	}
	var body pickRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Quantity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be positive"})
	}
	if body.ItemID == 0 && body.SKU == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "item_id or sku is required"})
	}

	ctx := c.Request().Context()
	tx, err := h.Jobs.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	job, err := h.Jobs.GetByIDForUpdateTx(ctx, tx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "job not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !model.PickAllowed(job.Status) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "job cannot be picked in status " + job.Status})
	}

	item, err := h.resolveItemTx(ctx, tx, jobID, body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "job item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to resolve job item"})
	}

	// Excess quantity is clamped, never rejected: scanning one item too
	// many must not abort a picking run.
	add := item.Remaining()
	if body.Quantity < add {
		add = body.Quantity
	}
	newPicked := item.PickedQty + add
	if err := h.Jobs.UpdateItemPickedTx(ctx, tx, item.ID, item.RequestedQty, newPicked); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update job item"})
	}

	if add > 0 {
		if err := h.consumeTx(ctx, tx, job, item, add, userID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to consume reservations"})
		}
	}

	if job.Status == model.JobAssigned {
		if err := h.Jobs.StartTx(ctx, tx, jobID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start job"})
		}
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	item.PickedQty = newPicked
	item.Status = model.ItemStatusFor(item.RequestedQty, newPicked)
	return c.JSON(http.StatusOK, echo.Map{"item": item})
}

// resolveItemTx turns a pick request into a locked job item row.
// By id the match is exact; by SKU the first not-yet-complete match
// wins, falling back to the first match when all are complete.
func (h *PickingHandler) resolveItemTx(ctx context.Context, tx *sql.Tx, jobID uint64, body pickRequest) (model.PickingJobItem, error) {
	if body.ItemID != 0 {
		return h.Jobs.GetItemForUpdateTx(ctx, tx, jobID, body.ItemID)
	}
	items, err := h.Jobs.ItemsBySKUForUpdateTx(ctx, tx, jobID, body.SKU, body.Lot)
	if err != nil {
		return model.PickingJobItem{}, err
	}
	if len(items) == 0 {
		return model.PickingJobItem{}, repository.ErrNotFound
	}
	for _, it := range items {
		if it.PickedQty < it.RequestedQty {
			return it, nil
		}
	}
	return items[0], nil
}

// consumeTx drains up to add units from the item's active reservations
// in FIFO order: each consumed unit leaves the source inventory item
// (both quantity and reserved_qty), lands in the staging location and
// is recorded as a movement.
func (h *PickingHandler) consumeTx(ctx context.Context, tx *sql.Tx, job model.PickingJob, item model.PickingJobItem, add float64, userID uint64) error {
	reservations, err := h.Reservations.ActiveByLineTx(ctx, tx, job.ID, item.OrderLineID)
	if err != nil {
		return err
	}
	for _, step := range model.PlanConsumption(reservations, add) {
		inv, err := h.Inventory.GetByIDForUpdateTx(ctx, tx, step.InventoryItemID)
		if err != nil {
			return err
		}
		if err := h.Reservations.ApplyStepTx(ctx, tx, step); err != nil {
			return err
		}
		if err := h.Inventory.ConsumeTx(ctx, tx, inv.ID, step.Take); err != nil {
			return err
		}
		if err := h.Inventory.UpsertAddTx(ctx, tx, inv.SKU, h.StagingLocation, inv.Lot, inv.UOM, step.Take); err != nil {
			return err
		}
		move := model.Movement{
			Type:         model.MovePickToStaging,
			SKU:          inv.SKU,
			FromLocation: inv.Location,
			ToLocation:   h.StagingLocation,
			Quantity:     step.Take,
			Lot:          inv.Lot,
			PerformedBy:  userID,
		}
		if err := h.Movements.CreateTx(ctx, tx, &move); err != nil {
			return err
		}
	}
	return nil
}

// Complete handles POST /v1/picking-jobs/:id/complete.  Without force,
// every item must be DONE.  Completion always releases every still-
// active reservation of the job, so no hold can outlive it.
func (h *PickingHandler) Complete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	jobID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid job id"})
	}
	var body struct {
		Force bool `json:"force"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	tx, err := h.Jobs.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	job, err := h.Jobs.GetByIDForUpdateTx(ctx, tx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "job not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if job.Status == model.JobCompleted || job.Status == model.JobCancelled {
		return c.JSON(http.StatusConflict, echo.Map{"error": "job already finished"})
	}
	notDone, err := h.Jobs.CountNotDoneTx(ctx, tx, jobID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if notDone > 0 && !body.Force {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "not all items are done; pass force to complete anyway"})
	}

	released, err := h.releaseReservationsTx(ctx, tx, jobID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release reservations"})
	}
	if err := h.Jobs.FinishTx(ctx, tx, jobID, model.JobCompleted); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to complete job"})
	}
	total, err := h.Jobs.CountItemsTx(ctx, tx, jobID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	job, err = h.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	// Event delivery is best-effort: the completion already committed.
	ev := queue.JobCompletedEvent{
		JobID:                job.ID,
		JobNumber:            job.JobNumber,
		OrderID:              job.OrderID,
		CompletedBy:          userID,
		Forced:               body.Force,
		ItemsTotal:           total,
		ItemsDone:            total - notDone,
		ReleasedReservations: released,
	}
	if job.CompletedAt != nil {
		ev.CompletedAt = job.CompletedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	if err := queue_publisher.PublishJobCompleted(ctx, ev); err != nil {
		log.Printf("picking: publish job.completed failed for job %d: %v", job.ID, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"job": job})
}

// Cancel handles POST /v1/picking-jobs/:id/cancel.  Legal from any
// non-terminal state; releases reservations exactly like completion.
func (h *PickingHandler) Cancel(c echo.Context) error {
	jobID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid job id"})
	}
	ctx := c.Request().Context()
	tx, err := h.Jobs.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	job, err := h.Jobs.GetByIDForUpdateTx(ctx, tx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "job not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !model.CancelAllowed(job.Status) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "job cannot be cancelled in status " + job.Status})
	}
	if _, err := h.releaseReservationsTx(ctx, tx, jobID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release reservations"})
	}
	if err := h.Jobs.FinishTx(ctx, tx, jobID, model.JobCancelled); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel job"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	job, err = h.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"job": job})
}

// releaseReservationsTx zeroes every active reservation of the job and
// returns the held quantity to the inventory items' available pool.
func (h *PickingHandler) releaseReservationsTx(ctx context.Context, tx *sql.Tx, jobID uint64) (int, error) {
	reservations, err := h.Reservations.ActiveByJobTx(ctx, tx, jobID)
	if err != nil {
		return 0, err
	}
	steps := model.PlanRelease(reservations)
	for _, step := range steps {
		if err := h.Reservations.ApplyStepTx(ctx, tx, step); err != nil {
			return 0, err
		}
		if err := h.Inventory.AddReservedTx(ctx, tx, step.InventoryItemID, -step.Take); err != nil {
			return 0, err
		}
	}
	return len(steps), nil
}
