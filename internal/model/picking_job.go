package model

import "time"

// Picking job statuses.  The forward path is NEW → ASSIGNED →
// IN_PROGRESS → COMPLETED; CANCELLED is reachable from any non-terminal
// state.  COMPLETED and CANCELLED are terminal.
const (
	JobNew        = "NEW"
	JobAssigned   = "ASSIGNED"
	JobInProgress = "IN_PROGRESS"
	JobCompleted  = "COMPLETED"
	JobCancelled  = "CANCELLED"
)

// Picking job item statuses, derived from requested vs picked quantity.
const (
	ItemPending = "PENDING"
	ItemPartial = "PARTIAL"
	ItemDone    = "DONE"
)

// PickingJob is the unit of work covering fulfillment of one sales
// order.  At most one non-cancelled job exists per order.
//
// Fields:
//  ID          – primary key identifier.
//  OrderID     – order being fulfilled.
//  JobNumber   – globally unique, sequence-generated number (PJ000123).
//  Status      – lifecycle state, see constants above.
//  AssignedTo  – worker who accepted the job (nullable).
//  AssignedAt  – when the job was accepted (nullable).
//  StartedAt   – when the first pick happened (nullable).
//  CompletedAt – when the job reached COMPLETED or CANCELLED (nullable).
//  CreatedAt   – when allocation created the job.
type PickingJob struct {
	ID          uint64     `json:"id"`         // picking_jobs.id
	OrderID     uint64     `json:"order_id"`   // picking_jobs.order_id
	JobNumber   string     `json:"job_number"` // picking_jobs.job_number
	Status      string     `json:"status"`     // picking_jobs.status
	AssignedTo  *uint64    `json:"assigned_to,omitempty"`  // picking_jobs.assigned_to (nullable)
	AssignedAt  *time.Time `json:"assigned_at,omitempty"`  // picking_jobs.assigned_at (nullable)
	StartedAt   *time.Time `json:"started_at,omitempty"`   // picking_jobs.started_at (nullable)
	CompletedAt *time.Time `json:"completed_at,omitempty"` // picking_jobs.completed_at (nullable)
	CreatedAt   time.Time  `json:"created_at"` // picking_jobs.created_at
}

// PickingJobItem mirrors one order line inside a job.  PickedQty only
// grows and is capped at RequestedQty; Status is derived from the two
// quantities, never set independently.
type PickingJobItem struct {
	ID           uint64  `json:"id"`            // picking_job_items.id
	JobID        uint64  `json:"job_id"`        // picking_job_items.job_id
	OrderLineID  uint64  `json:"order_line_id"` // picking_job_items.order_line_id
	SKU          string  `json:"sku"`           // picking_job_items.sku
	RequestedQty float64 `json:"requested_qty"` // picking_job_items.requested_qty
	PickedQty    float64 `json:"picked_qty"`    // picking_job_items.picked_qty
	UOM          string  `json:"uom"`           // picking_job_items.uom
	Lot          *string `json:"lot,omitempty"` // picking_job_items.lot (nullable)
	Status       string  `json:"status"`        // picking_job_items.status
}

// Remaining returns the quantity still to pick for the item.
func (i *PickingJobItem) Remaining() float64 {
	rem := i.RequestedQty - i.PickedQty
	if rem < 0 {
		return 0
	}
	return rem
}

// ItemStatusFor derives a job item's status from its quantities:
// DONE once picked covers requested, PARTIAL once anything was picked,
// PENDING otherwise.
func ItemStatusFor(requested, picked float64) string {
	switch {
	case picked >= requested:
		return ItemDone
	case picked > 0:
		return ItemPartial
	default:
		return ItemPending
	}
}

// AcceptAllowed reports whether a job in the given state may be
// accepted by userID.  Accepting a NEW job is always legal; re-accepting
// an ASSIGNED job is legal only for the worker it is already assigned
// to (idempotent re-accept after a dropped response).
func AcceptAllowed(status string, assignedTo *uint64, userID uint64) bool {
	if status == JobNew {
		return true
	}
	return status == JobAssigned && assignedTo != nil && *assignedTo == userID
}

// PickAllowed reports whether items of a job in the given state may be
// picked.
func PickAllowed(status string) bool {
	return status == JobAssigned || status == JobInProgress
}

// CancelAllowed reports whether a job in the given state may still be
// cancelled.
func CancelAllowed(status string) bool {
	switch status {
	case JobNew, JobAssigned, JobInProgress:
		return true
	}
	return false
}
