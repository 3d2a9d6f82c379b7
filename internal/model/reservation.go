package model

import "time"

// Reservation is a soft hold of quantity from one inventory item for
// one order line inside one picking job.  ReservedQty only decreases:
// picking consumes it in FIFO order, and job completion or cancellation
// zeroes whatever is left.  A reservation with ReleasedAt set is
// historical and never touched again.
//
// Fields:
//  ID              – primary key identifier.
//  OrderID         – order the hold belongs to.
//  OrderLineID     – specific line being fulfilled.
//  JobID           – picking job the hold is scoped to.
//  InventoryItemID – inventory row the quantity is held from.
//  ReservedQty     – remaining held quantity; decreases toward zero.
//  UOM             – unit of measure, copied from the inventory item.
//  CreatedAt       – creation timestamp; FIFO consumption key.
//  ReleasedAt      – when the hold reached zero (nullable while active).
type Reservation struct {
	ID              uint64     `json:"id"`                // reservations.id
	OrderID         uint64     `json:"order_id"`          // reservations.order_id
	OrderLineID     uint64     `json:"order_line_id"`     // reservations.order_line_id
	JobID           uint64     `json:"job_id"`            // reservations.job_id
	InventoryItemID uint64     `json:"inventory_item_id"` // reservations.inventory_item_id
	ReservedQty     float64    `json:"reserved_qty"`      // reservations.reserved_qty
	UOM             string     `json:"uom"`               // reservations.uom
	CreatedAt       time.Time  `json:"created_at"`        // reservations.created_at
	ReleasedAt      *time.Time `json:"released_at,omitempty"` // reservations.released_at (nullable)
}

// Active reports whether the reservation still holds quantity.
func (r *Reservation) Active() bool {
	return r.ReleasedAt == nil && r.ReservedQty > 0
}

// ConsumptionStep describes how much to take from one reservation when
// a pick event consumes quantity.  Released marks the reservation as
// fully drained by this step.
type ConsumptionStep struct {
	ReservationID   uint64
	InventoryItemID uint64
	Take            float64
	Released        bool
}

// PlanConsumption distributes qty across the given reservations in the
// order provided (callers pass them FIFO by creation time).  Each step
// takes min(reservation remainder, still needed).  The plan stops once
// qty is covered; reservations beyond that point are untouched.  The
// total planned take never exceeds the sum of the reservations'
// remaining quantities, so a caller asking for more than is held simply
// gets a shorter plan.
func PlanConsumption(reservations []Reservation, qty float64) []ConsumptionStep {
	steps := make([]ConsumptionStep, 0, len(reservations))
	remaining := qty
	for _, r := range reservations {
		if remaining <= 0 {
			break
		}
		if !r.Active() {
			continue
		}
		take := r.ReservedQty
		if take > remaining {
			take = remaining
		}
		steps = append(steps, ConsumptionStep{
			ReservationID:   r.ID,
			InventoryItemID: r.InventoryItemID,
			Take:            take,
			Released:        take >= r.ReservedQty,
		})
		remaining -= take
	}
	return steps
}

// PlanRelease builds the steps that zero out every still-active
// reservation, returning ReservedQty to the inventory items' available
// pool.  Used by job completion and cancellation, where no reservation
// may outlive the job.
func PlanRelease(reservations []Reservation) []ConsumptionStep {
	steps := make([]ConsumptionStep, 0, len(reservations))
	for _, r := range reservations {
		if !r.Active() {
			continue
		}
		steps = append(steps, ConsumptionStep{
			ReservationID:   r.ID,
			InventoryItemID: r.InventoryItemID,
			Take:            r.ReservedQty,
			Released:        true,
		})
	}
	return steps
}
