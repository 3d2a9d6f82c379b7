package model

import "time"

// Movement types and statuses.  PICK_TO_STAGING records stock carried
// from its storage location to the staging area by a pick event.
const (
	MovePickToStaging = "PICK_TO_STAGING"

	MoveDone = "DONE"
)

// Movement is an append-only ledger entry describing a physical stock
// relocation.  Rows are immutable once written apart from stamping the
// completion time; they exist for audit and history views, never as a
// source of truth for quantities.
type Movement struct {
	ID           uint64     `json:"id"`            // movements.id
	Type         string     `json:"type"`          // movements.type
	SKU          string     `json:"sku"`           // movements.sku
	FromLocation string     `json:"from_location"` // movements.from_location
	ToLocation   string     `json:"to_location"`   // movements.to_location
	Quantity     float64    `json:"quantity"`      // movements.quantity
	Lot          *string    `json:"lot,omitempty"` // movements.lot (nullable)
	PerformedBy  uint64     `json:"performed_by"`  // movements.performed_by
	Status       string     `json:"status"`        // movements.status
	CreatedAt    time.Time  `json:"created_at"`    // movements.created_at
	CompletedAt  *time.Time `json:"completed_at,omitempty"` // movements.completed_at (nullable)
}
