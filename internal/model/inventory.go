package model

import "time"

// InventoryItem is the reservable view of stock: one row per
// (sku, location, lot) combination.  The pair (Quantity, ReservedQty)
// is the shared mutable resource of the whole system — every writer
// must hold the row lock for the duration of its read-modify-write.
// The invariant ReservedQty <= Quantity holds at all times.
//
// Fields:
//  ID          – primary key identifier.
//  SKU         – product code.
//  Location    – warehouse location code.
//  Lot         – optional lot/batch label (nullable).
//  UOM         – unit of measure.
//  Quantity    – on-hand quantity at this location.
//  ReservedQty – portion of Quantity soft-held by active reservations.
//  CreatedAt   – creation timestamp; FIFO ordering key for allocation.
//  UpdatedAt   – last modification timestamp.
type InventoryItem struct {
	ID          uint64    `json:"id"`           // inventory_items.id
	SKU         string    `json:"sku"`          // inventory_items.sku
	Location    string    `json:"location"`     // inventory_items.location
	Lot         *string   `json:"lot,omitempty"` // inventory_items.lot (nullable)
	UOM         string    `json:"uom"`          // inventory_items.uom
	Quantity    float64   `json:"quantity"`     // inventory_items.quantity
	ReservedQty float64   `json:"reserved_qty"` // inventory_items.reserved_qty
	CreatedAt   time.Time `json:"created_at"`   // inventory_items.created_at
	UpdatedAt   time.Time `json:"updated_at"`   // inventory_items.updated_at
}

// Available returns the quantity not yet held by a reservation.
func (i *InventoryItem) Available() float64 {
	return i.Quantity - i.ReservedQty
}
