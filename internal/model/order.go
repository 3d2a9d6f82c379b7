package model

import "time"

// Order is a customer sales order.  The allocation core only reads
// orders; creation and status tracking beyond allocation belong to the
// order management surface.
type Order struct {
	ID        uint64    `json:"id"`         // orders.id
	Number    string    `json:"number"`     // orders.number
	Customer  string    `json:"customer"`   // orders.customer
	CreatedAt time.Time `json:"created_at"` // orders.created_at
}

// OrderLine is one requested quantity of one SKU within an order.  An
// optional lot restricts allocation to inventory of that lot.
type OrderLine struct {
	ID       uint64  `json:"id"`            // order_lines.id
	OrderID  uint64  `json:"order_id"`      // order_lines.order_id
	SKU      string  `json:"sku"`           // order_lines.sku
	Quantity float64 `json:"quantity"`      // order_lines.quantity
	UOM      string  `json:"uom"`           // order_lines.uom
	Lot      *string `json:"lot,omitempty"` // order_lines.lot (nullable)
}
