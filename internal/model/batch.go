package model

import "time"

// Batch statuses.  A batch starts INTACT, becomes CUT once any quantity
// has been consumed from it, and EMPTY once it is fully exhausted.  A
// batch never moves back to a lower status; exhausted batches are kept
// as soft-deleted history rather than removed.
const (
	BatchIntact = "INTACT"
	BatchCut    = "CUT"
	BatchEmpty  = "EMPTY"
)

// Batch represents one physical unit of stock for a single SKU, e.g. a
// cable drum or a carton received from a supplier.  Batches are the
// nodes of the lineage graph: a batch produced by a transformation
// carries weak back-references to both the transformation that created
// it and the batch it was cut from.
//
// Fields:
//  ID               – primary key identifier.
//  SKU              – product the batch belongs to.
//  UOM              – unit of measure (e.g. "m", "pcs").
//  InitialQuantity  – quantity at receipt or creation; never changes.
//  CurrentQuantity  – remaining quantity; only decreases, except via
//                     explicit correction.
//  Status           – INTACT, CUT or EMPTY, derived from the quantities.
//  Location         – warehouse location code (e.g. "A-03-2").
//  ReceivedAt       – when the batch entered the warehouse.
//  TransformationID – transformation that produced this batch (nullable).
//  SourceBatchID    – batch this one was produced from (nullable).
type Batch struct {
	ID               uint64    `json:"id"`                // batches.id
	SKU              string    `json:"sku"`               // batches.sku
	UOM              string    `json:"uom"`               // batches.uom
	InitialQuantity  float64   `json:"initial_quantity"`  // batches.initial_quantity
	CurrentQuantity  float64   `json:"current_quantity"`  // batches.current_quantity
	Status           string    `json:"status"`            // batches.status
	Location         string    `json:"location"`          // batches.location
	ReceivedAt       time.Time `json:"received_at"`       // batches.received_at
	TransformationID *uint64   `json:"transformation_id,omitempty"` // batches.transformation_id (nullable)
	SourceBatchID    *uint64   `json:"source_batch_id,omitempty"`   // batches.source_batch_id (nullable)
}

// BatchStatusFor derives the status of a batch from its quantities.
// Status is never stored independently of the quantities; callers must
// recompute it with this function inside the same transaction that
// changes CurrentQuantity.
func BatchStatusFor(initial, current float64) string {
	switch {
	case current <= 0:
		return BatchEmpty
	case current < initial:
		return BatchCut
	default:
		return BatchIntact
	}
}

// Eligible reports whether a batch can satisfy new demand: it must not
// be exhausted and must still hold stock.
func (b *Batch) Eligible() bool {
	return b.Status != BatchEmpty && b.CurrentQuantity > 0
}
