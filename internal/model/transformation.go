package model

import "time"

// Transformation types.  CUT splits a length of material off a batch,
// REPACK moves quantity into different packaging, CONVERT turns a batch
// into a different SKU.  All three are irreversible.
const (
	TransformCut     = "CUT"
	TransformRepack  = "REPACK"
	TransformConvert = "CONVERT"
)

// Transformation is one edge in the batch lineage graph: it records an
// irreversible consumption of quantity from a source batch, optionally
// producing a result batch plus a waste amount.  The conservation rule
// result_quantity + waste_quantity <= source_quantity is enforced when
// the record is written; the ledger does not re-derive quantities from
// physical observation afterwards.
//
// Fields:
//  ID             – primary key identifier.
//  Type           – CUT, REPACK or CONVERT.
//  SourceBatchID  – batch the quantity was taken from.
//  SourceQuantity – quantity consumed from the source batch.
//  ResultBatchID  – batch produced by the operation (nullable until
//                   known; can be attached exactly once afterwards).
//  ResultQuantity – quantity of the result batch.
//  WasteQuantity  – offcut/scrap not carried into the result.
//  OrderRef       – originating order or workflow reference (nullable).
//  PerformedBy    – user who executed the operation.
//  Notes          – free-form remarks recorded when the result is linked.
//  CreatedAt      – when the transformation was recorded.
type Transformation struct {
	ID             uint64    `json:"id"`              // transformations.id
	Type           string    `json:"type"`            // transformations.type
	SourceBatchID  uint64    `json:"source_batch_id"` // transformations.source_batch_id
	SourceQuantity float64   `json:"source_quantity"` // transformations.source_quantity
	ResultBatchID  *uint64   `json:"result_batch_id,omitempty"` // transformations.result_batch_id (nullable)
	ResultQuantity float64   `json:"result_quantity"` // transformations.result_quantity
	WasteQuantity  float64   `json:"waste_quantity"`  // transformations.waste_quantity
	OrderRef       *string   `json:"order_ref,omitempty"`       // transformations.order_ref (nullable)
	PerformedBy    uint64    `json:"performed_by"`    // transformations.performed_by
	Notes          *string   `json:"notes,omitempty"` // transformations.notes (nullable)
	CreatedAt      time.Time `json:"created_at"`      // transformations.created_at
}

// ValidTransformationType reports whether t is one of the known
// transformation types.
func ValidTransformationType(t string) bool {
	switch t {
	case TransformCut, TransformRepack, TransformConvert:
		return true
	}
	return false
}

// ResultWaste resolves the quantities persisted when a result batch is
// attached to a transformation: waste recorded at creation time is
// kept, otherwise waste is derived as source minus result.  ok is
// false when the resolved pair would break conservation, i.e. when
// result + waste exceeds source.
func ResultWaste(source, recordedWaste, result float64) (waste float64, ok bool) {
	waste = recordedWaste
	if waste == 0 {
		waste = source - result
	}
	return waste, waste >= 0 && result+waste <= source
}

// TransformationTree is the one-hop lineage view around a batch: the
// batch itself, every transformation where it is the source, and every
// batch that was produced from it.  The full DAG is reconstructed by
// repeating the query outward from any node.
type TransformationTree struct {
	Batch           Batch            `json:"batch"`
	Transformations []Transformation `json:"transformations"`
	Children        []Batch          `json:"children"`
}
