// Package selection implements the batch selection strategies used when
// a caller must pick which physical batch satisfies a required
// quantity.  Selection is a pure function over a snapshot of eligible
// batches: it acquires no locks and touches no storage.  Callers that
// act on a selection transactionally must lock the chosen batch row
// before committing to it.
package selection

import (
	"math"
	"sort"
	"strings"

	"github.com/iliyamo/warehouse-stock-allocation/internal/model"
)

// Strategy names accepted by Select.
const (
	FIFO              = "FIFO"
	MinWaste          = "MIN_WASTE"
	LocationProximity = "LOCATION_PROXIMITY"
)

// MaxAlternatives limits how many ranked alternatives are returned next
// to the selected batch.
const MaxAlternatives = 5

// Candidate annotates a batch with the waste it would produce if used
// to satisfy the required quantity.  WastePercent is waste relative to
// the batch's current quantity, rounded to two decimals.
type Candidate struct {
	Batch         model.Batch `json:"batch"`
	WasteQuantity float64     `json:"waste_quantity"`
	WastePercent  float64     `json:"waste_percent"`
}

// Result is the outcome of a selection: the chosen batch plus up to
// MaxAlternatives ranked alternatives for caller decision-making.
type Result struct {
	Selected     Candidate   `json:"selected"`
	Alternatives []Candidate `json:"alternatives"`
}

// ValidStrategy reports whether name is a known selection strategy.
func ValidStrategy(name string) bool {
	switch name {
	case FIFO, MinWaste, LocationProximity:
		return true
	}
	return false
}

// Select chooses one batch out of the snapshot for the given required
// quantity.  The snapshot is normalized first: ineligible batches
// (EMPTY or out of stock) are dropped and the rest is ordered by
// received time ascending (FIFO order is the natural sort and the
// tie-break for every strategy).  It returns false when no eligible
// batch remains.
//
// Strategies:
//   - FIFO picks the first batch of the snapshot.
//   - MinWaste minimizes max(0, batch quantity − required); an exact
//     match short-circuits the scan.
//   - LocationProximity prefers a batch already at preferredLocation,
//     then one in the same zone, then falls back to FIFO.
func Select(batches []model.Batch, requiredQty float64, strategy, preferredLocation string) (Result, bool) {
	eligible := make([]model.Batch, 0, len(batches))
	for i := range batches {
		if batches[i].Eligible() {
			eligible = append(eligible, batches[i])
		}
	}
	if len(eligible) == 0 {
		return Result{}, false
	}
	SortByReceived(eligible)
	batches = eligible
	var idx int
	switch strategy {
	case MinWaste:
		idx = minWasteIndex(batches, requiredQty)
	case LocationProximity:
		idx = proximityIndex(batches, preferredLocation)
	default:
		idx = 0 // FIFO: snapshot is already oldest-first
	}
	res := Result{
		Selected:     annotate(batches[idx], requiredQty),
		Alternatives: alternatives(batches, idx, requiredQty),
	}
	return res, true
}

// minWasteIndex returns the index of the batch producing the least
// waste.  Batches that cover the requirement rank by waste ascending;
// batches that cannot cover it rank behind those, by shortfall
// ascending, so the closest fit still wins when nothing is big enough.
// Ties keep the earlier (older) batch.  A zero-waste exact match wins
// immediately.
func minWasteIndex(batches []model.Batch, requiredQty float64) int {
	best := 0
	bestCovers, bestCost := minWasteKey(batches[0], requiredQty)
	if bestCovers && bestCost == 0 {
		return 0
	}
	for i := 1; i < len(batches); i++ {
		c, cost := minWasteKey(batches[i], requiredQty)
		if c && cost == 0 {
			return i
		}
		if (c && !bestCovers) || (c == bestCovers && cost < bestCost) {
			best, bestCovers, bestCost = i, c, cost
		}
	}
	return best
}

// minWasteKey ranks a batch for MIN_WASTE: waste when it covers the
// requirement, shortfall when it does not.
func minWasteKey(b model.Batch, requiredQty float64) (covers bool, cost float64) {
	if b.CurrentQuantity >= requiredQty {
		return true, b.CurrentQuantity - requiredQty
	}
	return false, requiredQty - b.CurrentQuantity
}

// proximityIndex prefers the exact preferred location, then the same
// zone, then index 0 (FIFO fallback).
func proximityIndex(batches []model.Batch, preferredLocation string) int {
	if preferredLocation == "" {
		return 0
	}
	zone := Zone(preferredLocation)
	sameZone := -1
	for i, b := range batches {
		if b.Location == preferredLocation {
			return i
		}
		if sameZone == -1 && Zone(b.Location) == zone {
			sameZone = i
		}
	}
	if sameZone >= 0 {
		return sameZone
	}
	return 0
}

// alternatives collects up to MaxAlternatives candidates in FIFO order,
// skipping the selected index.
func alternatives(batches []model.Batch, selected int, requiredQty float64) []Candidate {
	alts := make([]Candidate, 0, MaxAlternatives)
	for i, b := range batches {
		if i == selected {
			continue
		}
		alts = append(alts, annotate(b, requiredQty))
		if len(alts) == MaxAlternatives {
			break
		}
	}
	return alts
}

func annotate(b model.Batch, requiredQty float64) Candidate {
	waste := wasteFor(b.CurrentQuantity, requiredQty)
	pct := 0.0
	if b.CurrentQuantity > 0 {
		pct = round2(waste / b.CurrentQuantity * 100)
	}
	return Candidate{Batch: b, WasteQuantity: waste, WastePercent: pct}
}

func wasteFor(quantity, requiredQty float64) float64 {
	w := quantity - requiredQty
	if w < 0 {
		return 0
	}
	return w
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Zone extracts the zone prefix of a location code: the segment before
// the first dash, upper-cased.  "a-03-2" and "A-07-1" share zone "A".
func Zone(location string) string {
	loc := strings.ToUpper(strings.TrimSpace(location))
	if i := strings.IndexByte(loc, '-'); i >= 0 {
		return loc[:i]
	}
	return loc
}

// SortByReceived orders a batch slice oldest-received-first with ID as
// the tie-break, matching the eligible-set query's ordering.  Select
// runs it on every snapshot so callers may pass batches assembled from
// sources other than the ordered query.
func SortByReceived(batches []model.Batch) {
	sort.SliceStable(batches, func(i, j int) bool {
		if batches[i].ReceivedAt.Equal(batches[j].ReceivedAt) {
			return batches[i].ID < batches[j].ID
		}
		return batches[i].ReceivedAt.Before(batches[j].ReceivedAt)
	})
}
