package selection

import (
	"testing"
	"time"

	"github.com/iliyamo/warehouse-stock-allocation/internal/model"
)

func batch(id uint64, qty float64, location string, receivedOffsetMin int) model.Batch {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	return model.Batch{
		ID:              id,
		SKU:             "CBL-01",
		UOM:             "M",
		InitialQuantity: qty,
		CurrentQuantity: qty,
		Status:          model.BatchIntact,
		Location:        location,
		ReceivedAt:      base.Add(time.Duration(receivedOffsetMin) * time.Minute),
	}
}

// The 60/80 pair shows strategy changes the outcome independent of
// arrival order: FIFO picks the older 60, MIN_WASTE the covering 80.
func TestSelectFIFOVersusMinWaste(t *testing.T) {
	batches := []model.Batch{
		batch(1, 60, "A-01-1", 0),
		batch(2, 80, "B-02-1", 10),
	}

	res, ok := Select(batches, 100, FIFO, "")
	if !ok {
		t.Fatal("Select(FIFO) returned not ok")
	}
	if got := res.Selected.Batch.ID; got != 1 {
		t.Errorf("FIFO selected batch %d, want 1", got)
	}
	if len(res.Alternatives) != 1 || res.Alternatives[0].Batch.ID != 2 {
		t.Errorf("FIFO alternatives = %+v, want batch 2", res.Alternatives)
	}

	res, ok = Select(batches, 100, MinWaste, "")
	if !ok {
		t.Fatal("Select(MIN_WASTE) returned not ok")
	}
	if got := res.Selected.Batch.ID; got != 2 {
		t.Errorf("MIN_WASTE selected batch %d, want 2", got)
	}
}

func TestSelectMinWasteExactMatch(t *testing.T) {
	batches := []model.Batch{
		batch(1, 150, "A-01-1", 0),
		batch(2, 100, "A-01-2", 5),
		batch(3, 120, "A-01-3", 10),
	}
	res, ok := Select(batches, 100, MinWaste, "")
	if !ok {
		t.Fatal("Select returned not ok")
	}
	if got := res.Selected.Batch.ID; got != 2 {
		t.Errorf("selected batch %d, want exact-match batch 2", got)
	}
	if res.Selected.WasteQuantity != 0 {
		t.Errorf("waste = %v, want 0", res.Selected.WasteQuantity)
	}
}

func TestSelectMinWasteTieKeepsOlder(t *testing.T) {
	batches := []model.Batch{
		batch(1, 110, "A-01-1", 0),
		batch(2, 110, "A-01-2", 5),
	}
	res, _ := Select(batches, 100, MinWaste, "")
	if got := res.Selected.Batch.ID; got != 1 {
		t.Errorf("selected batch %d, want older batch 1 on tie", got)
	}
}

func TestSelectMinWasteAllShort(t *testing.T) {
	// Nothing covers 100; the closest fit (80) should win over the
	// older but smaller 60.
	batches := []model.Batch{
		batch(1, 60, "A-01-1", 0),
		batch(2, 80, "A-01-2", 5),
	}
	res, _ := Select(batches, 100, MinWaste, "")
	if got := res.Selected.Batch.ID; got != 2 {
		t.Errorf("selected batch %d, want closest-fit batch 2", got)
	}
}

func TestSelectLocationProximity(t *testing.T) {
	batches := []model.Batch{
		batch(1, 200, "C-09-4", 0),
		batch(2, 200, "A-03-2", 5),
		batch(3, 200, "A-01-1", 10),
	}

	tests := []struct {
		name      string
		preferred string
		want      uint64
	}{
		{"exact location", "A-03-2", 2},
		{"same zone", "A-07-1", 2},
		{"no match falls back to FIFO", "Z-01-1", 1},
		{"empty preference falls back to FIFO", "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := Select(batches, 50, LocationProximity, tt.preferred)
			if !ok {
				t.Fatal("Select returned not ok")
			}
			if got := res.Selected.Batch.ID; got != tt.want {
				t.Errorf("selected batch %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSelectEmptySnapshot(t *testing.T) {
	if _, ok := Select(nil, 10, FIFO, ""); ok {
		t.Error("Select on empty snapshot returned ok, want not ok")
	}
}

func TestAnnotationWastePercent(t *testing.T) {
	batches := []model.Batch{batch(1, 150, "A-01-1", 0)}
	res, _ := Select(batches, 100, FIFO, "")
	if got := res.Selected.WasteQuantity; got != 50 {
		t.Errorf("waste = %v, want 50", got)
	}
	// 50/150*100 = 33.333... rounds to 33.33
	if got := res.Selected.WastePercent; got != 33.33 {
		t.Errorf("waste percent = %v, want 33.33", got)
	}
}

func TestAlternativesCapped(t *testing.T) {
	var batches []model.Batch
	for i := uint64(1); i <= 8; i++ {
		batches = append(batches, batch(i, 100, "A-01-1", int(i)))
	}
	res, _ := Select(batches, 50, FIFO, "")
	if got := len(res.Alternatives); got != MaxAlternatives {
		t.Errorf("len(alternatives) = %d, want %d", got, MaxAlternatives)
	}
	for _, alt := range res.Alternatives {
		if alt.Batch.ID == 1 {
			t.Error("alternatives contain the selected batch")
		}
	}
}

func TestZone(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{"A-03-2", "A"},
		{"a-07-1", "A"},
		{"STAGING", "STAGING"},
		{" B-01 ", "B"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Zone(tt.location); got != tt.want {
			t.Errorf("Zone(%q) = %q, want %q", tt.location, got, tt.want)
		}
	}
}

// Snapshots assembled outside the ordered query may arrive unsorted
// and carry exhausted batches; Select must normalize before ranking.
func TestSelectNormalizesSnapshot(t *testing.T) {
	empty := batch(4, 0, "A-01-4", -10)
	empty.Status = model.BatchEmpty
	batches := []model.Batch{
		batch(2, 50, "A-01-2", 30),
		empty,
		batch(1, 50, "A-01-1", 0),
	}

	res, ok := Select(batches, 20, FIFO, "")
	if !ok {
		t.Fatal("Select returned not ok")
	}
	if got := res.Selected.Batch.ID; got != 1 {
		t.Errorf("selected batch %d, want oldest eligible 1", got)
	}
	if len(res.Alternatives) != 1 || res.Alternatives[0].Batch.ID != 2 {
		t.Errorf("alternatives = %+v, want only batch 2", res.Alternatives)
	}

	if _, ok := Select([]model.Batch{empty}, 20, FIFO, ""); ok {
		t.Error("Select over only ineligible batches returned ok")
	}
}

func TestSortByReceived(t *testing.T) {
	batches := []model.Batch{
		batch(3, 10, "A-01-1", 20),
		batch(2, 10, "A-01-2", 0),
		batch(1, 10, "A-01-3", 0),
	}
	SortByReceived(batches)
	want := []uint64{1, 2, 3}
	for i, w := range want {
		if batches[i].ID != w {
			t.Fatalf("position %d holds batch %d, want %d", i, batches[i].ID, w)
		}
	}
}
