package model

import (
	"testing"
	"time"
)

func res(id, invID uint64, qty float64) Reservation {
	return Reservation{ID: id, InventoryItemID: invID, ReservedQty: qty, CreatedAt: time.Now().UTC()}
}

func TestPlanConsumptionSpansReservations(t *testing.T) {
	reservations := []Reservation{
		res(1, 10, 30),
		res(2, 11, 50),
	}
	steps := PlanConsumption(reservations, 40)
	if len(steps) != 2 {
		t.Fatalf("len(steps) = %d, want 2", len(steps))
	}
	if steps[0].Take != 30 || !steps[0].Released {
		t.Errorf("step 0 = %+v, want take 30 released", steps[0])
	}
	if steps[1].Take != 10 || steps[1].Released {
		t.Errorf("step 1 = %+v, want take 10 not released", steps[1])
	}
	if steps[0].InventoryItemID != 10 || steps[1].InventoryItemID != 11 {
		t.Errorf("steps carry wrong inventory items: %+v", steps)
	}
}

func TestPlanConsumptionExactDrain(t *testing.T) {
	steps := PlanConsumption([]Reservation{res(1, 10, 30)}, 30)
	if len(steps) != 1 {
		t.Fatalf("len(steps) = %d, want 1", len(steps))
	}
	if steps[0].Take != 30 || !steps[0].Released {
		t.Errorf("step = %+v, want take 30 released", steps[0])
	}
}

func TestPlanConsumptionMoreThanHeld(t *testing.T) {
	steps := PlanConsumption([]Reservation{res(1, 10, 30)}, 100)
	var total float64
	for _, s := range steps {
		total += s.Take
	}
	if total != 30 {
		t.Errorf("total planned take = %v, want 30 (never exceeds held quantity)", total)
	}
}

func TestPlanConsumptionSkipsInactive(t *testing.T) {
	released := time.Now().UTC()
	reservations := []Reservation{
		{ID: 1, InventoryItemID: 10, ReservedQty: 30, ReleasedAt: &released},
		{ID: 2, InventoryItemID: 11, ReservedQty: 0},
		res(3, 12, 20),
	}
	steps := PlanConsumption(reservations, 15)
	if len(steps) != 1 || steps[0].ReservationID != 3 {
		t.Fatalf("steps = %+v, want single step on reservation 3", steps)
	}
}

func TestPlanConsumptionStopsEarly(t *testing.T) {
	reservations := []Reservation{
		res(1, 10, 50),
		res(2, 11, 50),
	}
	steps := PlanConsumption(reservations, 20)
	if len(steps) != 1 {
		t.Fatalf("len(steps) = %d, want 1 (second reservation untouched)", len(steps))
	}
	if steps[0].Take != 20 || steps[0].Released {
		t.Errorf("step = %+v, want take 20 not released", steps[0])
	}
}

func TestPlanReleaseZeroesEverythingActive(t *testing.T) {
	released := time.Now().UTC()
	reservations := []Reservation{
		res(1, 10, 30),
		{ID: 2, InventoryItemID: 11, ReservedQty: 40, ReleasedAt: &released},
		res(3, 12, 5),
	}
	steps := PlanRelease(reservations)
	if len(steps) != 2 {
		t.Fatalf("len(steps) = %d, want 2", len(steps))
	}
	for _, s := range steps {
		if !s.Released {
			t.Errorf("step %+v not marked released", s)
		}
	}
	if steps[0].Take != 30 || steps[1].Take != 5 {
		t.Errorf("takes = %v/%v, want 30/5", steps[0].Take, steps[1].Take)
	}
}

func TestActive(t *testing.T) {
	released := time.Now().UTC()
	tests := []struct {
		name string
		r    Reservation
		want bool
	}{
		{"holding quantity", res(1, 10, 5), true},
		{"drained", Reservation{ReservedQty: 0}, false},
		{"released", Reservation{ReservedQty: 5, ReleasedAt: &released}, false},
	}
	for _, tt := range tests {
		if got := tt.r.Active(); got != tt.want {
			t.Errorf("%s: Active() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
