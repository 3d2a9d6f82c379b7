package model

import "testing"

func TestItemStatusFor(t *testing.T) {
	tests := []struct {
		name      string
		requested float64
		picked    float64
		want      string
	}{
		{"nothing picked", 50, 0, ItemPending},
		{"partially picked", 50, 30, ItemPartial},
		{"fully picked", 50, 50, ItemDone},
		{"over requested stays done", 50, 60, ItemDone},
		{"zero requested is done", 0, 0, ItemDone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ItemStatusFor(tt.requested, tt.picked); got != tt.want {
				t.Errorf("ItemStatusFor(%v, %v) = %q, want %q", tt.requested, tt.picked, got, tt.want)
			}
		})
	}
}

func TestRemaining(t *testing.T) {
	it := PickingJobItem{RequestedQty: 50, PickedQty: 30}
	if got := it.Remaining(); got != 20 {
		t.Errorf("Remaining() = %v, want 20", got)
	}
	it.PickedQty = 70
	if got := it.Remaining(); got != 0 {
		t.Errorf("Remaining() with overpick = %v, want 0", got)
	}
}

func TestAcceptAllowed(t *testing.T) {
	worker := uint64(7)
	other := uint64(8)
	tests := []struct {
		name       string
		status     string
		assignedTo *uint64
		userID     uint64
		want       bool
	}{
		{"new job", JobNew, nil, worker, true},
		{"re-accept own assignment", JobAssigned, &worker, worker, true},
		{"accept someone else's assignment", JobAssigned, &worker, other, false},
		{"assigned without assignee", JobAssigned, nil, worker, false},
		{"in progress", JobInProgress, &worker, worker, false},
		{"completed", JobCompleted, &worker, worker, false},
		{"cancelled", JobCancelled, nil, worker, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AcceptAllowed(tt.status, tt.assignedTo, tt.userID); got != tt.want {
				t.Errorf("AcceptAllowed(%q) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestPickAllowed(t *testing.T) {
	allowed := map[string]bool{
		JobNew:        false,
		JobAssigned:   true,
		JobInProgress: true,
		JobCompleted:  false,
		JobCancelled:  false,
	}
	for status, want := range allowed {
		if got := PickAllowed(status); got != want {
			t.Errorf("PickAllowed(%q) = %v, want %v", status, got, want)
		}
	}
}

func TestCancelAllowed(t *testing.T) {
	allowed := map[string]bool{
		JobNew:        true,
		JobAssigned:   true,
		JobInProgress: true,
		JobCompleted:  false,
		JobCancelled:  false,
	}
	for status, want := range allowed {
		if got := CancelAllowed(status); got != want {
			t.Errorf("CancelAllowed(%q) = %v, want %v", status, got, want)
		}
	}
}
