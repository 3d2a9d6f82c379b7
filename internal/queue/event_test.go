package queue

import (
	"encoding/json"
	"testing"
)

func TestJobCompletedEventJSON(t *testing.T) {
	ev := JobCompletedEvent{
		JobID:                7,
		JobNumber:            "PJ000007",
		OrderID:              3,
		CompletedBy:          12,
		Forced:               true,
		ItemsTotal:           4,
		ItemsDone:            3,
		ReleasedReservations: 2,
		CompletedAt:          "2026-01-02T15:04:05Z",
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{
		"job_id", "job_number", "order_id", "completed_by", "forced",
		"items_total", "items_done", "released_reservations", "completed_at",
	} {
		if _, ok := got[key]; !ok {
			t.Errorf("missing field %q in payload %s", key, raw)
		}
	}
	if got["job_number"] != "PJ000007" {
		t.Errorf("job_number = %v, want PJ000007", got["job_number"])
	}
	if got["forced"] != true {
		t.Errorf("forced = %v, want true", got["forced"])
	}
}
