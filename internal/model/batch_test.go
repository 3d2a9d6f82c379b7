package model

import "testing"

func TestBatchStatusFor(t *testing.T) {
	tests := []struct {
		name    string
		initial float64
		current float64
		want    string
	}{
		{"untouched", 100, 100, BatchIntact},
		{"partially consumed", 100, 40, BatchCut},
		{"exhausted", 100, 0, BatchEmpty},
		{"negative clamps to empty", 100, -1, BatchEmpty},
		{"barely consumed", 100, 99.5, BatchCut},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BatchStatusFor(tt.initial, tt.current); got != tt.want {
				t.Errorf("BatchStatusFor(%v, %v) = %q, want %q", tt.initial, tt.current, got, tt.want)
			}
		})
	}
}

func TestBatchEligible(t *testing.T) {
	tests := []struct {
		name  string
		batch Batch
		want  bool
	}{
		{"intact with stock", Batch{Status: BatchIntact, CurrentQuantity: 10}, true},
		{"cut with stock", Batch{Status: BatchCut, CurrentQuantity: 3}, true},
		{"empty", Batch{Status: BatchEmpty, CurrentQuantity: 0}, false},
		{"stale status without stock", Batch{Status: BatchCut, CurrentQuantity: 0}, false},
	}
	for _, tt := range tests {
		if got := tt.batch.Eligible(); got != tt.want {
			t.Errorf("%s: Eligible() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestValidTransformationType(t *testing.T) {
	for _, typ := range []string{TransformCut, TransformRepack, TransformConvert} {
		if !ValidTransformationType(typ) {
			t.Errorf("ValidTransformationType(%q) = false, want true", typ)
		}
	}
	for _, typ := range []string{"", "cut", "SPLIT"} {
		if ValidTransformationType(typ) {
			t.Errorf("ValidTransformationType(%q) = true, want false", typ)
		}
	}
}
