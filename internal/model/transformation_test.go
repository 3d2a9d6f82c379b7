package model

import "testing"

func TestResultWaste(t *testing.T) {
	tests := []struct {
		name          string
		source        float64
		recordedWaste float64
		result        float64
		wantWaste     float64
		wantOK        bool
	}{
		{"derived waste", 10, 0, 8, 2, true},
		{"derived waste exact fit", 10, 0, 10, 0, true},
		{"recorded waste kept", 10, 5, 5, 5, true},
		{"recorded waste overflows source", 10, 5, 8, 5, false},
		{"result alone exceeds source", 10, 0, 12, -2, false},
		{"recorded waste with result over source", 10, 2, 9, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			waste, ok := ResultWaste(tt.source, tt.recordedWaste, tt.result)
			if waste != tt.wantWaste || ok != tt.wantOK {
				t.Errorf("ResultWaste(%v, %v, %v) = (%v, %v), want (%v, %v)",
					tt.source, tt.recordedWaste, tt.result, waste, ok, tt.wantWaste, tt.wantOK)
			}
		})
	}
}
