package repository

import "testing"

func TestFormatSequence(t *testing.T) {
	tests := []struct {
		prefix  string
		padding int
		n       int64
		want    string
	}{
		{"PJ", 6, 1, "PJ000001"},
		{"PJ", 6, 123, "PJ000123"},
		{"PJ", 6, 999999, "PJ999999"},
		{"PJ", 6, 1000000, "PJ1000000"},
		{"", 4, 7, "0007"},
	}
	for _, tt := range tests {
		if got := FormatSequence(tt.prefix, tt.padding, tt.n); got != tt.want {
			t.Errorf("FormatSequence(%q, %d, %d) = %q, want %q", tt.prefix, tt.padding, tt.n, got, tt.want)
		}
	}
}
