package repository

import (
	"database/sql"
	"testing"
	"time"
)

// stubInventoryRow feeds scanInventoryItem one row without a database.
type stubInventoryRow struct {
	lot sql.NullString
}

func (r stubInventoryRow) Scan(dest ...any) error {
	*(dest[0].(*uint64)) = 42
	*(dest[1].(*string)) = "CBL-01"
	*(dest[2].(*string)) = "STAGING"
	*(dest[3].(*sql.NullString)) = r.lot
	*(dest[4].(*string)) = "M"
	*(dest[5].(*float64)) = 12.5
	*(dest[6].(*float64)) = 2.5
	*(dest[7].(*time.Time)) = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	*(dest[8].(*time.Time)) = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return nil
}

// The empty string is the stored sentinel for lot-less stock; it must
// never leak into the API as a lot value.
func TestScanInventoryItemLotSentinel(t *testing.T) {
	tests := []struct {
		name    string
		lot     sql.NullString
		wantLot *string
	}{
		{"null lot", sql.NullString{}, nil},
		{"empty sentinel", sql.NullString{String: "", Valid: true}, nil},
		{"real lot", sql.NullString{String: "LOT-7", Valid: true}, strptr("LOT-7")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, err := scanInventoryItem(stubInventoryRow{lot: tt.lot})
			if err != nil {
				t.Fatalf("scanInventoryItem: %v", err)
			}
			switch {
			case tt.wantLot == nil && it.Lot != nil:
				t.Errorf("Lot = %q, want nil", *it.Lot)
			case tt.wantLot != nil && (it.Lot == nil || *it.Lot != *tt.wantLot):
				t.Errorf("Lot = %v, want %q", it.Lot, *tt.wantLot)
			}
		})
	}
}

func TestLotKey(t *testing.T) {
	tests := []struct {
		name string
		lot  *string
		want string
	}{
		{"nil lot", nil, ""},
		{"empty lot", strptr(""), ""},
		{"real lot", strptr("LOT-7"), "LOT-7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lotKey(tt.lot); got != tt.want {
				t.Errorf("lotKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func strptr(s string) *string { return &s }
