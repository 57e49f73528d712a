package caldate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

func TestParse(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	tests := []struct {
		in   string
		loc  *time.Location
		want Date
	}{
		{"2025-06-01", time.UTC, New(2025, time.June, 1)},
		{"2025-06-01T23:30:00", time.UTC, New(2025, time.June, 1)},
		{"2025-06-01T23:30", time.UTC, New(2025, time.June, 1)},
		{" 2025-07-15 ", nil, New(2025, time.July, 15)},
		// 02:00 UTC is still the previous evening in New York.
		{"2025-06-02T02:00:00Z", ny, New(2025, time.June, 1)},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in, tt.loc)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := Parse("06/01/2025", time.UTC); err == nil {
		t.Error("expected error for unsupported layout")
	}
}

func TestCompare(t *testing.T) {
	a := New(2025, time.June, 1)
	b := New(2025, time.July, 1)
	if !a.Before(b) || !b.After(a) || a.Compare(a) != 0 {
		t.Error("unexpected ordering")
	}
	if !New(2024, time.December, 31).Before(a) {
		t.Error("expected year to dominate")
	}
}

func TestNew_Normalises(t *testing.T) {
	if got := New(2025, time.February, 30); got != New(2025, time.March, 2) {
		t.Errorf("expected overflow to normalise, got %v", got)
	}
}

func TestJSON(t *testing.T) {
	type row struct {
		Date Date  `json:"date"`
		Opt  *Date `json:"opt"`
	}

	data, err := json.Marshal(row{Date: New(2025, time.June, 1)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"date":"2025-06-01","opt":null}` {
		t.Errorf("unexpected JSON %s", data)
	}

	var r row
	if err := json.Unmarshal([]byte(`{"date":"2025-07-01T10:00:00Z","opt":"2025-07-02"}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.Date != New(2025, time.July, 1) || r.Opt == nil || *r.Opt != New(2025, time.July, 2) {
		t.Errorf("unexpected decoded row %+v", r)
	}

	if err := json.Unmarshal([]byte(`{"date":"yesterday"}`), &r); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestPgtypeRoundTrip(t *testing.T) {
	d := New(2025, time.June, 1)
	v, err := d.DateValue()
	if err != nil || !v.Valid {
		t.Fatalf("DateValue() = %+v, %v", v, err)
	}

	var back Date
	if err := back.ScanDate(v); err != nil {
		t.Fatalf("ScanDate: %v", err)
	}
	if back != d {
		t.Errorf("round trip = %v, want %v", back, d)
	}

	if err := back.ScanDate(pgtype.Date{}); err != nil || !back.IsZero() {
		t.Errorf("expected NULL to scan as zero date, got %v", back)
	}
}
