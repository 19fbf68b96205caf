package kbo

import (
	"strings"
	"testing"
)

var testSchema = ColumnSchema{
	NameCol:  1,
	MinCells: 5,
	Fields: []Field{
		{Name: "avg", Col: 2, Kind: Float, Required: true, Digits: 3},
		{Name: "g", Col: 3, Kind: Int, Required: true},
		{Name: "hr", Col: 4, Kind: Int},
	},
}

func TestParseRowValid(t *testing.T) {
	rec, rej := ParseRow([]string{"1", "KIA", "0.301", "144", "163"}, 0, testSchema)
	if rej != nil {
		t.Fatalf("unexpected rejection: %v", rej)
	}
	if rec.TeamID != TeamKIA {
		t.Errorf("TeamID = %v, want KIA", rec.TeamID)
	}
	if rec.TeamName != "KIA" {
		t.Errorf("TeamName = %q", rec.TeamName)
	}
	if rec.Float("avg") != 0.301 {
		t.Errorf("avg = %v, want 0.301", rec.Float("avg"))
	}
	if rec.Int("g") != 144 {
		t.Errorf("g = %v, want 144", rec.Int("g"))
	}
	if rec.Int("hr") != 163 {
		t.Errorf("hr = %v, want 163", rec.Int("hr"))
	}
}

func TestParseRowRounding(t *testing.T) {
	// Half rounds away from zero at the schema's digit count.
	tests := []struct {
		raw  string
		want float64
	}{
		{"0.30650", 0.307},
		{"0.30649", 0.306},
		{"0.3", 0.3},
		{"1.0005", 1.001},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			rec, rej := ParseRow([]string{"1", "LG", tt.raw, "100", "50"}, 0, testSchema)
			if rej != nil {
				t.Fatalf("unexpected rejection: %v", rej)
			}
			if got := rec.Float("avg"); got != tt.want {
				t.Errorf("avg %q parsed to %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseRowInsufficientColumns(t *testing.T) {
	_, rej := ParseRow([]string{"1", "KIA", "0.301"}, 3, testSchema)
	if rej == nil {
		t.Fatal("expected rejection for short row")
	}
	if rej.Row != 3 {
		t.Errorf("Row = %d, want 3", rej.Row)
	}
	if !strings.Contains(rej.Reason, "insufficient columns") {
		t.Errorf("Reason = %q", rej.Reason)
	}
}

func TestParseRowRequiredFieldInvalid(t *testing.T) {
	_, rej := ParseRow([]string{"1", "KIA", "-", "144", "163"}, 0, testSchema)
	if rej == nil {
		t.Fatal("expected rejection for invalid required field")
	}
	if !strings.Contains(rej.Reason, `"avg"`) {
		t.Errorf("Reason %q should name the failing field", rej.Reason)
	}
	if rej.Team != "KIA" {
		t.Errorf("Team = %q, want KIA", rej.Team)
	}
}

func TestParseRowOptionalFieldDefaultsToZero(t *testing.T) {
	// The source site leaves rarely-populated columns blank.
	rec, rej := ParseRow([]string{"1", "KIA", "0.301", "144", ""}, 0, testSchema)
	if rej != nil {
		t.Fatalf("unexpected rejection: %v", rej)
	}
	if rec.Int("hr") != 0 {
		t.Errorf("hr = %v, want 0", rec.Int("hr"))
	}
}

func TestParseRowUnknownTeam(t *testing.T) {
	_, rej := ParseRow([]string{"1", "유니콘스", "0.301", "144", "163"}, 2, testSchema)
	if rej == nil {
		t.Fatal("expected rejection for unknown team")
	}
	if rej.Reason != "unknown team" {
		t.Errorf("Reason = %q", rej.Reason)
	}
	if rej.Team != "유니콘스" {
		t.Errorf("Team = %q", rej.Team)
	}
}

func TestParseInnings(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"5 2/3", 5.7, true},
		{"10", 10.0, true},
		{"144 1/3", 144.3, true},
		{"0 1/3", 0.3, true},
		{"1267 2/3", 1267.7, true},
		{"", 0, false},
		{"abc", 0, false},
		{"5 2/0", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parseInnings(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("parseInnings(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("parseInnings(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseRowNeverPanics(t *testing.T) {
	rows := [][]string{
		nil,
		{},
		{"", "", "", "", ""},
		{"x", "y", "z", "w", "v"},
	}

	for _, cells := range rows {
		if rec, rej := ParseRow(cells, 0, testSchema); rej == nil {
			t.Errorf("ParseRow(%v) = %+v, want rejection", cells, rec)
		}
	}
}
