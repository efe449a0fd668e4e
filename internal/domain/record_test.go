package domain

import "testing"

func TestNormalizeCode(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"C-104-A", "c-104-a"},
		{"  C-104-A  ", "c-104-a"},
		{"c-104-a", "c-104-a"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeCode(tc.input); got != tc.expected {
			t.Fatalf("NormalizeCode(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestSameEntityIgnoresCaseAndPadding(t *testing.T) {
	a := NewCableRecord("C1", nil)
	b := NewCableRecord(" c1 ", nil)
	if !a.SameEntity(b) {
		t.Fatalf("expected %q and %q to denote the same cable", a.Code, b.Code)
	}
}

func TestEqualAttributes(t *testing.T) {
	base := NewCableRecord("C1", map[string]any{
		"section": " 3x2.5 ",
		"length":  "10",
		"status":  nil,
	})

	equalCases := []CableRecord{
		NewCableRecord("C1", map[string]any{"section": "3x2.5", "length": 10.0, "status": ""}),
		NewCableRecord("C1", map[string]any{"section": "3x2.5", "length": "10.0"}),
	}
	for idx, other := range equalCases {
		if !base.EqualAttributes(other) {
			t.Fatalf("case %d: expected records to compare equal", idx)
		}
	}

	changedCases := []CableRecord{
		NewCableRecord("C1", map[string]any{"section": "3x2.5", "length": 12.0}),
		NewCableRecord("C1", map[string]any{"section": "3x4", "length": "10"}),
		NewCableRecord("C1", map[string]any{"section": "3x2.5", "length": "10", "status": "RV"}),
	}
	for idx, other := range changedCases {
		if base.EqualAttributes(other) {
			t.Fatalf("case %d: expected records to compare different", idx)
		}
	}
}

func TestNewCableRecordCopiesAttributes(t *testing.T) {
	attrs := map[string]any{"length": 10.0}
	record := NewCableRecord("C1", attrs)
	attrs["length"] = 99.0
	if record.Attributes["length"] != 10.0 {
		t.Fatalf("record attributes were mutated through the caller's map")
	}
}
