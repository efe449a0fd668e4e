package domain

import "testing"

func queryFixture() []CableRecord {
	return []CableRecord{
		NewCableRecord("P-002", map[string]any{"type": "POWER", "deck": "3"}),
		NewCableRecord("S-001", map[string]any{"type": "SIGNAL", "deck": "1"}),
		NewCableRecord("P-001", map[string]any{"type": "POWER", "deck": "2"}),
	}
}

func TestFilterRecordsByCodePrefix(t *testing.T) {
	matched := FilterRecords(queryFixture(), RecordFilter{CodePrefix: "p-"})

	if len(matched) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matched))
	}
	for _, record := range matched {
		if record.Code[0] != 'P' {
			t.Fatalf("unexpected match %q", record.Code)
		}
	}
}

func TestFilterRecordsTextSearchSpansAttributes(t *testing.T) {
	matched := FilterRecords(queryFixture(), RecordFilter{TextSearch: "signal"})

	if len(matched) != 1 || matched[0].Code != "S-001" {
		t.Fatalf("unexpected matches: %+v", matched)
	}
}

func TestFilterRecordsAttributeValueIsCanonical(t *testing.T) {
	records := []CableRecord{
		NewCableRecord("C1", map[string]any{"length": 120.0}),
		NewCableRecord("C2", map[string]any{"length": "85"}),
	}

	matched := FilterRecords(records, RecordFilter{
		AttributeFilters: []AttributeFilter{{Key: "length", Value: "120"}},
	})
	if len(matched) != 1 || matched[0].Code != "C1" {
		t.Fatalf("canonical comparison failed: %+v", matched)
	}
}

func TestFilterRecordsExistsClause(t *testing.T) {
	records := []CableRecord{
		NewCableRecord("C1", map[string]any{"remarks": "spare"}),
		NewCableRecord("C2", map[string]any{"remarks": ""}),
		NewCableRecord("C3", nil),
	}

	exists := true
	matched := FilterRecords(records, RecordFilter{
		AttributeFilters: []AttributeFilter{{Key: "remarks", Exists: &exists}},
	})
	if len(matched) != 1 || matched[0].Code != "C1" {
		t.Fatalf("exists filter failed: %+v", matched)
	}

	exists = false
	matched = FilterRecords(records, RecordFilter{
		AttributeFilters: []AttributeFilter{{Key: "remarks", Exists: &exists}},
	})
	if len(matched) != 2 {
		t.Fatalf("absence filter failed: %+v", matched)
	}
}

func TestSortRecordsByCodeDefault(t *testing.T) {
	records := queryFixture()
	SortRecords(records, RecordSort{})

	want := []string{"P-001", "P-002", "S-001"}
	for i, code := range want {
		if records[i].Code != code {
			t.Fatalf("position %d = %q, want %q", i, records[i].Code, code)
		}
	}
}

func TestSortRecordsByAttributeDescending(t *testing.T) {
	records := queryFixture()
	SortRecords(records, RecordSort{AttributeKey: "deck", Direction: SortDirectionDesc})

	want := []string{"P-002", "P-001", "S-001"}
	for i, code := range want {
		if records[i].Code != code {
			t.Fatalf("position %d = %q, want %q", i, records[i].Code, code)
		}
	}
}
