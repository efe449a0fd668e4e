package domain

import (
	"sort"
	"strings"
)

// RecordFilter represents filtering options for listing records.
type RecordFilter struct {
	CodePrefix       string
	AttributeFilters []AttributeFilter
	TextSearch       string
}

// AttributeFilter represents an attribute-level filter.
type AttributeFilter struct {
	Key    string
	Value  string
	Exists *bool
}

// SortDirection represents ordering direction for sortable fields.
type SortDirection string

const (
	SortDirectionAsc  SortDirection = "asc"
	SortDirectionDesc SortDirection = "desc"
)

// RecordSort captures ordering preferences for record listings. The zero
// value sorts by code ascending.
type RecordSort struct {
	AttributeKey string
	Direction    SortDirection
}

// FilterRecords returns the records matching every clause of the filter.
// Comparisons run on canonicalized values, so "120" matches 120.0.
func FilterRecords(records []CableRecord, filter RecordFilter) []CableRecord {
	matched := make([]CableRecord, 0, len(records))
	for _, record := range records {
		if matchesFilter(record, filter) {
			matched = append(matched, record)
		}
	}
	return matched
}

func matchesFilter(record CableRecord, filter RecordFilter) bool {
	if filter.CodePrefix != "" &&
		!strings.HasPrefix(NormalizeCode(record.Code), NormalizeCode(filter.CodePrefix)) {
		return false
	}

	for _, attrFilter := range filter.AttributeFilters {
		value, present := record.Attributes[attrFilter.Key]
		canonical := canonicalValue(value)
		if attrFilter.Exists != nil {
			if *attrFilter.Exists != (present && canonical != "") {
				return false
			}
		}
		if attrFilter.Value != "" && !strings.EqualFold(canonical, canonicalValue(attrFilter.Value)) {
			return false
		}
	}

	if filter.TextSearch != "" {
		needle := strings.ToLower(strings.TrimSpace(filter.TextSearch))
		if !strings.Contains(strings.ToLower(record.Code), needle) && !attributesContain(record, needle) {
			return false
		}
	}

	return true
}

func attributesContain(record CableRecord, needle string) bool {
	for _, value := range record.Attributes {
		if strings.Contains(strings.ToLower(canonicalValue(value)), needle) {
			return true
		}
	}
	return false
}

// SortRecords orders records in place. Sorting by an attribute falls back
// to the code for records missing that attribute, keeping the order total.
func SortRecords(records []CableRecord, by RecordSort) {
	desc := by.Direction == SortDirectionDesc
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if desc {
			a, b = b, a
		}
		return recordLess(a, b, by.AttributeKey)
	})
}

func recordLess(a, b CableRecord, attributeKey string) bool {
	if attributeKey != "" {
		av := canonicalValue(a.Attributes[attributeKey])
		bv := canonicalValue(b.Attributes[attributeKey])
		if av != bv {
			return av < bv
		}
	}
	return NormalizeCode(a.Code) < NormalizeCode(b.Code)
}
