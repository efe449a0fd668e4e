package domain

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDuplicateCode reports a record set that violates the code uniqueness
// invariant. Duplicate codes make record identity ambiguous, so the diff
// engine refuses the input instead of silently picking one occurrence.
var ErrDuplicateCode = errors.New("duplicate cable code in record set")

// DiffPayload is the structured difference between two record sets. Added
// and Removed carry codes ordered ascending; Changed carries the full before
// and after record for every cable whose attributes differ. Unchanged
// records are omitted entirely, so payload size tracks change volume rather
// than dataset size.
type DiffPayload struct {
	Added   []string       `json:"added"`
	Removed []string       `json:"removed"`
	Changed []ChangedEntry `json:"changed"`
}

// ChangedEntry holds both sides of a changed record. Field-level differences
// are a derived view (see ChangedFields), not part of the stored artifact,
// so consumers can recompute whichever fields they care about.
type ChangedEntry struct {
	Code   string         `json:"code"`
	Before map[string]any `json:"before"`
	After  map[string]any `json:"after"`
}

// FieldChange is one attribute-level difference derived from a ChangedEntry.
type FieldChange struct {
	Field  string `json:"field"`
	Before any    `json:"before"`
	After  any    `json:"after"`
}

// Summary aggregates diff counts for the import run ledger.
type Summary struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Changed int `json:"changed"`
}

// Summarize reduces a payload to its counts.
func (p DiffPayload) Summarize() Summary {
	return Summary{
		Added:   len(p.Added),
		Removed: len(p.Removed),
		Changed: len(p.Changed),
	}
}

// IsEmpty reports whether the payload records no differences.
func (p DiffPayload) IsEmpty() bool {
	return len(p.Added) == 0 && len(p.Removed) == 0 && len(p.Changed) == 0
}

type keyedRecord struct {
	key    string
	record CableRecord
}

// Diff computes the structural difference between two record sets. Records
// are matched by normalized code; matched pairs compare attributes under the
// canonical rules of EqualAttributes. Both sets are sorted by code once and
// merge-compared, so the whole computation is O(n log n).
//
// An empty before set (first upload of a group) classifies every after code
// as added. Duplicate codes within either set return ErrDuplicateCode.
func Diff(before, after []CableRecord) (DiffPayload, error) {
	beforeSorted, err := sortByCode(before)
	if err != nil {
		return DiffPayload{}, fmt.Errorf("before set: %w", err)
	}
	afterSorted, err := sortByCode(after)
	if err != nil {
		return DiffPayload{}, fmt.Errorf("after set: %w", err)
	}

	payload := DiffPayload{
		Added:   []string{},
		Removed: []string{},
		Changed: []ChangedEntry{},
	}

	i, j := 0, 0
	for i < len(beforeSorted) && j < len(afterSorted) {
		b, a := beforeSorted[i], afterSorted[j]
		switch {
		case b.key < a.key:
			payload.Removed = append(payload.Removed, b.record.Code)
			i++
		case b.key > a.key:
			payload.Added = append(payload.Added, a.record.Code)
			j++
		default:
			if !b.record.EqualAttributes(a.record) {
				payload.Changed = append(payload.Changed, ChangedEntry{
					Code:   a.record.Code,
					Before: copyAttributes(b.record.Attributes),
					After:  copyAttributes(a.record.Attributes),
				})
			}
			i++
			j++
		}
	}
	for ; i < len(beforeSorted); i++ {
		payload.Removed = append(payload.Removed, beforeSorted[i].record.Code)
	}
	for ; j < len(afterSorted); j++ {
		payload.Added = append(payload.Added, afterSorted[j].record.Code)
	}

	return payload, nil
}

// ChangedFields derives the attribute-level differences of a changed entry.
// Fields are returned in ascending name order.
func (e ChangedEntry) ChangedFields() []FieldChange {
	changes := []FieldChange{}
	for _, key := range unionKeys(e.Before, e.After) {
		beforeValue := e.Before[key]
		afterValue := e.After[key]
		if canonicalValue(beforeValue) == canonicalValue(afterValue) {
			continue
		}
		changes = append(changes, FieldChange{
			Field:  key,
			Before: beforeValue,
			After:  afterValue,
		})
	}
	return changes
}

// sortByCode orders records by normalized code and rejects duplicates.
func sortByCode(records []CableRecord) ([]keyedRecord, error) {
	keyed := make([]keyedRecord, len(records))
	for idx, record := range records {
		keyed[idx] = keyedRecord{key: NormalizeCode(record.Code), record: record}
	}
	sort.Slice(keyed, func(a, b int) bool {
		return keyed[a].key < keyed[b].key
	})
	for idx := 1; idx < len(keyed); idx++ {
		if keyed[idx].key == keyed[idx-1].key {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCode, keyed[idx].record.Code)
		}
	}
	return keyed, nil
}
