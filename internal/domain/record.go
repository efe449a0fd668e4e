package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CableRecord represents one row of a cable-tracking dataset. Code is the
// natural identity of the cable within a snapshot; Attributes carries every
// tracked column (type, section, zone and apparatus endpoints, lengths,
// status, progress, work-breakdown fields, page reference, ...).
type CableRecord struct {
	Code       string         `json:"code"`
	Attributes map[string]any `json:"attributes"`
}

// NewCableRecord creates a record with a defensive copy of the attributes.
func NewCableRecord(code string, attributes map[string]any) CableRecord {
	return CableRecord{
		Code:       code,
		Attributes: copyAttributes(attributes),
	}
}

// NormalizeCode maps a raw cable code to its identity form. Upstream data
// entry is inconsistent about casing and padding, so identity ignores both.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// SameEntity reports whether two records denote the same physical cable.
func (r CableRecord) SameEntity(other CableRecord) bool {
	return NormalizeCode(r.Code) == NormalizeCode(other.Code)
}

// EqualAttributes reports whether two records carry the same data under the
// canonical comparison: strings are trimmed, null and empty string are
// equivalent, and numbers compare by numeric value rather than formatting.
func (r CableRecord) EqualAttributes(other CableRecord) bool {
	for _, key := range unionKeys(r.Attributes, other.Attributes) {
		if canonicalValue(r.Attributes[key]) != canonicalValue(other.Attributes[key]) {
			return false
		}
	}
	return true
}

// canonicalValue reduces an attribute value to a comparable string form.
// The fingerprint and the diff engine both go through this function, so they
// can never disagree about what counts as "changed".
func canonicalValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return ""
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return trimmed
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		return strconv.FormatFloat(typed, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'g', -1, 64)
	case int:
		return strconv.FormatFloat(float64(typed), 'g', -1, 64)
	case int64:
		return strconv.FormatFloat(float64(typed), 'g', -1, 64)
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprintf("%v", typed)
		}
		return string(encoded)
	}
}

func unionKeys(a, b map[string]any) []string {
	keys := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for key := range a {
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	for key := range b {
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// copyAttributes creates a shallow copy so callers cannot mutate a stored
// record through a shared map.
func copyAttributes(attributes map[string]any) map[string]any {
	out := make(map[string]any, len(attributes))
	for key, value := range attributes {
		out[key] = value
	}
	return out
}
