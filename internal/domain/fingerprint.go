package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Fingerprint computes a deterministic digest over an entire record set,
// independent of row order and incidental whitespace. Identical record sets
// always hash the same; any attribute change produces a different digest.
// The ingestion path uses it to reject no-op re-uploads against the current
// HEAD before they enter the lineage.
func Fingerprint(records []CableRecord) string {
	lines := make([]string, 0, len(records))
	for _, record := range records {
		lines = append(lines, canonicalRecordLine(record))
	}
	sort.Strings(lines)

	digest := sha256.New()
	for _, line := range lines {
		digest.Write([]byte(line))
		digest.Write([]byte{'\n'})
	}
	return hex.EncodeToString(digest.Sum(nil))
}

// canonicalRecordLine serializes one record in a stable, field-order
// independent form: the normalized code followed by sorted key=value pairs
// of canonicalized attributes. Attributes that canonicalize to empty are
// dropped so that null and absent never disagree.
func canonicalRecordLine(record CableRecord) string {
	keys := make([]string, 0, len(record.Attributes))
	for key := range record.Attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var builder strings.Builder
	builder.WriteString(NormalizeCode(record.Code))
	for _, key := range keys {
		value := canonicalValue(record.Attributes[key])
		if value == "" {
			continue
		}
		builder.WriteByte('\x1f')
		builder.WriteString(key)
		builder.WriteByte('=')
		builder.WriteString(value)
	}
	return builder.String()
}
