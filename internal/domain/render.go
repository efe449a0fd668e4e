package domain

import (
	"fmt"
	"sort"
	"strings"
)

// CanonicalText flattens a record into deterministic lines suitable for
// textual diffing: the code first, then canonicalized attributes in key
// order. Attributes that canonicalize to empty are shown as (empty).
func (r CableRecord) CanonicalText() []string {
	lines := []string{
		fmt.Sprintf("Code: %s", strings.TrimSpace(r.Code)),
		"Attributes:",
	}

	keys := make([]string, 0, len(r.Attributes))
	for key := range r.Attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	wrote := false
	for _, key := range keys {
		value := canonicalValue(r.Attributes[key])
		if value == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s: %s", key, value))
		wrote = true
	}
	if !wrote {
		lines = append(lines, "  (empty)")
	}

	return lines
}

// RenderChange produces a unified-diff style rendering of one changed
// record, for operators who want to eyeball a change rather than consume
// the structured payload.
func RenderChange(entry ChangedEntry) string {
	before := CableRecord{Code: entry.Code, Attributes: entry.Before}
	after := CableRecord{Code: entry.Code, Attributes: entry.After}
	return buildUnifiedDiff(
		fmt.Sprintf("%s (before)", entry.Code),
		fmt.Sprintf("%s (after)", entry.Code),
		before.CanonicalText(),
		after.CanonicalText(),
	)
}

type diffOp struct {
	prefix string
	line   string
}

func buildUnifiedDiff(baseLabel, targetLabel string, baseLines, targetLines []string) string {
	ops := diffLines(baseLines, targetLines)

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("--- %s\n", baseLabel))
	builder.WriteString(fmt.Sprintf("+++ %s\n", targetLabel))
	for _, operation := range ops {
		builder.WriteString(operation.prefix)
		builder.WriteString(operation.line)
		builder.WriteString("\n")
	}

	return builder.String()
}

// diffLines walks a longest-common-subsequence table over the two line sets.
func diffLines(base, target []string) []diffOp {
	m := len(base)
	n := len(target)
	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}

	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			if base[i] == target[j] {
				dp[i][j] = dp[i+1][j+1] + 1
			} else if dp[i+1][j] >= dp[i][j+1] {
				dp[i][j] = dp[i+1][j]
			} else {
				dp[i][j] = dp[i][j+1]
			}
		}
	}

	ops := make([]diffOp, 0, m+n)
	i, j := 0, 0
	for i < m && j < n {
		if base[i] == target[j] {
			ops = append(ops, diffOp{prefix: " ", line: base[i]})
			i++
			j++
			continue
		}

		if dp[i+1][j] >= dp[i][j+1] {
			ops = append(ops, diffOp{prefix: "-", line: base[i]})
			i++
		} else {
			ops = append(ops, diffOp{prefix: "+", line: target[j]})
			j++
		}
	}

	for i < m {
		ops = append(ops, diffOp{prefix: "-", line: base[i]})
		i++
	}

	for j < n {
		ops = append(ops, diffOp{prefix: "+", line: target[j]})
		j++
	}

	return ops
}
