package domain

import "strings"

// groupKeyDelimiter separates the legacy fallback fields. The unit separator
// never appears in spreadsheet project codes.
const groupKeyDelimiter = "\x1f"

// GroupMetadata carries the upload metadata needed to place it in a project
// lineage. ExplicitKey wins when present; legacy uploads only carry the
// project / contract / sub-project triple.
type GroupMetadata struct {
	ExplicitKey    string `json:"explicit_key,omitempty"`
	ProjectCode    string `json:"project_code,omitempty"`
	ContractCode   string `json:"contract_code,omitempty"`
	SubProjectCode string `json:"sub_project_code,omitempty"`
}

// IsZero reports whether the metadata carries no identifying field at all,
// in which case no lineage can be derived for the upload.
func (m GroupMetadata) IsZero() bool {
	return strings.TrimSpace(m.ExplicitKey) == "" &&
		strings.TrimSpace(m.ProjectCode) == "" &&
		strings.TrimSpace(m.ContractCode) == "" &&
		strings.TrimSpace(m.SubProjectCode) == ""
}

// GroupKey computes the lineage partition key for an upload. It is a pure
// function of the metadata: record contents, timestamps, and upload order
// never influence it, so re-running grouping over historical uploads is
// reproducible.
func GroupKey(meta GroupMetadata) string {
	if explicit := strings.ToLower(strings.TrimSpace(meta.ExplicitKey)); explicit != "" {
		return explicit
	}
	parts := []string{
		strings.ToLower(strings.TrimSpace(meta.ProjectCode)),
		strings.ToLower(strings.TrimSpace(meta.ContractCode)),
		strings.ToLower(strings.TrimSpace(meta.SubProjectCode)),
	}
	return strings.Join(parts, groupKeyDelimiter)
}
