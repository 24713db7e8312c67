package findings

import (
	"fmt"
	"strings"
)

// Severity is the quality server's severity scale, most severe first.
type Severity string

const (
	SeverityBlocker  Severity = "BLOCKER"
	SeverityCritical Severity = "CRITICAL"
	SeverityMajor    Severity = "MAJOR"
	SeverityMinor    Severity = "MINOR"
	SeverityInfo     Severity = "INFO"
)

// Severities lists the known severities in descending order.
var Severities = []Severity{SeverityBlocker, SeverityCritical, SeverityMajor, SeverityMinor, SeverityInfo}

// Type is the issue category reported by the quality server.
type Type string

const (
	TypeBug           Type = "BUG"
	TypeVulnerability Type = "VULNERABILITY"
	TypeCodeSmell     Type = "CODE_SMELL"
)

// Types lists the known issue types in display order.
var Types = []Type{TypeBug, TypeVulnerability, TypeCodeSmell}

// ParseSeverity converts a case-insensitive severity name.
func ParseSeverity(s string) (Severity, error) {
	v := Severity(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Severities {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Finding is one defect reported by the quality server. It is never modified after fetch.
type Finding struct {
	Key          string   `json:"key"`
	Rule         string   `json:"rule"`
	Severity     Severity `json:"severity"`
	Type         Type     `json:"type"`
	ComponentRef string   `json:"component"`
	Project      string   `json:"project,omitempty"`
	Line         *int     `json:"line,omitempty"`
	Message      string   `json:"message"`
	Status       string   `json:"status"`
	Effort       string   `json:"effort,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	CreationDate string   `json:"creationDate,omitempty"`
}

// LineOrZero returns the reported 1-based line, or 0 when the finding has none.
func (f Finding) LineOrZero() int {
	if f.Line == nil {
		return 0
	}
	return *f.Line
}

// RelativePath returns the part of the component reference after the project key.
func (f Finding) RelativePath() string {
	if i := strings.Index(f.ComponentRef, ":"); i >= 0 {
		return f.ComponentRef[i+1:]
	}
	return f.ComponentRef
}

// Location formats the finding position as path:line.
func (f Finding) Location() string {
	if f.Line == nil {
		return f.RelativePath()
	}
	return fmt.Sprintf("%s:%d", f.RelativePath(), *f.Line)
}

// SearchResult is the body of the issue search endpoint.
type SearchResult struct {
	Total  int       `json:"total"`
	Paging Paging    `json:"paging"`
	Issues []Finding `json:"issues"`
}

type Paging struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
	Total     int `json:"total"`
}

// FilterByKeys keeps the findings whose key is listed, preserving order.
func FilterByKeys(list []Finding, keys []string) []Finding {
	if len(keys) == 0 {
		return list
	}
	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		wanted[k] = true
	}
	var out []Finding
	for _, f := range list {
		if wanted[f.Key] {
			out = append(out, f)
		}
	}
	return out
}
