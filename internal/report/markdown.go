package report

import (
	"fmt"
	"strings"

	"github.com/jkarethiya/sonarfix/internal/findings"
)

// Markdown renders the report for the chat surface.
func Markdown(r Report) string {
	var b strings.Builder
	b.WriteString("## Issue analysis\n\n")
	if r.Total == 0 {
		b.WriteString("No issues to analyze.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "**Total issues:** %d\n\n", r.Total)

	writeGroups(&b, "By severity", r.BySeverity)
	writeGroups(&b, "By type", r.ByType)

	b.WriteString("### Top rules\n\n")
	for i, rc := range r.TopRules {
		fmt.Fprintf(&b, "%d. `%s`: %d\n", i+1, rc.Rule, rc.Count)
	}
	return b.String()
}

func writeGroups(b *strings.Builder, title string, groups []Group) {
	fmt.Fprintf(b, "### %s\n\n", title)
	b.WriteString("| Name | Count | Percent |\n|---|---:|---:|\n")
	for _, g := range groups {
		fmt.Fprintf(b, "| %s | %d | %d%% |\n", g.Name, g.Count, g.Percent)
	}
	b.WriteString("\n")
}

// IssueList renders findings as a markdown list in server order.
func IssueList(list []findings.Finding, total int) string {
	var b strings.Builder
	if len(list) == 0 {
		b.WriteString("No issues found.\n")
		return b.String()
	}
	if total > len(list) {
		fmt.Fprintf(&b, "Found %d issues (showing the first %d):\n\n", total, len(list))
	} else {
		fmt.Fprintf(&b, "Found %d issue(s):\n\n", len(list))
	}
	for _, f := range list {
		fmt.Fprintf(&b, "- **%s** `%s` %s: %s (`%s`)\n", f.Severity, f.Key, f.Location(), f.Message, f.Rule)
	}
	return b.String()
}
