package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkarethiya/sonarfix/internal/findings"
)

func f(rule string, sev findings.Severity, typ findings.Type) findings.Finding {
	return findings.Finding{Key: rule + "-k", Rule: rule, Severity: sev, Type: typ, ComponentRef: "p:a.go"}
}

func TestSummarizeEmpty(t *testing.T) {
	r := Summarize(nil)
	assert.Zero(t, r.Total)
	assert.Empty(t, r.BySeverity)
	assert.Empty(t, r.TopRules)
	assert.Contains(t, Markdown(r), "No issues")
}

func TestSummarizeGroups(t *testing.T) {
	list := []findings.Finding{
		f("r1", findings.SeverityMajor, findings.TypeBug),
		f("r2", findings.SeverityBlocker, findings.TypeBug),
		f("r1", findings.SeverityMajor, findings.TypeCodeSmell),
	}
	r := Summarize(list)

	assert.Equal(t, 3, r.Total)
	assert.Equal(t, []Group{
		{Name: "BLOCKER", Count: 1, Percent: 33},
		{Name: "MAJOR", Count: 2, Percent: 67},
	}, r.BySeverity)
	assert.Equal(t, []Group{
		{Name: "BUG", Count: 2, Percent: 67},
		{Name: "CODE_SMELL", Count: 1, Percent: 33},
	}, r.ByType)
}

func TestSummarizeRoundingNotNormalized(t *testing.T) {
	list := []findings.Finding{
		f("r1", findings.SeverityBlocker, findings.TypeBug),
		f("r2", findings.SeverityCritical, findings.TypeBug),
		f("r3", findings.SeverityMajor, findings.TypeBug),
		f("r4", findings.SeverityMinor, findings.TypeBug),
		f("r5", findings.SeverityInfo, findings.TypeBug),
		f("r6", findings.SeverityInfo, findings.TypeBug),
	}
	r := Summarize(list)

	sum := 0
	for _, g := range r.BySeverity {
		sum += g.Percent
	}
	assert.Equal(t, []int{17, 17, 17, 17, 33}, percents(r.BySeverity))
	assert.Equal(t, 101, sum)
}

func percents(groups []Group) []int {
	var out []int
	for _, g := range groups {
		out = append(out, g.Percent)
	}
	return out
}

func TestSummarizeUnknownType(t *testing.T) {
	list := []findings.Finding{
		f("r1", findings.SeverityMajor, "SECURITY_HOTSPOT"),
		f("r1", findings.SeverityMajor, findings.TypeVulnerability),
		f("r1", "", ""),
	}
	r := Summarize(list)
	assert.Equal(t, []string{"VULNERABILITY", "SECURITY_HOTSPOT", "UNKNOWN"}, names(r.ByType))
	assert.Equal(t, []string{"MAJOR", "UNKNOWN"}, names(r.BySeverity))
}

func names(groups []Group) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g.Name)
	}
	return out
}

func TestTopRulesStable(t *testing.T) {
	rules := []string{"a", "b", "c", "b", "d", "e", "f", "c", "g"}
	var list []findings.Finding
	for _, r := range rules {
		list = append(list, f(r, findings.SeverityMajor, findings.TypeBug))
	}

	r := Summarize(list)
	require.Len(t, r.TopRules, TopRulesLimit)
	assert.Equal(t, []RuleCount{
		{Rule: "b", Count: 2},
		{Rule: "c", Count: 2},
		{Rule: "a", Count: 1},
		{Rule: "d", Count: 1},
		{Rule: "e", Count: 1},
	}, r.TopRules)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(1, 0))
	assert.Equal(t, 50, Percent(1, 2))
	assert.Equal(t, 67, Percent(2, 3))
	assert.Equal(t, 13, Percent(1, 8))
}

func TestMarkdown(t *testing.T) {
	r := Summarize([]findings.Finding{
		f("go:S1", findings.SeverityMajor, findings.TypeBug),
		f("go:S1", findings.SeverityMajor, findings.TypeBug),
	})
	md := Markdown(r)
	assert.Contains(t, md, "**Total issues:** 2")
	assert.Contains(t, md, "| MAJOR | 2 | 100% |")
	assert.Contains(t, md, "1. `go:S1`: 2")
}

func TestIssueList(t *testing.T) {
	line := 4
	list := []findings.Finding{{Key: "A-1", Rule: "go:S1", Severity: findings.SeverityBlocker, ComponentRef: "p:src/a.go", Line: &line, Message: "boom"}}

	assert.Contains(t, IssueList(nil, 0), "No issues found")
	assert.Contains(t, IssueList(list, 1), "- **BLOCKER** `A-1` src/a.go:4: boom (`go:S1`)")
	assert.Contains(t, IssueList(list, 150), "Found 150 issues (showing the first 1)")
}
