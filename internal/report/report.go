package report

import (
	"math"
	"sort"

	"github.com/jkarethiya/sonarfix/internal/findings"
)

// TopRulesLimit is the number of rules listed in a Report.
const TopRulesLimit = 5

// Group counts the findings sharing a severity or a type.
type Group struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Percent int    `json:"percent"`
}

// RuleCount is the number of findings raised by one rule.
type RuleCount struct {
	Rule  string `json:"rule"`
	Count int    `json:"count"`
}

// Report summarizes a list of findings. Percentages are rounded per group and
// are not adjusted to add up to 100.
type Report struct {
	Total      int         `json:"total"`
	BySeverity []Group     `json:"bySeverity"`
	ByType     []Group     `json:"byType"`
	TopRules   []RuleCount `json:"topRules"`
}

// Summarize groups findings by severity and type and ranks the most frequent rules.
func Summarize(list []findings.Finding) Report {
	r := Report{Total: len(list)}
	if r.Total == 0 {
		return r
	}

	severities := make([]string, 0, len(findings.Severities))
	for _, s := range findings.Severities {
		severities = append(severities, string(s))
	}
	types := make([]string, 0, len(findings.Types))
	for _, t := range findings.Types {
		types = append(types, string(t))
	}

	r.BySeverity = group(list, severities, func(f findings.Finding) string { return string(f.Severity) }, r.Total)
	r.ByType = group(list, types, func(f findings.Finding) string { return string(f.Type) }, r.Total)
	r.TopRules = topRules(list, TopRulesLimit)
	return r
}

// Percent returns count as a rounded percentage of total.
func Percent(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) * 100 / float64(total)))
}

// group counts findings by key. Known keys come first in the given order,
// unknown keys follow in first-seen order. Empty groups are omitted.
func group(list []findings.Finding, known []string, key func(findings.Finding) string, total int) []Group {
	counts := map[string]int{}
	var unknown []string
	isKnown := map[string]bool{}
	for _, k := range known {
		isKnown[k] = true
	}

	for _, f := range list {
		k := key(f)
		if k == "" {
			k = "UNKNOWN"
		}
		if !isKnown[k] && counts[k] == 0 {
			unknown = append(unknown, k)
		}
		counts[k]++
	}

	var groups []Group
	for _, k := range append(append([]string{}, known...), unknown...) {
		if c := counts[k]; c > 0 {
			groups = append(groups, Group{Name: k, Count: c, Percent: Percent(c, total)})
		}
	}
	return groups
}

func topRules(list []findings.Finding, limit int) []RuleCount {
	index := map[string]int{}
	var rules []RuleCount
	for _, f := range list {
		i, ok := index[f.Rule]
		if !ok {
			i = len(rules)
			index[f.Rule] = i
			rules = append(rules, RuleCount{Rule: f.Rule})
		}
		rules[i].Count++
	}

	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Count > rules[j].Count
	})
	if len(rules) > limit {
		rules = rules[:limit]
	}
	return rules
}
