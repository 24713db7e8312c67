package findings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	s, err := ParseSeverity(" critical ")
	require.NoError(t, err)
	assert.Equal(t, SeverityCritical, s)

	_, err = ParseSeverity("HIGH")
	assert.Error(t, err)
}

func TestDecodeSearchResult(t *testing.T) {
	body := `{
	  "total": 2,
	  "paging": {"pageIndex": 1, "pageSize": 100, "total": 2},
	  "issues": [
	    {"key": "BUG-1", "rule": "go:S1144", "severity": "MAJOR", "type": "BUG",
	     "component": "proj:src/a.go", "line": 12, "message": "Remove this", "status": "OPEN"},
	    {"key": "BUG-2", "rule": "go:S108", "severity": "BLOCKER", "type": "BUG",
	     "component": "proj:src/b.go", "message": "Empty block", "status": "OPEN"}
	  ]
	}`

	var r SearchResult
	require.NoError(t, json.Unmarshal([]byte(body), &r))
	require.Len(t, r.Issues, 2)

	first := r.Issues[0]
	assert.Equal(t, "BUG-1", first.Key)
	assert.Equal(t, SeverityMajor, first.Severity)
	assert.Equal(t, "src/a.go", first.RelativePath())
	assert.Equal(t, 12, first.LineOrZero())
	assert.Equal(t, "src/a.go:12", first.Location())

	second := r.Issues[1]
	assert.Nil(t, second.Line)
	assert.Equal(t, 0, second.LineOrZero())
	assert.Equal(t, "src/b.go", second.Location())
}

func TestFilterByKeys(t *testing.T) {
	list := []Finding{{Key: "A-1"}, {Key: "A-2"}, {Key: "A-3"}}

	assert.Equal(t, list, FilterByKeys(list, nil))

	got := FilterByKeys(list, []string{"A-3", "A-1"})
	require.Len(t, got, 2)
	assert.Equal(t, "A-1", got[0].Key)
	assert.Equal(t, "A-3", got[1].Key)
	assert.Empty(t, FilterByKeys(list, []string{"Z-9"}))
}
