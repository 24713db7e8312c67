package sarif

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jkarethiya/sonarfix/internal/findings"
)

func intPtr(i int) *int { return &i }

func sample() []findings.Finding {
	return []findings.Finding{
		{Key: "A-1", Rule: "go:S1", Severity: findings.SeverityBlocker, Type: findings.TypeBug, ComponentRef: "p:src/a.go", Line: intPtr(10), Message: "first", Status: "OPEN"},
		{Key: "A-2", Rule: "go:S1", Severity: findings.SeverityBlocker, Type: findings.TypeBug, ComponentRef: "p:src/b.go", Message: "second", Status: "OPEN"},
		{Key: "A-3", Rule: "go:S2", Severity: findings.SeverityMinor, Type: findings.TypeCodeSmell, ComponentRef: "p:src/c.go", Line: intPtr(4), Message: "third", Status: "OPEN"},
	}
}

func TestLevel(t *testing.T) {
	cases := map[findings.Severity]string{
		findings.SeverityBlocker:  "error",
		findings.SeverityCritical: "error",
		findings.SeverityMajor:    "warning",
		findings.SeverityMinor:    "note",
		findings.SeverityInfo:     "none",
	}
	for sev, want := range cases {
		if got := Level(sev); got != want {
			t.Fatalf("Level(%s) = %q, want %q", sev, got, want)
		}
	}
}

func TestFromFindings(t *testing.T) {
	report, err := FromFindings(sample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Runs) != 1 {
		t.Fatalf("expected one run, got %d", len(report.Runs))
	}
	run := report.Runs[0]
	if len(run.Tool.Driver.Rules) != 2 {
		t.Fatalf("expected rules to be deduplicated, got %d", len(run.Tool.Driver.Rules))
	}
	if len(run.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(run.Results))
	}

	first := run.Results[0]
	if first.Level == nil || *first.Level != "error" {
		t.Fatalf("expected error level, got %v", first.Level)
	}
	loc := first.Locations[0].PhysicalLocation
	if *loc.ArtifactLocation.URI != "src/a.go" || *loc.Region.StartLine != 10 {
		t.Fatalf("unexpected location %s:%d", *loc.ArtifactLocation.URI, *loc.Region.StartLine)
	}
	if first.Properties["sonarKey"] != "A-1" {
		t.Fatalf("expected sonarKey property, got %v", first.Properties["sonarKey"])
	}

	second := run.Results[1].Locations[0].PhysicalLocation
	if *second.Region.StartLine != 1 {
		t.Fatalf("expected missing line to map to 1, got %d", *second.Region.StartLine)
	}
}

func TestWriteAndRead(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if doc["version"] != "2.1.0" {
		t.Fatalf("unexpected version %v", doc["version"])
	}

	path := filepath.Join(t.TempDir(), "out", "sonar.sarif")
	if err := WriteFile(path, sample()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var written struct {
		Runs []struct {
			Results []json.RawMessage `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(data, &written); err != nil {
		t.Fatalf("written file is not JSON: %v", err)
	}
	if got := len(written.Runs[0].Results); got != 3 {
		t.Fatalf("expected 3 results in the written file, got %d", got)
	}
}
