package sarif

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/jkarethiya/sonarfix/internal/findings"
)

const (
	ToolName           = "SonarQube"
	ToolInformationURI = "https://www.sonarsource.com/products/sonarqube/"
)

// Level maps a quality server severity to a SARIF result level.
func Level(s findings.Severity) string {
	switch s {
	case findings.SeverityBlocker, findings.SeverityCritical:
		return "error"
	case findings.SeverityMajor:
		return "warning"
	case findings.SeverityMinor:
		return "note"
	default:
		return "none"
	}
}

// FromFindings builds a SARIF 2.1.0 report with one run holding every finding.
// Rules are registered once, with the level of the first finding that uses them.
func FromFindings(list []findings.Finding) (*sarif.Report, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(ToolName, ToolInformationURI)
	for _, f := range list {
		rule := run.AddRule(f.Rule).
			WithDescription(f.Message).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{
				Level: Level(f.Severity),
			})

		region := sarif.NewRegion().WithStartLine(1)
		if line := f.LineOrZero(); line > 0 {
			region = sarif.NewRegion().WithStartLine(line)
		}
		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.RelativePath())).
				WithRegion(region),
		)

		result := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(f.Message)).
			WithLevel(Level(f.Severity)).
			WithLocations([]*sarif.Location{location})
		result.Properties = sarif.Properties{
			"sonarKey": f.Key,
			"severity": string(f.Severity),
			"type":     string(f.Type),
			"status":   f.Status,
		}
		run.AddResult(result)
	}
	report.AddRun(run)
	return report, nil
}

// Write renders the findings as an indented SARIF document.
func Write(w io.Writer, list []findings.Finding) error {
	report, err := FromFindings(list)
	if err != nil {
		return err
	}
	return report.PrettyWrite(w)
}

// WriteFile writes the SARIF document to path, creating parent folders.
func WriteFile(path string, list []findings.Finding) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create folder for %q: %w", path, err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error writing SARIF report: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := Write(file, list); err != nil {
		return fmt.Errorf("error writing SARIF report: %w", err)
	}
	return nil
}
