package agent

import (
	"fmt"
	gotemplate "text/template"

	"github.com/jkarethiya/sonarfix/internal/template"
)

// DefaultPrompt is the fix prompt sent to the agent when none is configured.
const DefaultPrompt = `Fix this Sonar-reported {{lower .Type}} in {{.File}} at line {{.Line}}.
Rule: {{.Rule}}
Severity: {{.Severity}}
Issue: {{.Message}}
Change only what is needed to resolve the issue.`

// PromptBuilder renders the fix prompt for a Request.
type PromptBuilder struct {
	tpl *gotemplate.Template
}

// NewPromptBuilder parses text, or DefaultPrompt when text is empty.
func NewPromptBuilder(text string) (*PromptBuilder, error) {
	if text == "" {
		text = DefaultPrompt
	}
	tpl, err := template.NewTemplate("prompt", text)
	if err != nil {
		return nil, err
	}
	return &PromptBuilder{tpl: tpl}, nil
}

// Build renders the prompt. The Prompt field of req is ignored.
func (b *PromptBuilder) Build(req Request) (string, error) {
	return template.Render(b.tpl, req)
}

// ManualInstructions is the markdown shown when the human has to fix the finding.
func ManualInstructions(req Request) string {
	return fmt.Sprintf("**Manual fix needed** for `%s` (%s, rule `%s`)\n\nFile: `%s:%d`\n\n> %s\n\nEdit the file, then confirm below.\n",
		req.Key, req.Severity, req.Rule, req.File, req.Line, req.Message)
}

// ConfirmQuestion is the question asked after each fix attempt.
func ConfirmQuestion(req Request) string {
	return fmt.Sprintf("Was the fix for %s (%s:%d) applied?", req.Key, req.File, req.Line)
}
