package template

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// add adds two integers and returns the result.
func add(a, b int) int {
	return a + b
}

// quote wraps s in double quotes for display in prompts.
func quote(s string) string {
	return fmt.Sprintf("%q", s)
}

var funcs = template.FuncMap{
	"add":   add,
	"lower": strings.ToLower,
	"upper": strings.ToUpper,
	"quote": quote,
}

// NewTemplate parses text as a named template with the helper functions registered.
// Missing keys are reported as errors instead of rendering "<no value>".
func NewTemplate(name, text string) (*template.Template, error) {
	t, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %q: %w", name, err)
	}
	return t, nil
}

// Render executes t with data and returns the result.
func Render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %q: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// Expand renders every element of args as its own template.
func Expand(args []string, data any) ([]string, error) {
	out := make([]string, 0, len(args))
	for i, a := range args {
		if !strings.Contains(a, "{{") {
			out = append(out, a)
			continue
		}
		t, err := NewTemplate(fmt.Sprintf("arg%d", i), a)
		if err != nil {
			return nil, err
		}
		v, err := Render(t, data)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
