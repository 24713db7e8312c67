package router

import "fmt"

// Kind identifies what a conversational turn asks for.
type Kind int

const (
	General Kind = iota
	FetchIssues
	FixAll
	FixSpecific
	Configure
	Analyze
	Help
	Unknown
)

var kindNames = map[Kind]string{
	General:     "general",
	FetchIssues: "fetch-issues",
	FixAll:      "fix-all",
	FixSpecific: "fix-specific",
	Configure:   "configure",
	Analyze:     "analyze",
	Help:        "help",
	Unknown:     "unknown",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Intent is the classification of a turn. Key is set for FixSpecific and is
// empty when the user asked for a fix without naming an issue. Command holds
// the unmatched slash command of an Unknown intent.
type Intent struct {
	Kind    Kind   `json:"kind"`
	Key     string `json:"key,omitempty"`
	Command string `json:"command,omitempty"`
}

// NeedsClarification reports whether the turn asked to fix an issue without naming it.
func (i Intent) NeedsClarification() bool {
	return i.Kind == FixSpecific && i.Key == ""
}

func (i Intent) String() string {
	switch {
	case i.Kind == FixSpecific && i.Key != "":
		return fmt.Sprintf("%s(%s)", i.Kind, i.Key)
	case i.Kind == Unknown:
		return fmt.Sprintf("%s(/%s)", i.Kind, i.Command)
	default:
		return i.Kind.String()
	}
}

// Turn is one user message. Command is the slash command without its leading
// slash, empty for free text. History holds the earlier turns, oldest first.
type Turn struct {
	Prompt  string `json:"prompt"`
	Command string `json:"command,omitempty"`
	History []Turn `json:"-"`
}

// Followup is a suggested next action.
type Followup struct {
	Prompt  string `json:"prompt"`
	Label   string `json:"label"`
	Command string `json:"command"`
}
