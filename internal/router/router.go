package router

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var issueKey = regexp.MustCompile(`[A-Z]+-\d+`)

// slashCommands maps the supported slash commands to their intent.
var slashCommands = map[string]Kind{
	"help":    Help,
	"config":  Configure,
	"fetch":   FetchIssues,
	"fix-all": FixAll,
	"analyze": Analyze,
}

// SlashCommands lists the supported slash commands in display order.
var SlashCommands = []string{"help", "config", "fetch", "fix-all", "analyze"}

type rule struct {
	match    func(text string) bool
	classify func(raw, text string) Intent
}

func containsAny(words ...string) func(string) bool {
	return func(text string) bool {
		for _, w := range words {
			if strings.Contains(text, w) {
				return true
			}
		}
		return false
	}
}

func containsAll(words ...string) func(string) bool {
	return func(text string) bool {
		for _, w := range words {
			if !strings.Contains(text, w) {
				return false
			}
		}
		return true
	}
}

func is(k Kind) func(string, string) Intent {
	return func(string, string) Intent { return Intent{Kind: k} }
}

func classifyFix(raw, text string) Intent {
	if strings.Contains(text, "all") {
		return Intent{Kind: FixAll}
	}
	return Intent{Kind: FixSpecific, Key: issueKey.FindString(raw)}
}

// rules is evaluated in order; the first match wins.
var rules = []rule{
	{match: containsAny("fetch", "list", "issues"), classify: is(FetchIssues)},
	{match: containsAll("fix", "issue"), classify: classifyFix},
	{match: containsAny("config", "setup"), classify: is(Configure)},
	{match: containsAny("help"), classify: is(Help)},
}

// Route classifies a turn. A slash command is matched exactly against the
// command table and never falls back to free text classification.
func Route(turn Turn) Intent {
	if turn.Command != "" {
		if k, ok := slashCommands[turn.Command]; ok {
			return Intent{Kind: k}
		}
		return Intent{Kind: Unknown, Command: turn.Command}
	}

	text := strings.ToLower(turn.Prompt)
	for _, r := range rules {
		if r.match(text) {
			return r.classify(turn.Prompt, text)
		}
	}
	return Intent{Kind: General}
}

// Handler serves one intent.
type Handler func(ctx context.Context, turn Turn, intent Intent) error

// Handlers maps intent kinds to handlers.
type Handlers map[Kind]Handler

// Dispatch routes turn and invokes the matching handler. Unknown slash commands
// and kinds without a handler are reported to fallback.
func Dispatch(ctx context.Context, turn Turn, handlers Handlers, fallback func(msg string)) (Intent, error) {
	intent := Route(turn)
	if intent.Kind == Unknown {
		fallback(UnknownCommandMessage(intent.Command))
		return intent, nil
	}
	h, ok := handlers[intent.Kind]
	if !ok {
		fallback(fmt.Sprintf("Nothing handles %s requests here. Use /help to see what is available.", intent.Kind))
		return intent, nil
	}
	return intent, h(ctx, turn, intent)
}

// UnknownCommandMessage is the reply to an unsupported slash command.
func UnknownCommandMessage(command string) string {
	names := make([]string, len(SlashCommands))
	for i, c := range SlashCommands {
		names[i] = "`/" + c + "`"
	}
	return fmt.Sprintf("Unknown command `/%s`. Available commands: %s.", command, strings.Join(names, ", "))
}
