package chat

import (
	"strings"

	"github.com/jkarethiya/sonarfix/internal/router"
)

// ParseTurn builds a turn from a line of input. A leading "/word" is the slash
// command and the rest of the line is the prompt.
func ParseTurn(line string, history []router.Turn) router.Turn {
	line = strings.TrimSpace(line)
	turn := router.Turn{Prompt: line, History: history}
	if !strings.HasPrefix(line, "/") {
		return turn
	}

	rest := strings.TrimPrefix(line, "/")
	command, prompt, _ := strings.Cut(rest, " ")
	turn.Command = command
	turn.Prompt = strings.TrimSpace(prompt)
	return turn
}
