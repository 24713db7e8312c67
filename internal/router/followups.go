package router

var (
	followHelp    = Followup{Prompt: "Show me how to get started", Label: "Help", Command: "help"}
	followConfig  = Followup{Prompt: "Show the configuration", Label: "Configure", Command: "config"}
	followFetch   = Followup{Prompt: "Fetch the open issues", Label: "Fetch issues", Command: "fetch"}
	followFixAll  = Followup{Prompt: "Fix all issues", Label: "Fix all", Command: "fix-all"}
	followAnalyze = Followup{Prompt: "Analyze the issues", Label: "Analyze", Command: "analyze"}
)

var defaultFollowups = []Followup{followHelp, followConfig, followFetch}

var followupsByKind = map[Kind][]Followup{
	Help:        {followConfig, followFetch},
	Configure:   {followFetch},
	FetchIssues: {followFixAll, followAnalyze},
	FixAll:      {followFetch},
	FixSpecific: {followFetch},
}

// MaxFollowups bounds the number of suggestions returned by Followups.
const MaxFollowups = 3

// Followups suggests next actions from the intent of the most recent turn in history.
func Followups(history []Turn) []Followup {
	if len(history) == 0 {
		return clone(defaultFollowups)
	}
	last := Route(history[len(history)-1])
	list, ok := followupsByKind[last.Kind]
	if !ok {
		list = defaultFollowups
	}
	return clone(list)
}

func clone(list []Followup) []Followup {
	if len(list) > MaxFollowups {
		list = list[:MaxFollowups]
	}
	return append([]Followup(nil), list...)
}
