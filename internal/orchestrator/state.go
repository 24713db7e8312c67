package orchestrator

import "fmt"

// State is a step of a remediation session.
type State int

const (
	StateInit State = iota
	StateCheckAgent
	StateEnsureBranch
	StateFetchIssues
	StatePerIssue
	StateMaybePush
	StateMaybeOfferPR
	StateDone
	StateAborted
)

var stateNames = map[State]string{
	StateInit:         "init",
	StateCheckAgent:   "check-agent",
	StateEnsureBranch: "ensure-branch",
	StateFetchIssues:  "fetch-issues",
	StatePerIssue:     "per-issue",
	StateMaybePush:    "maybe-push",
	StateMaybeOfferPR: "maybe-offer-pr",
	StateDone:         "done",
	StateAborted:      "aborted",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}
