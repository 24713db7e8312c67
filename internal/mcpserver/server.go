// Package mcpserver exposes the read-only remediation tools over the Model
// Context Protocol on stdio.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jkarethiya/sonarfix/internal/findings"
	"github.com/jkarethiya/sonarfix/internal/report"
	"github.com/jkarethiya/sonarfix/internal/router"
)

// Name is the MCP implementation name.
const Name = "sonarfix"

// IssueSource fetches the open findings.
type IssueSource interface {
	Fetch(ctx context.Context) ([]findings.Finding, int, error)
}

// Server serves the sonarfix tools.
type Server struct {
	mcp    *mcp.Server
	source IssueSource
	logger hclog.Logger
}

// New creates a server and registers its tools.
func New(logger hclog.Logger, version string, source IssueSource) (*Server, error) {
	if source == nil {
		return nil, fmt.Errorf("issue source is required")
	}

	s := &Server{
		mcp:    mcp.NewServer(&mcp.Implementation{Name: Name, Version: version}, nil),
		source: source,
		logger: logger.Named("mcp"),
	}
	s.registerTools()
	return s, nil
}

// Run serves requests on stdin/stdout until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio transport")
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("server run failed: %w", err)
	}
	return nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "fetch_issues",
		Description: "List the open issues reported by the quality server",
	}, s.fetchIssues)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "analyze_issues",
		Description: "Summarize the open issues by severity, type and rule",
	}, s.analyzeIssues)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "route_turn",
		Description: "Classify a chat message into an intent and suggest follow-up actions",
	}, s.routeTurn)
}

type fetchIssuesInput struct {
	Keys []string `json:"keys,omitempty" jsonschema:"Only return the issues with these keys"`
}

type fetchIssuesOutput struct {
	Total  int                `json:"total" jsonschema:"Number of matching issues on the server"`
	Issues []findings.Finding `json:"issues" jsonschema:"Issues returned by this page"`
}

func (s *Server) fetchIssues(ctx context.Context, _ *mcp.CallToolRequest, args fetchIssuesInput) (*mcp.CallToolResult, fetchIssuesOutput, error) {
	list, total, err := s.source.Fetch(ctx)
	if err != nil {
		s.logger.Error("fetch_issues failed", "error", err)
		return nil, fetchIssuesOutput{}, err
	}
	if len(args.Keys) > 0 {
		list = findings.FilterByKeys(list, args.Keys)
		total = len(list)
	}
	if list == nil {
		list = []findings.Finding{}
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: report.IssueList(list, total)},
		},
	}, fetchIssuesOutput{Total: total, Issues: list}, nil
}

type analyzeIssuesInput struct {
	Severities []string `json:"severities,omitempty" jsonschema:"Only count issues with these severities"`
}

func (s *Server) analyzeIssues(ctx context.Context, _ *mcp.CallToolRequest, args analyzeIssuesInput) (*mcp.CallToolResult, report.Report, error) {
	list, _, err := s.source.Fetch(ctx)
	if err != nil {
		s.logger.Error("analyze_issues failed", "error", err)
		return nil, report.Report{}, err
	}
	if len(args.Severities) > 0 {
		if list, err = filterBySeverity(list, args.Severities); err != nil {
			return nil, report.Report{}, err
		}
	}

	r := report.Summarize(list)
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: report.Markdown(r)},
		},
	}, r, nil
}

func filterBySeverity(list []findings.Finding, severities []string) ([]findings.Finding, error) {
	wanted := make(map[findings.Severity]bool, len(severities))
	for _, s := range severities {
		sev, err := findings.ParseSeverity(s)
		if err != nil {
			return nil, err
		}
		wanted[sev] = true
	}
	var out []findings.Finding
	for _, f := range list {
		if wanted[f.Severity] {
			out = append(out, f)
		}
	}
	return out, nil
}

type routeTurnInput struct {
	Prompt  string   `json:"prompt" jsonschema:"Text of the message"`
	Command string   `json:"command,omitempty" jsonschema:"Slash command without the leading slash"`
	History []string `json:"history,omitempty" jsonschema:"Earlier messages, oldest first; a leading slash marks a command"`
}

type routeTurnOutput struct {
	Intent    string            `json:"intent" jsonschema:"Classified intent"`
	Key       string            `json:"key,omitempty" jsonschema:"Issue key for a specific fix"`
	Clarify   bool              `json:"clarify" jsonschema:"True when a fix was asked for without naming the issue"`
	Followups []router.Followup `json:"followups" jsonschema:"Suggested next actions"`
}

func (s *Server) routeTurn(_ context.Context, _ *mcp.CallToolRequest, args routeTurnInput) (*mcp.CallToolResult, routeTurnOutput, error) {
	history := make([]router.Turn, 0, len(args.History)+1)
	for _, h := range args.History {
		history = append(history, parseHistory(h))
	}
	turn := router.Turn{Prompt: args.Prompt, Command: args.Command, History: history}
	intent := router.Route(turn)

	out := routeTurnOutput{
		Intent:    intent.Kind.String(),
		Key:       intent.Key,
		Clarify:   intent.NeedsClarification(),
		Followups: router.Followups(append(history, turn)),
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Intent: %s", intent)},
		},
	}, out, nil
}

func parseHistory(text string) router.Turn {
	if len(text) > 1 && text[0] == '/' {
		return router.Turn{Command: text[1:]}
	}
	return router.Turn{Prompt: text}
}
