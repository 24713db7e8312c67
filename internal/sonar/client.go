package sonar

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/jkarethiya/sonarfix/internal/config"
	errs "github.com/jkarethiya/sonarfix/internal/errors"
	"github.com/jkarethiya/sonarfix/internal/findings"
	"github.com/jkarethiya/sonarfix/internal/httpclient"
)

const searchPath = "/api/issues/search"

// Client retrieves findings from a SonarQube compatible quality server.
type Client struct {
	logger     hclog.Logger
	httpClient *resty.Client
	cfg        config.Sonar
	resolved   bool
}

// New creates a Client from the global configuration.
func New(cfg *config.Config, logger hclog.Logger) *Client {
	return &Client{
		logger:     logger,
		httpClient: httpclient.New(logger, cfg, cfg.Sonar.URL),
		cfg:        cfg.Sonar,
		resolved:   config.IsResolvedFilter(cfg),
	}
}

// Query returns the query parameters sent to the issue search endpoint.
func (c *Client) Query() map[string]string {
	return map[string]string{
		"componentKeys": c.cfg.ProjectKey,
		"types":         strings.Join(c.cfg.Types, ","),
		"resolved":      strconv.FormatBool(c.resolved),
		"severities":    strings.Join(c.cfg.Severities, ","),
		"ps":            strconv.Itoa(config.SetThen(c.cfg.PageSize, config.DefaultPageSize)),
	}
}

func (c *Client) validate() error {
	if c.cfg.Token == "" {
		return errs.NewConfigError("sonar.token")
	}
	if c.cfg.ProjectKey == "" {
		return errs.NewConfigError("sonar.project_key")
	}
	return nil
}

// Fetch queries a single page of open findings for the configured project.
// It returns the findings and the total reported by the server, which can exceed
// the number of returned findings.
func (c *Client) Fetch(ctx context.Context) ([]findings.Finding, int, error) {
	if err := c.validate(); err != nil {
		return nil, 0, err
	}

	c.logger.Debug("fetching issues", "url", c.cfg.URL, "project", c.cfg.ProjectKey)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(c.cfg.Token).
		SetQueryParams(c.Query()).
		Get(searchPath)
	if err != nil {
		c.logger.Error("issue search request failed", "error", err)
		return nil, 0, errs.NewNetworkError("fetch issues", err)
	}
	if resp.IsError() {
		c.logger.Error("issue search returned an error status", "status", resp.StatusCode())
		return nil, 0, errs.NewNetworkError("fetch issues", fmt.Errorf("unexpected status %s: %s", resp.Status(), truncate(resp.String(), 200)))
	}

	var result findings.SearchResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		c.logger.Error("failed to decode issue search response", "error", err)
		return nil, 0, errs.NewNetworkError("decode issues", err)
	}

	total := result.Total
	if total == 0 {
		total = result.Paging.Total
	}
	if total < len(result.Issues) {
		total = len(result.Issues)
	}

	c.logger.Debug("issues fetched", "count", len(result.Issues), "total", total)
	return result.Issues, total, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
