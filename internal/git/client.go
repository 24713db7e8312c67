package git

import (
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/hashicorp/go-hclog"

	"github.com/jkarethiya/sonarfix/internal/config"
	errs "github.com/jkarethiya/sonarfix/internal/errors"
)

// Client performs the version control operations of a remediation session
// against the workspace repository.
type Client struct {
	logger  hclog.Logger
	cfg     config.Git
	repo    *git.Repository
	root    string
	timeout time.Duration

	authenticator Authenticator
	auth          transport.AuthMethod
}

// New opens the repository containing root and validates the push credentials.
// Credentials are only loaded on the first push.
func New(logger hclog.Logger, globalConfig *config.Config, root string) (*Client, error) {
	cfg := globalConfig.Git

	authenticator, err := getAuthenticator(cfg.AuthType)
	if err != nil {
		logger.Error("unsupported authentication type", "error", err)
		return nil, fmt.Errorf("unsupported authentication type: %w", err)
	}
	if err := authenticator.ValidateConfig(cfg); err != nil {
		logger.Error("invalid configuration", "error", err)
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		logger.Error("failed to open repository", "root", root, "error", err)
		return nil, errs.NewGitOperationError("open", fmt.Errorf("%s: %w", root, err))
	}

	return &Client{
		logger:        logger,
		cfg:           cfg,
		repo:          repo,
		root:          root,
		timeout:       config.SetThen(cfg.Timeout, 5*time.Minute),
		authenticator: authenticator,
	}, nil
}

func (c *Client) authMethod() (transport.AuthMethod, error) {
	if c.auth != nil {
		return c.auth, nil
	}
	auth, err := c.authenticator.SetupAuth(c.cfg, c.logger)
	if err != nil {
		c.logger.Error("failed to set up Git authentication", "error", err)
		return nil, fmt.Errorf("failed to set up Git authentication: %w", err)
	}
	c.auth = auth
	return auth, nil
}
