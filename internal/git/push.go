package git

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"

	gitconfig "github.com/go-git/go-git/v5/config"

	"github.com/go-git/go-git/v5"

	errs "github.com/jkarethiya/sonarfix/internal/errors"
	"github.com/jkarethiya/sonarfix/internal/logger"
)

var githubRemote = regexp.MustCompile(`github\.com[/:]([^/]+)/([^/.]+)`)

// RemoteURL returns the first fetch URL of the configured remote.
func (c *Client) RemoteURL() (string, error) {
	remote, err := c.repo.Remote(c.cfg.Remote)
	if err != nil {
		return "", errs.NewGitOperationError("list remotes", fmt.Errorf("remote %q: %w", c.cfg.Remote, err))
	}
	cfg := remote.Config()
	if cfg == nil || len(cfg.URLs) == 0 {
		return "", errs.NewGitOperationError("list remotes", fmt.Errorf("remote %q has no URL", c.cfg.Remote))
	}
	return cfg.URLs[0], nil
}

// Push publishes the branch to the configured remote. An up-to-date remote is a success.
func (c *Client) Push(ctx context.Context, branch string) error {
	auth, err := c.authMethod()
	if err != nil {
		return errs.NewGitOperationError("push", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	refSpec := gitconfig.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
	c.logger.Info("pushing branch", "branch", branch, "remote", c.cfg.Remote, "repository", c.RepositoryName())
	err = c.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: c.cfg.Remote,
		RefSpecs:   []gitconfig.RefSpec{refSpec},
		Auth:       auth,
		Progress:   logger.GetLoggerOutput(c.logger),
	})
	if err != nil && !stderrors.Is(err, git.NoErrAlreadyUpToDate) {
		c.logger.Error("error occurred during push", "branch", branch, "error", err)
		return errs.NewGitOperationError("push", err)
	}
	return nil
}

// BuildPRLink returns the GitHub compare page for branch, derived from the remote URL.
func (c *Client) BuildPRLink(branch string) (string, error) {
	url, err := c.RemoteURL()
	if err != nil {
		return "", err
	}
	return PRLink(url, branch)
}

// PRLink builds a GitHub compare URL from a remote URL in HTTPS or SCP form.
func PRLink(remoteURL, branch string) (string, error) {
	m := githubRemote.FindStringSubmatch(remoteURL)
	if m == nil {
		return "", &errs.UnparsableRemoteError{URL: remoteURL}
	}
	return fmt.Sprintf("https://github.com/%s/%s/compare/%s?expand=1", m[1], m[2], branch), nil
}
