package git

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	errs "github.com/jkarethiya/sonarfix/internal/errors"
)

// CommitMessage formats the message of the commit recording the fix of one finding.
func CommitMessage(key, message string) string {
	message = strings.TrimSpace(strings.ReplaceAll(message, "\n", " "))
	return fmt.Sprintf("fix(sonar): %s [%s]", message, key)
}

// DirtyFiles lists paths with staged, unstaged or untracked changes.
func (c *Client) DirtyFiles() ([]string, error) {
	w, err := c.repo.Worktree()
	if err != nil {
		return nil, errs.NewGitOperationError("status", err)
	}
	status, err := w.Status()
	if err != nil {
		return nil, errs.NewGitOperationError("status", err)
	}

	var files []string
	for path, s := range status {
		if s.Staging != git.Unmodified || s.Worktree != git.Unmodified {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Commit stages every change in the working tree and records a commit.
// Unrelated modifications are included as well. An empty change set still
// produces a commit so each confirmed fix is traceable.
func (c *Client) Commit(message string) (string, error) {
	w, err := c.repo.Worktree()
	if err != nil {
		c.logger.Error("error accessing worktree", "error", err)
		return "", errs.NewGitOperationError("commit", fmt.Errorf("error accessing worktree: %w", err))
	}

	if err := w.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		c.logger.Error("failed to stage changes", "error", err)
		return "", errs.NewGitOperationError("stage", err)
	}

	opts := &git.CommitOptions{AllowEmptyCommits: true}
	if c.cfg.AuthorName != "" && c.cfg.AuthorEmail != "" {
		opts.Author = &object.Signature{
			Name:  c.cfg.AuthorName,
			Email: c.cfg.AuthorEmail,
			When:  time.Now(),
		}
	}

	hash, err := w.Commit(message, opts)
	if err != nil {
		c.logger.Error("failed to commit", "error", err)
		return "", errs.NewGitOperationError("commit", err)
	}

	c.logger.Info("committed fix", "commit", hash.String()[:7], "message", message)
	return hash.String(), nil
}
