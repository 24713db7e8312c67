package git

import (
	"fmt"
	"slices"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	errs "github.com/jkarethiya/sonarfix/internal/errors"
)

// CurrentBranch returns the short name of the checked out branch.
func (c *Client) CurrentBranch() (string, error) {
	head, err := c.repo.Head()
	if err != nil {
		return "", errs.NewGitOperationError("head", err)
	}
	if !head.Name().IsBranch() {
		return "", errs.NewGitOperationError("head", fmt.Errorf("HEAD is detached at %s", head.Hash()))
	}
	return head.Name().Short(), nil
}

// Branches lists the local branch names.
func (c *Client) Branches() ([]string, error) {
	iter, err := c.repo.Branches()
	if err != nil {
		return nil, errs.NewGitOperationError("list branches", err)
	}
	defer iter.Close()

	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, errs.NewGitOperationError("list branches", err)
	}
	return names, nil
}

// EnsureBranch checks out the local branch name. A missing branch is created
// from HEAD and keeps the working tree. An existing branch is checked out with
// its own tree, which fails with git.ErrUnstagedChanges when tracked files are
// modified. Calling it twice is harmless.
func (c *Client) EnsureBranch(name string) error {
	if current, err := c.CurrentBranch(); err == nil && current == name {
		c.logger.Debug("branch already checked out", "branch", name)
		return nil
	}

	branches, err := c.Branches()
	if err != nil {
		return err
	}

	w, err := c.repo.Worktree()
	if err != nil {
		c.logger.Error("error accessing worktree", "error", err)
		return errs.NewGitOperationError("checkout", fmt.Errorf("error accessing worktree: %w", err))
	}

	ref := plumbing.NewBranchReferenceName(name)
	if slices.Contains(branches, name) {
		c.logger.Info("checking out existing branch", "branch", name)
		// go-git moves HEAD before it notices a dirty tree, so check first.
		err = checkTrackedClean(w)
		if err == nil {
			err = w.Checkout(&git.CheckoutOptions{Branch: ref})
		}
	} else {
		c.logger.Info("creating branch from HEAD", "branch", name)
		err = w.Checkout(&git.CheckoutOptions{Branch: ref, Create: true, Keep: true})
	}
	if err != nil {
		c.logger.Error("error occurred during checkout", "branch", name, "error", err)
		return errs.NewGitOperationError("checkout", fmt.Errorf("branch %s: %w", name, err))
	}
	return nil
}

func checkTrackedClean(w *git.Worktree) error {
	status, err := w.Status()
	if err != nil {
		return err
	}
	for path, s := range status {
		if s.Worktree == git.Untracked && s.Staging == git.Untracked {
			continue
		}
		if s.Staging != git.Unmodified || s.Worktree != git.Unmodified {
			return fmt.Errorf("%w: %s", git.ErrUnstagedChanges, path)
		}
	}
	return nil
}
