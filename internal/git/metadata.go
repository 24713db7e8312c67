package git

import (
	"github.com/gitsight/go-vcsurl"
)

// RepositoryMetadata describes the workspace repository for logs and status output.
type RepositoryMetadata struct {
	BranchName         string
	CommitHash         string
	RemoteURL          string
	RepositoryFullName string
	RepoRootFolder     string
}

// Metadata collects the checked out branch, HEAD commit and remote of the repository.
// Missing pieces are left empty.
func (c *Client) Metadata() *RepositoryMetadata {
	md := &RepositoryMetadata{RepoRootFolder: c.root}

	if w, err := c.repo.Worktree(); err == nil {
		md.RepoRootFolder = w.Filesystem.Root()
	}
	if branch, err := c.CurrentBranch(); err == nil {
		md.BranchName = branch
	}
	if head, err := c.repo.Head(); err == nil {
		md.CommitHash = head.Hash().String()
	}
	if url, err := c.RemoteURL(); err == nil {
		md.RemoteURL = url
		md.RepositoryFullName = c.RepositoryName()
	}
	return md
}

// RepositoryName returns "owner/name" of the remote, or an empty string when
// the remote URL cannot be parsed.
func (c *Client) RepositoryName() string {
	url, err := c.RemoteURL()
	if err != nil {
		return ""
	}
	info, err := vcsurl.Parse(url)
	if err != nil {
		c.logger.Debug("failed to parse VCS URL", "VCSURL", url, "error", err)
		return ""
	}
	if info.FullName != "" {
		return info.FullName
	}
	return info.Name
}
