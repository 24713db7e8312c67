package workspace

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jkarethiya/sonarfix/internal/config"
	errs "github.com/jkarethiya/sonarfix/internal/errors"
)

// Resolver maps quality server component references to files under the workspace root.
type Resolver struct {
	root string
}

// NewResolver creates a Resolver rooted at root.
func NewResolver(root string) *Resolver {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Resolver{root: filepath.Clean(root)}
}

// FromConfig creates a Resolver for the configured workspace root.
func FromConfig(cfg *config.Config) (*Resolver, error) {
	root, err := config.WorkspaceRoot(cfg)
	if err != nil {
		return nil, err
	}
	return NewResolver(root), nil
}

// Root returns the absolute workspace root.
func (r *Resolver) Root() string {
	return r.root
}

// Path computes the file path for a component reference without checking it exists.
// "project:src/a.go" maps to "<root>/src/a.go"; a reference without a colon is
// taken relative to the root.
func (r *Resolver) Path(componentRef string) string {
	rel := componentRef
	if i := strings.Index(componentRef, ":"); i >= 0 {
		rel = componentRef[i+1:]
	}
	return filepath.Join(r.root, filepath.FromSlash(rel))
}

// Resolve returns the path of an existing regular file for the component reference.
// ok is false when the file is missing or the reference points outside the root.
func (r *Resolver) Resolve(componentRef string) (string, bool) {
	path := r.Path(componentRef)
	if !PathWithin(path, r.root) || path == r.root {
		return path, false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return path, false
	}
	return path, true
}

// ResolveErr is Resolve reporting a FileNotFoundError instead of a flag.
func (r *Resolver) ResolveErr(componentRef string) (string, error) {
	path, ok := r.Resolve(componentRef)
	if !ok {
		return "", &errs.FileNotFoundError{ComponentRef: componentRef, Path: path}
	}
	return path, nil
}

// PathWithin checks if a path is within root.
func PathWithin(path, root string) bool {
	cleanPath := filepath.Clean(path)
	cleanRoot := filepath.Clean(root)
	if cleanPath == cleanRoot {
		return true
	}
	return strings.HasPrefix(cleanPath, cleanRoot+string(filepath.Separator))
}
