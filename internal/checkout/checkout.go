// Package checkout materializes a remote Git repository into a local
// working tree.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrCheckout reports a clone or checkout failure.
var ErrCheckout = errors.New("checkout failure")

// Request describes one checkout. Depth 0 picks the default: a shallow
// clone of depth 1 when Ref is empty, a full clone otherwise (so that Ref
// can be any reachable commit).
type Request struct {
	URL   string
	Ref   string
	Depth int
}

// Provider clones a repository into dir, which must not exist or be empty.
type Provider interface {
	Checkout(ctx context.Context, req Request, dir string) error
}

// Git is a Provider that clones in-process with go-git. No git executable
// is needed.
type Git struct{}

// NewGit returns the go-git Provider.
func NewGit() *Git {
	return &Git{}
}

// CloneOptions returns the clone options Checkout uses for req.
func CloneOptions(req Request) (*git.CloneOptions, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return nil, fmt.Errorf("%w: repository url required", ErrCheckout)
	}
	if req.Depth < 0 {
		return nil, fmt.Errorf("%w: depth must be >= 0", ErrCheckout)
	}

	depth := req.Depth
	if depth == 0 && strings.TrimSpace(req.Ref) == "" {
		depth = 1
	}
	return &git.CloneOptions{
		URL:   url,
		Depth: depth,
	}, nil
}

// Checkout clones req.URL into dir and, when req.Ref is set, hard-resets
// the worktree to the commit it resolves to.
func (g *Git) Checkout(ctx context.Context, req Request, dir string) error {
	opts, err := CloneOptions(req)
	if err != nil {
		return err
	}
	repo, err := git.PlainCloneContext(ctx, dir, false, opts)
	if err != nil {
		return fmt.Errorf("%w: clone %s: %w", ErrCheckout, opts.URL, err)
	}

	ref := strings.TrimSpace(req.Ref)
	if ref == "" {
		return nil
	}
	hash, err := resolve(repo, ref)
	if err != nil {
		return fmt.Errorf("%w: resolve %s: %w", ErrCheckout, ref, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("%w: worktree: %w", ErrCheckout, err)
	}
	if err := wt.Reset(&git.ResetOptions{Commit: *hash, Mode: git.HardReset}); err != nil {
		return fmt.Errorf("%w: reset to %s: %w", ErrCheckout, ref, err)
	}
	return nil
}

// resolve finds ref as a revision, then as a remote-tracking branch of
// origin (a fresh clone only has a local branch for the default one).
func resolve(repo *git.Repository, ref string) (*plumbing.Hash, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err == nil {
		return hash, nil
	}
	if remote, rerr := repo.ResolveRevision(plumbing.Revision("origin/" + ref)); rerr == nil {
		return remote, nil
	}
	return nil, err
}

// Temp checks req out into a fresh temporary directory. The returned
// cleanup removes it and is safe to call when err is non-nil.
func Temp(ctx context.Context, p Provider, req Request) (dir string, cleanup func(), err error) {
	parent, err := os.MkdirTemp("", "wordle-checkout-")
	if err != nil {
		return "", func() {}, fmt.Errorf("%w: %w", ErrCheckout, err)
	}
	cleanup = func() { os.RemoveAll(parent) }

	dir = parent + string(os.PathSeparator) + "repo"
	if err := p.Checkout(ctx, req, dir); err != nil {
		cleanup()
		return "", func() {}, err
	}
	return dir, cleanup, nil
}
