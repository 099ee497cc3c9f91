// Package gitrepo materializes the external repositories that code-import
// directives reference. Checkouts are shallow and read-only; nothing is ever
// pushed.
package gitrepo

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/zkcodehub/sitectl/internal/config"
)

// Client clones and updates repositories under a workspace directory.
type Client struct {
	workspaceDir string
	depth        int
}

// NewClient creates a client cloning into workspaceDir with shallow depth 1.
func NewClient(workspaceDir string) *Client {
	return &Client{workspaceDir: workspaceDir, depth: 1}
}

// WithDepth overrides the clone depth (0 means full history).
func (c *Client) WithDepth(depth int) *Client {
	c.depth = depth
	return c
}

// Clone performs a fresh clone of the repository and returns the checkout
// path. Any existing checkout is removed first.
func (c *Client) Clone(ctx context.Context, repo config.Repository) (string, error) {
	repoPath := filepath.Join(c.workspaceDir, repo.Name)
	slog.Debug("Cloning repository", "name", repo.Name, "url", repo.URL, "branch", repo.Branch)

	if err := os.RemoveAll(repoPath); err != nil {
		return "", fmt.Errorf("remove existing checkout: %w", err)
	}

	opts := &git.CloneOptions{URL: repo.URL, Depth: c.depth}
	if repo.Branch != "" {
		opts.ReferenceName = plumbing.ReferenceName("refs/heads/" + repo.Branch)
		opts.SingleBranch = true
	}
	auth, err := authMethod(repo.Auth)
	if err != nil {
		return "", err
	}
	opts.Auth = auth

	if _, err := git.PlainCloneContext(ctx, repoPath, false, opts); err != nil {
		return "", fmt.Errorf("clone %s: %w", repo.Name, err)
	}
	return repoPath, nil
}

// Update fetches and hard-resets an existing checkout, falling back to a
// fresh clone when the checkout is missing or unusable.
func (c *Client) Update(ctx context.Context, repo config.Repository) (string, error) {
	repoPath := filepath.Join(c.workspaceDir, repo.Name)

	repository, err := git.PlainOpen(repoPath)
	if err != nil {
		return c.Clone(ctx, repo)
	}

	auth, err := authMethod(repo.Auth)
	if err != nil {
		return "", err
	}

	fetchErr := repository.FetchContext(ctx, &git.FetchOptions{Auth: auth, Depth: c.depth})
	if fetchErr != nil && fetchErr != git.NoErrAlreadyUpToDate {
		slog.Warn("Fetch failed, falling back to fresh clone", "name", repo.Name, "error", fetchErr)
		return c.Clone(ctx, repo)
	}

	worktree, err := repository.Worktree()
	if err != nil {
		return c.Clone(ctx, repo)
	}
	branch := repo.Branch
	if branch == "" {
		branch = "main"
	}
	ref, err := repository.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
	if err != nil {
		return c.Clone(ctx, repo)
	}
	if err := worktree.Reset(&git.ResetOptions{Commit: ref.Hash(), Mode: git.HardReset}); err != nil {
		return "", fmt.Errorf("reset %s to origin/%s: %w", repo.Name, branch, err)
	}
	return repoPath, nil
}

// MaterializeAll clones (or updates, when incremental) every configured
// repository and returns name -> checkout path. observe, when non-nil, is
// called once per repository with the time the operation took.
func (c *Client) MaterializeAll(ctx context.Context, repos []config.Repository, incremental bool, observe func(name string, elapsed time.Duration, err error)) (map[string]string, error) {
	paths := make(map[string]string, len(repos))
	for _, repo := range repos {
		start := time.Now()
		var path string
		var err error
		if incremental {
			path, err = c.Update(ctx, repo)
		} else {
			path, err = c.Clone(ctx, repo)
		}
		if observe != nil {
			observe(repo.Name, time.Since(start), err)
		}
		if err != nil {
			return nil, err
		}
		paths[repo.Name] = path
	}
	return paths, nil
}

func authMethod(cfg *config.AuthConfig) (transport.AuthMethod, error) {
	if cfg == nil {
		return nil, nil
	}
	switch cfg.Type {
	case "token":
		// go-git treats tokens as basic auth with a fixed username.
		return &http.BasicAuth{Username: "token", Password: cfg.Token}, nil
	case "basic":
		return &http.BasicAuth{Username: cfg.Username, Password: cfg.Password}, nil
	default:
		return nil, fmt.Errorf("unsupported auth type: %s", cfg.Type)
	}
}
