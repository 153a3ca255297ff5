// Package gitrepo wraps the external git binary for the hub repo.
// Every operation is a sequential external-process call; a non-zero
// exit is terminal for that step and its stderr is surfaced verbatim
// in the returned error.
package gitrepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/hubsync/hubsync/internal/logging"
)

// ErrNotRepo indicates the hub root is not an initialized git repository.
var ErrNotRepo = errors.New("hub repo not initialized (run 'hubsync init')")

// Repo is a handle on a local git working tree.
type Repo struct {
	root string
}

// Open returns a handle on an existing repository at root.
func Open(root string) (*Repo, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, ErrNotRepo
	}
	if _, err := os.Stat(root + "/.git"); err != nil {
		return nil, ErrNotRepo
	}
	return &Repo{root: root}, nil
}

// Init creates a new repository at root.
func Init(ctx context.Context, root string) (*Repo, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create hub root %q: %w", root, err)
	}
	r := &Repo{root: root}
	if _, err := r.run(ctx, "init"); err != nil {
		return nil, err
	}
	return r, nil
}

// Clone clones url into root.
func Clone(ctx context.Context, url, root string) (*Repo, error) {
	cmd := exec.CommandContext(ctx, "git", "clone", url, root)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, gitError([]string{"clone", url, root}, err, stderr.String())
	}
	return &Repo{root: root}, nil
}

// Root returns the working tree path.
func (r *Repo) Root() string {
	return r.root
}

// Dirty reports whether the working tree has uncommitted changes.
func (r *Repo) Dirty(ctx context.Context) (bool, error) {
	out, err := r.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// Porcelain returns the paths reported dirty by git status.
func (r *Repo) Porcelain(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, "status", "--porcelain")
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, line := range strings.Split(out, "\n") {
		if len(line) > 3 {
			paths = append(paths, strings.TrimSpace(line[3:]))
		}
	}
	return paths, nil
}

// AddAll stages every change in the working tree.
func (r *Repo) AddAll(ctx context.Context) error {
	_, err := r.run(ctx, "add", "--all")
	return err
}

// Commit records staged changes with the given message.
func (r *Repo) Commit(ctx context.Context, message string) error {
	_, err := r.run(ctx, "commit", "-m", message)
	return err
}

// Config sets a repository-local configuration value.
func (r *Repo) Config(ctx context.Context, key, value string) error {
	_, err := r.run(ctx, "config", key, value)
	return err
}

// Fetch updates remote tracking refs.
func (r *Repo) Fetch(ctx context.Context) error {
	_, err := r.run(ctx, "fetch")
	return err
}

// Pull integrates remote changes, with or without rebase.
func (r *Repo) Pull(ctx context.Context, rebase bool) error {
	args := []string{"pull"}
	if rebase {
		args = append(args, "--rebase")
	} else {
		args = append(args, "--no-rebase")
	}
	_, err := r.run(ctx, args...)
	return err
}

// Push publishes local commits to the upstream.
func (r *Repo) Push(ctx context.Context) error {
	_, err := r.run(ctx, "push")
	return err
}

// RemoteURL returns the origin remote URL.
func (r *Repo) RemoteURL(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "remote", "get-url", "origin")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Head returns the current HEAD commit hash, or an empty string for a
// repository with no commits yet.
func (r *Repo) Head(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "--verify", "HEAD")
	if err != nil {
		// No commits yet is a normal state for a fresh hub.
		return "", nil
	}
	return strings.TrimSpace(out), nil
}

// HasUpstream reports whether the current branch tracks an upstream.
func (r *Repo) HasUpstream(ctx context.Context) bool {
	_, err := r.run(ctx, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{upstream}")
	return err == nil
}

// AheadBehind returns how many commits the current branch is ahead of
// and behind its upstream.
func (r *Repo) AheadBehind(ctx context.Context) (ahead, behind int, err error) {
	out, err := r.run(ctx, "rev-list", "--left-right", "--count", "@{upstream}...HEAD")
	if err != nil {
		return 0, 0, err
	}

	fields := strings.Fields(out)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected rev-list output %q", out)
	}
	behind, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected rev-list output %q", out)
	}
	ahead, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected rev-list output %q", out)
	}
	return ahead, behind, nil
}

// ChangeSummary lists file-level changes between two refs.
type ChangeSummary struct {
	Added   []string
	Updated []string
	Deleted []string
}

// Empty reports whether the summary contains no changes.
func (s ChangeSummary) Empty() bool {
	return len(s.Added) == 0 && len(s.Updated) == 0 && len(s.Deleted) == 0
}

// ChangedFiles summarizes file-level changes between two refs. Renames
// count as a delete plus an add.
func (r *Repo) ChangedFiles(ctx context.Context, from, to string) (ChangeSummary, error) {
	var summary ChangeSummary

	out, err := r.run(ctx, "diff", "--name-status", from, to)
	if err != nil {
		return summary, err
	}

	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		switch fields[0][0] {
		case 'A':
			summary.Added = append(summary.Added, fields[1])
		case 'M':
			summary.Updated = append(summary.Updated, fields[1])
		case 'D':
			summary.Deleted = append(summary.Deleted, fields[1])
		case 'R':
			summary.Deleted = append(summary.Deleted, fields[1])
			if len(fields) > 2 {
				summary.Added = append(summary.Added, fields[2])
			}
		}
	}
	return summary, nil
}

// run executes one git command against the repo and returns its stdout.
func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"-C", r.root}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.Debug("running git", logging.Operation(strings.Join(args, " ")))
	if err := cmd.Run(); err != nil {
		return "", gitError(args, err, stderr.String())
	}
	return stdout.String(), nil
}

// gitError wraps a failed git invocation, keeping its diagnostic output
// intact.
func gitError(args []string, err error, stderr string) error {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return fmt.Errorf("git %s: %w\n%s", strings.Join(args, " "), err, stderr)
}
