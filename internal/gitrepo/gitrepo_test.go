package gitrepo

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hubsync/hubsync/internal/util"
)

// newTestRepo creates an initialized repo with commit identity set.
func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	ctx := context.Background()
	repo, err := Init(ctx, filepath.Join(t.TempDir(), "hub"))
	util.AssertNoError(t, err)
	util.AssertNoError(t, repo.Config(ctx, "user.email", "test@example.com"))
	util.AssertNoError(t, repo.Config(ctx, "user.name", "test"))
	return repo
}

func TestOpen_NotARepo(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrNotRepo) {
		t.Errorf("expected ErrNotRepo, got %v", err)
	}

	dir := t.TempDir()
	_, err = Open(dir)
	if !errors.Is(err, ErrNotRepo) {
		t.Errorf("expected ErrNotRepo for dir without .git, got %v", err)
	}
}

func TestInitOpenDirtyCommit(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	reopened, err := Open(repo.Root())
	util.AssertNoError(t, err)
	util.AssertEqual(t, reopened.Root(), repo.Root())

	dirty, err := repo.Dirty(ctx)
	util.AssertNoError(t, err)
	util.AssertEqual(t, dirty, false)

	head, err := repo.Head(ctx)
	util.AssertNoError(t, err)
	util.AssertEqual(t, head, "")

	util.WriteFile(t, filepath.Join(repo.Root(), "skills", "foo", "SKILL.md"), "# foo\n")

	dirty, err = repo.Dirty(ctx)
	util.AssertNoError(t, err)
	util.AssertEqual(t, dirty, true)

	paths, err := repo.Porcelain(ctx)
	util.AssertNoError(t, err)
	if len(paths) == 0 {
		t.Fatal("expected dirty paths")
	}

	util.AssertNoError(t, repo.AddAll(ctx))
	util.AssertNoError(t, repo.Commit(ctx, "add foo"))

	dirty, err = repo.Dirty(ctx)
	util.AssertNoError(t, err)
	util.AssertEqual(t, dirty, false)

	head, err = repo.Head(ctx)
	util.AssertNoError(t, err)
	if head == "" {
		t.Error("expected a HEAD hash after commit")
	}
}

func TestChangedFiles(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	util.WriteFile(t, filepath.Join(repo.Root(), "skills", "keep", "SKILL.md"), "v1\n")
	util.WriteFile(t, filepath.Join(repo.Root(), "skills", "gone", "SKILL.md"), "bye\n")
	util.AssertNoError(t, repo.AddAll(ctx))
	util.AssertNoError(t, repo.Commit(ctx, "first"))
	first, err := repo.Head(ctx)
	util.AssertNoError(t, err)

	util.WriteFile(t, filepath.Join(repo.Root(), "skills", "keep", "SKILL.md"), "v2\n")
	util.WriteFile(t, filepath.Join(repo.Root(), "skills", "new", "SKILL.md"), "hi\n")
	util.AssertNoError(t, os.RemoveAll(filepath.Join(repo.Root(), "skills", "gone")))
	util.AssertNoError(t, repo.AddAll(ctx))
	util.AssertNoError(t, repo.Commit(ctx, "second"))
	second, err := repo.Head(ctx)
	util.AssertNoError(t, err)

	summary, err := repo.ChangedFiles(ctx, first, second)
	util.AssertNoError(t, err)

	if !contains(summary.Added, "skills/new/SKILL.md") {
		t.Errorf("added = %v, want skills/new/SKILL.md", summary.Added)
	}
	if !contains(summary.Updated, "skills/keep/SKILL.md") {
		t.Errorf("updated = %v, want skills/keep/SKILL.md", summary.Updated)
	}
	if !contains(summary.Deleted, "skills/gone/SKILL.md") {
		t.Errorf("deleted = %v, want skills/gone/SKILL.md", summary.Deleted)
	}
	if summary.Empty() {
		t.Error("summary should not be empty")
	}
}

func TestHasUpstream_FreshRepo(t *testing.T) {
	repo := newTestRepo(t)
	if repo.HasUpstream(context.Background()) {
		t.Error("fresh repo should have no upstream")
	}
}

func TestRunError_IncludesStderr(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.run(ctx, "checkout", "no-such-branch")
	if err == nil {
		t.Fatal("expected error for unknown branch")
	}
	if !strings.Contains(err.Error(), "no-such-branch") {
		t.Errorf("error should carry git's diagnostic output, got: %v", err)
	}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
