package materialize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hubsync/hubsync/internal/identity"
	"github.com/hubsync/hubsync/internal/util"
)

func TestCreateLink(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "repo", "foo")
	util.WriteFile(t, filepath.Join(src, "SKILL.md"), "# foo\n")

	dst := filepath.Join(dir, "local", "deep", "foo")
	util.AssertNoError(t, CreateLink(src, dst))

	if !identity.LinkedTo(dst, src) {
		t.Error("created link does not resolve to source")
	}
}

func TestCopy_PreservesSymlinks(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	util.WriteFile(t, filepath.Join(src, "SKILL.md"), "# skill\n")
	util.Symlink(t, "../shared/helper.sh", filepath.Join(src, "helper.sh"))

	dst := filepath.Join(dir, "dst")
	util.AssertNoError(t, Copy(src, dst))

	target, err := os.Readlink(filepath.Join(dst, "helper.sh"))
	util.AssertNoError(t, err)
	util.AssertEqual(t, target, "../shared/helper.sh")

	if !identity.Equal(identity.Classify(src), identity.Classify(dst)) {
		t.Error("copy should preserve directory identity")
	}
}

func TestCopy_SingleFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "cmd.md")
	util.WriteFile(t, src, "run tests\n")

	dst := filepath.Join(dir, "nested", "cmd.md")
	util.AssertNoError(t, Copy(src, dst))
	util.AssertEqual(t, util.ReadFile(t, dst), "run tests\n")
}

func TestCopyDereference(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real")
	util.WriteFile(t, filepath.Join(real, "SKILL.md"), "# real\n")

	src := filepath.Join(dir, "link")
	util.Symlink(t, real, src)

	dst := filepath.Join(dir, "dst")
	util.AssertNoError(t, CopyDereference(src, dst))

	info, err := os.Lstat(dst)
	util.AssertNoError(t, err)
	if info.Mode()&os.ModeSymlink != 0 {
		t.Fatal("destination should be a plain directory, not a symlink")
	}
	util.AssertEqual(t, util.ReadFile(t, filepath.Join(dst, "SKILL.md")), "# real\n")
}

func TestCopyDereference_InnerLinks(t *testing.T) {
	dir := t.TempDir()
	shared := filepath.Join(dir, "shared.md")
	util.WriteFile(t, shared, "shared\n")

	src := filepath.Join(dir, "src")
	util.WriteFile(t, filepath.Join(src, "SKILL.md"), "# s\n")
	util.Symlink(t, shared, filepath.Join(src, "ref.md"))

	dst := filepath.Join(dir, "dst")
	util.AssertNoError(t, CopyDereference(src, dst))

	info, err := os.Lstat(filepath.Join(dst, "ref.md"))
	util.AssertNoError(t, err)
	if info.Mode()&os.ModeSymlink != 0 {
		t.Error("inner symlink should have been dereferenced")
	}
	util.AssertEqual(t, util.ReadFile(t, filepath.Join(dst, "ref.md")), "shared\n")
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()

	// Absent path is a no-op.
	util.AssertNoError(t, Remove(filepath.Join(dir, "nope")))

	// Directory.
	sub := filepath.Join(dir, "sub")
	util.WriteFile(t, filepath.Join(sub, "f"), "x")
	util.AssertNoError(t, Remove(sub))
	util.AssertNotExists(t, sub)

	// Symlink is removed as an entry, the target survives.
	target := filepath.Join(dir, "target")
	util.WriteFile(t, filepath.Join(target, "f"), "x")
	link := filepath.Join(dir, "link")
	util.Symlink(t, target, link)
	util.AssertNoError(t, Remove(link))
	util.AssertNotExists(t, link)
	util.AssertExists(t, target)
}

func TestBackupThenRemove(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "local", "foo")
	util.WriteFile(t, filepath.Join(src, "SKILL.md"), "local version\n")

	backupRoot := filepath.Join(dir, "backups")
	backupPath, err := BackupThenRemove(src, backupRoot)
	util.AssertNoError(t, err)

	util.AssertNotExists(t, src)
	util.AssertEqual(t, util.ReadFile(t, filepath.Join(backupPath, "SKILL.md")), "local version\n")
}

func TestBackupThenRemove_CollisionSuffix(t *testing.T) {
	dir := t.TempDir()
	backupRoot := filepath.Join(dir, "backups")

	first := filepath.Join(dir, "a", "foo")
	util.WriteFile(t, filepath.Join(first, "f"), "1")
	second := filepath.Join(dir, "b", "foo")
	util.WriteFile(t, filepath.Join(second, "f"), "2")

	p1, err := BackupThenRemove(first, backupRoot)
	util.AssertNoError(t, err)
	p2, err := BackupThenRemove(second, backupRoot)
	util.AssertNoError(t, err)

	if p1 == p2 {
		t.Errorf("same-name backups must not collide: %s", p1)
	}
	util.AssertExists(t, p1)
	util.AssertExists(t, p2)
}

func TestPruneBackups(t *testing.T) {
	root := t.TempDir()
	for _, stamp := range []string{"20240101-120000", "20240102-120000", "20240103-120000"} {
		util.WriteFile(t, filepath.Join(root, stamp, "foo", "f"), "x")
	}

	util.AssertNoError(t, PruneBackups(root, 2))

	util.AssertNotExists(t, filepath.Join(root, "20240101-120000"))
	util.AssertExists(t, filepath.Join(root, "20240102-120000"))
	util.AssertExists(t, filepath.Join(root, "20240103-120000"))

	// max<=0 disables pruning; missing root is a no-op.
	util.AssertNoError(t, PruneBackups(root, 0))
	util.AssertNoError(t, PruneBackups(filepath.Join(root, "absent"), 5))
}
