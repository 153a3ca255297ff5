// Package materialize performs the filesystem effects of reconciliation:
// symlink creation, recursive copies, backups and removal. Callers decide
// what should happen; this package only executes it. Every operation
// ensures the destination's parent directory chain exists first.
package materialize

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hubsync/hubsync/internal/logging"
)

const (
	// DirPerm is the permission for created directories (rwxr-x---).
	DirPerm = 0o750
)

// CreateLink creates a symbolic link at dst pointing at src. The parent
// directory chain of dst is created as needed. The caller guarantees dst
// does not exist.
func CreateLink(src, dst string) error {
	if err := ensureParent(dst); err != nil {
		return err
	}
	if err := os.Symlink(src, dst); err != nil {
		return fmt.Errorf("failed to create symlink %q -> %q: %w", dst, src, err)
	}
	logging.Debug("created symlink", logging.Path(dst))
	return nil
}

// Copy recursively copies src to dst. Symlinks within the tree are
// preserved as symlinks with the same target text, not dereferenced.
func Copy(src, dst string) error {
	if err := ensureParent(dst); err != nil {
		return err
	}
	return copyTree(src, dst, false)
}

// CopyDereference recursively copies src to dst, resolving every symlink
// (including src itself) to its real target first, so the destination
// contains only plain files and directories.
func CopyDereference(src, dst string) error {
	if err := ensureParent(dst); err != nil {
		return err
	}
	return copyTree(src, dst, true)
}

// Remove deletes the entry at path recursively. Removing a path that
// does not exist is a no-op. Symlinks are removed as entries, never
// followed.
func Remove(path string) error {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat %q: %w", path, err)
	}

	if info.IsDir() {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove directory %q: %w", path, err)
		}
	} else {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove %q: %w", path, err)
		}
	}
	logging.Debug("removed entry", logging.Path(path))
	return nil
}

func ensureParent(path string) error {
	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, DirPerm); err != nil {
		return fmt.Errorf("failed to create parent directory %q: %w", parent, err)
	}
	return nil
}

// copyTree copies a single entry (file, directory or symlink) from src
// to dst. With deref set, symlinks are resolved before copying.
func copyTree(src, dst string, deref bool) error {
	info, err := os.Lstat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source %q: %w", src, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		if !deref {
			target, err := os.Readlink(src)
			if err != nil {
				return fmt.Errorf("failed to read symlink %q: %w", src, err)
			}
			if err := os.Symlink(target, dst); err != nil {
				return fmt.Errorf("failed to recreate symlink %q: %w", dst, err)
			}
			return nil
		}
		resolved, err := filepath.EvalSymlinks(src)
		if err != nil {
			return fmt.Errorf("failed to resolve symlink %q: %w", src, err)
		}
		return copyTree(resolved, dst, deref)
	}

	if info.IsDir() {
		return copyDir(src, dst, info, deref)
	}
	return copyFile(src, dst, info)
}

func copyDir(src, dst string, info os.FileInfo, deref bool) error {
	if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to create destination directory %q: %w", dst, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("failed to read directory %q: %w", src, err)
	}
	for _, entry := range entries {
		srcChild := filepath.Join(src, entry.Name())
		dstChild := filepath.Join(dst, entry.Name())
		if err := copyTree(srcChild, dstChild, deref); err != nil {
			return err
		}
	}
	return nil
}

// copyFile copies a single file from src to dst, preserving permissions.
func copyFile(src, dst string, info os.FileInfo) error {
	// #nosec G304 - src comes from directory enumeration of trusted roots
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source %q: %w", src, err)
	}
	defer func() { _ = srcFile.Close() }()

	// #nosec G302 G304 - preserving source permissions, dst is derived from trusted roots
	dstFile, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination %q: %w", dst, err)
	}
	defer func() { _ = dstFile.Close() }()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy content to %q: %w", dst, err)
	}
	return nil
}
