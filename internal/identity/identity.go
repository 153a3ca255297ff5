// Package identity computes content-addressed identity summaries for
// filesystem entries. Equality is always content- or target-based;
// timestamps are never consulted. Paths that cannot be read classify as
// missing — unreadable is deliberately treated the same as absent.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Kind tags an identity summary.
type Kind string

const (
	// KindMissing means no entry exists at the path (or it is unreadable).
	KindMissing Kind = "missing"
	// KindSymlink means the entry is a symbolic link.
	KindSymlink Kind = "symlink"
	// KindFile means the entry is a regular file.
	KindFile Kind = "file"
	// KindDirectory means the entry is a directory.
	KindDirectory Kind = "directory"
)

// Summary is a tagged union describing the identity of one filesystem
// entry. Only the fields relevant to Kind are populated.
type Summary struct {
	Kind Kind

	// Target is the link target text, for KindSymlink. The target is not
	// resolved further, so dangling links still have a stable identity.
	Target string

	// Digest is the hex sha256 content digest, for KindFile and
	// KindDirectory.
	Digest string

	// Size is the file size in bytes, for KindFile.
	Size int64

	// FileCount is the number of files and symlinks in the tree, for
	// KindDirectory.
	FileCount int
}

// fieldSep separates hashed fields so that path/content boundaries
// cannot collide.
var fieldSep = []byte{0}

// Classify computes the identity summary for the entry at path.
// It never returns an error: absent or unreadable paths yield a
// missing summary.
func Classify(path string) Summary {
	info, err := os.Lstat(path)
	if err != nil {
		return Summary{Kind: KindMissing}
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			return Summary{Kind: KindMissing}
		}
		return Summary{Kind: KindSymlink, Target: target}

	case info.IsDir():
		return classifyDir(path)

	case info.Mode().IsRegular():
		digest, err := hashFile(path)
		if err != nil {
			return Summary{Kind: KindMissing}
		}
		return Summary{Kind: KindFile, Digest: digest, Size: info.Size()}

	default:
		// Sockets, devices and other irregular entries: can't tell.
		return Summary{Kind: KindMissing}
	}
}

// Equal reports whether two summaries describe the same logical entry.
// Two missing summaries are always equal.
func Equal(a, b Summary) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindMissing:
		return true
	case KindSymlink:
		return a.Target == b.Target
	case KindFile:
		return a.Digest == b.Digest && a.Size == b.Size
	case KindDirectory:
		return a.Digest == b.Digest
	default:
		return false
	}
}

// LinkedTo reports whether linkPath is a symlink whose resolved real
// path equals the resolved real path of targetPath. A correctly linked
// entry is exempt from conflict handling regardless of content.
func LinkedTo(linkPath, targetPath string) bool {
	info, err := os.Lstat(linkPath)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return false
	}
	resolvedLink, err := filepath.EvalSymlinks(linkPath)
	if err != nil {
		return false
	}
	resolvedTarget, err := filepath.EvalSymlinks(targetPath)
	if err != nil {
		return false
	}
	return resolvedLink == resolvedTarget
}

// Label returns a short human-readable description of the summary,
// suitable for status output.
func (s Summary) Label() string {
	switch s.Kind {
	case KindMissing:
		return "missing"
	case KindSymlink:
		return fmt.Sprintf("symlink -> %s", s.Target)
	case KindFile:
		return fmt.Sprintf("file %s (%d bytes)", shortDigest(s.Digest), s.Size)
	case KindDirectory:
		return fmt.Sprintf("directory %s (%d files)", shortDigest(s.Digest), s.FileCount)
	default:
		return string(s.Kind)
	}
}

func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}

func hashFile(path string) (string, error) {
	// #nosec G304 - path comes from directory enumeration of trusted roots
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// classifyDir digests a directory tree. Child relative paths are sorted
// lexicographically before hashing so the digest is independent of
// filesystem enumeration order. Symlinks inside the tree contribute
// their target text and are not dereferenced.
func classifyDir(root string) Summary {
	var rels []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rels = append(rels, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return Summary{Kind: KindMissing}
	}
	sort.Strings(rels)

	h := sha256.New()
	fileCount := 0
	for _, rel := range rels {
		h.Write([]byte(rel))
		h.Write(fieldSep)

		full := filepath.Join(root, filepath.FromSlash(rel))
		info, err := os.Lstat(full)
		if err != nil {
			return Summary{Kind: KindMissing}
		}

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			target, err := os.Readlink(full)
			if err != nil {
				return Summary{Kind: KindMissing}
			}
			h.Write([]byte("->" + target))
			fileCount++
		case info.IsDir():
			// The path itself is the contribution: empty directories
			// still affect the digest.
		default:
			// #nosec G304 - full is derived from the walked root
			f, err := os.Open(full)
			if err != nil {
				return Summary{Kind: KindMissing}
			}
			_, err = io.Copy(h, f)
			_ = f.Close()
			if err != nil {
				return Summary{Kind: KindMissing}
			}
			fileCount++
		}
		h.Write(fieldSep)
	}

	return Summary{
		Kind:      KindDirectory,
		Digest:    hex.EncodeToString(h.Sum(nil)),
		FileCount: fileCount,
	}
}
