package materialize

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/hubsync/hubsync/internal/logging"
)

// backupStamp is the layout for timestamped backup subtrees.
const backupStamp = "20060102-150405"

// BackupThenRemove copies src (preserving symlinks) into a timestamped
// subtree under backupRoot, then deletes src. It returns the path the
// backup was written to. Used before any destructive overwrite.
func BackupThenRemove(src, backupRoot string) (string, error) {
	stamp := time.Now().Format(backupStamp)
	dst := filepath.Join(backupRoot, stamp, filepath.Base(src))

	// Repeated replacements within one second land in the same stamp
	// directory; suffix until the slot is free.
	for n := 1; ; n++ {
		if _, err := os.Lstat(dst); os.IsNotExist(err) {
			break
		}
		dst = filepath.Join(backupRoot, stamp, fmt.Sprintf("%s.%d", filepath.Base(src), n))
	}

	if err := Copy(src, dst); err != nil {
		return "", fmt.Errorf("failed to back up %q: %w", src, err)
	}
	if err := Remove(src); err != nil {
		return "", err
	}

	logging.Info("backed up entry",
		logging.Path(src),
		logging.Operation("backup"),
	)
	return dst, nil
}

// PruneBackups keeps the newest max timestamped backup subtrees under
// backupRoot and removes the rest. A max of zero or less disables
// pruning. A missing backup root is a no-op.
func PruneBackups(backupRoot string, max int) error {
	if max <= 0 {
		return nil
	}

	entries, err := os.ReadDir(backupRoot)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read backup root %q: %w", backupRoot, err)
	}

	var stamps []string
	for _, entry := range entries {
		if entry.IsDir() {
			stamps = append(stamps, entry.Name())
		}
	}
	if len(stamps) <= max {
		return nil
	}

	// Stamp names sort chronologically; oldest first.
	sort.Strings(stamps)
	for _, stamp := range stamps[:len(stamps)-max] {
		if err := Remove(filepath.Join(backupRoot, stamp)); err != nil {
			return err
		}
		logging.Debug("pruned backup", logging.Path(filepath.Join(backupRoot, stamp)))
	}
	return nil
}
