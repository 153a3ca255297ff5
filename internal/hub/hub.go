// Package hub maps the canonical git-backed repository onto the
// filesystem: one subdirectory per artifact type, one named entry per
// skill or command.
package hub

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hubsync/hubsync/internal/materialize"
	"github.com/hubsync/hubsync/internal/model"
)

// Layout locates artifact type roots inside a hub repo.
type Layout struct {
	// Root is the hub repo's working tree.
	Root string
}

// NewLayout creates a layout over the given hub root.
func NewLayout(root string) Layout {
	return Layout{Root: root}
}

// Dir returns the canonical subdirectory for an artifact type.
func (l Layout) Dir(t model.ArtifactType) string {
	return filepath.Join(l.Root, t.String())
}

// EntryPath returns the path of a named entry of an artifact type.
func (l Layout) EntryPath(t model.ArtifactType, name string) string {
	return filepath.Join(l.Dir(t), name)
}

// Ensure creates the hub root and every artifact type subdirectory.
func (l Layout) Ensure() error {
	for _, t := range model.AllArtifactTypes() {
		if err := os.MkdirAll(l.Dir(t), materialize.DirPerm); err != nil {
			return fmt.Errorf("failed to create hub directory %q: %w", l.Dir(t), err)
		}
	}
	return nil
}

// ListEntries returns the sorted base names of the top-level children
// of dir. Hidden entries (.git, .gitkeep, .DS_Store) are not artifact
// entries and are skipped. A missing directory yields no entries, not
// an error.
func ListEntries(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %q: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
