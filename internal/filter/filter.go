// Package filter applies include/exclude glob policy to entry names.
// Patterns use shell-style globs with `**` support (doublestar); leading
// dots are not special-cased, so dotfile names match like any other.
package filter

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/hubsync/hubsync/internal/logging"
	"github.com/hubsync/hubsync/internal/model"
)

// Apply narrows names by the given filters. A name survives iff it
// matches at least one include pattern (an empty include list matches
// everything) and matches no exclude pattern (an empty exclude list
// matches nothing). Input order is preserved.
func Apply(names []string, filters model.Filters) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if Matches(name, filters) {
			out = append(out, name)
		}
	}
	return out
}

// Matches reports whether a single name survives the filters.
func Matches(name string, filters model.Filters) bool {
	if len(filters.Include) > 0 && !matchAny(filters.Include, name) {
		return false
	}
	return !matchAny(filters.Exclude, name)
}

func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			logging.Warn("invalid glob pattern ignored",
				logging.Path(pattern),
				logging.Err(err),
			)
			continue
		}
		if ok {
			return true
		}
	}
	return false
}
