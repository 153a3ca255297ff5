package ui

import (
	"strings"

	"github.com/aymanbagabas/go-udiff"
)

// UnifiedDiff returns a unified diff between two texts, labeled with the
// given names (typically the two file paths being compared).
func UnifiedDiff(fromLabel, toLabel, from, to string) string {
	return udiff.Unified(fromLabel, toLabel, from, to)
}

// ColorizeDiff applies the ui palette to a unified diff, line by line.
// Returns the input unchanged when colors are disabled.
func ColorizeDiff(diff string) string {
	if !IsColorEnabled() {
		return diff
	}

	lines := strings.Split(diff, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			lines[i] = Bold(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = Info(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = Success(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = Error(line)
		}
	}
	return strings.Join(lines, "\n")
}
