package ui

import (
	"strings"
	"testing"
)

func TestStatusHelpers(t *testing.T) {
	DisableColors()
	defer EnableColors()

	tests := []struct {
		name string
		fn   func(string) string
		sym  string
	}{
		{"success", StatusSuccess, SymbolSuccess},
		{"error", StatusError, SymbolError},
		{"warning", StatusWarning, SymbolWarning},
		{"skipped", StatusSkipped, SymbolSkipped},
		{"linked", StatusLinked, SymbolLinked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(""); got != tt.sym {
				t.Errorf("%s(\"\") = %q, want %q", tt.name, got, tt.sym)
			}
			if got := tt.fn("msg"); got != tt.sym+" msg" {
				t.Errorf("%s(\"msg\") = %q, want %q", tt.name, got, tt.sym+" msg")
			}
		})
	}
}

func TestUnifiedDiff(t *testing.T) {
	diff := UnifiedDiff("repo/foo", "local/foo", "repo\n", "local\n")

	if !strings.Contains(diff, "-repo") {
		t.Errorf("diff missing removed line:\n%s", diff)
	}
	if !strings.Contains(diff, "+local") {
		t.Errorf("diff missing added line:\n%s", diff)
	}
	if !strings.Contains(diff, "repo/foo") || !strings.Contains(diff, "local/foo") {
		t.Errorf("diff missing labels:\n%s", diff)
	}
}

func TestUnifiedDiff_Identical(t *testing.T) {
	if diff := UnifiedDiff("a", "b", "same\n", "same\n"); diff != "" {
		t.Errorf("expected empty diff for identical content, got:\n%s", diff)
	}
}

func TestColorizeDiff_NoColor(t *testing.T) {
	DisableColors()
	defer EnableColors()

	in := "--- a\n+++ b\n@@ -1 +1 @@\n-repo\n+local\n"
	if got := ColorizeDiff(in); got != in {
		t.Errorf("ColorizeDiff should be identity with colors disabled")
	}
}
