package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hubsync/hubsync/internal/logging"
)

func TestNew_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Options{
		Level:  logging.LevelInfo,
		Output: &buf,
		JSON:   false,
	})

	logger.Info("test message", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("expected output to contain 'test message', got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("expected output to contain 'key=value', got: %s", output)
	}
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Options{
		Level:  logging.LevelInfo,
		Output: &buf,
		JSON:   true,
	})

	logger.Info("test message", "key", "value")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	if entry["msg"] != "test message" {
		t.Errorf("expected msg='test message', got: %v", entry["msg"])
	}
	if entry["key"] != "value" {
		t.Errorf("expected key='value', got: %v", entry["key"])
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Options{
		Level:  logging.LevelWarn,
		Output: &buf,
	})

	logger.Info("info message")
	logger.Warn("warn message")

	output := buf.String()
	if strings.Contains(output, "info message") {
		t.Errorf("info message should have been filtered, got: %s", output)
	}
	if !strings.Contains(output, "warn message") {
		t.Errorf("warn message should have been logged, got: %s", output)
	}
}

func TestAttributeHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Options{
		Level:  logging.LevelDebug,
		Output: &buf,
	})

	logger.Info("classified entry",
		logging.Agent("claude"),
		logging.Type("skills"),
		logging.Entry("code-review"),
		logging.Path("/tmp/hub/skills/code-review"),
		logging.Action("skip"),
		logging.Count(3),
	)

	output := buf.String()
	for _, want := range []string{
		"agent=claude",
		"type=skills",
		"entry=code-review",
		"action=skip",
		"count=3",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got: %s", want, output)
		}
	}
}

func TestContextRoundTrip(t *testing.T) {
	logger := logging.New(logging.Options{})

	ctx := logging.NewContext(context.Background(), logger)
	if got := logging.FromContext(ctx); got != logger {
		t.Error("FromContext did not return the attached logger")
	}
	if got := logging.FromContext(context.Background()); got != nil {
		t.Error("FromContext on empty context should return nil")
	}
}
