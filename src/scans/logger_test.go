package scans

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

// captureLog redirects logger output to a buffer for the duration of a test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogOutput(&buf)
	old := getLevel()
	t.Cleanup(func() {
		SetLogOutput(os.Stderr)
		currentLevel.Store(int32(old))
	})
	return &buf
}

// TestLogLevelFiltering checks that messages below the current level are
// dropped and the level prefix is present on those that pass.
func TestLogLevelFiltering(t *testing.T) {
	buf := captureLog(t)
	SetLogLevel("warn")
	Debugf("quiet %d", 1)
	Infof("quiet %d", 2)
	Warnf("loud %d", 3)
	Errorf("loud %d", 4)
	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Fatalf("suppressed levels leaked: %q", out)
	}
	if !strings.Contains(out, "[WARN] loud 3") || !strings.Contains(out, "[ERROR] loud 4") {
		t.Fatalf("missing expected entries: %q", out)
	}
}

// TestSetLogLevelAliases verifies "warning" maps to warn and unknown names
// leave the level untouched.
func TestSetLogLevelAliases(t *testing.T) {
	captureLog(t)
	SetLogLevel("warning")
	if getLevel() != LevelWarn {
		t.Fatalf("level = %d, want LevelWarn", getLevel())
	}
	SetLogLevel("nonsense")
	if getLevel() != LevelWarn {
		t.Fatalf("unknown name changed level to %d", getLevel())
	}
}

// TestLogfLiteralPercent ensures messages logged without args keep literal
// percent signs instead of producing %!(MISSING) artifacts.
func TestLogfLiteralPercent(t *testing.T) {
	buf := captureLog(t)
	SetLogLevel("info")
	msg := "loaded 90%_done.txt"
	Infof(msg)
	if !strings.Contains(buf.String(), "90%_done.txt") {
		t.Fatalf("percent mangled: %q", buf.String())
	}
	if strings.Contains(buf.String(), "MISSING") {
		t.Fatalf("formatting artifact: %q", buf.String())
	}
}
