package obslog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestInitWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")
	log, err := Init(Config{Level: "debug", Format: "json", File: path})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if L() != log {
		t.Fatalf("L() not replaced by Init")
	}
	log.Info("move_applied")
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), `"msg":"move_applied"`) || !strings.Contains(string(raw), `"level":"info"`) {
		t.Fatalf("log file = %s", raw)
	}
}

func TestCloseReleasesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	if _, err := Init(Config{Format: "json", File: path}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	f := logFile
	if f == nil {
		t.Fatalf("log file not tracked")
	}
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := f.Write([]byte("x")); err == nil {
		t.Fatalf("log file still open after Close")
	}
	if err := Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	// L keeps working after Close
	L().Info("after_close")
}
