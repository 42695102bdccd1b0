package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{" WARN ", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"loud", zapcore.InfoLevel},
	}
	for _, tc := range tests {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("%q: got %s want %s", tc.in, got, tc.want)
		}
	}
}

func TestNewWritesJSON(t *testing.T) {
	t.Setenv(LevelEnv, "")
	path := filepath.Join(t.TempDir(), "out.log")

	l, lvl, err := New(Options{Level: "warn", Output: path})
	if err != nil {
		t.Fatal(err)
	}
	l.Info("dropped")
	l.Warn("kept", zap.String("pdu", "m-send-req"))
	lvl.SetLevel(zapcore.DebugLevel)
	l.Debug("now visible")
	l.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(b)
	if strings.Contains(out, "dropped") {
		t.Fatalf("info logged at warn level:\n%s", out)
	}
	for _, want := range []string{`"msg":"kept"`, `"pdu":"m-send-req"`, `"msg":"now visible"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in:\n%s", want, out)
		}
	}
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv(LevelEnv, "error")
	_, lvl, err := New(Options{Level: "debug", Output: filepath.Join(t.TempDir(), "out.log")})
	if err != nil {
		t.Fatal(err)
	}
	if lvl.Level() != zapcore.ErrorLevel {
		t.Fatalf("level %s", lvl.Level())
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("nil logger")
	}
	l := zap.NewExample()
	if OrNop(l) != l {
		t.Fatal("logger replaced")
	}
}
