// Package logging builds the zap logger shared by the gsmd tools.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LevelEnv overrides the configured level when set.
const LevelEnv = "GSMD_LOG_LEVEL"

type Options struct {
	Level  string // debug, info, warn, error
	Format string // json or console
	Output string // a path, stdout or stderr; defaults to stderr
}

// New builds a logger from opts. The returned AtomicLevel can change the
// level at runtime.
func New(opts Options) (*zap.Logger, zap.AtomicLevel, error) {
	level := opts.Level
	if v := os.Getenv(LevelEnv); v != "" {
		level = v
	}
	atomicLVL := zap.NewAtomicLevelAt(ParseLevel(level))

	encoding := "json"
	if strings.EqualFold(strings.TrimSpace(opts.Format), "console") {
		encoding = "console"
	}
	output := opts.Output
	if output == "" {
		output = "stderr"
	}

	cfg := zap.Config{
		Level:       atomicLVL,
		Development: false,
		Encoding:    encoding,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stack",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	}
	if encoding == "console" {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	l, err := cfg.Build(zap.AddCaller())
	if err != nil {
		return nil, atomicLVL, err
	}
	return l, atomicLVL, nil
}

// ParseLevel maps a level name to a zap level. Unknown names give info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
