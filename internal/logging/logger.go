// Package logging defines the structured-logging interface used across
// StudyShare and its slog and zap implementations.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "file uploaded", "path", path, "user_id", userID)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

const (
	BackendSlog = "slog"
	BackendZap  = "zap"

	FormatJSON = "json"
	FormatText = "text"
)

// New builds a Logger for the given backend ("slog" or "zap") writing to w.
// format selects JSON or human-readable output; level is one of
// debug, info, warn, error.
func New(backend, format, level string, w io.Writer) (Logger, error) {
	switch strings.ToLower(backend) {
	case "", BackendSlog:
		return newSlog(format, level, w), nil
	case BackendZap:
		return newZap(format, level, w)
	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}

func newSlog(format, level string, w io.Writer) *SlogLogger {
	opts := &slog.HandlerOptions{Level: slogLevel(level)}

	var h slog.Handler
	if strings.ToLower(format) == FormatText {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return NewSlogLogger(slog.New(h))
}

func newZap(format, level string, w io.Writer) (*ZapLogger, error) {
	lvl, err := zapcore.ParseLevel(orDefault(level, "info"))
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if strings.ToLower(format) == FormatText {
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), lvl)
	return NewZapLogger(zap.New(core)), nil
}

func slogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
