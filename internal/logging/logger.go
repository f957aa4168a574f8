// Package logging is the structured logger shared by the terminal client and
// the backend host, backed by log/slog.
package logging

import (
	"context"
	"log/slog"
	"strings"
)

// Logger takes key-value pairs after the message:
//
//	log.Warn(ctx, "display name lookup failed", "email", email, "error", err)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger carrying args on every record.
	With(args ...any) Logger
}

// ParseLevel maps "debug", "info", "warn" or "error" (any case) to a slog
// level. Anything else is Info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(s)))); err != nil {
		return slog.LevelInfo
	}
	return l
}
