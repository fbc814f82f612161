// Package logger configures the process-wide zerolog logger and carries
// request-scoped fields through context.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	userIDKey
)

var base = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init sets the global level and output format ("json" or "console").
func Init(level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var out io.Writer = os.Stdout
	if strings.EqualFold(format, "console") {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	base = zerolog.New(out).With().Timestamp().Str("service", "lounge-api").Logger()
}

// Get returns the process logger.
func Get() *zerolog.Logger { return &base }

// WithContext returns the process logger enriched with the request and user
// IDs stored in ctx, if any.
func WithContext(ctx context.Context) *zerolog.Logger {
	l := base.With()
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		l = l.Str("request_id", id)
	}
	if uid, ok := ctx.Value(userIDKey).(uint64); ok && uid != 0 {
		l = l.Uint64("user_id", uid)
	}
	out := l.Logger()
	return &out
}

// ContextWithRequestID stores id for WithContext.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// ContextWithUserID stores the authenticated user for WithContext.
func ContextWithUserID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// RequestID returns the request ID stored in ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// NewRequestID generates a random request identifier.
func NewRequestID() string { return uuid.NewString() }
