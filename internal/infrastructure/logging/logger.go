package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"
	"time"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request IDs
	RequestIDKey contextKey = "request_id"
	// ActorIDKey is the context key for vendor/customer/admin IDs
	ActorIDKey contextKey = "actor_id"
	// RunIDKey is the context key for actor run IDs
	RunIDKey contextKey = "run_id"
)

// contextKeys are copied onto every record, in this order, when present.
var contextKeys = []contextKey{RequestIDKey, ActorIDKey, RunIDKey}

// Config holds logger configuration
type Config struct {
	Level       string // debug, info, warn, error
	Format      string // json, text
	Output      io.Writer
	AddSource   bool
	ServiceName string
	Environment string
}

// ParseLevel maps a configured level name to a slog level. Unknown names
// fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the service logger. Records carry the service name, the
// environment and any ids stored in the context.
func NewLogger(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       ParseLevel(cfg.Level),
		AddSource:   cfg.AddSource,
		ReplaceAttr: formatTime,
	}

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(output, opts)
	} else {
		handler = slog.NewJSONHandler(output, opts)
	}

	return slog.New(&contextHandler{
		handler: handler,
		static: []slog.Attr{
			slog.String("service", cfg.ServiceName),
			slog.String("environment", cfg.Environment),
		},
	})
}

func formatTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		return slog.String(a.Key, a.Value.Time().Format(time.RFC3339Nano))
	}
	return a
}

// contextAttrs returns the ids found in ctx.
func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	for _, key := range contextKeys {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			attrs = append(attrs, slog.String(string(key), v))
		}
	}
	return attrs
}

type contextHandler struct {
	handler slog.Handler
	static  []slog.Attr
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(h.static...)
	r.AddAttrs(contextAttrs(ctx)...)
	return h.handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{handler: h.handler.WithAttrs(attrs), static: h.static}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{handler: h.handler.WithGroup(name), static: h.static}
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithActorID adds a vendor, customer or admin ID to the context
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ActorIDKey, actorID)
}

// WithRunID adds an actor run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	requestID, _ := ctx.Value(RequestIDKey).(string)
	return requestID
}

// LoggerFromContext returns logger with the context ids bound as attributes.
// Use it when the logger outlives ctx or is not built by NewLogger.
func LoggerFromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	attrs := contextAttrs(ctx)
	if len(attrs) == 0 {
		return logger
	}
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return logger.With(args...)
}

// LogPanic records a recovered panic with the goroutine stack.
func LogPanic(ctx context.Context, logger *slog.Logger, panicValue any, attrs ...any) {
	args := append([]any{"panic", panicValue}, attrs...)
	args = append(args, "stack_trace", string(debug.Stack()))
	LoggerFromContext(ctx, logger).Error("panic recovered", args...)
}

// RequestEntry describes one served HTTP request.
type RequestEntry struct {
	Method    string
	Path      string
	Query     string
	Status    int
	Duration  time.Duration
	Bytes     int64
	ClientIP  string
	UserAgent string
}

// HTTPRequestLogger writes one access log line per request. Server errors
// log at error, client errors at warn, the rest at info.
type HTTPRequestLogger struct {
	Logger *slog.Logger
}

// LogRequest logs an HTTP request
func (l *HTTPRequestLogger) LogRequest(ctx context.Context, e RequestEntry) {
	attrs := []any{
		"method", e.Method,
		"path", e.Path,
		"status", e.Status,
		"duration_ms", e.Duration.Milliseconds(),
		"bytes", e.Bytes,
		"client_ip", e.ClientIP,
	}
	if e.Query != "" {
		attrs = append(attrs, "query", e.Query)
	}
	if e.UserAgent != "" {
		attrs = append(attrs, "user_agent", e.UserAgent)
	}

	level := slog.LevelInfo
	switch {
	case e.Status >= 500:
		level = slog.LevelError
	case e.Status >= 400:
		level = slog.LevelWarn
	}
	l.Logger.Log(ctx, level, "http request", attrs...)
}
