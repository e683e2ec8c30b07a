package log

import (
	"context"
	"log/slog"
	"net/http"

	"comanda/internal/core"
)

// ContextKey type for context keys
type ContextKey string

const (
	LoggerContextKey    ContextKey = "logger"
	RequestIDContextKey ContextKey = "request_id"
)

// Middleware stores logger in the request context.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), LoggerContextKey, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithRequestID returns ctx carrying the request ID and a logger tagged with it.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	ctx = context.WithValue(ctx, RequestIDContextKey, requestID)
	logger := FromContext(ctx).With(FieldRequestID, requestID)
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// RequestID returns the request ID stored by WithRequestID, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDContextKey).(string)
	return id
}

// FromContext extracts a logger from the request context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogHTTPEnd logs a finished request at a level matching its status code.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
		WithHTTPResponse(statusCode, durationMs).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)
	if id := RequestID(ctx); id != "" {
		fields.WithRequestID(id)
	}

	sl.logger.Logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogProductCreated(ctx context.Context, p core.Product) {
	fields := NewFields().
		WithProduct(p).
		WithOperation(OpCreate).
		WithComponent(ComponentProduct)

	sl.logger.Logger.InfoContext(ctx, "Product created", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogComandaClosed(ctx context.Context, co core.Checkout) {
	fields := NewFields().
		WithCheckout(co).
		WithOperation(OpClose).
		WithComponent(ComponentCashier)

	sl.logger.Logger.InfoContext(ctx, "Comanda closed", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogSangriaCreated(ctx context.Context, s core.Sangria) {
	fields := NewFields().
		WithSangria(s).
		WithOperation(OpCreate).
		WithComponent(ComponentCashier)

	sl.logger.Logger.InfoContext(ctx, "Sangria registered", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogSearch(ctx context.Context, term, status string, results int) {
	fields := NewFields().
		WithSearch(term, status, results).
		WithOperation(OpSearch).
		WithComponent(ComponentSearch)

	sl.logger.Logger.DebugContext(ctx, "Comandas filtered", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	all := fields.
		WithError(err).
		WithOperation(operation).
		WithComponent(component)

	sl.logger.Logger.ErrorContext(ctx, msg, all.ToSlice()...)
}
