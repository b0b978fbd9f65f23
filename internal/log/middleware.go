package log

import (
	"context"
	"log/slog"
	"net/http"
)

type ContextKey string

const (
	// LoggerContextKey is the context key for the request-scoped logger
	LoggerContextKey ContextKey = "logger"
)

// Middleware stores logger in every request context.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithLogger(r.Context(), logger)))
		})
	}
}

func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts the request logger, falling back to the default one.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: ComponentApp,
	}
}

// RequestIDMiddleware adds the request id to the context logger.
func RequestIDMiddleware(extractRequestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := extractRequestID(r)
			if requestID == "" {
				next.ServeHTTP(w, r)
				return
			}
			logger := FromContext(r.Context()).With(FieldRequestID, requestID)
			next.ServeHTTP(w, r.WithContext(WithLogger(r.Context(), logger)))
		})
	}
}

// StructuredLogger provides the domain log events shared by handlers.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogHTTPError records an error response with its stable code. 5xx are
// logged at Error, everything else at Warn.
func (sl *StructuredLogger) LogHTTPError(ctx context.Context, r *http.Request, status int, code string, err error) {
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, "").
		WithError(err, code)
	fields[FieldStatusCode] = status
	sl.logger.Log(ctx, level, "Request failed", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogExpenseRecorded(ctx context.Context, userID string, id int64, amount float64, category, paymentMode string) {
	fields := NewFields().
		WithUser(userID).
		WithExpense(id, amount, category, paymentMode).
		WithOperation(OpAppend)
	sl.logger.WithComponent(ComponentExpense).InfoContext(ctx, "Expense recorded", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogAuth(ctx context.Context, op, userID string) {
	fields := NewFields().
		WithUser(userID).
		WithOperation(op)
	sl.logger.WithComponent(ComponentAuth).InfoContext(ctx, "Authentication succeeded", fields.ToSlice()...)
}
