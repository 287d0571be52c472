package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with storefront-specific helpers
type Logger struct {
	*slog.Logger
}

// New creates a logger writing to stdout. Level comes from LOG_LEVEL.
func New() *Logger {
	return NewWithWriter(os.Stdout, os.Getenv("LOG_LEVEL"))
}

// NewWithWriter creates a logger writing to w at the given level
func NewWithWriter(w io.Writer, levelStr string) *Logger {
	level := getLogLevel(levelStr)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Text for local development, JSON everywhere else
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("request_id", requestID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
		slog.String("request_id", c.GetString("request_id")),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// Storefront logging methods

// LogCheckoutStarted logs a cart handed off to checkout
func (l *Logger) LogCheckoutStarted(ctx context.Context, checkoutID, eventID string, items int) {
	l.Logger.InfoContext(ctx,
		"Checkout Started",
		slog.String("checkout_id", checkoutID),
		slog.String("event_id", eventID),
		slog.Int("items", items),
	)
}

// LogOrderSubmitted logs a submission that moved a checkout into processing
func (l *Logger) LogOrderSubmitted(ctx context.Context, checkoutID string, attempt int, total string) {
	l.Logger.InfoContext(ctx,
		"Order Submitted",
		slog.String("checkout_id", checkoutID),
		slog.Int("attempt", attempt),
		slog.String("total", total),
	)
}

// LogSubmitDropped logs a submit that arrived while another was in flight
func (l *Logger) LogSubmitDropped(ctx context.Context, checkoutID string) {
	l.Logger.WarnContext(ctx,
		"Duplicate Submit Dropped",
		slog.String("checkout_id", checkoutID),
	)
}

// LogOrderOutcome logs the terminal state of one attempt
func (l *Logger) LogOrderOutcome(ctx context.Context, checkoutID, orderID, status, reason string) {
	attrs := []any{
		slog.String("checkout_id", checkoutID),
		slog.String("order_id", orderID),
		slog.String("status", status),
	}
	if reason != "" {
		attrs = append(attrs, slog.String("reason", reason))
		l.Logger.WarnContext(ctx, "Order Outcome", attrs...)
		return
	}
	l.Logger.InfoContext(ctx, "Order Outcome", attrs...)
}

// LogPaymentCallback logs a settlement message from the payment provider
func (l *Logger) LogPaymentCallback(ctx context.Context, orderID, reference, status string) {
	l.Logger.InfoContext(ctx,
		"Payment Callback",
		slog.String("order_id", orderID),
		slog.String("reference", reference),
		slog.String("status", status),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// LogCacheError logs a cache failure that was tolerated
func (l *Logger) LogCacheError(ctx context.Context, key string, err error) {
	l.Logger.WarnContext(ctx,
		"Cache Error",
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// Discard returns a logger that drops everything, for tests
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}
