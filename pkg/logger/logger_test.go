package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGetLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, getLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, getLogLevel("warning"))
	assert.Equal(t, slog.LevelError, getLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, getLogLevel(""))
}

func TestOrderOutcomeLevels(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info")

	l.LogOrderOutcome(context.Background(), "chk", "ord", "completed", "")
	assert.Contains(t, buf.String(), `"level":"INFO"`)
	assert.Contains(t, buf.String(), `"order_id":"ord"`)

	buf.Reset()
	l.LogOrderOutcome(context.Background(), "chk", "ord", "failed", "timeout")
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), `"reason":"timeout"`)
}

func TestWithError(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info").WithError(errors.New("redis down"))
	l.Info("cache skipped")
	assert.Contains(t, buf.String(), `"error":"redis down"`)
}
