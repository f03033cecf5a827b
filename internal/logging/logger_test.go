package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subburn/internal/config"
	"subburn/internal/logging"
	"subburn/internal/services"
)

func TestConsoleLoggerFormatsHeaderAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf})
	require.NoError(t, err)

	logger = logging.NewComponentLogger(logger, "imagegen")
	logger.Info("images generated", logging.Int("generated", 3), logging.String(logging.FieldStage, "images"))

	out := buf.String()
	assert.Contains(t, out, "INFO  [imagegen] images: images generated generated=3\n")
	assert.NotContains(t, out, ".go:")
	assert.NotContains(t, out, "\x1b[")
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "console", Writer: &buf})
	require.NoError(t, err)

	logger.Debug("message with caller")
	assert.Contains(t, buf.String(), "logger_test.go:")
}

func TestConsoleLoggerHidesRunIDAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Writer: &buf})
	require.NoError(t, err)

	ctx := services.WithRunID(context.Background(), "run-123")
	logging.WithContext(ctx, logger).Info("hello")
	assert.NotContains(t, buf.String(), "run-123")
}

func TestJSONLoggerRenamesKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Writer: &buf})
	require.NoError(t, err)

	ctx := services.WithStage(services.WithRunID(context.Background(), "run-1"), "translate")
	logging.WithContext(ctx, logger).Info("done", logging.Int("segments", 2))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	assert.Equal(t, "info", payload["level"])
	assert.Equal(t, "done", payload["msg"])
	assert.Equal(t, "run-1", payload[logging.FieldRunID])
	assert.Equal(t, "translate", payload[logging.FieldStage])
	assert.Contains(t, payload, "ts")
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := logging.New(logging.Options{Format: "xml", Writer: &bytes.Buffer{}})
	require.Error(t, err)
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Writer: &buf})
	require.NoError(t, err)

	logging.WarnWithContext(logger, "image skipped", "image_soft_failure", logging.String(logging.FieldImpact, "segment has no image"))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	assert.Equal(t, "warn", payload["level"])
	assert.Equal(t, "image_soft_failure", payload[logging.FieldEventType])
	assert.Equal(t, "segment has no image", payload[logging.FieldImpact])
	assert.Equal(t, "rerun with --verbose and inspect `subburn logs`", payload[logging.FieldErrorHint])
}

func TestNewFromConfigWritesJSONLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg, false)
	require.NoError(t, err)
	logger.Info("written to file")

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "subburn.log"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"msg":"written to file"`))
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	assert.False(t, logger.Enabled(context.Background(), 0))
	logging.WarnWithContext(nil, "ignored", "noop")
}

func TestConsoleLoggerQuotesAndColours(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Writer: &buf, Color: true})
	require.NoError(t, err)

	logger.Warn("image skipped", logging.Segment(2), logging.String("prompt", `say "hi"`), logging.Seconds("start", 1.23456))
	out := buf.String()
	assert.Contains(t, out, "\x1b[33mWARN \x1b[0m")
	assert.Contains(t, out, "segment_index=\x1b[0m3")
	assert.Contains(t, out, "prompt=\x1b[0m\"say \\\"hi\\\"\"")
	assert.Contains(t, out, "start=\x1b[0m1.234")
}

func TestJSONLoggerRendersDurations(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Writer: &buf})
	require.NoError(t, err)

	logger.Info("retrying", logging.Duration("delay", 1500*time.Millisecond), logging.Error(errors.New("boom")))
	var payload map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	assert.Equal(t, "1.5s", payload["delay"])
	assert.Equal(t, "boom", payload["error"])
}

func TestWithContextAddsRunAndStage(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Writer: &buf})
	require.NoError(t, err)

	ctx := services.WithStage(services.WithRunID(context.Background(), "run-9"), "encoding")
	logging.WithContext(ctx, logger).Info("encoded")
	logging.WithContext(context.Background(), logger).Info("bare")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var tagged, bare map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &tagged))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &bare))
	assert.Equal(t, "run-9", tagged[logging.FieldRunID])
	assert.Equal(t, "encoding", tagged[logging.FieldStage])
	assert.NotContains(t, bare, logging.FieldRunID)
	assert.NotContains(t, bare, logging.FieldStage)
}

func TestArgsPreservesAttrs(t *testing.T) {
	args := logging.Args(logging.String("a", "1"), logging.Int("b", 2))
	require.Len(t, args, 2)
	first, ok := args[0].(logging.Attr)
	require.True(t, ok)
	assert.Equal(t, "a", first.Key)
	assert.Empty(t, logging.Args())
}
