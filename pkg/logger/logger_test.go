package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	logger := newLogger()

	assert.NotNil(t, logger)
	assert.Equal(t, os.Stderr, logger.Out)

	formatter, ok := logger.Formatter.(*logrus.TextFormatter)
	require.True(t, ok)
	assert.Equal(t, time.RFC3339Nano, formatter.TimestampFormat)
	assert.True(t, formatter.FullTimestamp)
}

func TestGetLogger(t *testing.T) {
	t.Run("falls back to global logger", func(t *testing.T) {
		retrieved := G(context.Background())
		require.NotNil(t, retrieved)
		assert.Equal(t, L.Logger, retrieved.Logger)
	})

	t.Run("returns logger from context", func(t *testing.T) {
		custom := logrus.NewEntry(logrus.New()).WithField("skill", "pdf")
		ctx := WithLogger(context.Background(), custom)

		retrieved := G(ctx)
		assert.Equal(t, "pdf", retrieved.Data["skill"])
	})
}

func TestWithFields(t *testing.T) {
	base := logrus.NewEntry(logrus.New()).WithField("tool", "get_skill_details")
	ctx := WithLogger(context.Background(), base)

	ctx = WithFields(ctx, logrus.Fields{"skill_name": "xlsx"})

	retrieved := G(ctx)
	assert.Equal(t, "get_skill_details", retrieved.Data["tool"])
	assert.Equal(t, "xlsx", retrieved.Data["skill_name"])
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(newFormatter(FormatJSON))

	G(WithLogger(context.Background(), logrus.NewEntry(logger))).WithField("skills_dir", "/srv/skills").Info("discovered skills")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["logLevel"])
	assert.Equal(t, "discovered skills", entry["message"])
	assert.Equal(t, "/srv/skills", entry["skills_dir"])

	timestamp, ok := entry["timestamp"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339Nano, timestamp)
	assert.NoError(t, err)
}

func TestConfigure(t *testing.T) {
	original := L.Logger.GetLevel()
	originalFormatter := L.Logger.Formatter
	t.Cleanup(func() {
		L.Logger.SetLevel(original)
		L.Logger.Formatter = originalFormatter
	})

	require.NoError(t, Configure("debug", "json"))
	assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, L.Logger.Formatter)

	require.NoError(t, Configure("", ""))
	assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())

	err := Configure("verbose", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")

	err = Configure("", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log format")
	assert.IsType(t, &logrus.JSONFormatter{}, L.Logger.Formatter)

	require.NoError(t, Configure("warn", "text"))
	assert.Equal(t, logrus.WarnLevel, L.Logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, L.Logger.Formatter)
}

func TestSetLogOutput(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	t.Cleanup(func() { SetLogOutput(os.Stderr) })

	L.Warn("skipping invalid skill manifest")
	assert.True(t, strings.Contains(buf.String(), "skipping invalid skill manifest"))
}
