// Package logger provides context-aware structured logging built on logrus.
// Output goes to stderr so that stdout stays free for the MCP stdio
// transport and for command output.
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Supported log formats
const (
	FormatText = "fmt"
	FormatJSON = "json"
)

var (
	// G is a convenience alias for GetLogger
	G = GetLogger
	// L is the global logger entry, used when the context carries none
	L = logrus.NewEntry(newLogger())
)

type loggerKey struct{}

// WithLogger attaches a logger entry to ctx so GetLogger can retrieve it
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, entry.WithContext(ctx))
}

// WithFields returns a context whose logger carries fields on top of the
// logger already in ctx
func WithFields(ctx context.Context, fields logrus.Fields) context.Context {
	return WithLogger(ctx, GetLogger(ctx).WithFields(fields))
}

// GetLogger retrieves the logger entry from ctx, falling back to L
func GetLogger(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(loggerKey{}).(*logrus.Entry); ok {
		return entry
	}
	return L.WithContext(ctx)
}

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(newFormatter(FormatText))
	return l
}

func newFormatter(format string) logrus.Formatter {
	if format == FormatJSON {
		return &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "logLevel",
				logrus.FieldKeyMsg:   "message",
			},
			TimestampFormat: time.RFC3339Nano,
		}
	}
	return &logrus.TextFormatter{
		TimestampFormat: time.RFC3339Nano,
		FullTimestamp:   true,
	}
}

// Configure sets the level and format of the global logger. Empty values keep
// the current setting.
func Configure(level, format string) error {
	if level != "" {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			return errors.Wrapf(err, "invalid log level %q", level)
		}
		L.Logger.SetLevel(lvl)
	}

	switch format {
	case "":
	case FormatText, FormatJSON, "text":
		L.Logger.SetFormatter(newFormatter(format))
	default:
		return errors.Errorf("invalid log format %q, must be %s or %s", format, FormatText, FormatJSON)
	}
	return nil
}

// SetLogOutput sets the output destination for the global logger
func SetLogOutput(w io.Writer) {
	L.Logger.SetOutput(w)
}
