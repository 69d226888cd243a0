package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Options selects the handler behind a logger.
type Options struct {
	// Format is "json" or "text". Anything else means json.
	Format string
	// Level is trace, debug, info, warn or error.
	Level  string
	Writer io.Writer
}

// New returns a slog.Logger configured for structured, JSON-oriented output.
func New(subsystem string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true})
	return slog.New(handler).With("subsystem", subsystem)
}

// NewWithOptions returns a logger using the handler chosen by opts.
func NewWithOptions(subsystem string, opts Options) *slog.Logger {
	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "text", "txt":
		handler = textHandler(opts.Level, opts.Writer)
	default:
		handler = jsonHandler(opts.Level, opts.Writer)
	}
	return slog.New(handler).With("subsystem", subsystem)
}

func textHandler(level string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stderr
	}

	reportCaller := false
	reportTimestamp := false
	lvl := log.InfoLevel
	switch strings.ToLower(level) {
	case "trace":
		reportCaller = true
		reportTimestamp = true
		lvl = log.DebugLevel
	case "debug":
		reportTimestamp = true
		lvl = log.DebugLevel
	case "warn", "warning":
		lvl = log.WarnLevel
	case "error":
		lvl = log.ErrorLevel
	}

	return log.NewWithOptions(writer, log.Options{
		ReportTimestamp: reportTimestamp,
		ReportCaller:    reportCaller,
		Level:           lvl,
	})
}

func jsonHandler(level string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stdout
	}

	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "trace", "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	return slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: lvl, AddSource: true})
}
