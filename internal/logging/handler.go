// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// Supported log formats
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Options controls handler selection
type Options struct {
	// Format is FormatJSON, FormatText or empty. Empty picks text on a terminal
	// and JSON everywhere else.
	Format string
	Level  string
}

// NewHandler builds a slog.Handler writing to out.
// Text output is colorized and human-readable:
//
//	15:04:05 INF msg key=value key=value
func NewHandler(out io.Writer, opts Options) (slog.Handler, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	format := opts.Format
	if format == "" {
		format = FormatJSON
		if isTerminal(out) {
			format = FormatText
		}
	}

	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}), nil
	case FormatText:
		return tint.NewHandler(out, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
			NoColor:    !isTerminal(out),
		}), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}
}

// Setup installs a handler for stdout as the slog default
func Setup(opts Options) error {
	handler, err := NewHandler(os.Stdout, opts)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// ParseLevel maps debug, info, warn and error to slog levels. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
