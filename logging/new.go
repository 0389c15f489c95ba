package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format is the log output format.
type Format string

const (
	// FormatText outputs human-readable text.
	FormatText Format = "text"
	// FormatJSON outputs JSON records.
	FormatJSON Format = "json"
)

// ParseFormat parses a format string.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown log format: %q", s)
	}
}

// Options configures the logger factory.
type Options struct {
	// Spec is the component-level spec string; see ParseSpec.
	Spec string
	// Format selects text or JSON output.
	Format Format
	// Output defaults to os.Stdout.
	Output io.Writer
}

// New creates a slog.Logger with component-level filtering.
func New(opts Options) (*slog.Logger, error) {
	spec, err := ParseSpec(opts.Spec)
	if err != nil {
		return nil, fmt.Errorf("invalid log spec: %w", err)
	}

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	// The inner handler passes everything; the filtering handler is
	// the one that decides.
	handlerOpts := &slog.HandlerOptions{Level: LevelTrace.ToSlog()}

	var inner slog.Handler
	switch opts.Format {
	case FormatJSON:
		inner = slog.NewJSONHandler(output, handlerOpts)
	default:
		inner = slog.NewTextHandler(output, handlerOpts)
	}

	return slog.New(NewFilteringHandler(inner, spec)), nil
}
