// Package output provides output formatters for journal entries.
package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/snackbar/internal/journal"
)

// Formatter formats journal entries for output.
type Formatter interface {
	// Format writes formatted entries to the writer.
	Format(w io.Writer, entries []journal.Entry) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatIDs   FormatType = "ids"
)

// ParseFormat parses a format name.
func ParseFormat(s string) (FormatType, error) {
	switch f := FormatType(s); f {
	case FormatPlain, FormatJSON, FormatYAML, FormatIDs:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format: %s (use plain, json, yaml, or ids)", s)
	}
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter()
	case FormatIDs:
		return NewIDsFormatter()
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template   string // Custom template for plain format
	ShowIndex  bool   // Show 1-based index prefix
	ShowTime   bool   // Show relative time
	MessageMax int    // Maximum message length (0 = unlimited)
	Separator  string // Field separator for plain format
	JSONLines  bool   // One JSON object per line instead of an array
}

// DefaultFormatterOptions returns sensible defaults.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex:  false,
		ShowTime:   true,
		MessageMax: 80,
		Separator:  "  ",
	}
}
