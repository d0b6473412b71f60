package output

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/snackbar/internal/journal"
)

// JSONFormatter formats entries as JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes entries as a JSON array, or as JSON lines when
// opts.JSONLines is set.
func (f *JSONFormatter) Format(w io.Writer, entries []journal.Entry) error {
	encoder := json.NewEncoder(w)
	if f.opts.JSONLines {
		for _, e := range entries {
			if err := encoder.Encode(e); err != nil {
				return err
			}
		}
		return nil
	}

	if entries == nil {
		entries = []journal.Entry{}
	}
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

// FormatSingle writes a single entry as JSON.
func (f *JSONFormatter) FormatSingle(w io.Writer, e *journal.Entry) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(e)
}
