package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/snackbar/internal/journal"
)

// PlainFormatter formats entries as plain text, one per line.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
	now      func() time.Time
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts, now: time.Now}

	// Parse custom template if provided
	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(f.templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes entries as plain text.
func (f *PlainFormatter) Format(w io.Writer, entries []journal.Entry) error {
	for i := range entries {
		if err := f.formatEntry(w, i+1, &entries[i]); err != nil {
			return err
		}
	}
	return nil
}

// templateData provides data for custom templates.
type templateData struct {
	Index        int
	Entry        *journal.Entry
	RelativeTime string
}

func (f *PlainFormatter) formatEntry(w io.Writer, index int, e *journal.Entry) error {
	if f.template != nil {
		data := templateData{
			Index:        index,
			Entry:        e,
			RelativeTime: f.relativeTime(e.Time()),
		}
		if err := f.template.Execute(w, data); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	sep := f.opts.Separator
	if sep == "" {
		sep = "  "
	}

	var parts []string
	if f.opts.ShowIndex {
		parts = append(parts, fmt.Sprintf("[%d]", index))
	}
	if f.opts.ShowTime {
		parts = append(parts, fmt.Sprintf("%-14s", f.relativeTime(e.Time())))
	}

	event := string(e.Event)
	if e.Reason != "" {
		event += "/" + e.Reason
	}
	parts = append(parts, fmt.Sprintf("%-22s", event))

	msg := truncate(strings.ReplaceAll(e.Message, "\n", " "), f.opts.MessageMax)
	if e.RequestID != nil {
		msg = fmt.Sprintf("#%d %s", *e.RequestID, msg)
	}
	if e.Action != "" {
		msg += " [" + e.Action + "]"
	}
	parts = append(parts, msg)

	_, err := fmt.Fprintln(w, strings.Join(parts, sep))
	return err
}

func (f *PlainFormatter) relativeTime(t time.Time) string {
	if t.IsZero() || t.Unix() == 0 {
		return "unknown"
	}
	return humanize.RelTime(t, f.now(), "ago", "from now")
}

// templateFuncs returns template helper functions.
func (f *PlainFormatter) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": truncate,
		"reltime":  f.relativeTime,
		"upper":    strings.ToUpper,
	}
}

// truncate shortens s to maxLen bytes with an ellipsis.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// FormatField outputs a specific field from an entry.
func FormatField(e *journal.Entry, field string) string {
	switch strings.ToLower(field) {
	case "id":
		return e.ID
	case "event":
		return string(e.Event)
	case "reason":
		return e.Reason
	case "message":
		return e.Message
	case "action":
		return e.Action
	case "request_id", "request":
		if e.RequestID == nil {
			return ""
		}
		return fmt.Sprintf("%d", *e.RequestID)
	case "time":
		return e.Time().Format(time.RFC3339)
	default:
		return e.Message
	}
}
