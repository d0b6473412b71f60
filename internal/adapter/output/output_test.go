package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/snackbar/internal/journal"
)

func intPtr(i int) *int { return &i }

func testEntries() []journal.Entry {
	now := time.Now()
	return []journal.Entry{
		{
			ID:        "01JB2Q8Z5Y9X0W1V2U3T4S5R6Q",
			Timestamp: now.Add(-5 * time.Minute).UnixMilli(),
			Source:    "snackbard",
			Event:     journal.EventAppeared,
			RequestID: intPtr(3),
			Message:   "Deleted: Shopping",
			Action:    "UNDO",
		},
		{
			ID:        "01JB2Q9A5Y9X0W1V2U3T4S5R6Q",
			Timestamp: now.Add(-2 * time.Hour).UnixMilli(),
			Source:    "snackbar",
			Event:     journal.EventDisappeared,
			Reason:    "overridden",
			Message:   "Saved",
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"plain", "json", "yaml", "ids"} {
		f, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, FormatType(name), f)
	}

	_, err := ParseFormat("dmenu")
	assert.Error(t, err)
}

func TestPlainFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	formatter := NewPlainFormatter(DefaultFormatterOptions())
	require.NoError(t, formatter.Format(&buf, testEntries()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	assert.Contains(t, lines[0], "5 minutes ago")
	assert.Contains(t, lines[0], "appeared")
	assert.Contains(t, lines[0], "#3 Deleted: Shopping [UNDO]")

	assert.Contains(t, lines[1], "2 hours ago")
	assert.Contains(t, lines[1], "disappeared/overridden")
	assert.Contains(t, lines[1], "Saved")
	assert.NotContains(t, lines[1], "[")
}

func TestPlainFormatter_Index(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultFormatterOptions()
	opts.ShowIndex = true
	opts.ShowTime = false
	require.NoError(t, NewPlainFormatter(opts).Format(&buf, testEntries()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "[1]"))
	assert.True(t, strings.HasPrefix(lines[1], "[2]"))
	assert.NotContains(t, buf.String(), "ago")
}

func TestPlainFormatter_Truncates(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultFormatterOptions()
	opts.ShowTime = false
	opts.MessageMax = 10
	entries := []journal.Entry{{ID: "x", Event: journal.EventAppeared, Message: "a long message\nwith lines"}}
	require.NoError(t, NewPlainFormatter(opts).Format(&buf, entries))

	assert.Contains(t, buf.String(), "a long ...")
	assert.NotContains(t, buf.String(), "with lines")
}

func TestPlainFormatter_Template(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultFormatterOptions()
	opts.Template = "{{.Index}}|{{.Entry.Event}}|{{truncate .Entry.Message 7}}"
	require.NoError(t, NewPlainFormatter(opts).Format(&buf, testEntries()))

	assert.Equal(t, "1|appeared|Dele...\n2|disappeared|Saved\n", buf.String())
}

func TestPlainFormatter_InvalidTemplateFallsBack(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultFormatterOptions()
	opts.Template = "{{.Index"
	require.NoError(t, NewPlainFormatter(opts).Format(&buf, testEntries()))

	assert.Contains(t, buf.String(), "Deleted: Shopping")
}

func TestJSONFormatter_Array(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewJSONFormatter(FormatterOptions{}).Format(&buf, testEntries()))

	var decoded []journal.Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Deleted: Shopping", decoded[0].Message)
	require.NotNil(t, decoded[0].RequestID)
	assert.Equal(t, 3, *decoded[0].RequestID)
	assert.Nil(t, decoded[1].RequestID)
}

func TestJSONFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewJSONFormatter(FormatterOptions{}).Format(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestJSONFormatter_Lines(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewJSONFormatter(FormatterOptions{JSONLines: true}).Format(&buf, testEntries()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], `"reason":"overridden"`)
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewYAMLFormatter().Format(&buf, testEntries()))
	assert.Contains(t, buf.String(), "request_id: 3")

	var decoded []journal.Entry
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, journal.EventDisappeared, decoded[1].Event)
}

func TestIDsFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewIDsFormatter().Format(&buf, testEntries()))
	assert.Equal(t, "01JB2Q8Z5Y9X0W1V2U3T4S5R6Q\n01JB2Q9A5Y9X0W1V2U3T4S5R6Q\n", buf.String())
}

func TestNewFormatter(t *testing.T) {
	opts := DefaultFormatterOptions()
	assert.IsType(t, &PlainFormatter{}, NewFormatter(FormatPlain, opts))
	assert.IsType(t, &JSONFormatter{}, NewFormatter(FormatJSON, opts))
	assert.IsType(t, &YAMLFormatter{}, NewFormatter(FormatYAML, opts))
	assert.IsType(t, &IDsFormatter{}, NewFormatter(FormatIDs, opts))
	assert.IsType(t, &PlainFormatter{}, NewFormatter("other", opts))
}

func TestFormatField(t *testing.T) {
	e := testEntries()[0]

	assert.Equal(t, e.ID, FormatField(&e, "id"))
	assert.Equal(t, "appeared", FormatField(&e, "event"))
	assert.Equal(t, "UNDO", FormatField(&e, "action"))
	assert.Equal(t, "3", FormatField(&e, "request_id"))
	assert.Equal(t, "Deleted: Shopping", FormatField(&e, "MESSAGE"))
	assert.Equal(t, "Deleted: Shopping", FormatField(&e, "unknown"))

	e2 := testEntries()[1]
	assert.Equal(t, "", FormatField(&e2, "request_id"))
	assert.Equal(t, "overridden", FormatField(&e2, "reason"))
}
