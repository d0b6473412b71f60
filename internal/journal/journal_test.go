package journal

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/snackbar/internal/snackbar"
)

func shopping() snackbar.Request {
	return snackbar.NewRequest("Deleted: Shopping", snackbar.WithID(3), snackbar.WithAction("UNDO"))
}

func TestNewEntry(t *testing.T) {
	e := NewEntry("test", EventAppeared, shopping())

	require.NoError(t, e.Validate())
	assert.Len(t, e.ID, 26)
	assert.Equal(t, "test", e.Source)
	assert.Equal(t, "Deleted: Shopping", e.Message)
	assert.Equal(t, "UNDO", e.Action)
	require.NotNil(t, e.RequestID)
	assert.Equal(t, 3, *e.RequestID)
	assert.WithinDuration(t, time.Now(), e.Time(), time.Second)
}

func TestEntry_Validate(t *testing.T) {
	valid := NewEntry("test", EventDisappeared, shopping())
	valid.Reason = "timer"
	require.NoError(t, valid.Validate())

	noReason := valid
	noReason.Reason = ""
	assert.Error(t, noReason.Validate())

	badID := valid
	badID.ID = "not-a-ulid"
	assert.Error(t, badID.Validate())

	badEvent := valid
	badEvent.Event = "exploded"
	assert.Error(t, badEvent.Validate())
}

func TestParseEvent(t *testing.T) {
	e, err := ParseEvent(" Appeared ")
	require.NoError(t, err)
	assert.Equal(t, EventAppeared, e)

	_, err = ParseEvent("shown")
	assert.Error(t, err)
}

func TestJournal_AppendLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.jsonl")

	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.Append(NewEntry("test", EventAppeared, shopping())))
	require.NoError(t, j.Append(NewEntry("test", EventAction, shopping())))

	entries, err := j.Load()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, EventAppeared, entries[0].Event)
	assert.Equal(t, EventAction, entries[1].Event)

	// Appends after Load still go to the end
	require.NoError(t, j.Append(NewEntry("test", EventAppeared, snackbar.NewRequest("again"))))
	fromDisk, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, fromDisk, 3)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), `{"snackbar_schema_version":1`))
}

func TestJournal_ReopenKeepsSingleHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Append(NewEntry("test", EventAppeared, shopping())))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "snackbar_schema_version"))
}

func TestJournal_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.Append(NewEntry("test", EventAppeared, shopping())))
	require.NoError(t, j.Clear())

	entries, err := j.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = os.Stat(path + ".bak")
	assert.NoError(t, err)
}

func TestJournal_Closed(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "journal.jsonl"))
	require.NoError(t, err)
	require.NoError(t, j.Close())
	require.NoError(t, j.Close())

	assert.ErrorIs(t, j.Append(NewEntry("test", EventAppeared, shopping())), ErrJournalClosed)
	_, err = j.Load()
	assert.ErrorIs(t, err, ErrJournalClosed)
}

func TestReadFile_Missing(t *testing.T) {
	entries, err := ReadFile(filepath.Join(t.TempDir(), "none.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDecode(t *testing.T) {
	input := `{"snackbar_schema_version":1,"created_at":1}
{"id":"01HZY3Z5S7W0QK6J9T2X4V8B1C","timestamp":1000,"event":"appeared","message":"A"}
this is not json

{"event":"appeared","message":"no id"}
{"id":"01HZY3Z5S7W0QK6J9T2X4V8B1D","timestamp":2000,"event":"disappeared","reason":"timer","message":"A"}
`
	entries, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "timer", entries[1].Reason)

	_, err = Decode(strings.NewReader(`{"snackbar_schema_version":99,"created_at":1}` + "\n"))
	assert.Error(t, err)
}

// fakeAppender records entries or fails.
type fakeAppender struct {
	entries []Entry
	err     error
}

func (a *fakeAppender) Append(e Entry) error {
	if a.err != nil {
		return a.err
	}
	a.entries = append(a.entries, e)
	return nil
}

func TestRecorder(t *testing.T) {
	fa := &fakeAppender{}
	r := &Recorder{journal: fa, source: "test", logger: discardLogger()}

	req := shopping()
	r.Appeared(req)
	r.ActionTriggered(req)
	r.Disappeared(req, snackbar.ReasonUserAction)

	require.Len(t, fa.entries, 3)
	assert.Equal(t, EventAppeared, fa.entries[0].Event)
	assert.Equal(t, EventAction, fa.entries[1].Event)
	assert.Equal(t, EventDisappeared, fa.entries[2].Event)
	assert.Equal(t, "user", fa.entries[2].Reason)
	for _, e := range fa.entries {
		assert.NoError(t, e.Validate())
	}

	// Failures are swallowed
	fa.err = errors.New("disk full")
	assert.NotPanics(t, func() { r.Appeared(req) })
}

func TestRecorder_WithJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	r := NewRecorder(j, "test", nil)
	r.Appeared(shopping())
	r.Disappeared(shopping(), snackbar.ReasonTimer)

	entries, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "timer", entries[1].Reason)
}
