package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SchemaVersion is the current journal schema version.
const SchemaVersion = 1

// maxLineSize bounds a single journal line.
const maxLineSize = 1024 * 1024

// ErrJournalClosed is returned when operations are attempted on a closed journal.
var ErrJournalClosed = errors.New("journal is closed")

// schemaHeader is the first line of the JSONL file.
type schemaHeader struct {
	SnackbarSchemaVersion int   `json:"snackbar_schema_version"`
	CreatedAt             int64 `json:"created_at"`
}

// Journal appends entries to a JSONL file.
type Journal struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	closed bool
}

// Open opens the journal at path, creating it with a header if needed.
func Open(path string) (*Journal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal %s: %w", path, err)
	}

	j := &Journal{
		path: path,
		file: file,
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.Size() == 0 {
		if err := j.writeHeader(); err != nil {
			file.Close()
			return nil, err
		}
	}

	return j, nil
}

// Path returns the journal file path.
func (j *Journal) Path() string {
	return j.path
}

func (j *Journal) writeHeader() error {
	data, err := json.Marshal(schemaHeader{
		SnackbarSchemaVersion: SchemaVersion,
		CreatedAt:             time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	_, err = j.file.Write(append(data, '\n'))
	return err
}

// Append adds an entry.
func (j *Journal) Append(e Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed || j.file == nil {
		return ErrJournalClosed
	}

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := j.file.Write(append(data, '\n')); err != nil {
		return err
	}
	return j.file.Sync()
}

// Load reads all entries.
func (j *Journal) Load() ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed || j.file == nil {
		return nil, ErrJournalClosed
	}

	if _, err := j.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek %s: %w", j.path, err)
	}
	entries, err := Decode(j.file)
	if _, serr := j.file.Seek(0, io.SeekEnd); serr != nil && err == nil {
		err = serr
	}
	return entries, err
}

// Clear removes all entries, keeping a .bak copy of the previous file.
func (j *Journal) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrJournalClosed
	}

	if j.file != nil {
		if err := j.file.Close(); err != nil {
			return err
		}
		j.file = nil
	}

	backupPath := j.path + ".bak"
	if err := os.Rename(j.path, backupPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	file, err := os.OpenFile(j.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND, 0600)
	if err != nil {
		_ = os.Rename(backupPath, j.path)
		return err
	}
	j.file = file

	if err := j.writeHeader(); err != nil {
		return err
	}
	return j.file.Sync()
}

// Close releases the file handle.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}
	j.closed = true

	if j.file != nil {
		err := j.file.Close()
		j.file = nil
		return err
	}
	return nil
}

// ReadFile reads all entries from the journal at path. A missing file reads
// as an empty journal.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open journal %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads JSONL entries from r. Header lines are checked, malformed or
// invalid entries are skipped.
func Decode(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var header schemaHeader
		if json.Unmarshal(line, &header) == nil && header.SnackbarSchemaVersion > 0 {
			if header.SnackbarSchemaVersion > SchemaVersion {
				return nil, fmt.Errorf("unsupported schema version %d (max: %d)",
					header.SnackbarSchemaVersion, SchemaVersion)
			}
			continue
		}

		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		if e.Validate() == nil {
			entries = append(entries, e)
		}
	}

	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("error reading journal: %w", err)
	}
	return entries, nil
}
