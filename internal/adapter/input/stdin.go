package input

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// StdinAdapter reads show requests from standard input, one per line.
// A line is either a JSON RequestSpec or a plain message.
type StdinAdapter struct {
	reader io.Reader
}

// NewStdinAdapterWithReader creates a new StdinAdapter with a custom reader.
func NewStdinAdapterWithReader(r io.Reader) *StdinAdapter {
	return &StdinAdapter{reader: r}
}

// Name returns the adapter identifier.
func (a *StdinAdapter) Name() string {
	return "stdin"
}

// Each calls fn for every request read until EOF, ctx is cancelled or fn
// fails. Invalid lines are reported through onError and skipped.
func (a *StdinAdapter) Each(ctx context.Context, fn func(snackbar.Request) error, onError func(line int, err error)) error {
	scanner := bufio.NewScanner(a.reader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line++

		req, err := ParseLine(scanner.Bytes())
		if err != nil {
			if onError != nil {
				onError(line, err)
			}
			continue
		}
		if err := fn(req); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return &AdapterError{
			Source:  "stdin",
			Message: "failed to read stdin",
			Err:     err,
		}
	}
	return nil
}

// ParseLine parses a single input line.
func ParseLine(line []byte) (snackbar.Request, error) {
	line = bytes.TrimSpace(line)
	if len(line) > 0 && line[0] == '{' {
		var spec RequestSpec
		if err := json.Unmarshal(line, &spec); err != nil {
			return snackbar.Request{}, &AdapterError{
				Source:  "stdin",
				Message: "failed to parse JSON input",
				Err:     err,
			}
		}
		return spec.Request()
	}
	return RequestSpec{Message: string(line)}.Request()
}
