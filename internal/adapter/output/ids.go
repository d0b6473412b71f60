package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/snackbar/internal/journal"
)

// IDsFormatter outputs just the entry ULIDs, one per line.
type IDsFormatter struct{}

// NewIDsFormatter creates a new IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// Format writes entry IDs to the writer, one per line.
func (f *IDsFormatter) Format(w io.Writer, entries []journal.Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintln(w, e.ID); err != nil {
			return err
		}
	}
	return nil
}
