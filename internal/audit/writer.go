package audit

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Document ID",
	"Kind",
	"Page",
	"Row",
	"Subject",
	"Detail",
	"Confidence",
	"Created At",
}

// Writer exports a diagnostics trail as CSV for external audit tooling.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteEvents converts a batch of events to CSV rows and writes them.
func (w *Writer) WriteEvents(events []Event) error {
	for i := range events {
		if err := w.csv.Write(eventToRow(&events[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}

func eventToRow(e *Event) []string {
	createdAt := ""
	if !e.CreatedAt.IsZero() {
		createdAt = e.CreatedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		e.DocumentID.String(),
		string(e.Kind),
		strconv.Itoa(e.PageIndex),
		strconv.Itoa(e.RowIndex),
		e.Subject,
		e.Detail,
		strconv.FormatFloat(e.Confidence, 'f', 2, 64),
		createdAt,
	}
}
