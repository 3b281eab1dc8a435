package ndjson

import (
	"encoding/json"
	"io"
	"sync"
)

// Writer writes one JSON value per line. It is safe for concurrent use;
// each line is written with a single Write call so lines never interleave.
type Writer struct {
	w  io.Writer
	mu sync.Mutex
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteJSON marshals v and writes it followed by a newline.
func (w *Writer) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.WriteRaw(data)
}

// WriteRaw writes line followed by a newline. line must not contain a
// newline of its own.
func (w *Writer) WriteRaw(line []byte) error {
	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	buf = append(buf, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.w.Write(buf)
	return err
}
