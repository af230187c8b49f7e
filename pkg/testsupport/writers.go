package testsupport

import (
	"bytes"
	"errors"
)

// ErrSinkClosed is the error FailingWriter returns once it trips.
var ErrSinkClosed = errors.New("testsupport: sink closed")

// FailingWriter accepts FailAt-1 writes and fails the FailAt-th with Err
// (ErrSinkClosed when nil). Accepted writes are recorded in order.
type FailingWriter struct {
	FailAt int
	Err    error

	calls  int
	Writes []string
}

// Write implements io.Writer.
func (w *FailingWriter) Write(p []byte) (int, error) {
	w.calls++
	if w.FailAt > 0 && w.calls >= w.FailAt {
		if w.Err != nil {
			return 0, w.Err
		}
		return 0, ErrSinkClosed
	}
	w.Writes = append(w.Writes, string(p))
	return len(p), nil
}

// Calls reports how many times Write was called, including the failing call.
func (w *FailingWriter) Calls() int {
	return w.calls
}

// String returns everything accepted so far.
func (w *FailingWriter) String() string {
	var buf bytes.Buffer
	for _, chunk := range w.Writes {
		buf.WriteString(chunk)
	}
	return buf.String()
}

// RecordingWriter records every chunk written to it.
type RecordingWriter struct {
	Writes []string
}

// Write implements io.Writer.
func (w *RecordingWriter) Write(p []byte) (int, error) {
	w.Writes = append(w.Writes, string(p))
	return len(p), nil
}
