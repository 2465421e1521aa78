package testhelpers

import (
	"io"
	"strings"
	"sync/atomic"
	"testing"
)

// Writer implements io.Writer and writes to tb.Log so that logs only show up for failed tests
// or with go test -v.
type Writer struct {
	tb   testing.TB
	done atomic.Bool
}

// NewWriter creates a new Writer that writes to tb.Log until tb finishes.
func NewWriter(tb testing.TB) io.Writer {
	w := &Writer{tb: tb, done: atomic.Bool{}}
	tb.Cleanup(func() {
		w.done.Store(true)
	})
	return w
}

// Write implements io.Writer by writing to tb.Log.
//
// Writing after the test has finished panics. This usually means a server or goroutine outlived the test,
// register its shutdown with tb.Cleanup after creating the Writer.
func (w *Writer) Write(p []byte) (int, error) {
	if w.done.Load() {
		panic("testwriter: attempted to write after test completion. Did you remember to t.Cleanup(server.Shutdown)?")
	}
	// Remove trailing newlines to avoid double-spacing in test output.
	if output := strings.TrimSuffix(string(p), "\n"); output != "" {
		w.tb.Log(output)
	}
	return len(p), nil
}
