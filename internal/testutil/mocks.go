package testutil

import (
	"errors"
	"strings"
	"sync"
)

// ErrMockWrite is returned by FailingWriter
var ErrMockWrite = errors.New("mock write failure")

// FailingWriter is an io.Writer that always fails
type FailingWriter struct{}

// Write implements io.Writer
func (FailingWriter) Write(p []byte) (int, error) {
	return 0, ErrMockWrite
}

// LogRecorder collects everything written to it, safe for concurrent use
type LogRecorder struct {
	mu  sync.Mutex
	buf strings.Builder
}

// Write implements io.Writer
func (r *LogRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(p)
}

// String returns the recorded output
func (r *LogRecorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

// Lines returns the recorded output split into non-empty lines
func (r *LogRecorder) Lines() []string {
	var lines []string
	for _, line := range strings.Split(r.String(), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
