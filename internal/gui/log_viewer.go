package gui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// LogWriter forwards processor output to a LogViewer line by line and
// optionally mirrors it to another writer
type LogWriter struct {
	viewer   *LogViewer
	original io.Writer
}

// NewLogWriter creates a writer feeding viewer; original may be nil
func NewLogWriter(viewer *LogViewer, original io.Writer) *LogWriter {
	return &LogWriter{viewer: viewer, original: original}
}

// Write implements io.Writer
func (w *LogWriter) Write(p []byte) (n int, err error) {
	// Write to original output
	if w.original != nil {
		w.original.Write(p)
	}

	// Send to log viewer
	if w.viewer != nil {
		for _, message := range strings.Split(string(p), "\n") {
			message = strings.TrimRight(message, "\r")
			if strings.TrimSpace(message) != "" {
				w.viewer.AddMessage(message)
			}
		}
	}

	return len(p), nil
}

// logBuffer keeps the newest messages first and drops the oldest ones
type logBuffer struct {
	mu          sync.Mutex
	messages    []string
	maxMessages int
}

func newLogBuffer(maxMessages int) *logBuffer {
	return &logBuffer{
		maxMessages: maxMessages,
		messages:    make([]string, 0),
	}
}

// add prepends a message and returns the joined text
func (b *logBuffer) add(message string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.messages = append([]string{message}, b.messages...)

	// Trim if too many messages (remove oldest from the end)
	if len(b.messages) > b.maxMessages {
		b.messages = b.messages[:b.maxMessages]
	}

	return strings.Join(b.messages, "\n")
}

// text returns the messages joined newest first
func (b *logBuffer) text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.messages, "\n")
}

func (b *logBuffer) clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = b.messages[:0]
}

func (b *logBuffer) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages)
}

// LogViewer is a widget that displays log messages
type LogViewer struct {
	widget.BaseWidget

	container  *fyne.Container
	logEntry   *widget.Entry
	scrollView *container.Scroll

	buffer *logBuffer
}

// NewLogViewer creates a new log viewer widget
func NewLogViewer() *LogViewer {
	v := &LogViewer{
		buffer: newLogBuffer(1000), // Keep last 1000 messages
	}

	// Create log entry (read-only multiline)
	v.logEntry = widget.NewMultiLineEntry()
	v.logEntry.Disable()
	v.logEntry.Wrapping = fyne.TextWrapWord
	v.logEntry.TextStyle = fyne.TextStyle{Monospace: true}

	v.scrollView = container.NewScroll(v.logEntry)
	v.scrollView.SetMinSize(fyne.NewSize(0, 240))
	v.scrollView.Direction = container.ScrollBoth

	v.container = container.NewBorder(
		widget.NewLabel("Log (newest first):"),
		nil,
		nil,
		nil,
		v.scrollView,
	)

	v.ExtendBaseWidget(v)
	return v
}

// CreateRenderer implements fyne.Widget
func (v *LogViewer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.container)
}

// AddMessage adds a timestamped message to the log. Safe to call from
// any goroutine.
func (v *LogViewer) AddMessage(message string) {
	timestamp := time.Now().Format("15:04:05")
	v.buffer.add(fmt.Sprintf("[%s] %s", timestamp, message))

	// Update UI on main thread. The buffer is read when the update runs so
	// a Clear in between is not undone.
	fyne.Do(func() {
		v.logEntry.SetText(v.buffer.text())

		// Keep scroll at top to show newest messages
		v.scrollView.Offset = fyne.NewPos(0, 0)
		v.scrollView.Refresh()
	})
}

// Clear clears all log messages
func (v *LogViewer) Clear() {
	v.buffer.clear()

	fyne.Do(func() {
		v.logEntry.SetText(v.buffer.text())
		v.scrollView.Offset = fyne.NewPos(0, 0)
		v.scrollView.Refresh()
	})
}

// Log adds a formatted message
func (v *LogViewer) Log(format string, args ...interface{}) {
	v.AddMessage(fmt.Sprintf(format, args...))
}
