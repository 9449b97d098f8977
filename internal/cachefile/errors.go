package cachefile

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound is returned when the source path is not a readable file
	ErrFileNotFound = errors.New("file not found")

	// ErrDecoding is returned when the source is not valid UTF-8
	ErrDecoding = errors.New("file is not valid UTF-8")

	// ErrWrite is matched by every WriteError
	ErrWrite = errors.New("failed to write file")
)

// DecodeError reports the position of the first invalid UTF-8 sequence
type DecodeError struct {
	Path   string
	Offset int
	Line   int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: invalid UTF-8 at byte %d (line %d)", e.Path, e.Offset, e.Line)
}

// Is makes errors.Is(err, ErrDecoding) match
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecoding
}

// WriteError wraps a failure to write a destination file
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrWrite) match
func (e *WriteError) Is(target error) bool {
	return target == ErrWrite
}
