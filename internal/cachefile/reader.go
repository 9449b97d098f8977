package cachefile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// ReadLines reads a cache file and returns its lines without line
// terminators. A UTF-8 byte order mark is removed; any other invalid
// UTF-8 is rejected with a DecodeError instead of being replaced.
func ReadLines(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrFileNotFound)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrFileNotFound, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFileNotFound, path, err)
	}

	text, err := decode(path, content)
	if err != nil {
		return nil, err
	}

	return SplitLines(text), nil
}

// decode validates content as UTF-8 and strips a leading BOM
func decode(path string, content []byte) (string, error) {
	if !utf8.Valid(content) {
		offset := invalidOffset(content)
		return "", &DecodeError{
			Path:   path,
			Offset: offset,
			Line:   strings.Count(lineEndings.Replace(string(content[:offset])), "\n") + 1,
		}
	}

	decoded, err := unicode.UTF8BOM.NewDecoder().Bytes(content)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDecoding, path, err)
	}

	return string(decoded), nil
}

// invalidOffset returns the byte offset of the first invalid rune
func invalidOffset(content []byte) int {
	offset := 0
	for offset < len(content) {
		r, size := utf8.DecodeRune(content[offset:])
		if r == utf8.RuneError && size <= 1 {
			return offset
		}
		offset += size
	}
	return offset
}

// lineEndings maps every line terminator onto "\n"
var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// SplitLines splits text on "\n", "\r\n" and lone "\r" line endings.
// A final line terminator does not produce an extra empty line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}

	lines := strings.Split(lineEndings.Replace(text), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}
