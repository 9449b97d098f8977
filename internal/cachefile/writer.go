package cachefile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ConvertedSuffix is appended to the stem of a converted file
const ConvertedSuffix = "_converted"

// BackupSuffix is appended to the source path when backing it up
const BackupSuffix = ".backup"

// ConvertedPath returns <dir>/<stem>_converted<ext> for path
func ConvertedPath(path string) string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	return filepath.Join(dir, stem+ConvertedSuffix+ext)
}

// WriteLines writes lines verbatim to path. The data goes to a temporary
// file in the same directory first and is renamed into place, so a failed
// write never leaves a truncated destination behind.
func WriteLines(path string, lines []string) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()

	// Clean up the temp file on any failure below
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	for _, line := range lines {
		if _, err := io.WriteString(tmp, line); err != nil {
			tmp.Close()
			return &WriteError{Path: path, Err: err}
		}
	}

	if err := tmp.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	// Keep the permissions of an existing destination
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	if err := os.Rename(tmpName, path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	committed = true

	return nil
}

// Backup copies path to path+".backup" and returns the backup location.
// When that name is already taken a timestamped name is used instead.
func Backup(path string) (string, error) {
	backupPath := path + BackupSuffix

	if _, err := os.Stat(backupPath); err == nil {
		timestamp := time.Now().Format("20060102-150405")
		backupPath = fmt.Sprintf("%s%s-%s", path, BackupSuffix, timestamp)

		// Add microseconds to make it unique
		if _, err := os.Stat(backupPath); err == nil {
			timestamp = time.Now().Format("20060102-150405.000000")
			backupPath = fmt.Sprintf("%s%s-%s", path, BackupSuffix, timestamp)
		}
	}

	if err := copyFile(path, backupPath); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", filepath.Base(path), err)
	}

	return backupPath, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return &WriteError{Path: dst, Err: err}
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return &WriteError{Path: dst, Err: err}
	}

	if err := out.Close(); err != nil {
		return &WriteError{Path: dst, Err: err}
	}

	return nil
}
