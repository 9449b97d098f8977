package processor

import (
	"fmt"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/cacheconv/internal/converter"
)

// Report summarizes the conversion of one file
type Report struct {
	Path       string
	TotalLines int
	Separator  converter.Separator

	// Detected is false when the separator was forced by configuration
	Detected bool

	Converted  int
	Skipped    int
	Duplicates int

	// AlreadyCanonical is set when the file already uses "=" and was left alone
	AlreadyCanonical bool

	// DryRun is set when nothing was written on purpose
	DryRun bool

	OutputPath string
	BackupPath string

	// Lines holds the converted output so a failed write can be retried
	Lines []string
}

// Written reports whether an output file was produced
func (r *Report) Written() bool {
	return r.OutputPath != ""
}

// Summary returns a short multi-line description for message boxes
func (r *Report) Summary() string {
	if r.AlreadyCanonical {
		return fmt.Sprintf("%s is already in the canonical format.\nNo conversion needed.", filepath.Base(r.Path))
	}

	var b strings.Builder
	if r.DryRun {
		b.WriteString("Dry run, nothing written.\n\n")
	} else {
		b.WriteString("Converted!\n\n")
	}

	fmt.Fprintf(&b, "Input: %d lines\n", r.TotalLines)
	fmt.Fprintf(&b, "Format: %s\n", r.Separator.Describe())
	fmt.Fprintf(&b, "Output: %d entries\n", r.Converted)
	fmt.Fprintf(&b, "Skipped: %d entries\n", r.Skipped)
	if r.Duplicates > 0 {
		fmt.Fprintf(&b, "Merged duplicates: %d\n", r.Duplicates)
	}

	if r.OutputPath != "" {
		fmt.Fprintf(&b, "\nFile: %s", filepath.Base(r.OutputPath))
	}
	if r.BackupPath != "" {
		fmt.Fprintf(&b, "\nBackup: %s", filepath.Base(r.BackupPath))
	}

	return strings.TrimRight(b.String(), "\n")
}
