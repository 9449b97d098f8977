package processor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/cacheconv/internal"
	"codeberg.org/snonux/cacheconv/internal/cachefile"
	"codeberg.org/snonux/cacheconv/internal/cli"
	"codeberg.org/snonux/cacheconv/internal/converter"
)

// skippedPreviewLength is how much of a skipped line is shown in verbose mode
const skippedPreviewLength = 50

var (
	// ErrInvalidOptions is returned for contradicting flag combinations
	ErrInvalidOptions = errors.New("invalid options")

	// ErrNothingConverted is returned instead of overwriting a source file
	// with an empty result
	ErrNothingConverted = errors.New("no entries converted, refusing to overwrite the source file")
)

// Processor handles converting translation cache files
type Processor struct {
	flags  *cli.Flags
	out    io.Writer
	errOut io.Writer
}

// NewProcessor creates a new processor writing progress to out.
// A nil out means stdout; quiet mode discards progress output.
func NewProcessor(flags *cli.Flags, out io.Writer) *Processor {
	if flags == nil {
		flags = cli.NewFlags()
	}
	if out == nil {
		out = os.Stdout
	}
	if flags.Quiet {
		out = io.Discard
	}

	return &Processor{
		flags:  flags,
		out:    out,
		errOut: os.Stderr,
	}
}

// SetErrorOutput sets where per-file errors of a batch are printed
func (p *Processor) SetErrorOutput(w io.Writer) {
	p.errOut = w
}

// Validate checks the flag combination for the given number of inputs
func (p *Processor) Validate(inputs int) error {
	if _, _, err := converter.ParseSeparator(p.flags.Separator); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if p.flags.OutputPath != "" && p.flags.InPlace {
		return fmt.Errorf("%w: --output and --in-place cannot be combined", ErrInvalidOptions)
	}
	if p.flags.OutputPath != "" && inputs > 1 {
		return fmt.Errorf("%w: --output needs exactly one input file, got %d", ErrInvalidOptions, inputs)
	}
	return nil
}

// ProcessFile converts a single cache file.
//
// Hard errors (missing file, invalid UTF-8) abort before anything is
// written. When writing the result fails, the report is still returned
// together with the error so the caller can retry with WriteTo.
func (p *Processor) ProcessFile(path string) (*Report, error) {
	if err := p.Validate(1); err != nil {
		return nil, err
	}

	p.logf("\n%s\n", strings.Repeat("=", 60))
	p.logf("File selected: %s\n", filepath.Base(path))
	p.logf("  Reading file...\n")

	lines, err := cachefile.ReadLines(path)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Path:       path,
		TotalLines: len(lines),
	}
	p.logf("  Read %d %s\n", len(lines), internal.Plural(len(lines), "line", "lines"))

	sep, forced, _ := converter.ParseSeparator(p.flags.Separator)
	if !forced {
		sep = converter.DetectSeparator(lines)
		report.Detected = true
		p.logf("  Detected format: %s\n", sep.Describe())
	} else {
		p.logf("  Using format: %s\n", sep.Describe())
	}
	report.Separator = sep

	if sep == converter.Equal {
		report.AlreadyCanonical = true
		p.logf("  Already in the canonical format, no conversion needed\n")
		return report, nil
	}

	p.logf("  Converting (%s -> =)...\n", strings.ReplaceAll(sep.Token(), "\t", `\t`))
	result := converter.Convert(lines, sep)

	if p.flags.Dedupe {
		if removed := converter.DedupeResult(result); removed > 0 {
			p.logf("  Merged %d duplicate %s\n", removed, internal.Plural(removed, "entry", "entries"))
		}
	}

	report.Converted = result.Converted
	report.Skipped = result.Skipped
	report.Duplicates = result.Duplicates
	report.Lines = result.Lines

	p.logf("  %d %s converted\n", result.Converted, internal.Plural(result.Converted, "entry", "entries"))
	if result.Skipped > 0 {
		p.logf("  %d %s skipped (format mismatch)\n", result.Skipped, internal.Plural(result.Skipped, "entry", "entries"))
		if p.flags.Verbose {
			for _, n := range result.SkippedLines {
				p.logf("    line %d: %s\n", n, internal.Truncate(lines[n-1], skippedPreviewLength))
			}
		}
	}

	dest := p.destination(path)
	if p.flags.DryRun {
		report.DryRun = true
		p.logf("  Dry run: would write %s\n", filepath.Base(dest))
		return report, nil
	}

	overwritesSource := sameFile(dest, path)
	if overwritesSource && result.Converted == 0 {
		return report, fmt.Errorf("%w: %s", ErrNothingConverted, filepath.Base(path))
	}

	if overwritesSource && p.flags.Backup {
		backupPath, err := cachefile.Backup(path)
		if err != nil {
			return report, err
		}
		report.BackupPath = backupPath
		p.logf("  Backup created: %s\n", filepath.Base(backupPath))
	}

	if err := p.WriteTo(report, dest); err != nil {
		return report, err
	}

	return report, nil
}

// WriteTo writes the converted lines of report to dest and records dest
// as the report's output path
func (p *Processor) WriteTo(report *Report, dest string) error {
	if report.AlreadyCanonical {
		return fmt.Errorf("%s is already canonical, nothing to write", filepath.Base(report.Path))
	}

	p.logf("  Saving...\n")
	if err := cachefile.WriteLines(dest, report.Lines); err != nil {
		return fmt.Errorf("failed to save converted file: %w", err)
	}

	report.OutputPath = dest
	report.DryRun = false
	p.logf("  Output file: %s\n", filepath.Base(dest))
	return nil
}

// ProcessBatch converts several files one after another. Failures are
// reported and counted, and processing continues with the next file.
func (p *Processor) ProcessBatch(paths []string) ([]*Report, error) {
	if err := p.Validate(len(paths)); err != nil {
		return nil, err
	}

	reports := make([]*Report, 0, len(paths))
	convertedCount := 0
	dryRunCount := 0
	canonicalCount := 0
	errorCount := 0

	for i, path := range paths {
		if len(paths) > 1 {
			p.logf("\nProcessing %d/%d: %s\n", i+1, len(paths), path)
		}

		report, err := p.ProcessFile(path)
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			fmt.Fprintf(p.errOut, "Error processing '%s': %v\n", path, err)
			errorCount++
			continue
		}

		switch {
		case report.AlreadyCanonical:
			canonicalCount++
		case report.DryRun:
			dryRunCount++
		default:
			convertedCount++
		}
	}

	if len(paths) > 1 {
		p.logf("\n=== Batch Conversion Summary ===\n")
		p.logf("Total files: %d\n", len(paths))
		p.logf("Converted: %d\n", convertedCount)
		if dryRunCount > 0 {
			p.logf("Would convert (dry run): %d\n", dryRunCount)
		}
		p.logf("Skipped (already canonical): %d\n", canonicalCount)
		if errorCount > 0 {
			p.logf("Errors: %d\n", errorCount)
		}
		p.logf("================================\n")
	}

	if errorCount > 0 {
		return reports, fmt.Errorf("%d of %d %s failed", errorCount, len(paths), internal.Plural(len(paths), "file", "files"))
	}
	return reports, nil
}

// destination picks where the converted lines of path are written
func (p *Processor) destination(path string) string {
	switch {
	case p.flags.OutputPath != "":
		return p.flags.OutputPath
	case p.flags.InPlace:
		return path
	default:
		return cachefile.ConvertedPath(path)
	}
}

// sameFile reports whether a and b name the same file, also when one of
// them is relative or a link
func sameFile(a, b string) bool {
	if infoA, err := os.Stat(a); err == nil {
		if infoB, err := os.Stat(b); err == nil {
			return os.SameFile(infoA, infoB)
		}
	}

	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func (p *Processor) logf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}
