package processor

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"codeberg.org/snonux/cacheconv/internal/cachefile"
	"codeberg.org/snonux/cacheconv/internal/cli"
	"codeberg.org/snonux/cacheconv/internal/converter"
	"codeberg.org/snonux/cacheconv/internal/testutil"
)

func newTestProcessor(flags *cli.Flags) (*Processor, *testutil.LogRecorder) {
	log := &testutil.LogRecorder{}
	p := NewProcessor(flags, log)
	p.SetErrorOutput(log)
	return p, log
}

func TestNewProcessor(t *testing.T) {
	flags := cli.NewFlags()
	p := NewProcessor(flags, nil)

	if p == nil {
		t.Fatal("NewProcessor returned nil")
	}
	if p.flags != flags {
		t.Error("Processor flags not set correctly")
	}
	if p.out != os.Stdout {
		t.Error("Expected stdout as default output")
	}

	// Nil flags fall back to defaults
	if p := NewProcessor(nil, nil); p.flags == nil {
		t.Error("Expected default flags")
	}
}

func TestNewProcessor_Quiet(t *testing.T) {
	flags := cli.NewFlags()
	flags.Quiet = true
	p, log := newTestProcessor(flags)

	path := testutil.CreateCacheFile(t, t.TempDir(), "cache.txt", "a\tb")
	if _, err := p.ProcessFile(path); err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	if lines := log.Lines(); len(lines) != 0 {
		t.Errorf("Expected no output in quiet mode, got %v", lines)
	}
}

func TestProcessFile_EndToEnd(t *testing.T) {
	tmpDir := t.TempDir()
	path := testutil.CreateCacheFile(t, tmpDir, "translation_cache.txt",
		"foo\tbar", "baz\tqux", "", "malformed")

	p, log := newTestProcessor(cli.NewFlags())
	report, err := p.ProcessFile(path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	want := &Report{
		Path:       path,
		TotalLines: 4,
		Separator:  converter.Tab,
		Detected:   true,
		Converted:  2,
		Skipped:    1,
		OutputPath: filepath.Join(tmpDir, "translation_cache_converted.txt"),
		Lines:      []string{"foo=bar\n", "baz=qux\n"},
	}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Errorf("ProcessFile() report mismatch (-want +got):\n%s", diff)
	}

	testutil.AssertFileContent(t, report.OutputPath, []byte("foo=bar\nbaz=qux\n"))

	// Source must be untouched
	testutil.AssertFileContent(t, path, []byte("foo\tbar\nbaz\tqux\n\nmalformed\n"))

	for _, want := range []string{
		"File selected: translation_cache.txt",
		"Read 4 lines",
		"Detected format: tab",
		"2 entries converted",
		"1 entry skipped",
		"Output file: translation_cache_converted.txt",
	} {
		if !strings.Contains(log.String(), want) {
			t.Errorf("Log output missing %q:\n%s", want, log.String())
		}
	}
}

func TestProcessFile_ArrowFormat(t *testing.T) {
	tmpDir := t.TempDir()
	path := testutil.CreateCacheFile(t, tmpDir, "cache.txt",
		"Start game==>게임 시작", "a==>b==>c")

	p, _ := newTestProcessor(cli.NewFlags())
	report, err := p.ProcessFile(path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	if report.Separator != converter.Arrow {
		t.Errorf("Separator = %v, want arrow", report.Separator)
	}
	testutil.AssertFileContent(t, report.OutputPath, []byte("Start game=게임 시작\na=b==>c\n"))
}

func TestProcessFile_AlreadyCanonical(t *testing.T) {
	tmpDir := t.TempDir()
	path := testutil.CreateCacheFile(t, tmpDir, "cache.txt", "hello=world", "foo=bar")

	p, log := newTestProcessor(cli.NewFlags())

	// Twice, to make sure nothing changes between runs
	for run := 1; run <= 2; run++ {
		report, err := p.ProcessFile(path)
		if err != nil {
			t.Fatalf("run %d: ProcessFile failed: %v", run, err)
		}
		if !report.AlreadyCanonical {
			t.Errorf("run %d: expected AlreadyCanonical", run)
		}
		if report.Converted != 0 || report.Skipped != 0 || report.Written() {
			t.Errorf("run %d: unexpected report %+v", run, report)
		}
		testutil.AssertFileNotExists(t, cachefile.ConvertedPath(path))
	}

	testutil.AssertFileContent(t, path, []byte("hello=world\nfoo=bar\n"))
	if !strings.Contains(log.String(), "no conversion needed") {
		t.Errorf("Expected no-conversion message, got:\n%s", log.String())
	}
}

func TestProcessFile_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := testutil.CreateCacheFile(t, tmpDir, "empty.txt")

	p, _ := newTestProcessor(cli.NewFlags())
	report, err := p.ProcessFile(path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if !report.AlreadyCanonical || report.TotalLines != 0 {
		t.Errorf("Unexpected report for empty file: %+v", report)
	}
}

func TestProcessFile_FileNotFound(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "missing.txt")

	p, _ := newTestProcessor(cli.NewFlags())
	report, err := p.ProcessFile(path)
	if !errors.Is(err, cachefile.ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}
	if report != nil {
		t.Error("Expected no report for missing file")
	}
	if files := testutil.ListFiles(t, tmpDir); len(files) != 0 {
		t.Errorf("Expected no output files, got %v", files)
	}
}

func TestProcessFile_InvalidUTF8(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "cache.txt")
	testutil.CreateTestFile(t, path, []byte("a\tb\n\xc3\x28\tc\n"))

	p, _ := newTestProcessor(cli.NewFlags())
	_, err := p.ProcessFile(path)
	if !errors.Is(err, cachefile.ErrDecoding) {
		t.Errorf("Expected ErrDecoding, got %v", err)
	}
	testutil.AssertFileNotExists(t, cachefile.ConvertedPath(path))
}

func TestProcessFile_WriteFailureCanBeRetried(t *testing.T) {
	tmpDir := t.TempDir()
	path := testutil.CreateCacheFile(t, tmpDir, "cache.txt", "a\tb", "c\td")

	flags := cli.NewFlags()
	flags.OutputPath = filepath.Join(tmpDir, "no-such-dir", "out.txt")
	p, _ := newTestProcessor(flags)

	report, err := p.ProcessFile(path)
	if !errors.Is(err, cachefile.ErrWrite) {
		t.Fatalf("Expected ErrWrite, got %v", err)
	}
	if report == nil {
		t.Fatal("Expected report to survive a write failure")
	}
	if report.Written() {
		t.Error("Report claims an output file after a failed write")
	}
	if diff := cmp.Diff([]string{"a=b\n", "c=d\n"}, report.Lines); diff != "" {
		t.Errorf("Lines lost after write failure (-want +got):\n%s", diff)
	}

	// Retry against another destination
	retry := filepath.Join(tmpDir, "retry.txt")
	if err := p.WriteTo(report, retry); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if report.OutputPath != retry {
		t.Errorf("OutputPath = %q, want %q", report.OutputPath, retry)
	}
	testutil.AssertFileContent(t, retry, []byte("a=b\nc=d\n"))
}

func TestProcessFile_InPlace(t *testing.T) {
	tmpDir := t.TempDir()
	path := testutil.CreateCacheFile(t, tmpDir, "cache.txt", "a==>b", "c==>d")

	flags := cli.NewFlags()
	flags.InPlace = true
	p, _ := newTestProcessor(flags)

	report, err := p.ProcessFile(path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	if report.OutputPath != path {
		t.Errorf("OutputPath = %q, want %q", report.OutputPath, path)
	}
	if report.BackupPath != path+cachefile.BackupSuffix {
		t.Errorf("BackupPath = %q", report.BackupPath)
	}
	testutil.AssertFileExists(t, report.BackupPath)
	testutil.AssertFileContent(t, path, []byte("a=b\nc=d\n"))
	testutil.AssertFileContent(t, report.BackupPath, []byte("a==>b\nc==>d\n"))
	testutil.AssertFileNotExists(t, cachefile.ConvertedPath(path))
}

func TestProcessFile_InPlaceWithoutBackup(t *testing.T) {
	tmpDir := t.TempDir()
	path := testutil.CreateCacheFile(t, tmpDir, "cache.txt", "a\tb")

	flags := cli.NewFlags()
	flags.InPlace = true
	flags.Backup = false
	p, _ := newTestProcessor(flags)

	report, err := p.ProcessFile(path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if report.BackupPath != "" {
		t.Errorf("Unexpected backup %q", report.BackupPath)
	}
	testutil.AssertFileNotExists(t, path+cachefile.BackupSuffix)
	testutil.AssertFileContent(t, path, []byte("a=b\n"))
}

func TestProcessFile_DryRun(t *testing.T) {
	tmpDir := t.TempDir()
	path := testutil.CreateCacheFile(t, tmpDir, "cache.txt", "a\tb", "broken")

	flags := cli.NewFlags()
	flags.DryRun = true
	flags.Verbose = true
	p, log := newTestProcessor(flags)

	report, err := p.ProcessFile(path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	if !report.DryRun || report.Written() {
		t.Errorf("Unexpected dry run report: %+v", report)
	}
	if report.Converted != 1 || report.Skipped != 1 {
		t.Errorf("counts = (%d, %d), want (1, 1)", report.Converted, report.Skipped)
	}
	if files := testutil.ListFiles(t, tmpDir); len(files) != 1 {
		t.Errorf("Dry run wrote files: %v", files)
	}
	if !strings.Contains(log.String(), "line 2: broken") {
		t.Errorf("Verbose output should list the skipped line:\n%s", log.String())
	}
}

func TestProcessFile_ForcedSeparator(t *testing.T) {
	tmpDir := t.TempDir()
	// Detection would pick tab, but the file is really "==>" separated
	path := testutil.CreateCacheFile(t, tmpDir, "cache.txt", "a\tb==>c", "d\te==>f", "g\th")

	flags := cli.NewFlags()
	flags.Separator = "arrow"
	p, _ := newTestProcessor(flags)

	report, err := p.ProcessFile(path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if report.Detected || report.Separator != converter.Arrow {
		t.Errorf("Expected forced arrow separator, got %v (detected %v)", report.Separator, report.Detected)
	}
	if diff := cmp.Diff([]string{"a\tb=c\n", "d\te=f\n"}, report.Lines); diff != "" {
		t.Errorf("Lines mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessFile_Dedupe(t *testing.T) {
	tmpDir := t.TempDir()
	path := testutil.CreateCacheFile(t, tmpDir, "cache.txt", "a\t1", "b\t2", "a\t3")

	flags := cli.NewFlags()
	flags.Dedupe = true
	p, _ := newTestProcessor(flags)

	report, err := p.ProcessFile(path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if report.Converted != 2 || report.Duplicates != 1 {
		t.Errorf("counts = converted %d, duplicates %d", report.Converted, report.Duplicates)
	}
	testutil.AssertFileContent(t, report.OutputPath, []byte("a=3\nb=2\n"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(f *cli.Flags)
		inputs  int
		wantErr bool
	}{
		{"defaults", func(f *cli.Flags) {}, 3, false},
		{"bad separator", func(f *cli.Flags) { f.Separator = "pipe" }, 1, true},
		{"output with in-place", func(f *cli.Flags) { f.OutputPath = "x"; f.InPlace = true }, 1, true},
		{"output with many inputs", func(f *cli.Flags) { f.OutputPath = "x" }, 2, true},
		{"output with one input", func(f *cli.Flags) { f.OutputPath = "x" }, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := cli.NewFlags()
			tt.modify(flags)
			p, _ := newTestProcessor(flags)

			err := p.Validate(tt.inputs)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("Expected ErrInvalidOptions, got %v", err)
			}
		})
	}
}

func TestProcessBatch(t *testing.T) {
	tmpDir := t.TempDir()
	tabFile := testutil.CreateCacheFile(t, tmpDir, "tab.txt", "a\tb")
	arrowFile := testutil.CreateCacheFile(t, tmpDir, "arrow.txt", "c==>d")
	canonical := testutil.CreateCacheFile(t, tmpDir, "canonical.txt", "e=f")
	missing := filepath.Join(tmpDir, "missing.txt")

	p, log := newTestProcessor(cli.NewFlags())
	reports, err := p.ProcessBatch([]string{tabFile, missing, arrowFile, canonical})
	if err == nil {
		t.Fatal("Expected error for missing file in batch")
	}
	if !strings.Contains(err.Error(), "1 of 4 files failed") {
		t.Errorf("Unexpected batch error: %v", err)
	}

	// The failure must not stop the remaining files
	if len(reports) != 3 {
		t.Fatalf("Expected 3 reports, got %d", len(reports))
	}
	testutil.AssertFileContent(t, cachefile.ConvertedPath(tabFile), []byte("a=b\n"))
	testutil.AssertFileContent(t, cachefile.ConvertedPath(arrowFile), []byte("c=d\n"))
	testutil.AssertFileNotExists(t, cachefile.ConvertedPath(canonical))

	for _, want := range []string{
		"Processing 2/4",
		"Error processing",
		"Total files: 4",
		"Converted: 2",
		"Skipped (already canonical): 1",
		"Errors: 1",
	} {
		if !strings.Contains(log.String(), want) {
			t.Errorf("Batch output missing %q:\n%s", want, log.String())
		}
	}
}

func TestProcessBatch_InvalidOptions(t *testing.T) {
	flags := cli.NewFlags()
	flags.OutputPath = "out.txt"
	p, _ := newTestProcessor(flags)

	_, err := p.ProcessBatch([]string{"a.txt", "b.txt"})
	if !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("Expected ErrInvalidOptions, got %v", err)
	}
}

func TestProcessBatch_BrokenLogWriter(t *testing.T) {
	path := testutil.CreateCacheFile(t, t.TempDir(), "cache.txt", "a\tb")

	// Progress output failures must not affect the conversion
	p := NewProcessor(cli.NewFlags(), testutil.FailingWriter{})
	p.SetErrorOutput(&bytes.Buffer{})

	reports, err := p.ProcessBatch([]string{path})
	if err != nil {
		t.Fatalf("ProcessBatch failed: %v", err)
	}
	if len(reports) != 1 || !reports[0].Written() {
		t.Errorf("Unexpected reports: %+v", reports)
	}
}

func TestProcessFile_CarriageReturnLineEndings(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "cache.txt")
	testutil.CreateTestFile(t, path, []byte("foo\tbar\rbaz\tqux\r"))

	p, _ := newTestProcessor(cli.NewFlags())
	report, err := p.ProcessFile(path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	if report.TotalLines != 2 {
		t.Errorf("TotalLines = %d, want 2", report.TotalLines)
	}
	if report.Converted != 2 || report.Skipped != 0 {
		t.Errorf("counts = (%d, %d), want (2, 0)", report.Converted, report.Skipped)
	}
	if diff := cmp.Diff([]string{"foo=bar\n", "baz=qux\n"}, report.Lines); diff != "" {
		t.Errorf("Lines mismatch (-want +got):\n%s", diff)
	}
	testutil.AssertFileContent(t, report.OutputPath, []byte("foo=bar\nbaz=qux\n"))
}

func TestProcessFile_InPlaceRefusesEmptyResult(t *testing.T) {
	tmpDir := t.TempDir()
	path := testutil.CreateCacheFile(t, tmpDir, "cache.txt", "a\tb", "c\td")

	flags := cli.NewFlags()
	flags.InPlace = true
	flags.Backup = false
	// Wrong separator: nothing in the file uses "==>"
	flags.Separator = "arrow"
	p, _ := newTestProcessor(flags)

	report, err := p.ProcessFile(path)
	if !errors.Is(err, ErrNothingConverted) {
		t.Fatalf("Expected ErrNothingConverted, got %v", err)
	}
	if report == nil || report.Skipped != 2 || report.Written() {
		t.Errorf("Unexpected report: %+v", report)
	}
	testutil.AssertFileContent(t, path, []byte("a\tb\nc\td\n"))
}

func TestProcessFile_OutputToSourceKeepsBackup(t *testing.T) {
	tmpDir := t.TempDir()
	path := testutil.CreateCacheFile(t, tmpDir, "cache.txt", "a==>b")

	flags := cli.NewFlags()
	flags.OutputPath = filepath.Join(tmpDir, ".", "cache.txt")
	p, _ := newTestProcessor(flags)

	report, err := p.ProcessFile(path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if report.BackupPath != path+cachefile.BackupSuffix {
		t.Errorf("BackupPath = %q, want %q", report.BackupPath, path+cachefile.BackupSuffix)
	}
	testutil.AssertFileContent(t, path, []byte("a=b\n"))
	testutil.AssertFileContent(t, path+cachefile.BackupSuffix, []byte("a==>b\n"))
}

func TestProcessFile_OutputToSourceRefusesEmptyResult(t *testing.T) {
	tmpDir := t.TempDir()
	path := testutil.CreateCacheFile(t, tmpDir, "cache.txt", "no separator")

	flags := cli.NewFlags()
	flags.OutputPath = path
	flags.Separator = "tab"
	p, _ := newTestProcessor(flags)

	_, err := p.ProcessFile(path)
	if !errors.Is(err, ErrNothingConverted) {
		t.Fatalf("Expected ErrNothingConverted, got %v", err)
	}
	testutil.AssertFileContent(t, path, []byte("no separator\n"))
	testutil.AssertFileNotExists(t, path+cachefile.BackupSuffix)
}

func TestProcessBatch_DryRunSummary(t *testing.T) {
	tmpDir := t.TempDir()
	first := testutil.CreateCacheFile(t, tmpDir, "first.txt", "a\tb")
	second := testutil.CreateCacheFile(t, tmpDir, "second.txt", "c==>d")

	flags := cli.NewFlags()
	flags.DryRun = true
	p, log := newTestProcessor(flags)

	if _, err := p.ProcessBatch([]string{first, second}); err != nil {
		t.Fatalf("ProcessBatch failed: %v", err)
	}

	if !strings.Contains(log.String(), "Converted: 0") {
		t.Errorf("Dry run files must not count as converted:\n%s", log.String())
	}
	if !strings.Contains(log.String(), "Would convert (dry run): 2") {
		t.Errorf("Batch summary missing dry run count:\n%s", log.String())
	}
	testutil.AssertFileNotExists(t, cachefile.ConvertedPath(first))
	testutil.AssertFileNotExists(t, cachefile.ConvertedPath(second))
}
