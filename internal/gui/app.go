package gui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	fynetooltip "github.com/dweymouth/fyne-tooltip"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"codeberg.org/snonux/cacheconv/internal"
	"codeberg.org/snonux/cacheconv/internal/cli"
	"codeberg.org/snonux/cacheconv/internal/processor"
)

// Application represents the converter window
type Application struct {
	// Fyne components
	app    fyne.App
	window fyne.Window

	// UI elements
	dropLabel    *widget.Label
	selectButton *ttwidget.Button
	clearButton  *ttwidget.Button
	progress     *widget.ProgressBarInfinite
	statusLabel  *widget.Label
	logViewer    *LogViewer

	queue     *FileQueue
	processor *processor.Processor

	config *Config

	ctx    context.Context
	cancel context.CancelFunc
}

// Config holds GUI application configuration
type Config struct {
	// Flags are passed on to the processor for every conversion
	Flags *cli.Flags

	// MirrorStdout also prints the log panel output to stdout
	MirrorStdout bool
}

// DefaultConfig returns default GUI configuration
func DefaultConfig() *Config {
	return &Config{
		Flags: cli.NewFlags(),
	}
}

// New creates a new GUI application
func New(config *Config) *Application {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Flags == nil {
		config.Flags = cli.NewFlags()
	}

	// The log panel is the progress output in the window
	flags := *config.Flags
	flags.Quiet = false

	ctx, cancel := context.WithCancel(context.Background())

	a := &Application{
		app:    app.NewWithID("org.codeberg.snonux.cacheconv"),
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
	a.app.SetIcon(theme.DocumentIcon())

	a.logViewer = NewLogViewer()

	var mirror io.Writer
	if config.MirrorStdout {
		mirror = os.Stdout
	}
	logWriter := NewLogWriter(a.logViewer, mirror)

	a.processor = processor.NewProcessor(&flags, logWriter)
	a.processor.SetErrorOutput(logWriter)

	a.queue = NewFileQueue(ctx, a.processor.ProcessFile)
	a.queue.SetCallbacks(a.onJobStatus, a.onJobComplete)

	a.setupUI()

	return a
}

// setupUI creates the main user interface
func (a *Application) setupUI() {
	a.window = a.app.NewWindow(fmt.Sprintf("Cache Converter v%s", internal.Version))
	a.window.Resize(fyne.NewSize(760, 620))

	title := widget.NewLabelWithStyle("Translation Cache Converter", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	subtitle := widget.NewLabelWithStyle("Tab / ==> / = separators  →  original=translated", fyne.TextAlignCenter, fyne.TextStyle{Italic: true})

	a.dropLabel = widget.NewLabel("Drop translation_cache.txt here\nor use the button below")
	a.dropLabel.Alignment = fyne.TextAlignCenter
	dropArea := container.NewPadded(widget.NewCard("", "", container.NewCenter(a.dropLabel)))

	a.selectButton = ttwidget.NewButtonWithIcon("Select file", theme.FolderOpenIcon(), a.onSelectFile)
	a.selectButton.Importance = widget.HighImportance
	a.clearButton = ttwidget.NewButtonWithIcon("", theme.ContentClearIcon(), a.onClearLog)

	a.progress = widget.NewProgressBarInfinite()
	a.progress.Stop()
	a.progress.Hide()

	a.statusLabel = widget.NewLabel("Ready")

	buttons := container.NewHBox(layout.NewSpacer(), a.selectButton, a.clearButton, layout.NewSpacer())

	header := container.NewVBox(
		title,
		subtitle,
		widget.NewSeparator(),
		dropArea,
		buttons,
		a.progress,
		a.statusLabel,
		widget.NewSeparator(),
	)

	content := container.NewBorder(header, nil, nil, nil, a.logViewer)

	// Add the tooltip layer to enable tooltips
	a.window.SetContent(fynetooltip.AddWindowToolTipLayer(content, a.window.Canvas()))

	a.selectButton.SetToolTip("Choose a cache file to convert (Ctrl+O)")
	a.clearButton.SetToolTip("Clear log")

	a.window.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		for _, path := range droppedPaths(uris) {
			a.enqueue(path)
		}
	})

	openShortcut := &desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierShortcutDefault}
	a.window.Canvas().AddShortcut(openShortcut, func(fyne.Shortcut) {
		a.onSelectFile()
	})

	a.window.SetOnClosed(func() {
		a.cancel()
		a.queue.Stop()
	})

	a.logViewer.Log("Cache Converter started")
	a.logViewer.Log("Drag & drop available")
	a.logViewer.Log("Select translation_cache.txt to convert")
}

// Run starts the GUI application
func (a *Application) Run() {
	a.window.ShowAndRun()
}

// onSelectFile shows the file open dialog
func (a *Application) onSelectFile() {
	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if reader == nil {
			// Cancelled
			return
		}
		path := reader.URI().Path()
		reader.Close()

		a.enqueue(path)
	}, a.window)

	fileDialog.SetFilter(storage.NewExtensionFileFilter([]string{".txt"}))
	fileDialog.Show()
}

func (a *Application) onClearLog() {
	a.logViewer.Clear()
}

// enqueue adds a file to the conversion queue
func (a *Application) enqueue(path string) {
	a.queue.AddFile(path)
}

// onJobStatus is called from the queue when a job is queued or started
func (a *Application) onJobStatus(job *FileJob) {
	status := fmt.Sprintf("%s: %s", job.Status, filepath.Base(job.Path))
	fyne.Do(func() {
		a.statusLabel.SetText(status)
		a.updateProgress()
	})
}

// onJobComplete is called from the queue when a job finished
func (a *Application) onJobComplete(job *FileJob) {
	base := filepath.Base(job.Path)

	if job.Error != nil {
		a.logViewer.Log("Error: %v", job.Error)
	}

	fyne.Do(func() {
		a.updateProgress()

		if job.Error != nil {
			a.statusLabel.SetText(fmt.Sprintf("Failed: %s", base))
			dialog.ShowError(fmt.Errorf("conversion of %s failed: %w", base, job.Error), a.window)
			return
		}

		a.statusLabel.SetText(fmt.Sprintf("Done: %s", base))
		title := "Complete"
		if job.Report.AlreadyCanonical {
			title = "Info"
		}
		dialog.ShowInformation(title, job.Report.Summary(), a.window)
	})
}

// updateProgress shows the progress bar while the queue is busy. Must run
// on the main thread.
func (a *Application) updateProgress() {
	if a.queue.Busy() {
		a.progress.Show()
		a.progress.Start()
		a.selectButton.SetText("Add file")
		return
	}

	a.progress.Stop()
	a.progress.Hide()
	a.selectButton.SetText("Select file")
}

// droppedPaths returns the local file paths of dropped URIs. Folders and
// non-file URIs are ignored.
func droppedPaths(uris []fyne.URI) []string {
	var paths []string
	for _, uri := range uris {
		if uri == nil || uri.Scheme() != "file" {
			continue
		}
		path := uri.Path()
		if strings.TrimSpace(path) == "" {
			continue
		}
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			continue
		}
		paths = append(paths, path)
	}
	return paths
}
