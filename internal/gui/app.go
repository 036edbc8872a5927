package gui

import (
	"context"
	"fmt"
	"os"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	fynetooltip "github.com/dweymouth/fyne-tooltip"

	"codeberg.org/snonux/cardprep/internal"
	"codeberg.org/snonux/cardprep/internal/processor"
	"codeberg.org/snonux/cardprep/internal/review"
)

// Application represents the desktop reviewer
type Application struct {
	// Fyne components
	app    fyne.App
	window fyne.Window

	statusLabel *widget.Label
	progress    *widget.ProgressBarInfinite
	logViewer   *LogViewer

	process *processTab
	store   *storeTab

	// Controls disabled while a step runs
	controls []fyne.Disableable
	busy     bool
	steps    sync.WaitGroup

	proc         *processor.Processor
	batchSession *review.BatchSession
	storeSession *review.StoreSession

	ctx    context.Context
	cancel context.CancelFunc
}

// Config holds GUI application configuration
type Config struct {
	Processor  *processor.Processor
	CaptureLog bool
}

// New creates the reviewer window
func New(config *Config) (*Application, error) {
	if config == nil || config.Processor == nil {
		return nil, fmt.Errorf("a processor is required")
	}

	storeSession, err := review.NewStoreSession(config.Processor.Store(), config.Processor.Speaker())
	if err != nil {
		return nil, fmt.Errorf("failed to read asset store: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	myApp := app.NewWithID("org.codeberg.snonux.cardprep")
	myApp.SetIcon(GetAppIcon())

	a := &Application{
		app:          myApp,
		proc:         config.Processor,
		batchSession: review.NewBatchSession(config.Processor),
		storeSession: storeSession,
		ctx:          ctx,
		cancel:       cancel,
	}

	a.setupUI()

	if config.CaptureLog {
		if err := a.logViewer.StartCapture(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	return a, nil
}

// setupUI creates the main user interface
func (a *Application) setupUI() {
	a.window = a.app.NewWindow(fmt.Sprintf("cardprep v%s - Flashcard Content Preparation", internal.Version))
	a.window.SetIcon(GetAppIcon())
	a.window.Resize(fyne.NewSize(1000, 800))

	a.statusLabel = widget.NewLabel("Ready")
	a.progress = widget.NewProgressBarInfinite()
	a.progress.Stop()
	a.progress.Hide()
	a.logViewer = NewLogViewer()

	a.process = newProcessTab(a)
	a.store = newStoreTab(a)

	tabs := container.NewAppTabs(
		container.NewTabItem("Process", a.process.content),
		container.NewTabItem("Review store", a.store.content),
	)
	tabs.OnSelected = func(item *container.TabItem) {
		if item.Text == "Review store" && !a.busy {
			a.store.refresh()
		}
	}

	statusSection := container.NewVBox(
		widget.NewSeparator(),
		container.NewBorder(nil, nil, nil, a.progress, a.statusLabel),
		a.logViewer,
	)

	content := container.NewBorder(nil, statusSection, nil, nil, tabs)

	// Add the tooltip layer to enable tooltips
	a.window.SetContent(fynetooltip.AddWindowToolTipLayer(content, a.window.Canvas()))

	a.window.SetOnClosed(func() {
		a.shutdown()
		a.logViewer.StopCapture()
	})

	a.setupKeyboardShortcuts()
	a.store.render()
}

// Run starts the GUI application
func (a *Application) Run() {
	a.window.ShowAndRun()
}

// register adds controls that are disabled while a step runs
func (a *Application) register(controls ...fyne.Disableable) {
	a.controls = append(a.controls, controls...)
}

// runStep runs one pipeline step off the UI thread with every control
// disabled. done runs on the UI thread after a successful step.
func (a *Application) runStep(status string, step func(ctx context.Context) error, done func()) {
	if a.busy {
		return
	}
	a.setUIEnabled(false)
	a.showProgress(status)

	a.startStep(step, func(err error) {
		fyne.Do(func() {
			a.hideProgress()
			a.setUIEnabled(true)
			if err != nil {
				a.showError(err)
				return
			}
			if done != nil {
				done()
			}
		})
	})
}

// startStep runs step in a goroutine tracked by shutdown, then finish
func (a *Application) startStep(step func(ctx context.Context) error, finish func(err error)) {
	a.steps.Add(1)
	go func() {
		err := step(a.ctx)
		a.steps.Done()
		finish(err)
	}()
}

// shutdown cancels a running step and waits for it before the batch of
// this run is discarded
func (a *Application) shutdown() {
	a.cancel()
	a.steps.Wait()
	if err := a.batchSession.Discard(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

// Helper methods
func (a *Application) setUIEnabled(enabled bool) {
	a.busy = !enabled
	for _, c := range a.controls {
		if enabled {
			c.Enable()
		} else {
			c.Disable()
		}
	}
	a.process.setEnabled(enabled)
	a.store.setEnabled(enabled)
}

func (a *Application) showProgress(message string) {
	a.statusLabel.SetText(message)
	a.progress.Show()
	a.progress.Start()
}

func (a *Application) hideProgress() {
	a.progress.Stop()
	a.progress.Hide()
	a.updateStatus("Ready")
}

func (a *Application) updateStatus(message string) {
	a.statusLabel.SetText(message)
}

func (a *Application) showError(err error) {
	dialog.ShowError(err, a.window)
	a.updateStatus("Error: " + err.Error())
}

func (a *Application) setupKeyboardShortcuts() {
	a.window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if a.busy || a.window.Canvas().Focused() != nil {
			return
		}
		switch ev.Name {
		case fyne.KeyLeft, fyne.KeyPageUp:
			a.store.prevPage()
		case fyne.KeyRight, fyne.KeyPageDown:
			a.store.nextPage()
		case fyne.KeyF5:
			a.store.refresh()
		}
	})
}
