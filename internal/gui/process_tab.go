package gui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"codeberg.org/snonux/cardprep/internal/assets"
	"codeberg.org/snonux/cardprep/internal/batch"
	"codeberg.org/snonux/cardprep/internal/catalog"
	"codeberg.org/snonux/cardprep/internal/errors"
	"codeberg.org/snonux/cardprep/internal/processor"
	"codeberg.org/snonux/cardprep/internal/review"
)

// targetPicker is one catalog checkbox with its group choice
type targetPicker struct {
	target catalog.Target
	check  *widget.Check
	group  *widget.Select
}

// processTab turns a PDF and a word list into a batch and applies the
// accepted words
type processTab struct {
	a       *Application
	session *review.BatchSession
	content fyne.CanvasObject

	pdfName  string
	pdfData  []byte
	pdfLabel *widget.Label

	wordsEntry     *widget.Entry
	chooseButton   *ttwidget.Button
	processButton  *ttwidget.Button
	applyButton    *ttwidget.Button
	discardButton  *ttwidget.Button
	selectAll      *widget.Check
	selectionLabel *widget.Label
	resultLog      *widget.Label

	rows    *fyne.Container
	checks  []*widget.Check
	targets []*targetPicker
}

func newProcessTab(a *Application) *processTab {
	t := &processTab{a: a, session: a.batchSession}

	t.pdfLabel = widget.NewLabel("No PDF selected")
	t.chooseButton = ttwidget.NewButtonWithIcon("Choose PDF", theme.FolderOpenIcon(), t.onChoosePDF)
	t.chooseButton.SetToolTip("Pick the picture book to process")

	t.wordsEntry = widget.NewEntry()
	t.wordsEntry.SetPlaceHolder("Comma-separated words, one per page (e.g. cat, dog, bird)")
	t.wordsEntry.OnSubmitted = func(string) { t.onProcess() }

	t.processButton = ttwidget.NewButtonWithIcon("Process", theme.MediaPlayIcon(), t.onProcess)
	t.processButton.SetToolTip("Render pages and generate audio")
	t.processButton.Importance = widget.HighImportance

	t.selectAll = widget.NewCheck("Select all", t.onSelectAll)
	t.selectionLabel = widget.NewLabel("")

	t.applyButton = ttwidget.NewButtonWithIcon("Apply", theme.ConfirmIcon(), t.onApply)
	t.applyButton.SetToolTip("Copy accepted words into the asset store and update the selected catalogs")
	t.discardButton = ttwidget.NewButtonWithIcon("Discard", theme.DeleteIcon(), t.onDiscard)
	t.discardButton.SetToolTip("Throw away this run")

	t.resultLog = widget.NewLabel("")
	t.resultLog.Wrapping = fyne.TextWrapWord

	t.rows = container.NewVBox()

	targetBox := container.NewVBox(widget.NewLabelWithStyle("Update catalogs", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
	for _, target := range a.proc.Targets() {
		p := &targetPicker{target: target}
		p.check = widget.NewCheck(target.Label, nil)
		p.group = widget.NewSelect(target.Groups, nil)
		if len(target.Groups) > 0 {
			p.group.SetSelected(target.Groups[0])
		}
		t.targets = append(t.targets, p)
		targetBox.Add(container.NewHBox(p.check, p.group))
	}

	a.register(t.chooseButton, t.wordsEntry, t.processButton)

	input := container.NewVBox(
		container.NewBorder(nil, nil, t.chooseButton, nil, t.pdfLabel),
		container.NewBorder(nil, nil, nil, t.processButton, t.wordsEntry),
		widget.NewSeparator(),
	)

	actions := container.NewVBox(
		widget.NewSeparator(),
		container.NewHBox(t.selectAll, t.selectionLabel),
		targetBox,
		container.NewHBox(t.applyButton, t.discardButton),
		t.resultLog,
	)

	t.content = container.NewBorder(input, actions, nil, nil, container.NewVScroll(t.rows))
	t.render()
	return t
}

func (t *processTab) onChoosePDF() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			t.a.showError(err)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		data, err := io.ReadAll(reader)
		if err != nil {
			t.a.showError(errors.Wrap(err, errors.CodeFile, "failed to read PDF"))
			return
		}
		t.pdfName = reader.URI().Name()
		t.pdfData = data
		t.pdfLabel.SetText(fmt.Sprintf("%s (%d bytes)", t.pdfName, len(data)))
	}, t.a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".pdf", ".PDF"}))
	d.Show()
}

func (t *processTab) onProcess() {
	words := batch.ParseWords(t.wordsEntry.Text)
	data := t.pdfData

	if len(data) == 0 {
		t.a.showError(errors.MissingInputf("please choose a PDF first"))
		return
	}
	if len(words) == 0 {
		t.a.showError(errors.MissingInputf("please enter the words for the pages"))
		return
	}

	t.resultLog.SetText("")
	t.a.runStep(fmt.Sprintf("Processing %s...", t.pdfName), func(ctx context.Context) error {
		return t.session.StartBytes(ctx, data, words)
	}, func() {
		b := t.session.Batch()
		t.a.updateStatus(fmt.Sprintf("Processed %d word(s), %d without audio", len(b.Words), len(b.Failed())))
		t.render()
	})
}

func (t *processTab) onSelectAll(checked bool) {
	for _, c := range t.checks {
		c.SetChecked(checked)
	}
}

func (t *processTab) onApply() {
	selections, err := t.selections()
	if err != nil {
		t.a.showError(err)
		return
	}

	var outcome *review.Outcome
	t.a.runStep("Applying accepted words...", func(ctx context.Context) error {
		var err error
		outcome, err = t.session.Apply(ctx, selections)
		if err != nil && outcome != nil {
			// Files were already copied, so the log is shown next to the error
			summary := applySummary(outcome, err)
			fyne.Do(func() {
				t.resultLog.SetText(summary)
				t.render()
			})
		}
		return err
	}, func() {
		t.resultLog.SetText(applySummary(outcome, nil))
		t.a.updateStatus("Applied. Temporary files removed.")
		t.render()
	})
}

func (t *processTab) onDiscard() {
	dialog.ShowConfirm("Discard run", "Delete the rendered images and audio of this run?", func(ok bool) {
		if !ok {
			return
		}
		if err := t.session.Discard(); err != nil {
			t.a.showError(err)
		}
		t.render()
	}, t.a.window)
}

// selections reads the ticked catalog targets
func (t *processTab) selections() ([]processor.Selection, error) {
	var selections []processor.Selection
	for _, p := range t.targets {
		if !p.check.Checked {
			continue
		}
		if p.group.Selected == "" {
			return nil, errors.MissingInputf("choose a group for %s", p.target.Label)
		}
		selections = append(selections, processor.Selection{Target: p.target.Name, Group: p.group.Selected})
	}
	return selections, nil
}

// render rebuilds the per-word rows from the session
func (t *processTab) render() {
	t.rows.RemoveAll()
	t.checks = nil

	b := t.session.Batch()
	if b == nil {
		t.rows.Add(widget.NewLabel("Choose a PDF, enter one word per page and press Process."))
		t.updateSelection()
		return
	}

	for _, word := range b.Words {
		img := NewImageDisplay(fyne.NewSize(160, 120))
		img.SetImage(b.ImagePath(word))

		check := widget.NewCheck("Accept", func(checked bool) {
			t.session.SetAccepted(word, checked)
			t.updateSelection()
		})
		check.SetChecked(t.session.IsAccepted(word))
		t.checks = append(t.checks, check)

		info := container.NewVBox(widget.NewLabelWithStyle(word, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
		if err := b.AudioError(word); err != nil {
			failure := widget.NewLabel(fmt.Sprintf("No audio: %v", err))
			failure.Importance = widget.DangerImportance
			failure.Wrapping = fyne.TextWrapWord
			info.Add(failure)
		} else {
			info.Add(NewAudioPlayer(b.AudioPath(word)))
		}
		info.Add(check)

		t.rows.Add(container.NewBorder(nil, widget.NewSeparator(), img, nil, info))
	}
	t.updateSelection()
}

func (t *processTab) updateSelection() {
	t.selectionLabel.SetText(t.session.SelectionLabel())
	t.setEnabled(!t.a.busy)
}

// setEnabled toggles the controls that depend on a batch being present
func (t *processTab) setEnabled(enabled bool) {
	active := enabled && t.session.Active()
	toggle(active, t.selectAll, t.discardButton)
	toggle(active && len(t.session.Accepted()) > 0, t.applyButton)
	for _, c := range t.checks {
		toggle(active, c)
	}
}

func toggle(enabled bool, controls ...fyne.Disableable) {
	for _, c := range controls {
		if enabled {
			c.Enable()
		} else {
			c.Disable()
		}
	}
}

// applySummary is the result log after Apply. A failed Apply keeps the run,
// which is said below the partial log.
func applySummary(outcome *review.Outcome, err error) string {
	text := formatOutcome(outcome)
	if err == nil {
		return text
	}
	if text != "" {
		text += "\n"
	}
	return text + fmt.Sprintf("Stopped: %v\nThe run is kept, Apply can be retried.", err)
}

// formatOutcome renders the promotion and catalog log shown after Apply
func formatOutcome(outcome *review.Outcome) string {
	if outcome == nil {
		return ""
	}

	var sb strings.Builder
	created, overwritten := 0, 0
	for _, e := range outcome.Promotions {
		switch e.Status {
		case assets.StatusCreated:
			created++
		case assets.StatusOverwritten:
			overwritten++
		}
		sb.WriteString(e.String())
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "%d file(s) created, %d overwritten\n", created, overwritten)

	for _, r := range outcome.Catalogs {
		if len(r.Added) == 0 {
			fmt.Fprintf(&sb, "%s: nothing new\n", r.Selection)
			continue
		}
		fmt.Fprintf(&sb, "%s: added %s\n", r.Selection, batch.Join(r.Added))
	}
	return strings.TrimRight(sb.String(), "\n")
}
