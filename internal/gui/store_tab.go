package gui

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"codeberg.org/snonux/cardprep/internal"
	"codeberg.org/snonux/cardprep/internal/assets"
	"codeberg.org/snonux/cardprep/internal/review"
)

// storeTab pages through the shared asset store
type storeTab struct {
	a       *Application
	session *review.StoreSession
	content fyne.CanvasObject

	prevButton    *ttwidget.Button
	nextButton    *ttwidget.Button
	refreshButton *ttwidget.Button
	pageLabel     *widget.Label
	mismatchLabel *widget.Label

	rows        *fyne.Container
	rowControls []fyne.Disableable
}

func newStoreTab(a *Application) *storeTab {
	t := &storeTab{a: a, session: a.storeSession}

	t.prevButton = ttwidget.NewButtonWithIcon("", theme.NavigateBackIcon(), t.prevPage)
	t.prevButton.SetToolTip("Previous page (←)")
	t.nextButton = ttwidget.NewButtonWithIcon("", theme.NavigateNextIcon(), t.nextPage)
	t.nextButton.SetToolTip("Next page (→)")
	t.refreshButton = ttwidget.NewButtonWithIcon("Refresh list", theme.ViewRefreshIcon(), t.refresh)
	t.refreshButton.SetToolTip("Reload the asset store (F5)")

	t.pageLabel = widget.NewLabel("")
	t.mismatchLabel = widget.NewLabel("")

	t.rows = container.NewVBox()

	a.register(t.refreshButton)

	toolbar := container.NewHBox(
		t.prevButton,
		t.pageLabel,
		t.nextButton,
		widget.NewSeparator(),
		t.refreshButton,
		widget.NewSeparator(),
		t.mismatchLabel,
	)

	t.content = container.NewBorder(toolbar, nil, nil, nil, container.NewVScroll(t.rows))
	return t
}

func (t *storeTab) prevPage() {
	if t.session.PrevPage() {
		t.render()
	}
}

func (t *storeTab) nextPage() {
	if t.session.NextPage() {
		t.render()
	}
}

func (t *storeTab) refresh() {
	if err := t.session.Refresh(); err != nil {
		t.a.showError(err)
		return
	}
	t.render()
}

// render rebuilds the rows of the current page
func (t *storeTab) render() {
	t.rows.RemoveAll()
	t.rowControls = nil

	page := t.session.CurrentPage()
	if len(page) == 0 {
		t.rows.Add(widget.NewLabel("The asset store has no image/audio pairs yet."))
	}
	for _, pair := range page {
		t.rows.Add(t.pairRow(pair))
	}

	t.pageLabel.SetText(t.session.PageLabel())
	t.updateMismatchCount()
	t.setEnabled(!t.a.busy)
}

func (t *storeTab) pairRow(pair assets.Pair) fyne.CanvasObject {
	img := NewImageDisplay(fyne.NewSize(120, 90))
	img.SetImage(pair.ImagePath)

	mismatch := widget.NewCheck("Mismatch", func(checked bool) {
		t.session.SetMismatch(pair.Slug, checked)
		t.updateMismatchCount()
	})
	mismatch.SetChecked(t.session.IsMismatch(pair.Slug))

	regen := ttwidget.NewButtonWithIcon("Recreate audio", theme.MediaRecordIcon(), func() {
		t.a.runStep(fmt.Sprintf("Recreating audio for %s...", pair.Slug), func(ctx context.Context) error {
			return t.session.RegenerateAudio(ctx, pair.Slug)
		}, func() {
			t.a.updateStatus(fmt.Sprintf("Recreated audio for %s", pair.Slug))
			t.render()
		})
	})
	regen.SetToolTip("Speak the word again and replace the MP3")

	actions := container.NewHBox(mismatch, regen)
	t.rowControls = append(t.rowControls, mismatch, regen)

	if t.session.Editing() == pair.Slug {
		actions.Add(t.renameForm(pair))
	} else {
		rename := ttwidget.NewButtonWithIcon("Rename", theme.DocumentCreateIcon(), func() {
			t.session.Edit(pair.Slug)
			t.render()
		})
		rename.SetToolTip("Give the pair a new word and re-speak it")
		actions.Add(rename)
		t.rowControls = append(t.rowControls, rename)
	}

	info := container.NewVBox(
		widget.NewLabelWithStyle(pair.Slug, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		NewAudioPlayer(pair.AudioPath),
		actions,
	)
	return container.NewBorder(nil, widget.NewSeparator(), img, nil, info)
}

// renameForm is the inline editor shown for the pair being renamed
func (t *storeTab) renameForm(pair assets.Pair) fyne.CanvasObject {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("New word")
	entry.SetText(internal.SpokenForm(pair.Slug))

	apply := ttwidget.NewButtonWithIcon("Apply", theme.ConfirmIcon(), nil)
	cancel := ttwidget.NewButtonWithIcon("Cancel", theme.CancelIcon(), func() {
		t.session.CancelEdit()
		t.render()
	})

	apply.OnTapped = func() {
		newWord := entry.Text
		var newSlug string
		t.a.runStep(fmt.Sprintf("Renaming %s...", pair.Slug), func(ctx context.Context) error {
			var err error
			newSlug, err = t.session.Rename(ctx, pair.Slug, newWord)
			return err
		}, func() {
			t.a.updateStatus(fmt.Sprintf("Renamed %s to %s", pair.Slug, newSlug))
			t.render()
		})
	}
	entry.OnSubmitted = func(string) { apply.OnTapped() }

	t.rowControls = append(t.rowControls, entry, apply, cancel)

	entryBox := container.NewGridWrap(fyne.NewSize(220, entry.MinSize().Height), entry)
	return container.NewHBox(entryBox, apply, cancel)
}

func (t *storeTab) updateMismatchCount() {
	t.mismatchLabel.SetText(fmt.Sprintf("%d mismatch(es) flagged", t.session.MismatchCount()))
}

func (t *storeTab) setEnabled(enabled bool) {
	toggle(enabled && t.session.Page() > 0, t.prevButton)
	toggle(enabled && t.session.Page()+1 < t.session.PageCount(), t.nextButton)
	toggle(enabled, t.rowControls...)
}
