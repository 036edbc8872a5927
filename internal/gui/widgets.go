package gui

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// ImageDisplay shows one card image with its file name underneath
type ImageDisplay struct {
	widget.BaseWidget

	container   *fyne.Container
	imageCanvas *canvas.Image
	imageLabel  *widget.Label
}

// NewImageDisplay creates an image display of the given minimum size
func NewImageDisplay(size fyne.Size) *ImageDisplay {
	d := &ImageDisplay{}

	d.imageCanvas = canvas.NewImageFromResource(nil)
	d.imageCanvas.FillMode = canvas.ImageFillContain
	d.imageCanvas.SetMinSize(size)

	d.imageLabel = widget.NewLabel("No image")
	d.imageLabel.Alignment = fyne.TextAlignCenter
	d.imageLabel.Truncation = fyne.TextTruncateEllipsis

	d.container = container.NewBorder(nil, d.imageLabel, nil, nil, d.imageCanvas)

	d.ExtendBaseWidget(d)
	return d
}

// CreateRenderer implements fyne.Widget
func (d *ImageDisplay) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(d.container)
}

// SetImage loads and shows imagePath. The file is read on every call so a
// replaced image is picked up.
func (d *ImageDisplay) SetImage(imagePath string) {
	if imagePath == "" {
		d.Clear()
		return
	}

	img, err := loadImage(imagePath)
	if err != nil {
		d.imageCanvas.Image = nil
		d.imageCanvas.Refresh()
		d.imageLabel.SetText(err.Error())
		return
	}

	d.imageCanvas.Image = img
	d.imageCanvas.Refresh()
	d.imageLabel.SetText(filepath.Base(imagePath))
}

// Clear empties the display
func (d *ImageDisplay) Clear() {
	d.imageCanvas.Image = nil
	d.imageCanvas.Refresh()
	d.imageLabel.SetText("No image")
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error loading image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("error decoding image: %w", err)
	}
	return img, nil
}
