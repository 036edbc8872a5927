package gui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"

	"fyne.io/fyne/v2"
)

var (
	iconOnce sync.Once
	iconData []byte
)

// GetAppIcon returns the application icon as a Fyne resource
func GetAppIcon() fyne.Resource {
	iconOnce.Do(func() {
		iconData = drawIcon(256)
	})
	return &fyne.StaticResource{
		StaticName:    "cardprep.png",
		StaticContent: iconData,
	}
}

// drawIcon paints two overlapping flashcards
func drawIcon(size int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	back := color.RGBA{R: 0x3f, G: 0x6e, B: 0xb5, A: 0xff}
	front := color.RGBA{R: 0xf5, G: 0xf1, B: 0xe6, A: 0xff}
	edge := color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}

	card := func(x0, y0, x1, y1 int, fill color.RGBA) {
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				c := fill
				if x-x0 < 4 || x1-x < 5 || y-y0 < 4 || y1-y < 5 {
					c = edge
				}
				img.SetRGBA(x, y, c)
			}
		}
	}

	unit := size / 16
	card(2*unit, 2*unit, 11*unit, 12*unit, back)
	card(5*unit, 4*unit, 14*unit, 14*unit, front)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
