package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// CropBorder trims the uniform border around a page. The background is the
// colour of the top-left pixel; the result is the bounding box of every
// pixel that differs from it. A page of one colour is returned unchanged.
func CropBorder(img image.Image) image.Image {
	b := img.Bounds()
	if b.Empty() {
		return img
	}

	bg := color.RGBAModel.Convert(img.At(b.Min.X, b.Min.Y))
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if color.RGBAModel.Convert(img.At(x, y)) == bg {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if maxX < minX {
		return img
	}

	crop := image.Rect(minX, minY, maxX+1, maxY+1)
	dst := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	draw.Draw(dst, dst.Bounds(), img, crop.Min, draw.Src)
	return dst
}

// ScaledHeight keeps the aspect ratio of a w x h image scaled to width
func ScaledHeight(width, w, h int) int {
	height := int(math.Round(float64(width) * float64(h) / float64(w)))
	if height < 1 {
		height = 1
	}
	return height
}

// ResizeToWidth scales img to the given width with Catmull-Rom resampling
func ResizeToWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	height := ScaledHeight(width, b.Dx(), b.Dy())

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
