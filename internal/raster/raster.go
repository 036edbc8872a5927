package raster

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"codeberg.org/snonux/cardprep/internal"
	"codeberg.org/snonux/cardprep/internal/errors"
)

// DefaultWidth is the card image width used when none is configured
const DefaultWidth = 200

// Rasterizer writes one JPEG per PDF page
type Rasterizer struct {
	renderer Renderer
	Quality  int
}

// New creates a rasterizer on top of the given page renderer
func New(renderer Renderer) *Rasterizer {
	if renderer == nil {
		renderer = NewPopplerRenderer()
	}
	return &Rasterizer{renderer: renderer, Quality: 90}
}

// OutputName returns the file name for the page at index i (0-based)
func OutputName(i int, labels []string) string {
	if i < len(labels) {
		if slug := internal.Slug(labels[i]); slug != "" {
			return slug + ".jpg"
		}
	}
	return fmt.Sprintf("page_%d.jpg", i+1)
}

// RenderPages renders every page of pdfPath into outputDir and returns the
// written paths in page order. The first failing page aborts the run.
func (r *Rasterizer) RenderPages(ctx context.Context, pdfPath, outputDir string, targetWidth int, labels []string) ([]string, error) {
	if targetWidth <= 0 {
		return nil, errors.Validationf("target width must be positive, got %d", targetWidth)
	}

	pages, err := PageCount(pdfPath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, pages)
	for i := 0; i < pages; i++ {
		img, err := r.renderer.RenderPage(ctx, pdfPath, i+1)
		if err != nil {
			return paths, errors.Wrapf(err, errors.CodeFile, "failed to render page %d of %s", i+1, filepath.Base(pdfPath))
		}

		out := filepath.Join(outputDir, OutputName(i, labels))
		if err := r.writeJPEG(ResizeToWidth(CropBorder(img), targetWidth), out); err != nil {
			return paths, err
		}

		fmt.Printf("Rendered page %d/%d: %s\n", i+1, pages, filepath.Base(out))
		paths = append(paths, out)
	}

	return paths, nil
}

func (r *Rasterizer) writeJPEG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: r.Quality}); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
