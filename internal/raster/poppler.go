package raster

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// DPI is the render resolution, a 150/72 scale over the PDF's 72 DPI space
const DPI = 150

// Renderer renders a single 1-based page of a PDF to a bitmap
type Renderer interface {
	RenderPage(ctx context.Context, pdfPath string, page int) (image.Image, error)
}

// PopplerRenderer renders pages with the pdftoppm tool from poppler-utils
type PopplerRenderer struct {
	Binary string
	DPI    int
}

// NewPopplerRenderer creates a renderer using pdftoppm from PATH
func NewPopplerRenderer() *PopplerRenderer {
	return &PopplerRenderer{Binary: "pdftoppm", DPI: DPI}
}

// IsAvailable checks if pdftoppm can be found
func (p *PopplerRenderer) IsAvailable() error {
	if _, err := exec.LookPath(p.Binary); err != nil {
		return fmt.Errorf("%s not found: please install poppler-utils: %w", p.Binary, err)
	}
	return nil
}

// RenderPage runs pdftoppm for one page and decodes the PNG it writes
func (p *PopplerRenderer) RenderPage(ctx context.Context, pdfPath string, page int) (image.Image, error) {
	if err := p.IsAvailable(); err != nil {
		return nil, err
	}

	tempDir, err := os.MkdirTemp("", "cardprep-page-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	n := strconv.Itoa(page)
	outputBase := filepath.Join(tempDir, "page")
	cmd := exec.CommandContext(ctx, p.Binary,
		"-png", "-singlefile",
		"-r", strconv.Itoa(p.DPI),
		"-f", n, "-l", n,
		pdfPath, outputBase)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed on page %d: %w\nOutput: %s", page, err, string(output))
	}

	f, err := os.Open(outputBase + ".png")
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered page %d: %w", page, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode rendered page %d: %w", page, err)
	}
	return img, nil
}
