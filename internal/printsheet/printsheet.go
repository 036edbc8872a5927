// Package printsheet lays card images out on A4 pages for print-and-cut
// flashcards: 4 cm square cards in a 4 x 6 grid with cut guides.
package printsheet

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"sort"

	"github.com/jung-kurt/gofpdf"

	"codeberg.org/snonux/cardprep/internal/errors"
)

const (
	// DefaultImagesDir is the shared image store relative to the project root
	DefaultImagesDir = "shared/static/images"
	// DefaultOutputFile is written to the working directory
	DefaultOutputFile = "image_cards.pdf"

	ptToMM = 25.4 / 72
)

// Layout describes the card grid in millimetres
type Layout struct {
	PageWidth   float64
	PageHeight  float64
	CardSize    float64
	ImageMargin float64
	Cols        int
	Rows        int
}

// DefaultLayout is an A4 portrait page with 4 cm cards in 4 columns and 6 rows
func DefaultLayout() Layout {
	return Layout{
		PageWidth:   210,
		PageHeight:  297,
		CardSize:    40,
		ImageMargin: 2.5,
		Cols:        4,
		Rows:        6,
	}
}

// PerPage returns the number of cards on one page
func (l Layout) PerPage() int {
	return l.Cols * l.Rows
}

// Origin returns the top-left corner of the grid, centred on the page
func (l Layout) Origin() (x, y float64) {
	return (l.PageWidth - float64(l.Cols)*l.CardSize) / 2,
		(l.PageHeight - float64(l.Rows)*l.CardSize) / 2
}

// Card returns the top-left corner of the card at index idx on its page
func (l Layout) Card(idx int) (x, y float64) {
	ox, oy := l.Origin()
	row, col := idx/l.Cols, idx%l.Cols
	return ox + float64(col)*l.CardSize, oy + float64(row)*l.CardSize
}

// ImageBox returns the side of the square an image is fitted into
func (l Layout) ImageBox() float64 {
	return l.CardSize - 2*l.ImageMargin
}

// Fit scales a w x h image into the image box keeping its aspect ratio
func (l Layout) Fit(w, h int) (fw, fh float64) {
	box := l.ImageBox()
	if w >= h {
		return box, box * float64(h) / float64(w)
	}
	return box * float64(w) / float64(h), box
}

// CollectImages returns the sorted .jpg files in dir
func CollectImages(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, errors.MissingInputf("images directory not found: %s", dir)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.jpg"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.MissingInputf("no .jpg files found in %s", dir)
	}

	sort.Strings(files)
	return files, nil
}

// Generate writes every image of imagesDir onto cards in outputFile and
// returns the number of pages
func Generate(imagesDir, outputFile string) (int, error) {
	files, err := CollectImages(imagesDir)
	if err != nil {
		return 0, err
	}

	fmt.Printf("Found %d images. Generating PDF...\n", len(files))
	pages, err := DefaultLayout().Render(files, outputFile)
	if err != nil {
		return 0, err
	}

	fmt.Printf("\nPDF generated successfully: %s\n", outputFile)
	fmt.Printf("Total pages: %d\n", pages)
	return pages, nil
}

// Render draws the given images, PerPage to a page, into outputFile
func (l Layout) Render(files []string, outputFile string) (int, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	pages := 0
	for start := 0; start < len(files); start += l.PerPage() {
		pages++
		fmt.Printf("Processing page %d...\n", pages)
		pdf.AddPage()

		l.drawCutLines(pdf)

		end := start + l.PerPage()
		if end > len(files) {
			end = len(files)
		}
		for idx, file := range files[start:end] {
			x, y := l.Card(idx)
			if err := l.drawImage(pdf, file, x, y); err != nil {
				fmt.Printf("  Warning: Could not process %s: %v\n", filepath.Base(file), err)
				l.drawPlaceholder(pdf, x, y)
			}
		}
	}

	if err := pdf.OutputFileAndClose(outputFile); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", outputFile, err)
	}
	return pages, nil
}

// drawCutLines draws grey guides between cards and a black outer border
func (l Layout) drawCutLines(pdf *gofpdf.Fpdf) {
	ox, oy := l.Origin()
	w := float64(l.Cols) * l.CardSize
	h := float64(l.Rows) * l.CardSize

	pdf.SetDrawColor(128, 128, 128)
	pdf.SetLineWidth(0.5 * ptToMM)
	for col := 1; col < l.Cols; col++ {
		x := ox + float64(col)*l.CardSize
		pdf.Line(x, oy, x, oy+h)
	}
	for row := 1; row < l.Rows; row++ {
		y := oy + float64(row)*l.CardSize
		pdf.Line(ox, y, ox+w, y)
	}

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(1 * ptToMM)
	pdf.Rect(ox, oy, w, h, "D")
}

// drawImage decodes the image first so a broken file never reaches gofpdf,
// whose errors are sticky for the whole document
func (l Layout) drawImage(pdf *gofpdf.Fpdf, file string, x, y float64) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		return err
	}

	opts := gofpdf.ImageOptions{ImageType: "JPG"}
	pdf.RegisterImageOptionsReader(file, opts, &buf)
	if !pdf.Ok() {
		return pdf.Error()
	}

	b := img.Bounds()
	fw, fh := l.Fit(b.Dx(), b.Dy())
	box := l.ImageBox()
	pdf.ImageOptions(file,
		x+l.ImageMargin+(box-fw)/2, y+l.ImageMargin+(box-fh)/2,
		fw, fh, false, opts, 0, "")
	return pdf.Error()
}

func (l Layout) drawPlaceholder(pdf *gofpdf.Fpdf, x, y float64) {
	pdf.SetDrawColor(204, 204, 204)
	pdf.SetFillColor(242, 242, 242)
	pdf.SetLineWidth(0.2)
	pdf.Rect(x+l.ImageMargin, y+l.ImageMargin, l.ImageBox(), l.ImageBox(), "FD")
}
