package raster

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/snonux/cardprep/internal/errors"
	"codeberg.org/snonux/cardprep/internal/testutil"
)

func TestPageCount(t *testing.T) {
	dir := t.TempDir()

	for _, pages := range []int{1, 3, 7} {
		path := filepath.Join(dir, "doc.pdf")
		testutil.WritePDF(t, path, pages)

		got, err := PageCount(path)
		if err != nil {
			t.Fatalf("PageCount() unexpected error: %v", err)
		}
		if got != pages {
			t.Errorf("Expected %d pages, got %d", pages, got)
		}
	}
}

func TestPageCountTolerantReading(t *testing.T) {
	// Without poppler only the in-process reader can count these
	original := PDFInfoBinary
	PDFInfoBinary = "cardprep-no-such-pdfinfo"
	defer func() { PDFInfoBinary = original }()

	tests := []struct {
		name   string
		modify func(data []byte) []byte
	}{
		{"pdf 2.0 header", func(data []byte) []byte {
			return append([]byte("%PDF-2.0"), data[len("%PDF-1.3"):]...)
		}},
		{"trailing bytes after EOF", func(data []byte) []byte {
			return append(data, make([]byte, 200)...)
		}},
		{"both", func(data []byte) []byte {
			data = append([]byte("%PDF-2.0"), data[len("%PDF-1.3"):]...)
			return append(data, []byte("garbage written by a scanner")...)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "doc.pdf")
			testutil.WritePDF(t, path, 3)

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("Failed to read PDF: %v", err)
			}
			testutil.CreateTestFile(t, path, tt.modify(data))

			got, err := PageCount(path)
			if err != nil {
				t.Fatalf("PageCount() unexpected error: %v", err)
			}
			if got != 3 {
				t.Errorf("Expected 3 pages, got %d", got)
			}
		})
	}
}

func TestParsePDFInfoPages(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    int
		wantErr bool
	}{
		{
			name:   "typical output",
			output: "Producer:       gofpdf\nEncrypted:      no\nPages:          12\nPage size:      595 x 842 pts (A4)\n",
			want:   12,
		},
		{name: "no pages line", output: "Producer: x\n", wantErr: true},
		{name: "garbled count", output: "Pages: many\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePDFInfoPages([]byte(tt.output))
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %d pages", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %d pages, got %d", tt.want, got)
			}
		})
	}
}

func TestPageCountErrors(t *testing.T) {
	dir := t.TempDir()
	notPDF := filepath.Join(dir, "notes.pdf")
	testutil.CreateTestFile(t, notPDF, []byte("this is not a pdf"))

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "missing.pdf")},
		{"not a pdf", notPDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PageCount(tt.path)
			if !errors.Is(err, errors.ErrFile) {
				t.Errorf("Expected file error, got %v", err)
			}
		})
	}
}

func TestOutputName(t *testing.T) {
	labels := []string{"cat", "ice cream", "?!"}

	tests := []struct {
		index int
		want  string
	}{
		{0, "cat.jpg"},
		{1, "ice_cream.jpg"},
		{2, "page_3.jpg"},
		{3, "page_4.jpg"},
	}

	for _, tt := range tests {
		if got := OutputName(tt.index, labels); got != tt.want {
			t.Errorf("OutputName(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}

	if got := OutputName(0, nil); got != "page_1.jpg" {
		t.Errorf("Expected page_1.jpg without labels, got %q", got)
	}
}

func TestCropBorder(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 40))
	white := color.RGBA{255, 255, 255, 255}
	red := color.RGBA{200, 0, 0, 255}
	for y := 0; y < 40; y++ {
		for x := 0; x < 50; x++ {
			img.Set(x, y, white)
		}
	}
	for y := 10; y < 25; y++ {
		for x := 5; x < 35; x++ {
			img.Set(x, y, red)
		}
	}

	got := CropBorder(img)
	if got.Bounds().Dx() != 30 || got.Bounds().Dy() != 15 {
		t.Errorf("Expected 30x15 crop, got %dx%d", got.Bounds().Dx(), got.Bounds().Dy())
	}
	if c := color.RGBAModel.Convert(got.At(got.Bounds().Min.X, got.Bounds().Min.Y)); c != red {
		t.Errorf("Expected cropped corner to be content colour, got %v", c)
	}
}

func TestCropBorderUniformPage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, color.RGBA{10, 20, 30, 255})
		}
	}

	got := CropBorder(img)
	if got != image.Image(img) {
		t.Errorf("Expected uniform page to be returned unchanged")
	}
}

func TestResizeToWidth(t *testing.T) {
	tests := []struct {
		w, h, width int
		wantH       int
	}{
		{400, 300, 200, 150},
		{260, 360, 200, 277},
		{100, 100, 200, 200},
		{1000, 2, 200, 1},
	}

	for _, tt := range tests {
		src := image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))
		got := ResizeToWidth(src, tt.width)
		if got.Bounds().Dx() != tt.width || got.Bounds().Dy() != tt.wantH {
			t.Errorf("Resize %dx%d to width %d: got %dx%d, want %dx%d",
				tt.w, tt.h, tt.width, got.Bounds().Dx(), got.Bounds().Dy(), tt.width, tt.wantH)
		}
	}
}

func TestRenderPagesNamesByWords(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "animals.pdf")
	testutil.WritePDF(t, pdfPath, 3)

	renderer := testutil.NewFakeRenderer()
	r := New(renderer)
	outDir := filepath.Join(dir, "out", "images")

	paths, err := r.RenderPages(context.Background(), pdfPath, outDir, 200, []string{"cat", "dog", "bird"})
	if err != nil {
		t.Fatalf("RenderPages() unexpected error: %v", err)
	}

	want := []string{"cat.jpg", "dog.jpg", "bird.jpg"}
	if len(paths) != len(want) {
		t.Fatalf("Expected %d images, got %d", len(want), len(paths))
	}
	for i, name := range want {
		if filepath.Base(paths[i]) != name {
			t.Errorf("Page %d: expected %s, got %s", i+1, name, filepath.Base(paths[i]))
		}
		testutil.AssertFileExists(t, filepath.Join(outDir, name))
	}

	if len(renderer.Pages) != 3 || renderer.Pages[0] != 1 || renderer.Pages[2] != 3 {
		t.Errorf("Expected pages rendered in order 1..3, got %v", renderer.Pages)
	}

	// 300x400 page with a 20px border crops to 260x360, scaled to 200 wide
	f, err := os.Open(filepath.Join(outDir, "cat.jpg"))
	if err != nil {
		t.Fatalf("Failed to open output: %v", err)
	}
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	if err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	if cfg.Width != 200 || cfg.Height != 277 {
		t.Errorf("Expected 200x277 output, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestRenderPagesFallbackNames(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "doc.pdf")
	testutil.WritePDF(t, pdfPath, 2)

	paths, err := New(testutil.NewFakeRenderer()).RenderPages(context.Background(), pdfPath, dir, 100, []string{"only"})
	if err != nil {
		t.Fatalf("RenderPages() unexpected error: %v", err)
	}

	if filepath.Base(paths[0]) != "only.jpg" || filepath.Base(paths[1]) != "page_2.jpg" {
		t.Errorf("Unexpected output names: %v", paths)
	}
}

func TestRenderPagesAbortsOnFailure(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "doc.pdf")
	testutil.WritePDF(t, pdfPath, 3)

	renderer := testutil.NewFakeRenderer()
	renderer.FailPage = 2

	outDir := filepath.Join(dir, "images")
	paths, err := New(renderer).RenderPages(context.Background(), pdfPath, outDir, 100, nil)
	if err == nil {
		t.Fatal("Expected error when a page fails to render")
	}
	if len(paths) != 1 {
		t.Errorf("Expected 1 page written before abort, got %d", len(paths))
	}
	if len(renderer.Pages) != 2 {
		t.Errorf("Expected rendering to stop at page 2, rendered %v", renderer.Pages)
	}
	testutil.AssertFileNotExists(t, filepath.Join(outDir, "page_3.jpg"))
}

func TestRenderPagesInvalidInput(t *testing.T) {
	dir := t.TempDir()
	r := New(testutil.NewFakeRenderer())

	_, err := r.RenderPages(context.Background(), filepath.Join(dir, "missing.pdf"), dir, 200, nil)
	if !errors.Is(err, errors.ErrFile) {
		t.Errorf("Expected file error for missing PDF, got %v", err)
	}

	_, err = r.RenderPages(context.Background(), filepath.Join(dir, "missing.pdf"), dir, 0, nil)
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("Expected validation error for zero width, got %v", err)
	}
}
