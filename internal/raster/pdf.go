package raster

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	rpdf "rsc.io/pdf"

	"codeberg.org/snonux/cardprep/internal/errors"
)

// PDFInfoBinary is the poppler tool asked for the page count of documents
// rsc.io/pdf cannot open
var PDFInfoBinary = "pdfinfo"

// tailChunk is how far from the end of the file %%EOF is searched for
const tailChunk = 64 * 1024

// PageCount opens a PDF and returns the number of pages it declares.
// rsc.io/pdf reads the document first. Files it rejects, such as PDF 2.0 or
// AES-256 encrypted ones, are handed to poppler's pdfinfo, the engine that
// also renders the pages.
func PageCount(pdfPath string) (int, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return 0, errors.Wrapf(err, errors.CodeFile, "failed to open PDF %s", pdfPath)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, errors.Wrapf(err, errors.CodeFile, "failed to stat PDF %s", pdfPath)
	}

	n, readErr := readPageCount(f, info.Size())
	if readErr != nil {
		n, err = pdfinfoPageCount(context.Background(), pdfPath)
		if err != nil {
			return 0, errors.Wrapf(readErr, errors.CodeFile, "invalid PDF %s", pdfPath)
		}
	}

	if n <= 0 {
		return 0, errors.Wrapf(nil, errors.CodeFile, "PDF %s has no pages", pdfPath)
	}
	return n, nil
}

func readPageCount(f io.ReaderAt, size int64) (count int, err error) {
	// rsc.io/pdf panics on some malformed inputs instead of returning an error
	defer func() {
		if r := recover(); r != nil {
			count = 0
			err = fmt.Errorf("%v", r)
		}
	}()

	view, viewSize := lenientView(f, size)
	doc, err := rpdf.NewReader(view, viewSize)
	if err != nil {
		return 0, err
	}
	return doc.NumPage(), nil
}

// lenientView hides two harmless deviations rsc.io/pdf refuses: a header
// version other than 1.x, which is presented as 1.7 (same length, so all
// offsets stay valid), and bytes after the final %%EOF, which are cut off.
func lenientView(f io.ReaderAt, size int64) (io.ReaderAt, int64) {
	v := &headerView{ReaderAt: f}

	head := make([]byte, 9)
	if n, _ := f.ReadAt(head, 0); n == len(head) &&
		bytes.HasPrefix(head, []byte("%PDF-")) && head[5] != '1' &&
		head[6] == '.' && (head[8] == '\n' || head[8] == '\r') {
		v.header = []byte("%PDF-1.7")
	}

	start := size - tailChunk
	if start < 0 {
		start = 0
	}
	tail := make([]byte, size-start)
	if n, _ := f.ReadAt(tail, start); n > 0 {
		if i := bytes.LastIndex(tail[:n], []byte("%%EOF")); i >= 0 {
			size = start + int64(i) + int64(len("%%EOF"))
		}
	}
	return v, size
}

// headerView replaces the first bytes of the underlying file with header
type headerView struct {
	io.ReaderAt
	header []byte
}

func (v *headerView) ReadAt(p []byte, off int64) (int, error) {
	n, err := v.ReaderAt.ReadAt(p, off)
	for i := 0; i < n; i++ {
		if pos := off + int64(i); pos < int64(len(v.header)) {
			p[i] = v.header[pos]
		}
	}
	return n, err
}

// pdfinfoPageCount runs pdfinfo and reads its "Pages:" line
func pdfinfoPageCount(ctx context.Context, pdfPath string) (int, error) {
	if _, err := exec.LookPath(PDFInfoBinary); err != nil {
		return 0, fmt.Errorf("%s not found: please install poppler-utils: %w", PDFInfoBinary, err)
	}

	output, err := exec.CommandContext(ctx, PDFInfoBinary, pdfPath).Output()
	if err != nil {
		return 0, fmt.Errorf("%s failed: %w", PDFInfoBinary, err)
	}
	return parsePDFInfoPages(output)
}

// parsePDFInfoPages extracts the page count from pdfinfo output
func parsePDFInfoPages(output []byte) (int, error) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok || strings.TrimSpace(key) != "Pages" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, fmt.Errorf("invalid page count %q: %w", strings.TrimSpace(value), err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("no page count in pdfinfo output")
}
