package assets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"codeberg.org/snonux/cardprep/internal"
)

// Kind names an asset type
type Kind string

// Status is the outcome of promoting one file
type Status string

const (
	KindImage Kind = "image"
	KindAudio Kind = "audio"

	StatusCreated     Status = "created"
	StatusOverwritten Status = "overwritten"
	StatusMissing     Status = "missing"
)

// PromotionEntry records one file copied into the store
type PromotionEntry struct {
	Word   string
	Slug   string
	Kind   Kind
	Status Status
	Source string
	Dest   string
	Bytes  int64
}

// String formats the entry for the promotion log
func (e PromotionEntry) String() string {
	if e.Status == StatusMissing {
		return fmt.Sprintf("%s: no %s found at %s", e.Word, e.Kind, e.Source)
	}
	return fmt.Sprintf("%s: %s %s %s (%d bytes)", e.Word, e.Kind, e.Status, filepath.Base(e.Dest), e.Bytes)
}

// Promote copies the image and audio of every word from the working
// directories into the store. Existing files are overwritten. A source file
// that does not exist is logged as missing; a failed copy aborts.
func (s *Store) Promote(srcImages, srcAudio string, words []string) ([]PromotionEntry, error) {
	for _, dir := range []string{s.ImagesDir, s.AudioDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	var log []PromotionEntry
	for _, word := range words {
		slug := internal.Slug(word)
		if slug == "" {
			fmt.Fprintf(os.Stderr, "Warning: Skipping %q: empty file name\n", word)
			continue
		}

		for _, kind := range []Kind{KindImage, KindAudio} {
			src, dst := filepath.Join(srcImages, slug+imageExt), s.ImagePath(slug)
			if kind == KindAudio {
				src, dst = filepath.Join(srcAudio, slug+audioExt), s.AudioPath(slug)
			}

			entry := PromotionEntry{Word: word, Slug: slug, Kind: kind, Source: src, Dest: dst}
			if !fileExists(src) {
				entry.Status = StatusMissing
				fmt.Fprintf(os.Stderr, "Warning: Missing %s for word: %s\n", kind, word)
				log = append(log, entry)
				continue
			}

			entry.Status = StatusCreated
			if fileExists(dst) {
				entry.Status = StatusOverwritten
			}

			n, err := copyFile(src, dst)
			if err != nil {
				return log, fmt.Errorf("failed to copy %s for %s: %w", kind, word, err)
			}
			entry.Bytes = n

			fmt.Printf("  %s\n", entry)
			log = append(log, entry)
		}
	}

	return log, nil
}

// copyFile copies src to dst, keeping the source mode and modification time
func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, err
	}

	return n, os.Chtimes(dst, info.ModTime(), info.ModTime())
}
