package processor

import (
	"fmt"
	"os"
	"path/filepath"

	"codeberg.org/snonux/cardprep/internal"
	"codeberg.org/snonux/cardprep/internal/audio"
)

// Batch is the output of one processing run, kept in a temporary
// directory until it is promoted or discarded
type Batch struct {
	Dir       string
	PDFPath   string
	ImagesDir string
	AudioDir  string
	Words     []string
	Images    []string
	Audio     map[string]audio.Result
}

// ImagePath returns the rendered image of word
func (b *Batch) ImagePath(word string) string {
	return filepath.Join(b.ImagesDir, internal.Slug(word)+".jpg")
}

// AudioPath returns the synthesized audio of word, or "" if synthesis failed
func (b *Batch) AudioPath(word string) string {
	if r, ok := b.Audio[word]; ok && r.OK() {
		return r.Path
	}
	return ""
}

// AudioError returns why synthesis failed for word
func (b *Batch) AudioError(word string) error {
	if r, ok := b.Audio[word]; ok {
		return r.Err
	}
	return nil
}

// Failed lists the words without audio
func (b *Batch) Failed() []string {
	return audio.Failed(b.Words, b.Audio)
}

// Cleanup removes the run directory
func (b *Batch) Cleanup() error {
	if b == nil || b.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(b.Dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", b.Dir, err)
	}
	fmt.Printf("Removed temporary directory %s\n", b.Dir)
	b.Dir = ""
	return nil
}
