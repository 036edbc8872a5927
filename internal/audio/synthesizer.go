package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"codeberg.org/snonux/cardprep/internal"
	"codeberg.org/snonux/cardprep/internal/errors"
)

// Result is the outcome of synthesizing one word: a path or an error
type Result struct {
	Path string
	Err  error
}

// OK reports whether the word was synthesized
func (r Result) OK() bool {
	return r.Err == nil && r.Path != ""
}

// Synthesizer produces one MP3 per word named by the word's slug
type Synthesizer struct {
	provider Provider
}

// NewSynthesizer creates a synthesizer backed by provider
func NewSynthesizer(provider Provider) *Synthesizer {
	return &Synthesizer{provider: provider}
}

// Provider returns the underlying speech provider
func (s *Synthesizer) Provider() Provider {
	return s.provider
}

// Synthesize speaks every word into outputDir/<slug>.mp3. A failing word is
// recorded in its Result and the remaining words are still processed.
// Existing files are always overwritten.
func (s *Synthesizer) Synthesize(ctx context.Context, words []string, language, outputDir string) map[string]Result {
	results := make(map[string]Result, len(words))

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		for _, word := range words {
			results[word] = Result{Err: fmt.Errorf("failed to create output directory: %w", err)}
		}
		return results
	}

	for i, word := range words {
		slug := internal.Slug(word)
		if slug == "" {
			results[word] = Result{Err: errors.MissingInputf("word %q has no usable characters for a file name", word)}
			fmt.Fprintf(os.Stderr, "Warning: Skipping audio for %q: empty file name\n", word)
			continue
		}

		path := filepath.Join(outputDir, slug+".mp3")
		fmt.Printf("Generating audio %d/%d: %s\n", i+1, len(words), word)

		if err := s.SynthesizeTo(ctx, word, language, path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to generate audio for '%s': %v\n", word, err)
			results[word] = Result{Err: err}
			continue
		}
		results[word] = Result{Path: path}
	}

	return results
}

// SynthesizeTo speaks text into an explicit file path
func (s *Synthesizer) SynthesizeTo(ctx context.Context, text, language, path string) error {
	if err := ValidateText(text); err != nil {
		return errors.Wrap(err, errors.CodeSynthesis, "invalid text")
	}

	if err := s.provider.GenerateAudio(ctx, text, language, path); err != nil {
		return errors.Wrapf(err, errors.CodeSynthesis, "%s could not speak %q", s.provider.Name(), text)
	}

	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, errors.CodeSynthesis, "%s wrote no file for %q", s.provider.Name(), text)
	}
	if info.Size() == 0 {
		return errors.Wrapf(nil, errors.CodeSynthesis, "%s wrote an empty file for %q", s.provider.Name(), text)
	}
	return nil
}

// Failed returns the words whose synthesis failed, in input order
func Failed(words []string, results map[string]Result) []string {
	var failed []string
	for _, word := range words {
		if r, ok := results[word]; ok && !r.OK() {
			failed = append(failed, word)
		}
	}
	return failed
}
