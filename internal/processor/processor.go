package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/cardprep/internal"
	"codeberg.org/snonux/cardprep/internal/assets"
	"codeberg.org/snonux/cardprep/internal/audio"
	"codeberg.org/snonux/cardprep/internal/catalog"
	"codeberg.org/snonux/cardprep/internal/errors"
	"codeberg.org/snonux/cardprep/internal/history"
	"codeberg.org/snonux/cardprep/internal/raster"
)

// RunDirPattern is the prefix of every per-run temporary working directory
const RunDirPattern = "cardprep-run-*"

// Config holds the settings a Processor runs with
type Config struct {
	Root           string // project root holding shared/static and the catalogs
	Width          int
	Language       string
	Targets        []catalog.Target
	BackupCatalogs bool
	HistoryFile    string // empty disables the history log
}

// Selection names a catalog target and the group the accepted words go into
type Selection struct {
	Target string
	Group  string
}

func (s Selection) String() string {
	return s.Target + ":" + s.Group
}

// CatalogResult reports what one selection added to its catalog
type CatalogResult struct {
	Selection Selection
	Path      string
	Added     []string
}

// Processor runs the render, synthesize, promote and catalog steps
type Processor struct {
	config  *Config
	raster  *raster.Rasterizer
	synth   *audio.Synthesizer
	store   *assets.Store
	updater *catalog.Updater
	history *history.Log
}

// NewProcessor creates a processor. A nil renderer selects pdftoppm.
func NewProcessor(config *Config, renderer raster.Renderer, provider audio.Provider) *Processor {
	if config.Width <= 0 {
		config.Width = raster.DefaultWidth
	}
	if config.Language == "" {
		config.Language = "en"
	}
	if config.Targets == nil {
		config.Targets = catalog.DefaultTargets()
	}

	return &Processor{
		config:  config,
		raster:  raster.New(renderer),
		synth:   audio.NewSynthesizer(provider),
		store:   assets.NewStore(config.Root),
		updater: &catalog.Updater{Backup: config.BackupCatalogs},
	}
}

// Config returns the processor settings
func (p *Processor) Config() *Config {
	return p.config
}

// Store returns the shared asset store
func (p *Processor) Store() *assets.Store {
	return p.store
}

// Targets returns the configured catalog targets
func (p *Processor) Targets() []catalog.Target {
	return p.config.Targets
}

// Speaker synthesizes into explicit paths with the configured language
func (p *Processor) Speaker() assets.Speaker {
	return assets.SpeakerFunc(func(ctx context.Context, text, path string) error {
		return p.synth.SynthesizeTo(ctx, text, p.config.Language, path)
	})
}

// History opens the history log on first use. It returns nil when history
// is disabled.
func (p *Processor) History() (*history.Log, error) {
	if p.config.HistoryFile == "" {
		return nil, nil
	}
	if p.history == nil {
		log, err := history.Open(p.config.HistoryFile)
		if err != nil {
			return nil, err
		}
		p.history = log
	}
	return p.history, nil
}

// Close releases the history log
func (p *Processor) Close() error {
	if p.history == nil {
		return nil
	}
	err := p.history.Close()
	p.history = nil
	return err
}

// ValidateWords rejects an empty list, words without a usable slug and
// distinct words that share a slug
func ValidateWords(words []string) error {
	if len(words) == 0 {
		return errors.MissingInputf("no words given")
	}

	seen := make(map[string]string, len(words))
	for _, word := range words {
		slug := internal.Slug(strings.TrimSpace(word))
		if slug == "" {
			return errors.MissingInputf("word %q has no usable characters for a file name", word)
		}
		if other, ok := seen[slug]; ok {
			return errors.SlugCollisionf("words %q and %q both map to %q", other, word, slug)
		}
		seen[slug] = word
	}
	return nil
}

// Process renders pdfPath and synthesizes words into a new run directory.
// Inputs are validated before anything is written, so a mismatched word
// count leaves no output behind.
func (p *Processor) Process(ctx context.Context, pdfPath string, words []string) (*Batch, error) {
	if pdfPath == "" {
		return nil, errors.MissingInputf("no PDF given")
	}
	if err := p.check(pdfPath, words); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", RunDirPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	return p.run(ctx, dir, pdfPath, words)
}

// ProcessBytes is Process for a PDF held in memory, such as one picked in
// the desktop file dialog. The bytes are written to input.pdf in the run
// directory, which is removed again when validation fails.
func (p *Processor) ProcessBytes(ctx context.Context, data []byte, words []string) (*Batch, error) {
	if len(data) == 0 {
		return nil, errors.MissingInputf("no PDF given")
	}
	if err := ValidateWords(words); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", RunDirPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	pdfPath := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(pdfPath, data, 0644); err != nil {
		os.RemoveAll(dir)
		return nil, errors.Wrap(err, errors.CodeFile, "failed to store uploaded PDF")
	}

	if err := p.check(pdfPath, words); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	return p.run(ctx, dir, pdfPath, words)
}

func (p *Processor) check(pdfPath string, words []string) error {
	if err := ValidateWords(words); err != nil {
		return err
	}

	pages, err := raster.PageCount(pdfPath)
	if err != nil {
		return err
	}
	if pages != len(words) {
		return errors.CountMismatch(len(words), pages)
	}
	return nil
}

func (p *Processor) run(ctx context.Context, dir, pdfPath string, words []string) (*Batch, error) {
	b := &Batch{
		Dir:       dir,
		PDFPath:   pdfPath,
		ImagesDir: filepath.Join(dir, "images"),
		AudioDir:  filepath.Join(dir, "audio"),
		Words:     words,
	}

	fmt.Printf("Rendering %d page(s) from %s\n", len(words), filepath.Base(pdfPath))
	images, err := p.raster.RenderPages(ctx, pdfPath, b.ImagesDir, p.config.Width, words)
	if err != nil {
		b.Cleanup()
		return nil, err
	}
	b.Images = images

	fmt.Printf("Generating audio with %s\n", p.synth.Provider().Name())
	b.Audio = p.synth.Synthesize(ctx, words, p.config.Language, b.AudioDir)

	if failed := audio.Failed(words, b.Audio); len(failed) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: No audio for %d word(s): %s\n", len(failed), strings.Join(failed, ", "))
	}
	fmt.Printf("Processed %d word(s) in %s\n", len(words), dir)
	return b, nil
}

// Promote copies the accepted words of b into the asset store and records
// the result in the history log
func (p *Processor) Promote(b *Batch, accepted []string) ([]assets.PromotionEntry, error) {
	if len(accepted) == 0 {
		return nil, errors.MissingInputf("no words accepted")
	}

	entries, err := p.store.Promote(b.ImagesDir, b.AudioDir, accepted)
	if err != nil {
		return entries, err
	}

	p.record(func(log *history.Log) error { return log.RecordPromotion(entries) })
	return entries, nil
}

// ApplyCatalogs appends words to every selected catalog group. Catalogs
// already written stay written when a later selection fails.
func (p *Processor) ApplyCatalogs(selections []Selection, words []string) ([]CatalogResult, error) {
	results := make([]CatalogResult, 0, len(selections))
	for _, sel := range selections {
		target, err := catalog.FindTarget(p.config.Targets, sel.Target)
		if err != nil {
			return results, err
		}

		added, err := p.updater.ApplyTarget(p.config.Root, target, sel.Group, words)
		if err != nil {
			return results, fmt.Errorf("failed to update %s: %w", sel, err)
		}
		results = append(results, CatalogResult{Selection: sel, Path: target.Path(p.config.Root), Added: added})

		if len(added) > 0 {
			p.record(func(log *history.Log) error { return log.RecordCatalog(sel.Target, sel.Group, added) })
		}
	}
	return results, nil
}

func (p *Processor) record(fn func(*history.Log) error) {
	log, err := p.History()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: History unavailable: %v\n", err)
		return
	}
	if log == nil {
		return
	}
	if err := fn(log); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to record history: %v\n", err)
	}
}
