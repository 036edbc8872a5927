package review

import (
	"context"
	"fmt"
	"os"

	"codeberg.org/snonux/cardprep/internal/assets"
	"codeberg.org/snonux/cardprep/internal/errors"
	"codeberg.org/snonux/cardprep/internal/processor"
)

// Outcome is what applying a batch did
type Outcome struct {
	Promotions []assets.PromotionEntry
	Catalogs   []processor.CatalogResult
}

// BatchSession holds a processed batch and the reviewer's choices for it
type BatchSession struct {
	proc     *processor.Processor
	batch    *processor.Batch
	accepted map[string]bool
}

// NewBatchSession creates an empty session
func NewBatchSession(proc *processor.Processor) *BatchSession {
	return &BatchSession{proc: proc, accepted: make(map[string]bool)}
}

// Start processes pdfPath and makes the result the session's batch. A batch
// still held from an earlier run is discarded first.
func (s *BatchSession) Start(ctx context.Context, pdfPath string, words []string) error {
	return s.start(func() (*processor.Batch, error) {
		return s.proc.Process(ctx, pdfPath, words)
	})
}

// StartBytes is Start for an in-memory PDF
func (s *BatchSession) StartBytes(ctx context.Context, data []byte, words []string) error {
	return s.start(func() (*processor.Batch, error) {
		return s.proc.ProcessBytes(ctx, data, words)
	})
}

func (s *BatchSession) start(run func() (*processor.Batch, error)) error {
	if err := s.Discard(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	b, err := run()
	if err != nil {
		return err
	}
	s.batch = b
	return nil
}

// Batch returns the held batch, or nil
func (s *BatchSession) Batch() *processor.Batch {
	return s.batch
}

// Active reports whether a batch is waiting for review
func (s *BatchSession) Active() bool {
	return s.batch != nil
}

// SetAccepted ticks or unticks word. Words outside the batch are ignored.
func (s *BatchSession) SetAccepted(word string, accepted bool) {
	if !s.inBatch(word) {
		return
	}
	if accepted {
		s.accepted[word] = true
		return
	}
	delete(s.accepted, word)
}

// IsAccepted reports whether word is ticked
func (s *BatchSession) IsAccepted(word string) bool {
	return s.accepted[word]
}

// AcceptAll ticks every word of the batch
func (s *BatchSession) AcceptAll() {
	if s.batch == nil {
		return
	}
	for _, w := range s.batch.Words {
		s.accepted[w] = true
	}
}

// Accepted returns the ticked words in batch order
func (s *BatchSession) Accepted() []string {
	if s.batch == nil {
		return nil
	}
	var words []string
	for _, w := range s.batch.Words {
		if s.accepted[w] {
			words = append(words, w)
		}
	}
	return words
}

// SelectionLabel summarizes the acceptance state
func (s *BatchSession) SelectionLabel() string {
	return fmt.Sprintf("%d word(s) selected", len(s.Accepted()))
}

// Apply promotes the accepted words, appends them to the selected catalogs,
// removes the run directory and resets the session. If a catalog update
// fails the batch is kept so the reviewer can retry; promoted assets and
// catalogs written so far stay in place.
func (s *BatchSession) Apply(ctx context.Context, selections []processor.Selection) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.batch == nil {
		return nil, errors.MissingInputf("nothing has been processed")
	}

	accepted := s.Accepted()
	if len(accepted) == 0 {
		return nil, errors.MissingInputf("no words accepted")
	}

	outcome := &Outcome{}
	entries, err := s.proc.Promote(s.batch, accepted)
	outcome.Promotions = entries
	if err != nil {
		return outcome, err
	}

	results, err := s.proc.ApplyCatalogs(selections, accepted)
	outcome.Catalogs = results
	if err != nil {
		return outcome, err
	}

	if err := s.Discard(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return outcome, nil
}

// Discard drops the batch and removes its run directory
func (s *BatchSession) Discard() error {
	b := s.batch
	s.batch = nil
	s.accepted = make(map[string]bool)
	return b.Cleanup()
}

func (s *BatchSession) inBatch(word string) bool {
	if s.batch == nil {
		return false
	}
	for _, w := range s.batch.Words {
		if w == word {
			return true
		}
	}
	return false
}
