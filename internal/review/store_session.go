// Package review holds the state of the two reviewer screens: paging
// through the shared asset store, and accepting the words of a freshly
// processed batch. Sessions are plain values owned by whoever drives the
// UI; nothing here is global.
package review

import (
	"context"
	"fmt"

	"codeberg.org/snonux/cardprep/internal/assets"
)

// PageSize is the number of pairs shown per store page
const PageSize = 20

// StoreSession pages through the pairs of the asset store
type StoreSession struct {
	store    *assets.Store
	speaker  assets.Speaker
	pairs    []assets.Pair
	page     int
	mismatch map[string]bool
	editing  string
}

// NewStoreSession creates a session and loads the current pairs
func NewStoreSession(store *assets.Store, speaker assets.Speaker) (*StoreSession, error) {
	s := &StoreSession{
		store:    store,
		speaker:  speaker,
		mismatch: make(map[string]bool),
	}
	return s, s.Refresh()
}

// Refresh reloads the pairs from disk. The page index is clamped and flags
// of pairs that no longer exist are dropped.
func (s *StoreSession) Refresh() error {
	pairs, err := s.store.Pairs()
	if err != nil {
		return err
	}
	s.pairs = pairs

	present := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		present[p.Slug] = true
	}
	for slug := range s.mismatch {
		if !present[slug] {
			delete(s.mismatch, slug)
		}
	}
	if !present[s.editing] {
		s.editing = ""
	}

	if s.page >= s.PageCount() {
		s.page = s.PageCount() - 1
	}
	return nil
}

// Total returns the number of pairs in the store
func (s *StoreSession) Total() int {
	return len(s.pairs)
}

// PageCount returns the number of pages, at least one
func (s *StoreSession) PageCount() int {
	if len(s.pairs) == 0 {
		return 1
	}
	return (len(s.pairs) + PageSize - 1) / PageSize
}

// Page returns the zero-based current page index
func (s *StoreSession) Page() int {
	return s.page
}

// CurrentPage returns the pairs on the current page
func (s *StoreSession) CurrentPage() []assets.Pair {
	start := s.page * PageSize
	if start >= len(s.pairs) {
		return nil
	}
	end := min(start+PageSize, len(s.pairs))
	return s.pairs[start:end]
}

// NextPage advances one page and reports whether it moved
func (s *StoreSession) NextPage() bool {
	if s.page+1 >= s.PageCount() {
		return false
	}
	s.page++
	return true
}

// PrevPage goes back one page and reports whether it moved
func (s *StoreSession) PrevPage() bool {
	if s.page == 0 {
		return false
	}
	s.page--
	return true
}

// PageLabel describes the position in the store
func (s *StoreSession) PageLabel() string {
	return fmt.Sprintf("Page %d of %d (%d total items)", s.page+1, s.PageCount(), len(s.pairs))
}

// SetMismatch flags or clears a pair whose image and audio do not belong
// together
func (s *StoreSession) SetMismatch(slug string, mismatch bool) {
	if mismatch {
		s.mismatch[slug] = true
		return
	}
	delete(s.mismatch, slug)
}

// IsMismatch reports whether slug is flagged
func (s *StoreSession) IsMismatch(slug string) bool {
	return s.mismatch[slug]
}

// MismatchCount returns the number of flagged pairs
func (s *StoreSession) MismatchCount() int {
	return len(s.mismatch)
}

// Edit marks slug as the pair being renamed
func (s *StoreSession) Edit(slug string) {
	s.editing = slug
}

// Editing returns the slug being renamed, or ""
func (s *StoreSession) Editing() string {
	return s.editing
}

// CancelEdit leaves rename mode
func (s *StoreSession) CancelEdit() {
	s.editing = ""
}

// Rename renames a pair and reloads the store. The flag of the old slug is
// cleared since the new audio is spoken from the new word.
func (s *StoreSession) Rename(ctx context.Context, slug, newWord string) (string, error) {
	newSlug, err := s.store.Rename(ctx, slug, newWord, s.speaker)
	if err != nil {
		return "", err
	}

	delete(s.mismatch, slug)
	s.editing = ""
	return newSlug, s.Refresh()
}

// RegenerateAudio re-speaks slug in place. A successful recreate clears the
// mismatch flag and leaves rename mode.
func (s *StoreSession) RegenerateAudio(ctx context.Context, slug string) error {
	if err := s.store.RegenerateAudio(ctx, slug, s.speaker); err != nil {
		return err
	}

	delete(s.mismatch, slug)
	if s.editing == slug {
		s.editing = ""
	}
	return nil
}
