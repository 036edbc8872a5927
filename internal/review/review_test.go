package review

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/snonux/cardprep/internal/assets"
	"codeberg.org/snonux/cardprep/internal/errors"
	"codeberg.org/snonux/cardprep/internal/processor"
	"codeberg.org/snonux/cardprep/internal/testutil"
)

func newStoreSession(t *testing.T, n int) (*StoreSession, *testutil.MockSpeech) {
	t.Helper()
	root := t.TempDir()

	slugs := make([]string, n)
	for i := range slugs {
		slugs[i] = fmt.Sprintf("word%02d", i)
	}
	testutil.CreateStore(t, root, slugs...)

	speech := testutil.NewMockSpeech()
	speaker := assets.SpeakerFunc(func(ctx context.Context, text, path string) error {
		return speech.GenerateAudio(ctx, text, "en", path)
	})

	s, err := NewStoreSession(assets.NewStore(root), speaker)
	if err != nil {
		t.Fatalf("NewStoreSession failed: %v", err)
	}
	return s, speech
}

func TestStoreSessionPaging(t *testing.T) {
	tests := []struct {
		pairs    int
		pages    int
		lastPage int
	}{
		{0, 1, 0},
		{1, 1, 1},
		{20, 1, 20},
		{21, 2, 1},
		{45, 3, 5},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d pairs", tt.pairs), func(t *testing.T) {
			s, _ := newStoreSession(t, tt.pairs)

			if s.Total() != tt.pairs {
				t.Errorf("Expected %d pairs, got %d", tt.pairs, s.Total())
			}
			if s.PageCount() != tt.pages {
				t.Errorf("Expected %d pages, got %d", tt.pages, s.PageCount())
			}
			if s.PrevPage() {
				t.Error("Expected PrevPage to fail on the first page")
			}

			for s.NextPage() {
			}
			if s.Page() != tt.pages-1 {
				t.Errorf("Expected to stop on page %d, got %d", tt.pages-1, s.Page())
			}
			if len(s.CurrentPage()) != tt.lastPage {
				t.Errorf("Expected %d pairs on the last page, got %d", tt.lastPage, len(s.CurrentPage()))
			}
		})
	}
}

func TestStoreSessionPageLabel(t *testing.T) {
	s, _ := newStoreSession(t, 25)

	if s.PageLabel() != "Page 1 of 2 (25 total items)" {
		t.Errorf("Unexpected label: %s", s.PageLabel())
	}
	s.NextPage()
	if s.PageLabel() != "Page 2 of 2 (25 total items)" {
		t.Errorf("Unexpected label: %s", s.PageLabel())
	}
	if s.CurrentPage()[0].Slug != "word20" {
		t.Errorf("Expected word20 to open page 2, got %s", s.CurrentPage()[0].Slug)
	}
}

func TestStoreSessionRefreshClampsPage(t *testing.T) {
	s, _ := newStoreSession(t, 21)
	s.NextPage()
	s.SetMismatch("word20", true)

	os.Remove(filepath.Join(s.store.ImagesDir, "word20.jpg"))
	if err := s.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if s.Page() != 0 {
		t.Errorf("Expected page to be clamped to 0, got %d", s.Page())
	}
	if s.MismatchCount() != 0 {
		t.Errorf("Expected flag of vanished pair to be dropped, got %d", s.MismatchCount())
	}
}

func TestStoreSessionMismatch(t *testing.T) {
	s, _ := newStoreSession(t, 3)

	s.SetMismatch("word00", true)
	s.SetMismatch("word02", true)
	s.SetMismatch("word02", true)
	if s.MismatchCount() != 2 {
		t.Errorf("Expected 2 flagged pairs, got %d", s.MismatchCount())
	}

	s.SetMismatch("word00", false)
	if s.IsMismatch("word00") || !s.IsMismatch("word02") {
		t.Error("Unexpected mismatch flags after clearing word00")
	}
}

func TestStoreSessionRename(t *testing.T) {
	s, speech := newStoreSession(t, 2)
	s.SetMismatch("word01", true)
	s.Edit("word01")

	newSlug, err := s.Rename(context.Background(), "word01", "ice cream")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if newSlug != "ice_cream" {
		t.Errorf("Expected ice_cream, got %s", newSlug)
	}
	if speech.Calls[0] != "ice cream" {
		t.Errorf("Expected the typed word to be spoken, got %q", speech.Calls[0])
	}
	if s.Editing() != "" {
		t.Errorf("Expected edit mode to end, got %s", s.Editing())
	}
	if s.MismatchCount() != 0 {
		t.Errorf("Expected flag to be cleared, got %d", s.MismatchCount())
	}

	page := s.CurrentPage()
	if len(page) != 2 || page[0].Slug != "ice_cream" || page[1].Slug != "word00" {
		t.Errorf("Expected ice_cream and word00, got %v", page)
	}
}

func TestStoreSessionRenameCollision(t *testing.T) {
	s, speech := newStoreSession(t, 2)
	s.Edit("word01")

	_, err := s.Rename(context.Background(), "word01", "word00")
	if !errors.Is(err, errors.ErrNameCollision) {
		t.Errorf("Expected name collision, got %v", err)
	}
	if s.Editing() != "word01" {
		t.Error("Expected edit mode to stay active after a failed rename")
	}
	if speech.CallCount() != 0 {
		t.Errorf("Expected no synthesis, got %d calls", speech.CallCount())
	}
	testutil.AssertFileContent(t, s.store.AudioPath("word01"), []byte("mp3:word01"))
}

func TestStoreSessionRegenerateAudio(t *testing.T) {
	s, speech := newStoreSession(t, 1)

	if err := s.RegenerateAudio(context.Background(), "word00"); err != nil {
		t.Fatalf("RegenerateAudio failed: %v", err)
	}
	if speech.CallCount() != 1 {
		t.Errorf("Expected 1 synthesis call, got %d", speech.CallCount())
	}
	if err := s.RegenerateAudio(context.Background(), "missing"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestStoreSessionRegenerateClearsFlags(t *testing.T) {
	s, speech := newStoreSession(t, 2)

	s.SetMismatch("word00", true)
	s.SetMismatch("word01", true)
	s.Edit("word00")

	speech.Failures["word01"] = fmt.Errorf("offline")
	if err := s.RegenerateAudio(context.Background(), "word01"); err == nil {
		t.Fatal("Expected synthesis error")
	}
	if !s.IsMismatch("word01") {
		t.Error("Expected flag to survive a failed recreate")
	}

	if err := s.RegenerateAudio(context.Background(), "word00"); err != nil {
		t.Fatalf("RegenerateAudio failed: %v", err)
	}
	if s.IsMismatch("word00") {
		t.Error("Expected flag to be cleared after recreate")
	}
	if s.Editing() != "" {
		t.Errorf("Expected rename mode to end, still editing %q", s.Editing())
	}
	if s.MismatchCount() != 1 {
		t.Errorf("Expected 1 flagged pair, got %d", s.MismatchCount())
	}
}

func newBatchSession(t *testing.T) (*BatchSession, string, string) {
	t.Helper()
	t.Setenv("TMPDIR", t.TempDir())

	root := t.TempDir()
	proc := processor.NewProcessor(&processor.Config{Root: root}, testutil.NewFakeRenderer(), testutil.NewMockSpeech())

	pdf := filepath.Join(t.TempDir(), "animals.pdf")
	testutil.WritePDF(t, pdf, 3)
	return NewBatchSession(proc), root, pdf
}

func TestBatchSessionAcceptance(t *testing.T) {
	s, _, pdf := newBatchSession(t)
	defer s.Discard()

	s.SetAccepted("cat", true)
	if s.IsAccepted("cat") {
		t.Error("Expected acceptance to be ignored without a batch")
	}

	if err := s.Start(context.Background(), pdf, []string{"cat", "dog", "bird"}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	s.SetAccepted("bird", true)
	s.SetAccepted("cat", true)
	s.SetAccepted("fish", true)
	if got := strings.Join(s.Accepted(), ","); got != "cat,bird" {
		t.Errorf("Expected cat,bird in batch order, got %s", got)
	}
	if s.SelectionLabel() != "2 word(s) selected" {
		t.Errorf("Unexpected label: %s", s.SelectionLabel())
	}

	s.SetAccepted("cat", false)
	s.AcceptAll()
	if got := strings.Join(s.Accepted(), ","); got != "cat,dog,bird" {
		t.Errorf("Expected all words, got %s", got)
	}
}

func TestBatchSessionApply(t *testing.T) {
	s, root, pdf := newBatchSession(t)
	testutil.CreateTestFile(t, filepath.Join(root, "image_grid", "images.json"), []byte("{\n  \"Partani\": [\"sun\"]\n}\n"))

	if err := s.Start(context.Background(), pdf, []string{"cat", "dog", "bird"}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	dir := s.Batch().Dir

	s.SetAccepted("cat", true)
	s.SetAccepted("bird", true)

	outcome, err := s.Apply(context.Background(), []processor.Selection{{Target: "image_grid", Group: "Partani"}})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(outcome.Promotions) != 4 {
		t.Errorf("Expected 4 promotion entries, got %d", len(outcome.Promotions))
	}
	if strings.Join(outcome.Catalogs[0].Added, ",") != "cat,bird" {
		t.Errorf("Expected cat,bird added, got %v", outcome.Catalogs[0].Added)
	}

	store := filepath.Join(root, "shared", "static")
	if got := strings.Join(testutil.ListDir(t, filepath.Join(store, "images")), ","); got != "bird.jpg,cat.jpg" {
		t.Errorf("Expected bird.jpg,cat.jpg in store, got %s", got)
	}
	if got := strings.Join(testutil.ListDir(t, filepath.Join(store, "audio")), ","); got != "bird.mp3,cat.mp3" {
		t.Errorf("Expected bird.mp3,cat.mp3 in store, got %s", got)
	}
	testutil.AssertFileContent(t, filepath.Join(root, "image_grid", "images.json"),
		[]byte("{\n  \"Partani\": [\n    \"sun\",\n    \"cat\",\n    \"bird\"\n  ]\n}\n"))

	testutil.AssertFileNotExists(t, dir)
	if s.Active() || len(s.Accepted()) != 0 {
		t.Error("Expected session to be reset")
	}
}

func TestBatchSessionApplyKeepsBatchOnCatalogError(t *testing.T) {
	s, _, pdf := newBatchSession(t)
	defer s.Discard()

	if err := s.Start(context.Background(), pdf, []string{"cat", "dog", "bird"}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	s.AcceptAll()

	outcome, err := s.Apply(context.Background(), []processor.Selection{{Target: "connect4", Group: "Gimel"}})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("Expected missing catalog error, got %v", err)
	}
	if len(outcome.Promotions) != 6 {
		t.Errorf("Expected promotion to have run, got %d entries", len(outcome.Promotions))
	}
	if !s.Active() {
		t.Error("Expected batch to be kept for a retry")
	}
	testutil.AssertFileExists(t, s.Batch().Dir)
}

func TestBatchSessionApplyNothing(t *testing.T) {
	s, _, pdf := newBatchSession(t)
	defer s.Discard()
	ctx := context.Background()

	if _, err := s.Apply(ctx, nil); !errors.Is(err, errors.ErrMissingInput) {
		t.Errorf("Expected missing input without batch, got %v", err)
	}

	if err := s.Start(ctx, pdf, []string{"cat", "dog", "bird"}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := s.Apply(ctx, nil); !errors.Is(err, errors.ErrMissingInput) {
		t.Errorf("Expected missing input without accepted words, got %v", err)
	}
}

func TestBatchSessionDiscard(t *testing.T) {
	s, _, pdf := newBatchSession(t)

	if err := s.Start(context.Background(), pdf, []string{"cat", "dog", "bird"}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	first := s.Batch().Dir
	s.AcceptAll()

	// Starting again replaces the held batch
	if err := s.Start(context.Background(), pdf, []string{"one", "two", "three"}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	testutil.AssertFileNotExists(t, first)
	if len(s.Accepted()) != 0 {
		t.Error("Expected acceptance to reset with a new batch")
	}

	second := s.Batch().Dir
	if err := s.Discard(); err != nil {
		t.Fatalf("Discard failed: %v", err)
	}
	testutil.AssertFileNotExists(t, second)
	if s.Active() {
		t.Error("Expected no active batch")
	}

	if err := s.Start(context.Background(), pdf, []string{"cat"}); !errors.Is(err, errors.ErrCountMismatch) {
		t.Errorf("Expected count mismatch, got %v", err)
	}
	if s.Active() {
		t.Error("Expected no batch after a failed start")
	}
}
