package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"codeberg.org/snonux/cardprep/internal/errors"
	"codeberg.org/snonux/cardprep/internal/testutil"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.json")
	testutil.CreateTestFile(t, path, []byte(content))
	return path
}

func TestApplyWeightedCreatesGroup(t *testing.T) {
	path := writeCatalog(t, `{"Gimel": [{"word": "dog", "weight": 2}]}`)

	added, err := Apply(path, "numbers", []string{"cat"}, Weighted)
	if err != nil {
		t.Fatalf("Apply() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(added, []string{"cat"}) {
		t.Errorf("Expected [cat] added, got %v", added)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	raw, _ := doc.Group("numbers")
	var entries []WeightedEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		t.Fatalf("Failed to decode group: %v", err)
	}
	if !reflect.DeepEqual(entries, []WeightedEntry{{Word: "cat", Weight: 1}}) {
		t.Errorf("Unexpected group contents: %+v", entries)
	}

	// Applying again leaves the file unchanged
	before, _ := os.ReadFile(path)
	added, err = Apply(path, "numbers", []string{"cat"}, Weighted)
	if err != nil {
		t.Fatalf("Second Apply() unexpected error: %v", err)
	}
	if len(added) != 0 {
		t.Errorf("Expected nothing added on second apply, got %v", added)
	}
	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Errorf("Expected file unchanged on second apply")
	}
}

func TestApplyWeightedDedupByWordField(t *testing.T) {
	path := writeCatalog(t, `{"Gimel": [{"word": "dog", "weight": 5}]}`)

	added, err := Apply(path, "Gimel", []string{"dog", "cat", "cat"}, Weighted)
	if err != nil {
		t.Fatalf("Apply() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(added, []string{"cat"}) {
		t.Errorf("Expected [cat] added, got %v", added)
	}

	doc, _ := Load(path)
	raw, _ := doc.Group("Gimel")
	var entries []WeightedEntry
	json.Unmarshal(raw, &entries)
	want := []WeightedEntry{{Word: "dog", Weight: 5}, {Word: "cat", Weight: 1}}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("Expected %+v, got %+v", want, entries)
	}
}

func TestApplyFlat(t *testing.T) {
	path := writeCatalog(t, `{"Partani": ["dog"], "Gimel": []}`)

	for i := 0; i < 2; i++ {
		if _, err := Apply(path, "Partani", []string{"dog", "cat"}, Flat); err != nil {
			t.Fatalf("Apply() unexpected error: %v", err)
		}
	}

	doc, _ := Load(path)
	words, err := doc.Words("Partani")
	if err != nil {
		t.Fatalf("Words() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(words, []string{"dog", "cat"}) {
		t.Errorf("Expected [dog cat], got %v", words)
	}
}

func TestApplyPreservesOrderAndUnicode(t *testing.T) {
	path := writeCatalog(t, `{
  "zeta": ["x"],
  "alpha": ["גימל", "<b>"],
  "Gimel": []
}`)

	if _, err := Apply(path, "Gimel", []string{"שלום", "a&b"}, Flat); err != nil {
		t.Fatalf("Apply() unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read catalog: %v", err)
	}
	content := string(data)

	want := `{
  "zeta": [
    "x"
  ],
  "alpha": [
    "גימל",
    "<b>"
  ],
  "Gimel": [
    "שלום",
    "a&b"
  ]
}
`
	if content != want {
		t.Errorf("Unexpected catalog output:\n%s\nwant:\n%s", content, want)
	}
}

func TestRoundTripUnchangedGroups(t *testing.T) {
	original := `{"colors": [{"word": "red", "weight": 3}, {"word": "blue", "weight": 1, "note": "sky"}], "people": ["mom", "dad"]}`
	doc, err := Parse([]byte(original))
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}

	if _, err := doc.Add("numbers", []string{"one"}, Weighted); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}

	data, err := doc.Marshal()
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}
	reread, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() of output unexpected error: %v", err)
	}

	var before, after map[string]any
	json.Unmarshal([]byte(original), &before)
	for _, key := range []string{"colors", "people"} {
		raw, _ := reread.Group(key)
		var got any
		json.Unmarshal(raw, &got)
		if !reflect.DeepEqual(got, before[key]) {
			t.Errorf("Group %s changed: %v -> %v", key, before[key], got)
		}
	}
	json.Unmarshal(data, &after)
	if len(after) != 3 {
		t.Errorf("Expected 3 groups, got %d", len(after))
	}
	if !reflect.DeepEqual(reread.Keys(), []string{"colors", "people", "numbers"}) {
		t.Errorf("Unexpected key order: %v", reread.Keys())
	}
}

func TestApplyErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		group   string
		want    *errors.Error
	}{
		{"malformed json", `{"Gimel": [`, "Gimel", errors.ErrParse},
		{"top level array", `["cat"]`, "Gimel", errors.ErrParse},
		{"trailing data", `{} {}`, "Gimel", errors.ErrParse},
		{"group not array", `{"Gimel": "cat"}`, "Gimel", errors.ErrParse},
		{"group null", `{"Gimel": null}`, "Gimel", errors.ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".json")
			testutil.CreateTestFile(t, path, []byte(tt.content))

			_, err := Apply(path, tt.group, []string{"cat"}, Flat)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %s error, got %v", tt.want.Code, err)
			}
			testutil.AssertFileContent(t, path, []byte(tt.content))
		})
	}

	_, err := Apply(filepath.Join(dir, "missing.json"), "Gimel", []string{"cat"}, Flat)
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestUpdaterBackup(t *testing.T) {
	path := writeCatalog(t, `{"Gimel": []}`)
	u := &Updater{Backup: true}

	if _, err := u.Apply(path, "Gimel", []string{"cat"}, Flat); err != nil {
		t.Fatalf("Apply() unexpected error: %v", err)
	}

	backups := testutil.ListDir(t, filepath.Join(filepath.Dir(path), "archive"))
	if len(backups) != 1 {
		t.Fatalf("Expected 1 backup, got %v", backups)
	}
	testutil.AssertFileContent(t, filepath.Join(filepath.Dir(path), "archive", backups[0]), []byte(`{"Gimel": []}`))
}

func TestApplyTarget(t *testing.T) {
	root := t.TempDir()
	target, err := FindTarget(DefaultTargets(), "connect4")
	if err != nil {
		t.Fatalf("FindTarget() unexpected error: %v", err)
	}
	testutil.CreateTestFile(t, target.Path(root), []byte(`{}`))

	added, err := (&Updater{}).ApplyTarget(root, target, "Gimel", []string{"cat"})
	if err != nil {
		t.Fatalf("ApplyTarget() unexpected error: %v", err)
	}
	if len(added) != 1 {
		t.Errorf("Expected 1 word added, got %v", added)
	}
	testutil.AssertFileContains(t, filepath.Join(root, "connect4_words", "images.json"), `"cat"`)

	if _, err := (&Updater{}).ApplyTarget(root, target, "", []string{"cat"}); err == nil {
		t.Error("Expected error without a group")
	}
}

func TestTargets(t *testing.T) {
	targets := DefaultTargets()
	if len(targets) != 3 {
		t.Fatalf("Expected 3 targets, got %d", len(targets))
	}

	am, _ := FindTarget(targets, "audio_match")
	if am.Shape != Weighted || !am.HasGroup("numbers") || am.HasGroup("animals") {
		t.Errorf("Unexpected audio_match target: %+v", am)
	}

	ig, _ := FindTarget(targets, "image_grid")
	if ig.Shape != Flat || ig.Path("/proj") != filepath.Join("/proj", "image_grid", "images.json") {
		t.Errorf("Unexpected image_grid target: %+v", ig)
	}

	if _, err := FindTarget(targets, "memory"); err == nil {
		t.Error("Expected error for unknown target")
	}
}

func TestParseShape(t *testing.T) {
	tests := []struct {
		in      string
		want    Shape
		wantErr bool
	}{
		{"flat", Flat, false},
		{"Weighted", Weighted, false},
		{"", Flat, false},
		{"nested", Flat, true},
	}

	for _, tt := range tests {
		got, err := ParseShape(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseShape(%q) = %v, %v", tt.in, got, err)
		}
	}
	if Weighted.String() != "weighted" || Flat.String() != "flat" {
		t.Error("Unexpected shape names")
	}
}
