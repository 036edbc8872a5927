package internal

import "testing"

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		word string
		want string
	}{
		{"plain word", "cat", "cat"},
		{"inner space", "ice cream", "ice_cream"},
		{"punctuation dropped", "what's up?", "whats_up"},
		{"trailing whitespace trimmed", "dog  ", "dog"},
		{"leading space kept", " dog", "_dog"},
		{"hyphen and underscore kept", "x-ray_1", "x-ray_1"},
		{"cyrillic letters", "ябълка", "ябълка"},
		{"hebrew letters", "גימל", "גימל"},
		{"only symbols", "!?.", ""},
		{"empty", "", ""},
		{"tab is dropped", "a\tb", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slug(tt.word); got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.word, got, tt.want)
			}
		})
	}
}

func TestSlugIdempotent(t *testing.T) {
	words := []string{
		"cat", "ice cream", "what's up?", "dog  ", " dog", "x-ray_1",
		"ябълка", "a  b", "!?.", "", "Hello, World!", "מספר 3",
	}

	for _, w := range words {
		once := Slug(w)
		if twice := Slug(once); twice != once {
			t.Errorf("Slug not idempotent for %q: %q then %q", w, once, twice)
		}
	}
}

func TestSlugCollision(t *testing.T) {
	// Distinct words can share a stem; callers decide what to do about it.
	if Slug("cat!") != Slug("cat") {
		t.Errorf("Expected 'cat!' and 'cat' to collide")
	}
}

func TestSpokenForm(t *testing.T) {
	tests := []struct {
		slug string
		want string
	}{
		{"ice_cream", "ice cream"},
		{"cat", "cat"},
		{"_dog", "dog"},
	}

	for _, tt := range tests {
		if got := SpokenForm(tt.slug); got != tt.want {
			t.Errorf("SpokenForm(%q) = %q, want %q", tt.slug, got, tt.want)
		}
	}
}
