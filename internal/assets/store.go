// Package assets manages the shared image and audio store that the
// flashcard apps serve from: shared/static/images/<slug>.jpg paired with
// shared/static/audio/<slug>.mp3.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	imageExt = ".jpg"
	audioExt = ".mp3"
)

// Pair is one slug's image and audio file
type Pair struct {
	Slug      string
	ImagePath string
	AudioPath string
}

// Store is the persistent asset directory pair
type Store struct {
	Root      string
	ImagesDir string
	AudioDir  string
}

// NewStore creates a store rooted at <root>/shared/static
func NewStore(root string) *Store {
	base := filepath.Join(root, "shared", "static")
	return &Store{
		Root:      root,
		ImagesDir: filepath.Join(base, "images"),
		AudioDir:  filepath.Join(base, "audio"),
	}
}

// ImagePath returns where the image for slug lives
func (s *Store) ImagePath(slug string) string {
	return filepath.Join(s.ImagesDir, slug+imageExt)
}

// AudioPath returns where the audio for slug lives
func (s *Store) AudioPath(slug string) string {
	return filepath.Join(s.AudioDir, slug+audioExt)
}

// Exists reports whether either asset of slug is present
func (s *Store) Exists(slug string) bool {
	return fileExists(s.ImagePath(slug)) || fileExists(s.AudioPath(slug))
}

// Pairs lists every image that has a matching audio file, sorted by slug.
// Missing store directories give an empty list.
func (s *Store) Pairs() ([]Pair, error) {
	entries, err := os.ReadDir(s.ImagesDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	var pairs []Pair
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != imageExt {
			continue
		}

		slug := strings.TrimSuffix(name, imageExt)
		audio := s.AudioPath(slug)
		if !fileExists(audio) {
			continue
		}

		pairs = append(pairs, Pair{
			Slug:      slug,
			ImagePath: filepath.Join(s.ImagesDir, name),
			AudioPath: audio,
		})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Slug < pairs[j].Slug })
	return pairs, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
