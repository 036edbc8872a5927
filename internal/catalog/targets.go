package catalog

import (
	"fmt"
	"path/filepath"
)

// Target is one downstream app catalog
type Target struct {
	Name   string
	Label  string
	File   string // relative to the project root unless absolute
	Shape  Shape
	Groups []string
}

// DefaultTargets returns the three known app catalogs
func DefaultTargets() []Target {
	return []Target{
		{
			Name:   "audio_match",
			Label:  "Audio Match",
			File:   filepath.Join("audio_match", "words.json"),
			Shape:  Weighted,
			Groups: []string{"Partani", "Gimel", "numbers", "colors", "people"},
		},
		{
			Name:   "image_grid",
			Label:  "Image Grid",
			File:   filepath.Join("image_grid", "images.json"),
			Shape:  Flat,
			Groups: []string{"Partani", "Gimel"},
		},
		{
			Name:   "connect4",
			Label:  "Connect 4",
			File:   filepath.Join("connect4_words", "images.json"),
			Shape:  Flat,
			Groups: []string{"Gimel"},
		},
	}
}

// Path resolves the catalog file against root
func (t Target) Path(root string) string {
	if filepath.IsAbs(t.File) {
		return t.File
	}
	return filepath.Join(root, t.File)
}

// HasGroup reports whether group is one of the target's selectable groups
func (t Target) HasGroup(group string) bool {
	for _, g := range t.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// FindTarget looks a target up by name
func FindTarget(targets []Target, name string) (Target, error) {
	for _, t := range targets {
		if t.Name == name {
			return t, nil
		}
	}
	return Target{}, fmt.Errorf("unknown catalog target: %s", name)
}
