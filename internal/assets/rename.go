package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/cardprep/internal"
	"codeberg.org/snonux/cardprep/internal/errors"
)

// Speaker writes spoken audio for text to path
type Speaker interface {
	Speak(ctx context.Context, text, path string) error
}

// SpeakerFunc adapts a function to the Speaker interface
type SpeakerFunc func(ctx context.Context, text, path string) error

// Speak calls f
func (f SpeakerFunc) Speak(ctx context.Context, text, path string) error {
	return f(ctx, text, path)
}

// Rename moves a stored pair to the slug of newWord, with freshly spoken
// audio for the new word. It runs in two phases:
//
//  1. stage: the new audio is synthesized into a hidden file in the audio
//     directory and checked to be non-empty. Nothing else is touched, so any
//     failure up to here leaves the store unchanged.
//  2. commit: the image is moved, the staged audio is renamed into place,
//     then the old audio is removed. If placing the audio fails the image
//     move is undone.
//
// A target slug that is already used by either asset is rejected with a
// name collision error before anything happens.
func (s *Store) Rename(ctx context.Context, oldSlug, newWord string, speaker Speaker) (string, error) {
	newWord = strings.TrimSpace(newWord)
	newSlug := internal.Slug(newWord)

	if newSlug == "" {
		return "", errors.MissingInputf("new name %q has no usable characters", newWord)
	}
	if newSlug == oldSlug {
		return "", errors.Validationf("%s already has that name", oldSlug)
	}
	if !s.Exists(oldSlug) {
		return "", errors.NotFoundf("no assets for %s", oldSlug)
	}
	if s.Exists(newSlug) {
		return "", errors.NameCollisionf("%s already exists in the asset store", newSlug)
	}

	oldImage, newImage := s.ImagePath(oldSlug), s.ImagePath(newSlug)
	oldAudio, newAudio := s.AudioPath(oldSlug), s.AudioPath(newSlug)

	staged, err := s.stageAudio(ctx, newWord, newSlug, speaker)
	if err != nil {
		return "", err
	}
	defer os.Remove(staged)

	movedImage := false
	if fileExists(oldImage) {
		if err := os.Rename(oldImage, newImage); err != nil {
			return "", errors.Wrapf(err, errors.CodeFile, "failed to move image %s", filepath.Base(oldImage))
		}
		movedImage = true
	} else {
		fmt.Fprintf(os.Stderr, "Warning: No image for %s, renaming audio only\n", oldSlug)
	}

	if err := os.Rename(staged, newAudio); err != nil {
		if movedImage {
			if rbErr := os.Rename(newImage, oldImage); rbErr != nil {
				return "", errors.Wrapf(errors.Join(err, rbErr), errors.CodeFile,
					"failed to place audio for %s and to restore image", newSlug)
			}
		}
		return "", errors.Wrapf(err, errors.CodeFile, "failed to place audio for %s", newSlug)
	}

	if err := os.Remove(oldAudio); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Failed to remove old audio %s: %v\n", filepath.Base(oldAudio), err)
	}

	fmt.Printf("Renamed %s to %s\n", oldSlug, newSlug)
	return newSlug, nil
}

// RegenerateAudio re-speaks the word behind slug and replaces its audio in
// place. The old file survives a failed synthesis.
func (s *Store) RegenerateAudio(ctx context.Context, slug string, speaker Speaker) error {
	if !s.Exists(slug) {
		return errors.NotFoundf("no assets for %s", slug)
	}

	staged, err := s.stageAudio(ctx, internal.SpokenForm(slug), slug, speaker)
	if err != nil {
		return err
	}
	defer os.Remove(staged)

	if err := os.Rename(staged, s.AudioPath(slug)); err != nil {
		return errors.Wrapf(err, errors.CodeFile, "failed to replace audio for %s", slug)
	}

	fmt.Printf("Regenerated audio for %s\n", slug)
	return nil
}

// stageAudio speaks text into a hidden file next to the final audio path
func (s *Store) stageAudio(ctx context.Context, text, slug string, speaker Speaker) (string, error) {
	if err := os.MkdirAll(s.AudioDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}

	staged := filepath.Join(s.AudioDir, "."+slug+".staging"+audioExt)
	if err := speaker.Speak(ctx, text, staged); err != nil {
		os.Remove(staged)
		return "", errors.Wrapf(err, errors.CodeSynthesis, "failed to generate audio for %q", text)
	}

	info, err := os.Stat(staged)
	if err != nil || info.Size() == 0 {
		os.Remove(staged)
		return "", errors.Wrapf(err, errors.CodeSynthesis, "no audio produced for %q", text)
	}
	return staged, nil
}
