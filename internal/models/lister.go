package models

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// modelClient is the part of the OpenAI client the lister needs
type modelClient interface {
	ListModels(ctx context.Context) (openai.ModelsList, error)
}

// Lister finds the OpenAI models usable for card audio
type Lister struct {
	apiKey string
	client modelClient
}

// NewLister creates a new model lister
func NewLister(apiKey string) *Lister {
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClient(apiKey),
	}
}

// SpeechModels fetches the model list and keeps the speech models
func (l *Lister) SpeechModels(ctx context.Context) ([]string, error) {
	if l.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure audio.openai_key in .cardprep.yaml")
	}

	list, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	return FilterSpeech(ids), nil
}

// PrintSpeechModels prints the speech models, marking the configured one
func (l *Lister) PrintSpeechModels(ctx context.Context, current string) error {
	ids, err := l.SpeechModels(ctx)
	if err != nil {
		return err
	}

	fmt.Println("OpenAI speech models:")
	if len(ids) == 0 {
		fmt.Println("  No TTS models found")
		return nil
	}
	for _, id := range ids {
		marker := " "
		if id == current {
			marker = "*"
		}
		fmt.Printf(" %s %s\n", marker, id)
	}
	return nil
}

// FilterSpeech returns the sorted, de-duplicated ids of text-to-speech models.
// Realtime and transcription models also carry "audio" in their name and
// cannot write an MP3 file, so they are left out.
func FilterSpeech(ids []string) []string {
	seen := make(map[string]bool)
	var speech []string
	for _, id := range ids {
		if seen[id] || !strings.Contains(id, "tts") {
			continue
		}
		seen[id] = true
		speech = append(speech, id)
	}
	sort.Strings(speech)
	return speech
}
