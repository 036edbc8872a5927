package testutil

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
)

// MockSpeech implements the audio provider interface for tests. It writes
// Content to the output file unless the text is listed in Failures.
type MockSpeech struct {
	mu        sync.Mutex
	Content   []byte
	Failures  map[string]error
	Calls     []string
	Languages []string
	Available error
}

// NewMockSpeech creates a mock provider that writes "mp3:<text>"
func NewMockSpeech() *MockSpeech {
	return &MockSpeech{Failures: make(map[string]error)}
}

// GenerateAudio records the call and writes a fake MP3
func (m *MockSpeech) GenerateAudio(ctx context.Context, text, language, outputFile string) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, text)
	m.Languages = append(m.Languages, language)
	m.mu.Unlock()

	if err, ok := m.Failures[text]; ok {
		return err
	}

	content := m.Content
	if content == nil {
		content = []byte("mp3:" + text)
	}

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return err
	}
	return os.WriteFile(outputFile, content, 0644)
}

// Name returns the provider name
func (m *MockSpeech) Name() string {
	return "mock"
}

// IsAvailable returns the configured availability error
func (m *MockSpeech) IsAvailable() error {
	return m.Available
}

// CallCount returns how many times GenerateAudio ran
func (m *MockSpeech) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// FakeRenderer produces synthetic pages: a white canvas with a coloured
// block inset by Margin pixels on every side.
type FakeRenderer struct {
	Width, Height int
	Margin        int
	FailPage      int
	Pages         []int
}

// NewFakeRenderer creates a renderer producing 300x400 pages with a 20px margin
func NewFakeRenderer() *FakeRenderer {
	return &FakeRenderer{Width: 300, Height: 400, Margin: 20}
}

// RenderPage draws the synthetic page
func (f *FakeRenderer) RenderPage(ctx context.Context, pdfPath string, page int) (image.Image, error) {
	f.Pages = append(f.Pages, page)
	if f.FailPage == page {
		return nil, fmt.Errorf("render failure on page %d", page)
	}

	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	block := color.RGBA{R: uint8(40 * page), G: 80, B: 160, A: 255}
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			c := color.RGBA{R: 255, G: 255, B: 255, A: 255}
			if x >= f.Margin && x < f.Width-f.Margin && y >= f.Margin && y < f.Height-f.Margin {
				c = block
			}
			img.Set(x, y, c)
		}
	}
	return img, nil
}
