package audio

import (
	"context"
	"errors"
	"testing"
)

// mockProvider implements Provider interface for testing
type mockProvider struct {
	name          string
	generateErr   error
	availableErr  error
	generateCalls int
	lastLanguage  string
}

func (m *mockProvider) GenerateAudio(ctx context.Context, text, language, outputFile string) error {
	m.generateCalls++
	m.lastLanguage = language
	return m.generateErr
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) IsAvailable() error {
	return m.availableErr
}

func TestDefaultProviderConfig(t *testing.T) {
	config := DefaultProviderConfig()

	if config.Provider != "gtts" {
		t.Errorf("Expected provider 'gtts', got '%s'", config.Provider)
	}

	if config.GTTSBaseURL != DefaultGTTSURL {
		t.Errorf("Expected gTTS URL %s, got '%s'", DefaultGTTSURL, config.GTTSBaseURL)
	}

	if config.OpenAIModel != "gpt-4o-mini-tts" {
		t.Errorf("Expected OpenAI model 'gpt-4o-mini-tts', got '%s'", config.OpenAIModel)
	}

	if config.OpenAIVoice != "alloy" {
		t.Errorf("Expected OpenAI voice 'alloy', got '%s'", config.OpenAIVoice)
	}

	if config.BreakerFailures != 3 {
		t.Errorf("Expected breaker threshold 3, got %d", config.BreakerFailures)
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		wantErr  bool
		errMsg   string
		wantName string
	}{
		{
			name:     "nil config uses gtts",
			config:   nil,
			wantName: "gtts",
		},
		{
			name:     "gtts without breaker",
			config:   &Config{Provider: "gtts"},
			wantName: "gtts",
		},
		{
			name:    "openai provider without key",
			config:  &Config{Provider: "openai"},
			wantErr: true,
			errMsg:  "OpenAI API key is required",
		},
		{
			name:     "openai with gtts fallback",
			config:   &Config{Provider: "openai", OpenAIKey: "test-key", Fallback: "gtts"},
			wantName: "openai (fallback: gtts)",
		},
		{
			name:    "unknown provider",
			config:  &Config{Provider: "unknown"},
			wantErr: true,
			errMsg:  "unknown audio provider: unknown",
		},
		{
			name:    "unknown fallback",
			config:  &Config{Provider: "gtts", Fallback: "nope"},
			wantErr: true,
			errMsg:  "fallback provider: unknown audio provider: nope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if err.Error() != tt.errMsg {
					t.Errorf("NewProvider() error = %v, want %v", err.Error(), tt.errMsg)
				}
				return
			}
			if provider.Name() != tt.wantName {
				t.Errorf("Name() = %v, want %v", provider.Name(), tt.wantName)
			}
		})
	}
}

func TestNewProviderWrapsBreaker(t *testing.T) {
	provider, err := NewProvider(&Config{Provider: "gtts", BreakerFailures: 2})
	if err != nil {
		t.Fatalf("NewProvider() unexpected error: %v", err)
	}
	if _, ok := provider.(*BreakerProvider); !ok {
		t.Errorf("Expected *BreakerProvider, got %T", provider)
	}
}

func TestBreakerOnlyForRemoteProviders(t *testing.T) {
	tests := []struct {
		name   string
		remote bool
	}{
		{"gtts", true},
		{"", true},
		{"openai", true},
		{"espeak", false},
		{"espeak-ng", false},
	}

	for _, tt := range tests {
		if got := isRemote(tt.name); got != tt.remote {
			t.Errorf("isRemote(%q) = %v, want %v", tt.name, got, tt.remote)
		}
	}

	if err := checkESpeakInstalled(); err != nil {
		t.Skip("espeak-ng not installed")
	}
	provider, err := NewProvider(&Config{Provider: "espeak", BreakerFailures: 2})
	if err != nil {
		t.Fatalf("NewProvider() unexpected error: %v", err)
	}
	if _, ok := provider.(*BreakerProvider); ok {
		t.Error("Expected local espeak provider without a circuit breaker")
	}
}

func TestProviderWithFallback(t *testing.T) {
	primary := &mockProvider{name: "primary"}
	fallback := &mockProvider{name: "fallback"}

	provider := NewProviderWithFallback(primary, fallback)

	ctx := context.Background()
	err := provider.GenerateAudio(ctx, "test", "en", "output.mp3")
	if err != nil {
		t.Errorf("GenerateAudio() unexpected error: %v", err)
	}
	if primary.generateCalls != 1 {
		t.Errorf("Expected 1 primary call, got %d", primary.generateCalls)
	}
	if fallback.generateCalls != 0 {
		t.Errorf("Expected 0 fallback calls, got %d", fallback.generateCalls)
	}

	// Primary failure, fallback success
	primary.generateErr = errors.New("primary failed")
	primary.generateCalls = 0

	err = provider.GenerateAudio(ctx, "test", "he", "output.mp3")
	if err != nil {
		t.Errorf("GenerateAudio() unexpected error: %v", err)
	}
	if fallback.generateCalls != 1 {
		t.Errorf("Expected 1 fallback call, got %d", fallback.generateCalls)
	}
	if fallback.lastLanguage != "he" {
		t.Errorf("Expected language to reach fallback, got %q", fallback.lastLanguage)
	}

	// Both fail
	fallback.generateErr = errors.New("fallback failed")
	err = provider.GenerateAudio(ctx, "test", "en", "output.mp3")
	if err == nil {
		t.Error("GenerateAudio() expected error when both providers fail")
	}
}

func TestProviderWithFallbackName(t *testing.T) {
	provider := NewProviderWithFallback(&mockProvider{name: "primary"}, &mockProvider{name: "fallback"})

	expected := "primary (fallback: fallback)"
	if provider.Name() != expected {
		t.Errorf("Name() = %v, want %v", provider.Name(), expected)
	}
}

func TestProviderWithFallbackIsAvailable(t *testing.T) {
	primary := &mockProvider{name: "primary"}
	fallback := &mockProvider{name: "fallback"}

	provider := NewProviderWithFallback(primary, fallback)

	if err := provider.IsAvailable(); err != nil {
		t.Errorf("IsAvailable() unexpected error: %v", err)
	}

	primary.availableErr = errors.New("primary unavailable")
	if err := provider.IsAvailable(); err != nil {
		t.Errorf("IsAvailable() unexpected error when fallback available: %v", err)
	}

	fallback.availableErr = errors.New("fallback unavailable")
	if err := provider.IsAvailable(); err == nil {
		t.Error("IsAvailable() expected error when both providers unavailable")
	}
}
