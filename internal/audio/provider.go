package audio

import (
	"context"
	"fmt"
)

// Provider defines the interface for text-to-speech providers
type Provider interface {
	// GenerateAudio speaks text in the given language and saves it to outputFile
	GenerateAudio(ctx context.Context, text, language, outputFile string) error

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

// Config holds common configuration for audio providers
type Config struct {
	Provider string // Provider name: "gtts", "openai" or "espeak"
	Fallback string // Optional provider tried when the primary fails

	// gTTS settings
	GTTSBaseURL string
	GTTSTimeout int // seconds

	// OpenAI settings
	OpenAIKey         string
	OpenAIModel       string  // "tts-1", "tts-1-hd", or "gpt-4o-mini-tts"
	OpenAIVoice       string  // "alloy", "ash", "coral", "echo", "fable", "nova", "onyx", "sage", "shimmer"
	OpenAISpeed       float64 // 0.25 to 4.0
	OpenAIInstruction string  // Voice instructions for gpt-4o-mini-tts, %s is replaced by the language

	// Consecutive failures before the circuit breaker opens, 0 disables it
	BreakerFailures uint32
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:          "gtts",
		GTTSBaseURL:       DefaultGTTSURL,
		GTTSTimeout:       15,
		OpenAIModel:       "gpt-4o-mini-tts",
		OpenAIVoice:       "alloy",
		OpenAISpeed:       1.0,
		OpenAIInstruction: "Speak the single word in language '%s' slowly and clearly for young learners.",
		BreakerFailures:   3,
	}
}

// NewProvider creates the configured provider, wrapped with the fallback
// when one is set. Remote providers also get a circuit breaker.
func NewProvider(config *Config) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	primary, err := newNamedProvider(config.Provider, config)
	if err != nil {
		return nil, err
	}

	if config.BreakerFailures > 0 && isRemote(config.Provider) {
		primary = NewBreakerProvider(primary, config.BreakerFailures)
	}

	if config.Fallback == "" || config.Fallback == config.Provider {
		return primary, nil
	}

	fallback, err := newNamedProvider(config.Fallback, config)
	if err != nil {
		return nil, fmt.Errorf("fallback provider: %w", err)
	}
	return NewProviderWithFallback(primary, fallback), nil
}

func newNamedProvider(name string, config *Config) (Provider, error) {
	switch name {
	case "gtts", "":
		return NewGTTSProvider(config), nil
	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIProvider(config)
	case "espeak", "espeak-ng":
		return NewESpeakProvider(nil)
	default:
		return nil, fmt.Errorf("unknown audio provider: %s", name)
	}
}

// isRemote reports whether the named provider calls a web service. Only
// those are put behind the circuit breaker.
func isRemote(name string) bool {
	switch name {
	case "gtts", "", "openai":
		return true
	}
	return false
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Provider
	fallback Provider
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails
func NewProviderWithFallback(primary, fallback Provider) Provider {
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
	}
}

// GenerateAudio tries primary provider first, falls back to secondary on error
func (p *ProviderWithFallback) GenerateAudio(ctx context.Context, text, language, outputFile string) error {
	err := p.primary.GenerateAudio(ctx, text, language, outputFile)
	if err != nil {
		fmt.Printf("Primary provider (%s) failed: %v. Falling back to %s\n",
			p.primary.Name(), err, p.fallback.Name())

		return p.fallback.GenerateAudio(ctx, text, language, outputFile)
	}
	return nil
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}

// IsAvailable checks if at least one provider is available
func (p *ProviderWithFallback) IsAvailable() error {
	primaryErr := p.primary.IsAvailable()
	if primaryErr == nil {
		return nil
	}

	fallbackErr := p.fallback.IsAvailable()
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("both providers unavailable: primary=%v, fallback=%v",
		primaryErr, fallbackErr)
}
