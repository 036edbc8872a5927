package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// DefaultGTTSURL is the Google Translate speech endpoint
const DefaultGTTSURL = "https://translate.google.com/translate_tts"

// gttsMaxChars is the longest input the endpoint accepts in one request
const gttsMaxChars = 200

// GTTSProvider speaks text through the Google Translate TTS endpoint. It needs
// no API key and returns MP3 data directly.
type GTTSProvider struct {
	client  *http.Client
	baseURL string
}

// NewGTTSProvider creates a gTTS provider from the common config
func NewGTTSProvider(config *Config) *GTTSProvider {
	baseURL := config.GTTSBaseURL
	if baseURL == "" {
		baseURL = DefaultGTTSURL
	}
	timeout := time.Duration(config.GTTSTimeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &GTTSProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// GenerateAudio downloads the spoken text as MP3 into outputFile
func (p *GTTSProvider) GenerateAudio(ctx context.Context, text, language, outputFile string) error {
	if err := ValidateText(text); err != nil {
		return err
	}
	if err := ValidateLanguage(language); err != nil {
		return err
	}
	if len([]rune(text)) > gttsMaxChars {
		return fmt.Errorf("text too long for gTTS (%d characters, max %d)", len([]rune(text)), gttsMaxChars)
	}

	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("tl", language)
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) cardprep")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("gTTS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gTTS returned status %d: %s", resp.StatusCode, string(body))
	}

	if dir := filepath.Dir(outputFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	written, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if written == 0 {
		os.Remove(outputFile)
		return fmt.Errorf("no audio data received from gTTS")
	}

	return nil
}

// Name returns the provider name
func (p *GTTSProvider) Name() string {
	return "gtts"
}

// IsAvailable checks the endpoint is configured. No request is made.
func (p *GTTSProvider) IsAvailable() error {
	if _, err := url.Parse(p.baseURL); err != nil {
		return fmt.Errorf("invalid gTTS URL %q: %w", p.baseURL, err)
	}
	return nil
}
