package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ESpeakConfig holds configuration for espeak-ng audio generation
type ESpeakConfig struct {
	Voice     string // Voice variant suffix (e.g. "+f1"), appended to the language
	Speed     int    // Speech speed in words per minute (default: 140)
	Pitch     int    // Pitch adjustment, 0 to 99 (default: 50)
	Amplitude int    // Volume/amplitude, 0 to 200 (default: 100)
}

// DefaultConfig returns the default espeak-ng configuration
func DefaultConfig() *ESpeakConfig {
	return &ESpeakConfig{
		Speed:     140,
		Pitch:     50,
		Amplitude: 100,
	}
}

// ESpeak provides an interface to the espeak-ng text-to-speech engine
type ESpeak struct {
	config *ESpeakConfig
}

// New creates a new ESpeak instance with the given configuration
func New(config *ESpeakConfig) (*ESpeak, error) {
	if err := checkESpeakInstalled(); err != nil {
		return nil, err
	}

	if config == nil {
		config = DefaultConfig()
	}

	return &ESpeak{config: config}, nil
}

// voice combines the language code with the configured variant
func (e *ESpeak) voice(language string) string {
	return strings.ToLower(language) + e.config.Voice
}

// args builds the espeak-ng command line writing a WAV file
func (e *ESpeak) args(text, language, wavFile string) []string {
	return []string{
		"-v", e.voice(language),
		"-s", fmt.Sprintf("%d", e.config.Speed),
		"-p", fmt.Sprintf("%d", e.config.Pitch),
		"-a", fmt.Sprintf("%d", e.config.Amplitude),
		"-w", wavFile,
		text,
	}
}

// GenerateWAV generates a WAV file for the given text
func (e *ESpeak) GenerateWAV(ctx context.Context, text, language, outputFile string) error {
	if err := ValidateText(text); err != nil {
		return err
	}

	if dir := filepath.Dir(outputFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	cmd := exec.CommandContext(ctx, "espeak-ng", e.args(text, language, outputFile)...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("espeak-ng failed: %w\nOutput: %s", err, string(output))
	}

	return nil
}

// GenerateMP3 generates an MP3 file by converting espeak-ng's WAV output
func (e *ESpeak) GenerateMP3(ctx context.Context, text, language, outputFile string) error {
	tempWAV := strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + "_temp.wav"
	defer os.Remove(tempWAV)

	if err := e.GenerateWAV(ctx, text, language, tempWAV); err != nil {
		return err
	}

	return ConvertWAVToMP3(ctx, tempWAV, outputFile)
}

// SetSpeed updates the speech speed
func (e *ESpeak) SetSpeed(speed int) {
	if speed < 80 {
		speed = 80
	} else if speed > 450 {
		speed = 450
	}
	e.config.Speed = speed
}

// checkESpeakInstalled verifies that espeak-ng is available on the system
func checkESpeakInstalled() error {
	if _, err := exec.LookPath("espeak-ng"); err != nil {
		return fmt.Errorf("espeak-ng is not installed or not in PATH: %w", err)
	}
	return nil
}

// ConvertWAVToMP3 converts a WAV file to MP3 using ffmpeg
func ConvertWAVToMP3(ctx context.Context, wavFile, mp3File string) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg is not installed or not in PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", "-i", wavFile, "-acodec", "mp3", "-y", mp3File)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %w\nOutput: %s", err, string(output))
	}

	return nil
}
