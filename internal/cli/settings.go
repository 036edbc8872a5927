package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"codeberg.org/snonux/cardprep/internal/audio"
	"codeberg.org/snonux/cardprep/internal/catalog"
	"codeberg.org/snonux/cardprep/internal/errors"
	"codeberg.org/snonux/cardprep/internal/processor"
	"codeberg.org/snonux/cardprep/internal/raster"
)

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".cardprep", "history.db")
	}
	return filepath.Join(home, ".local", "state", "cardprep", "history.db")
}

// LoadAudioConfig builds the speech provider settings from configuration
func LoadAudioConfig() *audio.Config {
	config := audio.DefaultProviderConfig()

	if v := viper.GetString("audio.provider"); v != "" {
		config.Provider = v
	}
	config.Fallback = viper.GetString("audio.fallback")
	if v := viper.GetString("audio.gtts_url"); v != "" {
		config.GTTSBaseURL = v
	}

	config.OpenAIKey = GetOpenAIKey()
	if v := viper.GetString("audio.openai_model"); v != "" {
		config.OpenAIModel = v
	}
	if v := viper.GetString("audio.openai_voice"); v != "" {
		config.OpenAIVoice = v
	}
	if v := viper.GetFloat64("audio.openai_speed"); v > 0 {
		config.OpenAISpeed = v
	}
	if v := viper.GetString("audio.openai_instruction"); v != "" {
		config.OpenAIInstruction = v
	}
	if viper.IsSet("audio.breaker_failures") {
		config.BreakerFailures = viper.GetUint32("audio.breaker_failures")
	}

	return config
}

// LoadTargets returns the catalog targets with configured file and group
// overrides applied (catalog.<name>.file, catalog.<name>.groups)
func LoadTargets() []catalog.Target {
	targets := catalog.DefaultTargets()
	for i, t := range targets {
		if v := viper.GetString("catalog." + t.Name + ".file"); v != "" {
			targets[i].File = v
		}
		if v := viper.GetStringSlice("catalog." + t.Name + ".groups"); len(v) > 0 {
			targets[i].Groups = v
		}
	}
	return targets
}

// LoadProcessorConfig builds the pipeline settings from configuration
func LoadProcessorConfig(flags *Flags) *processor.Config {
	config := &processor.Config{
		Root:           viper.GetString("assets.root"),
		Width:          viper.GetInt("image.width"),
		Language:       viper.GetString("audio.language"),
		Targets:        LoadTargets(),
		BackupCatalogs: viper.GetBool("catalog.backup"),
		HistoryFile:    viper.GetString("history.file"),
	}

	if config.Root == "" {
		config.Root = "."
	}
	if config.Width <= 0 {
		config.Width = raster.DefaultWidth
	}
	if config.Language == "" {
		config.Language = "en"
	}
	if flags != nil && flags.NoHistory {
		config.HistoryFile = ""
	}
	return config
}

// NewProcessor creates a pipeline with the configured speech provider
func NewProcessor(flags *Flags) (*processor.Processor, error) {
	provider, err := audio.NewProvider(LoadAudioConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create audio provider: %w", err)
	}
	return processor.NewProcessor(LoadProcessorConfig(flags), nil, provider), nil
}

// ParseTargetSelection parses "app:group", e.g. "image_grid:Gimel"
func ParseTargetSelection(s string) (processor.Selection, error) {
	target, group, ok := strings.Cut(s, ":")
	target, group = strings.TrimSpace(target), strings.TrimSpace(group)
	if !ok || target == "" || group == "" {
		return processor.Selection{}, errors.Validationf("target %q is not in app:group form", s)
	}
	return processor.Selection{Target: target, Group: group}, nil
}

// ParseTargetSelections parses every --target value and checks that the
// apps exist
func ParseTargetSelections(values []string, targets []catalog.Target) ([]processor.Selection, error) {
	selections := make([]processor.Selection, 0, len(values))
	for _, v := range values {
		sel, err := ParseTargetSelection(v)
		if err != nil {
			return nil, err
		}
		if _, err := catalog.FindTarget(targets, sel.Target); err != nil {
			return nil, err
		}
		selections = append(selections, sel)
	}
	return selections, nil
}
