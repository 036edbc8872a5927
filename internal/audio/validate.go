package audio

import (
	"fmt"
	"strings"
)

// ValidateText rejects text a speech engine cannot pronounce
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text cannot be empty")
	}
	return nil
}

// ValidateLanguage checks a language code looks like "en" or "pt-BR"
func ValidateLanguage(language string) error {
	if language == "" {
		return fmt.Errorf("language cannot be empty")
	}
	for _, r := range language {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '-') {
			return fmt.Errorf("invalid language code: %q", language)
		}
	}
	return nil
}
