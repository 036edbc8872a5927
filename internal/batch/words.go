// Package batch reads the word lists that label the pages of a PDF.
package batch

import (
	"fmt"
	"os"
	"strings"
)

// ParseWords splits a comma-separated word list. Surrounding whitespace is
// trimmed and empty items are dropped, so "cat, dog,, bird " gives three words.
func ParseWords(s string) []string {
	var words []string
	for _, item := range strings.Split(s, ",") {
		if w := strings.TrimSpace(item); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// ReadWordsFile reads words from a file. Each line may hold one word or a
// comma-separated list; blank lines and lines starting with '#' are skipped.
func ReadWordsFile(filename string) ([]string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read words file: %w", err)
	}

	var words []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, ParseWords(line)...)
	}

	return words, nil
}

// Join renders words back into the comma-separated form
func Join(words []string) string {
	return strings.Join(words, ", ")
}
