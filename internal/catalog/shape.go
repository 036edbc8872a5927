package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Shape is the entry layout of a catalog group
type Shape int

const (
	// Flat groups hold bare word strings
	Flat Shape = iota
	// Weighted groups hold {"word": w, "weight": 1} records
	Weighted
)

// WeightedEntry is one record of a weighted group
type WeightedEntry struct {
	Word   string `json:"word"`
	Weight int    `json:"weight"`
}

// String returns the shape name used in configuration
func (s Shape) String() string {
	if s == Weighted {
		return "weighted"
	}
	return "flat"
}

// ParseShape parses "flat" or "weighted"
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flat", "":
		return Flat, nil
	case "weighted":
		return Weighted, nil
	default:
		return Flat, fmt.Errorf("unknown catalog shape: %s", s)
	}
}

// entry builds the JSON for a new word
func (s Shape) entry(word string) (json.RawMessage, error) {
	if s == Weighted {
		return encode(WeightedEntry{Word: word, Weight: 1})
	}
	return encode(word)
}

// match returns the word an existing entry holds under this shape. Weighted
// groups compare on the "word" field, flat groups on string elements.
func (s Shape) match(raw json.RawMessage) (string, bool) {
	if s == Weighted {
		var rec struct {
			Word *string `json:"word"`
		}
		if err := json.Unmarshal(raw, &rec); err != nil || rec.Word == nil {
			return "", false
		}
		return *rec.Word, true
	}

	var w string
	if err := json.Unmarshal(raw, &w); err != nil {
		return "", false
	}
	return w, true
}

// entryWord reads the word from an entry of either shape
func entryWord(raw json.RawMessage) (string, bool) {
	if w, ok := Flat.match(raw); ok {
		return w, true
	}
	return Weighted.match(raw)
}
