// Package suggest asks Gemini to propose one vocabulary word per PDF page,
// giving the reviewer a starting word list for a new picture book.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.5-flash"

// Suggester proposes page labels with Gemini
type Suggester struct {
	client *genai.Client
	model  string
}

// New creates a suggester using the Gemini API key
func New(ctx context.Context, apiKey, model string) (*Suggester, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY)")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Suggester{client: client, model: model}, nil
}

// Prompt builds the instruction sent along with the PDF
func Prompt(pages int, language string) string {
	return fmt.Sprintf(`This PDF is a children's picture book with %d pages.
Each page shows one thing to learn. For every page, in page order, give the
single word (or very short phrase) in language %q that names what is shown.
Answer with a JSON array of exactly %d strings and nothing else.`, pages, language, pages)
}

// SuggestWords uploads the PDF inline and returns one word per page
func (s *Suggester) SuggestWords(ctx context.Context, pdfPath string, pages int, language string) ([]string, error) {
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	content := &genai.Content{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: Prompt(pages, language)},
			{InlineData: &genai.Blob{MIMEType: "application/pdf", Data: data}},
		},
	}

	fmt.Printf("Asking %s for %d page labels...\n", s.model, pages)
	res, err := s.client.Models.GenerateContent(ctx, s.model, []*genai.Content{content},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"})
	if err != nil {
		return nil, fmt.Errorf("Gemini API call failed: %w", err)
	}

	return ParseWords(res.Text(), pages)
}

// ParseWords extracts the JSON array of words from a model answer. The
// answer may be wrapped in code fences or surrounded by prose.
func ParseWords(answer string, pages int) ([]string, error) {
	text := stripCodeFences(answer)
	start, end := strings.Index(text, "["), strings.LastIndex(text, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON array in Gemini response: %q", answer)
	}

	var words []string
	if err := json.Unmarshal([]byte(text[start:end+1]), &words); err != nil {
		return nil, fmt.Errorf("failed to parse Gemini response: %w", err)
	}

	for i, w := range words {
		words[i] = strings.TrimSpace(w)
	}
	if pages > 0 && len(words) != pages {
		return words, fmt.Errorf("Gemini suggested %d words for %d pages", len(words), pages)
	}
	return words, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if nl := strings.Index(s, "\n"); nl != -1 {
			s = s[nl+1:]
		}
	}
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
