package driven

import "github.com/custodia-labs/pageform/internal/core/domain"

// LanguageDetector identifies the language of extracted page text.
type LanguageDetector interface {
	// Detect returns the ISO 639-1 code of text, or "" when unsure.
	Detect(text string) string
}

// FormInspector parses generated form HTML.
type FormInspector interface {
	// Inspect counts form fields and low-confidence markers.
	Inspect(html string) (*domain.FormStats, error)

	// Document wraps an HTML fragment in a complete page for display.
	// Complete documents are returned unchanged.
	Document(html, title string) string
}
