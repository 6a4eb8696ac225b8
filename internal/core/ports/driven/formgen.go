package driven

import "context"

// FormGenerator converts a single-page PDF into an editable HTML form
// using a generative model.
//
// Implementations include:
//   - Gemini (default)
//   - OpenAI
//   - Anthropic
//
// Every call is a new billable request. Callers are responsible for caching.
type FormGenerator interface {
	// GenerateForm sends the page and instruction to the model and returns
	// the HTML with code fences stripped and whitespace trimmed.
	//
	// Errors:
	//   - domain.ErrLLMUnavailable when no credential is configured
	//   - domain.ErrUpstreamUnavailable on transport failure or error status
	//   - *domain.ContentBlockedError when the model returns nothing
	GenerateForm(ctx context.Context, pagePDF []byte, prompt string) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
