// Package llm holds helpers shared by the form generator adapters.
package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/custodia-labs/pageform/internal/core/domain"
)

// PDFMediaType is the media type sent with every page.
const PDFMediaType = "application/pdf"

// maxErrorBody caps how much of an error response is kept in errors.
const maxErrorBody = 512

// StripFences removes a Markdown code fence wrapped around model output.
// A leading "```html" is removed first, then a bare leading "```", then a
// trailing "```". The result is trimmed.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```html") {
		s = s[len("```html"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Finish strips fences from raw model output and reports an empty
// result as blocked content.
func Finish(raw, reason string) (string, error) {
	html := StripFences(raw)
	if html == "" {
		return "", &domain.ContentBlockedError{Reason: reason}
	}
	return html, nil
}

// StatusError converts an error status from a provider into a domain
// error. Authentication failures mean the configured key is unusable.
func StatusError(service string, status int, body []byte) error {
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	err := &domain.UpstreamStatusError{Service: service, StatusCode: status, Body: text}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	return err
}

// TransportError wraps a failed request.
func TransportError(service string, err error) error {
	if errors.Is(err, domain.ErrUpstreamUnavailable) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", service, domain.ErrUpstreamUnavailable, err)
}
