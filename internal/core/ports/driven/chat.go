package driven

import (
	"context"

	"github.com/custodia-labs/pageform/internal/core/domain"
)

// ChatClient talks to the external chat service that keeps a
// conversation alongside each project.
type ChatClient interface {
	// NewSession opens a chat session.
	// Transport failures wrap domain.ErrUpstreamUnavailable; error statuses
	// are returned as *domain.UpstreamStatusError; a response without an id
	// wraps domain.ErrInternal.
	NewSession(ctx context.Context) (domain.SessionOutcome, error)

	// UploadPDF posts the document and a short note to the session.
	// Failures are reported in the outcome rather than returned.
	UploadPDF(ctx context.Context, sessionID, filename string, pdf []byte, message string) domain.UploadOutcome
}
