package driving

import (
	"context"

	"github.com/custodia-labs/pageform/internal/core/domain"
)

// FormService generates and caches editable HTML forms per page.
type FormService interface {
	// GetOrGenerate returns the cached form for the page, or generates,
	// stores and returns a new one. Concurrent calls for the same page
	// share a single model call. On failure nothing is stored.
	GetOrGenerate(ctx context.Context, projectID int64, pageNumber int) (*domain.FormResult, error)

	// HTML returns the cached form only.
	// Returns domain.ErrFormNotGenerated if none has been generated yet.
	HTML(ctx context.Context, projectID int64, pageNumber int) (string, error)

	// View returns the cached form as a complete HTML document.
	View(ctx context.Context, projectID int64, pageNumber int) (string, error)

	// Clear removes the cached form so the next request regenerates it.
	Clear(ctx context.Context, projectID int64, pageNumber int) error
}

// BulkDispatcher schedules form generation for every page of a project.
type BulkDispatcher interface {
	// Dispatch queues one task per page and returns without waiting.
	Dispatch(ctx context.Context, projectID int64) (*domain.BulkReport, error)

	// Status returns the progress of a batch.
	// Returns domain.ErrNotFound for an unknown batch.
	Status(batchID string) (*domain.BulkStatus, error)

	// Wait blocks until the batch completes or ctx is done.
	Wait(ctx context.Context, batchID string) (*domain.BulkStatus, error)

	// Close stops accepting work and waits for queued tasks to finish.
	Close() error
}
