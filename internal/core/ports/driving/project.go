package driving

import (
	"context"

	"github.com/custodia-labs/pageform/internal/core/domain"
)

// ProjectService manages uploaded PDFs and their pages.
type ProjectService interface {
	// Create stores a new project from an uploaded PDF.
	// A filename without a .pdf extension fails with domain.ErrInvalidInput
	// before anything is written. A chat session must be opened first; if
	// that fails nothing is stored. The PDF upload to the chat session is
	// best effort and reported in the result.
	Create(ctx context.Context, filename string, pdf []byte) (*domain.CreateProjectResult, error)

	// List returns all projects, newest first.
	List(ctx context.Context) ([]domain.Project, error)

	// Get retrieves a project by ID.
	Get(ctx context.Context, id int64) (*domain.Project, error)

	// Delete removes a project and all of its pages.
	Delete(ctx context.Context, id int64) error

	// Pages lists a project's pages in page order.
	Pages(ctx context.Context, projectID int64) ([]domain.Page, error)

	// Page returns a single page with its text.
	Page(ctx context.Context, projectID int64, pageNumber int) (*domain.Page, error)

	// PagePDF returns a standalone PDF containing only the requested page.
	PagePDF(ctx context.Context, projectID int64, pageNumber int) ([]byte, error)
}
