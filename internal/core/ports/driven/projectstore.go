package driven

import (
	"context"

	"github.com/custodia-labs/pageform/internal/core/domain"
)

// ProjectStore persists projects and their pages.
type ProjectStore interface {
	// Create inserts the project and all of its pages atomically.
	// The returned project carries the assigned ID and creation time.
	Create(ctx context.Context, project domain.NewProject) (*domain.Project, error)

	// Get returns the project including its PDF bytes.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id int64) (*domain.Project, error)

	// List returns all projects, newest first. PDF bytes are not loaded.
	List(ctx context.Context) ([]domain.Project, error)

	// Delete removes the project and its pages.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error

	// ListPages returns the pages of a project ordered by page number.
	// Returns domain.ErrNotFound if the project does not exist.
	ListPages(ctx context.Context, projectID int64) ([]domain.Page, error)

	// GetPage returns a single page.
	// Returns domain.ErrNotFound if the page does not exist.
	GetPage(ctx context.Context, projectID int64, pageNumber int) (*domain.Page, error)

	// SetFormHTML stores html on a page only if none is stored yet.
	// It reports whether this call performed the write. When it returns
	// false the page already held a form and is left unchanged.
	SetFormHTML(ctx context.Context, projectID int64, pageNumber int, html string) (bool, error)

	// ClearFormHTML removes any cached form from the page.
	ClearFormHTML(ctx context.Context, projectID int64, pageNumber int) error

	// Close releases the underlying connection.
	Close() error
}
