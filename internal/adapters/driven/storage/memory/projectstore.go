package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/pageform/internal/core/domain"
	"github.com/custodia-labs/pageform/internal/core/ports/driven"
)

// Ensure ProjectStore implements the interface.
var _ driven.ProjectStore = (*ProjectStore)(nil)

// ProjectStore is an in-memory implementation of driven.ProjectStore.
type ProjectStore struct {
	mu       sync.RWMutex
	nextID   int64
	nextPage int64
	projects map[int64]domain.Project
	pages    map[int64][]domain.Page
	now      func() time.Time
}

// NewProjectStore creates a new in-memory project store.
func NewProjectStore() *ProjectStore {
	return &ProjectStore{
		projects: make(map[int64]domain.Project),
		pages:    make(map[int64][]domain.Page),
		now:      time.Now,
	}
}

// Create inserts the project and its pages.
func (s *ProjectStore) Create(_ context.Context, np domain.NewProject) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	project := domain.Project{
		ID:            s.nextID,
		Name:          np.Name,
		PDF:           append([]byte(nil), np.PDF...),
		TotalPages:    len(np.Pages),
		ChatSessionID: np.ChatSessionID,
		CreatedAt:     s.now().UTC(),
	}

	pages := make([]domain.Page, 0, len(np.Pages))
	for _, p := range np.Pages {
		s.nextPage++
		pages = append(pages, domain.Page{
			ID:         s.nextPage,
			ProjectID:  project.ID,
			PageNumber: p.PageNumber,
			Text:       p.Text,
			Language:   p.Language,
		})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].PageNumber < pages[j].PageNumber })

	s.projects[project.ID] = project
	s.pages[project.ID] = pages
	return &project, nil
}

// Get retrieves a project by ID.
func (s *ProjectStore) Get(_ context.Context, id int64) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	project, ok := s.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &project, nil
}

// List returns all projects, newest first.
func (s *ProjectStore) List(_ context.Context) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Project, 0, len(s.projects))
	for _, p := range s.projects {
		p.PDF = nil
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

// Delete removes a project and its pages.
func (s *ProjectStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.projects, id)
	delete(s.pages, id)
	return nil
}

// ListPages returns a project's pages in page order.
func (s *ProjectStore) ListPages(_ context.Context, projectID int64) ([]domain.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.projects[projectID]; !ok {
		return nil, domain.ErrNotFound
	}
	pages := s.pages[projectID]
	result := make([]domain.Page, len(pages))
	for i := range pages {
		result[i] = copyPage(pages[i])
	}
	return result, nil
}

// GetPage retrieves one page.
func (s *ProjectStore) GetPage(_ context.Context, projectID int64, pageNumber int) (*domain.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.pageIndex(projectID, pageNumber)
	if idx < 0 {
		return nil, domain.ErrNotFound
	}
	page := copyPage(s.pages[projectID][idx])
	return &page, nil
}

// SetFormHTML stores html if the page has none yet.
func (s *ProjectStore) SetFormHTML(_ context.Context, projectID int64, pageNumber int, html string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.pageIndex(projectID, pageNumber)
	if idx < 0 {
		return false, domain.ErrNotFound
	}
	page := &s.pages[projectID][idx]
	if page.FormHTML != nil {
		return false, nil
	}
	page.FormHTML = &html
	return true, nil
}

// ClearFormHTML removes the cached form.
func (s *ProjectStore) ClearFormHTML(_ context.Context, projectID int64, pageNumber int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.pageIndex(projectID, pageNumber)
	if idx < 0 {
		return domain.ErrNotFound
	}
	s.pages[projectID][idx].FormHTML = nil
	return nil
}

// Close is a no-op.
func (s *ProjectStore) Close() error {
	return nil
}

// pageIndex must be called with the lock held.
func (s *ProjectStore) pageIndex(projectID int64, pageNumber int) int {
	for i, p := range s.pages[projectID] {
		if p.PageNumber == pageNumber {
			return i
		}
	}
	return -1
}

func copyPage(p domain.Page) domain.Page {
	if p.FormHTML != nil {
		html := *p.FormHTML
		p.FormHTML = &html
	}
	return p
}
