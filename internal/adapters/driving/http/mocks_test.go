package http

import (
	"context"

	"github.com/custodia-labs/pageform/internal/core/domain"
)

// mockProjectService is a mock implementation of driving.ProjectService.
type mockProjectService struct {
	projects []domain.Project
	project  *domain.Project
	pages    []domain.Page
	page     *domain.Page
	pdf      []byte
	err      error

	created     string
	createdSize int
	deleted     int64
}

func (m *mockProjectService) Create(_ context.Context, filename string, pdf []byte) (*domain.CreateProjectResult, error) {
	m.created = filename
	m.createdSize = len(pdf)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.CreateProjectResult{Project: m.project}, nil
}

func (m *mockProjectService) List(_ context.Context) ([]domain.Project, error) {
	return m.projects, m.err
}

func (m *mockProjectService) Get(_ context.Context, _ int64) (*domain.Project, error) {
	return m.project, m.err
}

func (m *mockProjectService) Delete(_ context.Context, id int64) error {
	m.deleted = id
	return m.err
}

func (m *mockProjectService) Pages(_ context.Context, _ int64) ([]domain.Page, error) {
	return m.pages, m.err
}

func (m *mockProjectService) Page(_ context.Context, _ int64, _ int) (*domain.Page, error) {
	return m.page, m.err
}

func (m *mockProjectService) PagePDF(_ context.Context, _ int64, _ int) ([]byte, error) {
	return m.pdf, m.err
}

// mockFormService is a mock implementation of driving.FormService.
type mockFormService struct {
	result *domain.FormResult
	html   string
	view   string
	err    error
}

func (m *mockFormService) GetOrGenerate(_ context.Context, _ int64, _ int) (*domain.FormResult, error) {
	return m.result, m.err
}

func (m *mockFormService) HTML(_ context.Context, _ int64, _ int) (string, error) {
	return m.html, m.err
}

func (m *mockFormService) View(_ context.Context, _ int64, _ int) (string, error) {
	return m.view, m.err
}

func (m *mockFormService) Clear(_ context.Context, _ int64, _ int) error {
	return m.err
}

// mockBulkDispatcher is a mock implementation of driving.BulkDispatcher.
type mockBulkDispatcher struct {
	report *domain.BulkReport
	status *domain.BulkStatus
	err    error
}

func (m *mockBulkDispatcher) Dispatch(_ context.Context, _ int64) (*domain.BulkReport, error) {
	return m.report, m.err
}

func (m *mockBulkDispatcher) Status(_ string) (*domain.BulkStatus, error) {
	return m.status, m.err
}

func (m *mockBulkDispatcher) Wait(_ context.Context, _ string) (*domain.BulkStatus, error) {
	return m.status, m.err
}

func (m *mockBulkDispatcher) Close() error {
	return nil
}
