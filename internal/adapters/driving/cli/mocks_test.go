package cli

import (
	"context"

	"github.com/custodia-labs/pageform/internal/core/domain"
	"github.com/custodia-labs/pageform/internal/core/ports/driving"
)

// mockProjectService implements driving.ProjectService for CLI tests.
type mockProjectService struct {
	projects []domain.Project
	project  *domain.Project
	pages    []domain.Page
	page     *domain.Page
	pdf      []byte
	upload   domain.UploadOutcome
	err      error

	createdName string
	createdSize int
	deleted     int64
}

func (m *mockProjectService) Create(_ context.Context, filename string, pdf []byte) (*domain.CreateProjectResult, error) {
	m.createdName = filename
	m.createdSize = len(pdf)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.CreateProjectResult{Project: m.project, Upload: m.upload}, nil
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

// mockFormService implements driving.FormService for CLI tests.
type mockFormService struct {
	result  *domain.FormResult
	html    string
	view    string
	err     error
	cleared bool
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
	m.cleared = true
	return m.err
}

// mockBulkDispatcher implements driving.BulkDispatcher for CLI tests.
type mockBulkDispatcher struct {
	report  *domain.BulkReport
	status  *domain.BulkStatus
	err     error
	waitErr error
	waited  bool
}

func (m *mockBulkDispatcher) Dispatch(_ context.Context, _ int64) (*domain.BulkReport, error) {
	return m.report, m.err
}

func (m *mockBulkDispatcher) Status(_ string) (*domain.BulkStatus, error) {
	return m.status, m.err
}

func (m *mockBulkDispatcher) Wait(_ context.Context, _ string) (*domain.BulkStatus, error) {
	m.waited = true
	return m.status, m.waitErr
}

func (m *mockBulkDispatcher) Close() error {
	return nil
}

// mockSettingsService implements driving.SettingsService for CLI tests.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	pingErr     error

	provider domain.AIProvider
	model    string
	apiKey   string
	variant  domain.PromptVariant
	pinged   bool
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.provider = provider
	m.model = model
	m.apiKey = apiKey
	return nil
}

func (m *mockSettingsService) SetAPIKey(apiKey string) error {
	m.apiKey = apiKey
	return nil
}

func (m *mockSettingsService) SetPromptVariant(variant domain.PromptVariant) error {
	m.variant = variant
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.AppSettings{}
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	m.pinged = true
	return m.pingErr
}

var (
	_ driving.ProjectService  = (*mockProjectService)(nil)
	_ driving.FormService     = (*mockFormService)(nil)
	_ driving.BulkDispatcher  = (*mockBulkDispatcher)(nil)
	_ driving.SettingsService = (*mockSettingsService)(nil)
)
