package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/pageform/internal/core/domain"
	"github.com/custodia-labs/pageform/internal/core/ports/driven"
	"github.com/custodia-labs/pageform/internal/core/ports/driving"
	"github.com/custodia-labs/pageform/internal/logger"
)

// Ensure ProjectService implements the interface.
var _ driving.ProjectService = (*ProjectService)(nil)

// ProjectService manages uploaded PDFs and their pages.
type ProjectService struct {
	store    driven.ProjectStore
	codec    driven.PDFCodec
	chat     driven.ChatClient
	language driven.LanguageDetector
}

// NewProjectService creates a new project service.
// chat may be nil, in which case projects are created without a chat session.
func NewProjectService(store driven.ProjectStore, codec driven.PDFCodec, chat driven.ChatClient) *ProjectService {
	return &ProjectService{
		store: store,
		codec: codec,
		chat:  chat,
	}
}

// SetLanguageDetector enables language tagging of page text at ingestion.
func (s *ProjectService) SetLanguageDetector(detector driven.LanguageDetector) {
	s.language = detector
}

// Create stores a new project from an uploaded PDF.
func (s *ProjectService) Create(ctx context.Context, filename string, pdf []byte) (*domain.CreateProjectResult, error) {
	if !domain.IsPDFFilename(filename) {
		return nil, fmt.Errorf("invalid file type %q, only PDF files are allowed: %w", filename, domain.ErrInvalidInput)
	}
	if len(pdf) == 0 {
		return nil, fmt.Errorf("empty upload: %w", domain.ErrInvalidInput)
	}

	logger.Section("Create Project")

	texts, err := s.codec.PageTexts(pdf)
	if err != nil {
		return nil, fmt.Errorf("processing PDF: %w", err)
	}
	logger.Debug("parsed %s: %d pages", filename, len(texts))

	np := domain.NewProject{
		Name:  filename,
		PDF:   pdf,
		Pages: make([]domain.NewPage, len(texts)),
	}
	for i, text := range texts {
		np.Pages[i] = domain.NewPage{PageNumber: i + 1, Text: text}
		if s.language != nil {
			np.Pages[i].Language = s.language.Detect(text)
		}
	}

	if s.chat != nil {
		session, err := s.chat.NewSession(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating chat session: %w", err)
		}
		logger.Debug("chat session created: %s", session.SessionID)
		np.ChatSessionID = &session.SessionID
	}

	project, err := s.store.Create(ctx, np)
	if err != nil {
		return nil, fmt.Errorf("storing project: %w", err)
	}
	logger.Info("created project %d (%s, %d pages)", project.ID, project.Name, project.TotalPages)

	result := &domain.CreateProjectResult{Project: project}
	if s.chat != nil && project.ChatSessionID != nil {
		message := fmt.Sprintf("PDF document '%s' uploaded.", filename)
		result.Upload = s.chat.UploadPDF(ctx, *project.ChatSessionID, filename, pdf, message)
		if !result.Upload.Delivered {
			logger.Warn("uploading PDF to chat session %s: %v", *project.ChatSessionID, result.Upload.Err)
		}
	}

	return result, nil
}

// List returns all projects, newest first.
func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	return s.store.List(ctx)
}

// Get retrieves a project by ID.
func (s *ProjectService) Get(ctx context.Context, id int64) (*domain.Project, error) {
	project, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("project %d: %w", id, err)
	}
	return project, nil
}

// Delete removes a project and all of its pages.
func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("project %d: %w", id, err)
	}
	logger.Info("deleted project %d", id)
	return nil
}

// Pages lists a project's pages in page order.
func (s *ProjectService) Pages(ctx context.Context, projectID int64) ([]domain.Page, error) {
	pages, err := s.store.ListPages(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("project %d: %w", projectID, err)
	}
	return pages, nil
}

// Page returns a single page with its text.
func (s *ProjectService) Page(ctx context.Context, projectID int64, pageNumber int) (*domain.Page, error) {
	page, err := s.store.GetPage(ctx, projectID, pageNumber)
	if err != nil {
		return nil, fmt.Errorf("page %d of project %d: %w", pageNumber, projectID, err)
	}
	return page, nil
}

// PagePDF returns a standalone PDF containing only the requested page.
func (s *ProjectService) PagePDF(ctx context.Context, projectID int64, pageNumber int) ([]byte, error) {
	project, err := s.store.Get(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("project %d: %w", projectID, err)
	}
	_, single, err := s.codec.ExtractPage(project.PDF, pageNumber)
	if err != nil {
		var rangeErr *domain.PageOutOfRangeError
		if errors.As(err, &rangeErr) {
			return nil, err
		}
		return nil, fmt.Errorf("extracting page %d: %w", pageNumber, err)
	}
	return single, nil
}
