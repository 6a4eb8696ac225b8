package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/pageform/internal/core/domain"
	"github.com/custodia-labs/pageform/internal/core/ports/driven"
	"github.com/custodia-labs/pageform/internal/core/ports/driving"
	"github.com/custodia-labs/pageform/internal/logger"
)

// Ensure FormService implements the interface.
var _ driving.FormService = (*FormService)(nil)

// FormService generates and caches editable HTML forms per page.
//
// Generation for a page runs at most once at a time: concurrent callers
// for the same page wait for the in-flight call and share its result.
// The store write is conditional on the page having no form, so a second
// process racing on the same database cannot overwrite the first result.
type FormService struct {
	store     driven.ProjectStore
	codec     driven.PDFCodec
	generator driven.FormGenerator
	prompts   driven.PromptStore
	inspector driven.FormInspector

	mu      sync.RWMutex
	variant domain.PromptVariant
	timeout time.Duration

	flight singleflight.Group
}

// NewFormService creates a new form service.
// generator may be nil when no provider is configured; generation then
// fails with domain.ErrLLMUnavailable while cached forms stay readable.
func NewFormService(
	store driven.ProjectStore,
	codec driven.PDFCodec,
	generator driven.FormGenerator,
	prompts driven.PromptStore,
) *FormService {
	return &FormService{
		store:     store,
		codec:     codec,
		generator: generator,
		prompts:   prompts,
		variant:   domain.PromptStandard,
	}
}

// SetInspector enables structural inspection of generated HTML.
func (s *FormService) SetInspector(inspector driven.FormInspector) {
	s.inspector = inspector
}

// SetPromptVariant selects the instruction sent with each page.
func (s *FormService) SetPromptVariant(variant domain.PromptVariant) {
	if !variant.IsValid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variant = variant
}

// GetOrGenerate returns the cached form or generates a new one.
func (s *FormService) GetOrGenerate(ctx context.Context, projectID int64, pageNumber int) (*domain.FormResult, error) {
	page, err := s.store.GetPage(ctx, projectID, pageNumber)
	if err != nil {
		return nil, fmt.Errorf("page %d of project %d: %w", pageNumber, projectID, err)
	}
	if page.HasForm() {
		logger.Debug("form cache hit: project %d page %d", projectID, pageNumber)
		return s.result(*page.FormHTML, domain.FormSourceCache), nil
	}

	// The shared call outlives any single caller; each caller stops
	// waiting when its own ctx is done.
	key := strconv.FormatInt(projectID, 10) + "/" + strconv.Itoa(pageNumber)
	leader := false
	ch := s.flight.DoChan(key, func() (any, error) {
		leader = true
		return s.generate(context.WithoutCancel(ctx), projectID, pageNumber)
	})

	var r singleflight.Result
	select {
	case r = <-ch:
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for form: %w", ctx.Err())
	}
	if r.Err != nil {
		return nil, r.Err
	}

	res := *r.Val.(*domain.FormResult)
	if !leader {
		// Another request produced this form; from our side it was cached.
		res.Source = domain.FormSourceCache
	}
	return &res, nil
}

func (s *FormService) generate(ctx context.Context, projectID int64, pageNumber int) (*domain.FormResult, error) {
	logger.Section("Form Generation")

	// A flight that finished between our cache check and Do may have stored it.
	page, err := s.store.GetPage(ctx, projectID, pageNumber)
	if err != nil {
		return nil, fmt.Errorf("page %d of project %d: %w", pageNumber, projectID, err)
	}
	if page.HasForm() {
		return s.result(*page.FormHTML, domain.FormSourceCache), nil
	}

	if s.generator == nil {
		return nil, fmt.Errorf("generating form: %w", domain.ErrLLMUnavailable)
	}

	project, err := s.store.Get(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("project %d: %w", projectID, err)
	}

	_, single, err := s.codec.ExtractPage(project.PDF, pageNumber)
	if err != nil {
		return nil, fmt.Errorf("extracting page %d: %w", pageNumber, err)
	}

	prompt, err := s.prompts.Load(s.promptVariant().PromptName())
	if err != nil {
		return nil, fmt.Errorf("loading prompt: %w", err)
	}

	logger.Debug("sending page %d of project %d to %s (%d bytes)", pageNumber, projectID, s.generator.ModelName(), len(single))
	genCtx := ctx
	if d := s.generateTimeout(); d > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	html, err := s.generator.GenerateForm(genCtx, single, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating form: %w", err)
	}

	written, err := s.store.SetFormHTML(ctx, projectID, pageNumber, html)
	if err != nil {
		return nil, fmt.Errorf("storing form: %w", err)
	}
	if !written {
		stored, err := s.store.GetPage(ctx, projectID, pageNumber)
		if err != nil {
			return nil, fmt.Errorf("page %d of project %d: %w", pageNumber, projectID, err)
		}
		if stored.HasForm() {
			logger.Debug("form for project %d page %d was stored concurrently", projectID, pageNumber)
			return s.result(*stored.FormHTML, domain.FormSourceCache), nil
		}
		return nil, fmt.Errorf("storing form: page changed concurrently: %w", domain.ErrInternal)
	}

	res := s.result(html, domain.FormSourceGenerated)
	if res.Stats != nil {
		logger.Info("generated form for project %d page %d: %d fields, %d low confidence",
			projectID, pageNumber, res.Stats.Fields, res.Stats.LowConfidence)
	}
	return res, nil
}

// HTML returns the cached form only.
func (s *FormService) HTML(ctx context.Context, projectID int64, pageNumber int) (string, error) {
	page, err := s.store.GetPage(ctx, projectID, pageNumber)
	if err != nil {
		return "", fmt.Errorf("page %d of project %d: %w", pageNumber, projectID, err)
	}
	if !page.HasForm() {
		return "", fmt.Errorf("page %d of project %d: %w", pageNumber, projectID, domain.ErrFormNotGenerated)
	}
	return *page.FormHTML, nil
}

// View returns the cached form as a complete HTML document.
func (s *FormService) View(ctx context.Context, projectID int64, pageNumber int) (string, error) {
	html, err := s.HTML(ctx, projectID, pageNumber)
	if err != nil {
		return "", err
	}
	if s.inspector == nil {
		return html, nil
	}
	return s.inspector.Document(html, fmt.Sprintf("Project %d - Page %d", projectID, pageNumber)), nil
}

// Clear removes the cached form so the next request regenerates it.
func (s *FormService) Clear(ctx context.Context, projectID int64, pageNumber int) error {
	if err := s.store.ClearFormHTML(ctx, projectID, pageNumber); err != nil {
		return fmt.Errorf("page %d of project %d: %w", pageNumber, projectID, err)
	}
	logger.Info("cleared form for project %d page %d", projectID, pageNumber)
	return nil
}

// SetGenerateTimeout bounds a single model call. Zero leaves it unbounded.
func (s *FormService) SetGenerateTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeout = d
}

func (s *FormService) generateTimeout() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeout
}

func (s *FormService) promptVariant() domain.PromptVariant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.variant
}

func (s *FormService) result(html string, source domain.FormSource) *domain.FormResult {
	res := &domain.FormResult{HTML: html, Source: source}
	if s.inspector != nil {
		stats, err := s.inspector.Inspect(html)
		if err != nil {
			logger.Debug("inspecting form html: %v", err)
		} else {
			res.Stats = stats
		}
	}
	return res
}
