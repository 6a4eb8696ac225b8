// Package gemini provides the default form generator, backed by the
// Google Gen AI SDK. Pages are sent as inline PDF blobs.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/custodia-labs/pageform/internal/adapters/driven/llm"
	"github.com/custodia-labs/pageform/internal/core/domain"
	"github.com/custodia-labs/pageform/internal/core/ports/driven"
)

// Ensure FormGenerator implements the interface.
var _ driven.FormGenerator = (*FormGenerator)(nil)

// Default configuration values.
const (
	DefaultModel = "gemini-2.5-flash"
	serviceName  = "gemini"
)

// Config holds configuration for the Gemini form generator.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the model to use (default: gemini-2.5-flash).
	Model string

	// BaseURL overrides the API endpoint. Empty uses the SDK default.
	BaseURL string
}

// models is the subset of *genai.Models used here.
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	Get(ctx context.Context, model string, config *genai.GetModelConfig) (*genai.Model, error)
}

// FormGenerator generates forms using Gemini.
type FormGenerator struct {
	models models
	model  string
}

// New creates a Gemini form generator.
func New(ctx context.Context, cfg Config) (*FormGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w: API key is required", domain.ErrLLMUnavailable)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &FormGenerator{models: client.Models, model: cfg.Model}, nil
}

// GenerateForm sends the page and prompt as a single user turn.
func (g *FormGenerator) GenerateForm(ctx context.Context, pagePDF []byte, prompt string) (string, error) {
	parts := []*genai.Part{
		{
			InlineData: &genai.Blob{
				MIMEType: llm.PDFMediaType,
				Data:     pagePDF,
			},
		},
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", mapError(err)
	}
	if resp == nil {
		return "", &domain.ContentBlockedError{}
	}
	return llm.Finish(resp.Text(), blockReason(resp))
}

// ModelName returns the name of the model being used.
func (g *FormGenerator) ModelName() string {
	return g.model
}

// Ping fetches the model metadata to verify the key.
func (g *FormGenerator) Ping(ctx context.Context) error {
	if _, err := g.models.Get(ctx, g.model, nil); err != nil {
		return mapError(err)
	}
	return nil
}

// Close releases resources. The SDK client holds none of its own.
func (g *FormGenerator) Close() error {
	return nil
}

func blockReason(resp *genai.GenerateContentResponse) string {
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		if fb.BlockReasonMessage != "" {
			return fmt.Sprintf("%s: %s", fb.BlockReason, fb.BlockReasonMessage)
		}
		return string(fb.BlockReason)
	}
	for _, c := range resp.Candidates {
		if c != nil && c.FinishReason != "" && c.FinishReason != genai.FinishReasonStop {
			return string(c.FinishReason)
		}
	}
	return ""
}

func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return llm.StatusError(serviceName, apiErr.Code, []byte(apiErr.Message))
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return llm.StatusError(serviceName, apiErrPtr.Code, []byte(apiErrPtr.Message))
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return llm.TransportError(serviceName, err)
}
