// Package ai provides factory functions for creating form generators.
package ai

import (
	"context"
	"fmt"
	"time"

	anthropicllm "github.com/custodia-labs/pageform/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/pageform/internal/adapters/driven/llm/gemini"
	openaillm "github.com/custodia-labs/pageform/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/pageform/internal/core/domain"
	"github.com/custodia-labs/pageform/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateAndValidateFormGenerator creates a form generator and validates connectivity.
// Returns nil without error when no provider is configured.
func CreateAndValidateFormGenerator(ctx context.Context, settings *domain.LLMSettings) (driven.FormGenerator, error) {
	gen, err := CreateFormGenerator(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'pageform settings set-key' to fix",
			domain.ErrLLMUnavailable, err)
	}
	if gen == nil {
		return nil, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := gen.Ping(pingCtx); err != nil {
		gen.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'pageform settings' to fix",
			domain.ErrLLMUnavailable, err)
	}
	return gen, nil
}

// ValidateLLMConfig creates a generator from settings and pings it.
// Unconfigured settings are not an error.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	gen, err := CreateFormGenerator(ctx, settings)
	if err != nil {
		return err
	}
	if gen == nil {
		return nil
	}
	defer gen.Close()

	return gen.Ping(ctx)
}

// CreateFormGenerator creates the generator for the configured provider.
// Returns nil if the provider is not configured.
func CreateFormGenerator(ctx context.Context, settings *domain.LLMSettings) (driven.FormGenerator, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderGemini:
		return geminillm.New(ctx, geminillm.Config{
			APIKey:  settings.APIKey,
			Model:   settings.Model,
			BaseURL: settings.BaseURL,
		})

	case domain.AIProviderOpenAI:
		return openaillm.New(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.New(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: LLM provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
}
