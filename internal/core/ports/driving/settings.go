package driving

import "github.com/custodia-labs/pageform/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetLLMProvider configures the form generation provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetAPIKey replaces the API key of the configured provider.
	SetAPIKey(apiKey string) error

	// SetPromptVariant selects the form generation instruction.
	SetPromptVariant(variant domain.PromptVariant) error

	// Validate checks if current settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
