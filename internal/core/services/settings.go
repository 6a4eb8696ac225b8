package services

import (
	"fmt"

	"github.com/custodia-labs/pageform/internal/core/domain"
	"github.com/custodia-labs/pageform/internal/core/ports/driven"
	"github.com/custodia-labs/pageform/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider   = "llm.provider"
	keyLLMModel      = "llm.model"
	keyLLMBaseURL    = "llm.base_url"
	keyLLMAPIKey     = "llm.api_key"
	keyPromptVariant = "form.prompt_variant"
)

// SettingsService manages application settings.
// Values from the environment, set through SetOverrides, take precedence
// over the config store and are never written back to it.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	overrides   domain.AppSettings
	envKeys     map[domain.AIProvider]string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// SetOverrides registers values that win over stored settings.
// Empty fields are ignored.
func (s *SettingsService) SetOverrides(overrides domain.AppSettings) {
	s.overrides = overrides
}

// SetProviderKeys registers per-provider keys, such as GOOGLE_API_KEY,
// used when no key is stored or overridden.
func (s *SettingsService) SetProviderKeys(keys map[domain.AIProvider]string) {
	s.envKeys = keys
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider: s.getProvider(defaults.LLM.Provider),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Form: domain.FormSettings{
			PromptVariant: s.getPromptVariant(defaults.Form.PromptVariant),
		},
	}
	settings.LLM.Model = s.getString(keyLLMModel, domain.DefaultLLMModels()[settings.LLM.Provider])

	s.applyOverrides(settings)
	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.configStore.Set(keyLLMProvider, settings.LLM.Provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, settings.LLM.Model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.configStore.Set(keyLLMBaseURL, settings.LLM.BaseURL); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if settings.LLM.APIKey != "" && !s.isEnvKey(settings.LLM.Provider, settings.LLM.APIKey) {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyPromptVariant, settings.Form.PromptVariant.String()); err != nil {
		return fmt.Errorf("save prompt variant: %w", err)
	}

	return nil
}

// SetLLMProvider configures the form generation provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider %q: %w", provider, domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	// Keys are provider specific, so switching providers needs a new one.
	if apiKey == "" && provider != settings.LLM.Provider {
		return fmt.Errorf("API key required for %s: %w", provider, domain.ErrInvalidInput)
	}

	settings.LLM.Provider = provider
	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}
	settings.LLM.BaseURL = ""
	if apiKey != "" {
		settings.LLM.APIKey = apiKey
	}

	return s.Save(settings)
}

// SetAPIKey replaces the API key of the configured provider.
func (s *SettingsService) SetAPIKey(apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("API key must not be empty: %w", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(keyLLMAPIKey, apiKey); err != nil {
		return fmt.Errorf("save llm api_key: %w", err)
	}
	return nil
}

// SetPromptVariant selects the form generation instruction.
func (s *SettingsService) SetPromptVariant(variant domain.PromptVariant) error {
	if !variant.IsValid() {
		return fmt.Errorf("invalid prompt variant %q: %w", variant, domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(keyPromptVariant, variant.String()); err != nil {
		return fmt.Errorf("save prompt variant: %w", err)
	}
	return nil
}

// Validate checks if current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.LLM.Provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", settings.LLM.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%s requires an API key: %w", settings.LLM.Provider.Description(), domain.ErrLLMUnavailable)
	}
	if !settings.Form.PromptVariant.IsValid() {
		return fmt.Errorf("invalid prompt variant: %s", settings.Form.PromptVariant)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

func (s *SettingsService) applyOverrides(settings *domain.AppSettings) {
	o := s.overrides
	if o.LLM.Provider.IsValid() && o.LLM.Provider != settings.LLM.Provider {
		settings.LLM.Provider = o.LLM.Provider
		settings.LLM.Model = domain.DefaultLLMModels()[o.LLM.Provider]
	}
	if o.LLM.Model != "" {
		settings.LLM.Model = o.LLM.Model
	}
	if o.LLM.BaseURL != "" {
		settings.LLM.BaseURL = o.LLM.BaseURL
	}
	if o.LLM.APIKey != "" {
		settings.LLM.APIKey = o.LLM.APIKey
	}
	if o.Form.PromptVariant.IsValid() {
		settings.Form.PromptVariant = o.Form.PromptVariant
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.envKeys[settings.LLM.Provider]
	}
}

// isEnvKey reports whether key came from the environment rather than the store.
func (s *SettingsService) isEnvKey(provider domain.AIProvider, key string) bool {
	return key == s.overrides.LLM.APIKey || key == s.envKeys[provider]
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(keyLLMProvider))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getPromptVariant(defaultVal domain.PromptVariant) domain.PromptVariant {
	variant := domain.PromptVariant(s.configStore.GetString(keyPromptVariant))
	if !variant.IsValid() {
		return defaultVal
	}
	return variant
}
