package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/pageform/internal/core/domain"
)

var settingsSkipValidate bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the form generation provider, its API key and the
prompt variant.

Environment variables (PAGEFORM_LLM_*, GOOGLE_API_KEY, OPENAI_API_KEY,
ANTHROPIC_API_KEY) override what is stored here.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Set the API key of the configured provider",
	Long: `Prompt for the API key of the configured provider without echoing it,
then check it against the provider.`,
	Args: cobra.NoArgs,
	RunE: runSettingsSetKey,
}

var settingsProviderCmd = &cobra.Command{
	Use:   "provider",
	Short: "Choose the form generation provider",
	Long: `Choose the provider and model used to generate forms.

Available providers:
  gemini    - Google Gemini (default, gemini-2.5-flash)
  openai    - OpenAI
  anthropic - Anthropic`,
	Args: cobra.NoArgs,
	RunE: runSettingsProvider,
}

var settingsPromptCmd = &cobra.Command{
	Use:   "prompt [standard|signatures]",
	Short: "Select the form generation prompt",
	Long: `Select the instruction sent with each page.

  standard   - rebuild the page as an editable form
  signatures - as standard, and cross-reference signature blocks`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsPrompt,
}

func init() {
	settingsSetKeyCmd.Flags().BoolVar(&settingsSkipValidate, "no-validate", false, "store the key without contacting the provider")
	settingsProviderCmd.Flags().BoolVar(&settingsSkipValidate, "no-validate", false, "store the settings without contacting the provider")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetKeyCmd)
	settingsCmd.AddCommand(settingsProviderCmd)
	settingsCmd.AddCommand(settingsPromptCmd)
	rootCmd.AddCommand(settingsCmd)
}

// settingsView is the structured form of 'settings show'.
type settingsView struct {
	Provider      string `json:"provider" yaml:"provider"`
	Model         string `json:"model" yaml:"model"`
	BaseURL       string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKey        string `json:"api_key" yaml:"api_key"`
	PromptVariant string `json:"prompt_variant" yaml:"prompt_variant"`
	Configured    bool   `json:"configured" yaml:"configured"`
	Problem       string `json:"problem,omitempty" yaml:"problem,omitempty"`
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	view := settingsView{
		Provider:      settings.LLM.Provider.String(),
		Model:         settings.LLM.Model,
		BaseURL:       settings.LLM.BaseURL,
		APIKey:        "(not set)",
		PromptVariant: settings.Form.PromptVariant.String(),
		Configured:    settings.LLM.IsConfigured(),
	}
	if settings.LLM.APIKey != "" {
		view.APIKey = maskAPIKey(settings.LLM.APIKey)
	}
	validateErr := settingsService.Validate()
	if validateErr != nil {
		view.Problem = validateErr.Error()
	}

	return render(cmd, view, func() {
		cmd.Println("Current Settings")
		cmd.Println("================")
		cmd.Println()

		cmd.Println("[LLM]")
		cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
		cmd.Printf("  Model: %s\n", settings.LLM.Model)
		if settings.LLM.BaseURL != "" {
			cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
		}
		cmd.Printf("  API Key: %s\n", view.APIKey)
		cmd.Println()

		cmd.Println("[Form]")
		cmd.Printf("  Prompt: %s\n", settings.Form.PromptVariant)
		cmd.Println()

		if validateErr != nil {
			cmd.Printf("Warning: %v\n", validateErr)
			cmd.Println("Run 'pageform settings set-key' to fix configuration issues.")
		} else {
			cmd.Println("Configuration is valid.")
		}
	})
}

func runSettingsSetKey(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Printf("Enter API key for %s: ", settings.LLM.Provider.Description())
	apiKey := readPassword(cmd)
	cmd.Println()
	if apiKey == "" {
		return errors.New("API key is required")
	}

	if err := settingsService.SetAPIKey(apiKey); err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}
	return validateProvider(cmd)
}

func runSettingsProvider(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selected := providers[idx-1]

	defaultModel := domain.DefaultLLMModels()[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	cmd.Print("Enter API key (leave empty to use the environment): ")
	apiKey := readPasswordFrom(cmd, reader)
	cmd.Println()

	if err := settingsService.SetLLMProvider(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}
	cmd.Printf("LLM provider configured: %s (%s)\n", selected.Description(), model)
	return validateProvider(cmd)
}

func runSettingsPrompt(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	var variant domain.PromptVariant
	if len(args) == 1 {
		variant = domain.PromptVariant(args[0])
	} else {
		reader := bufio.NewReader(cmd.InOrStdin())
		variants := domain.AllPromptVariants()
		cmd.Println("Select Prompt")
		for i, v := range variants {
			cmd.Printf("  %d. %s\n", i+1, v)
		}
		cmd.Print("\nEnter choice [1]: ")
		variant = variants[parseChoice(readLine(reader), len(variants), 1)-1]
	}

	if !variant.IsValid() {
		return fmt.Errorf("unknown prompt variant %q (want standard or signatures)", variant)
	}
	if err := settingsService.SetPromptVariant(variant); err != nil {
		return fmt.Errorf("failed to set prompt: %w", err)
	}
	cmd.Printf("Prompt set to: %s\n", variant)
	return nil
}

// validateProvider pings the provider unless --no-validate was given.
func validateProvider(cmd *cobra.Command) error {
	if settingsSkipValidate {
		cmd.Println("Saved.")
		return nil
	}
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func readPassword(cmd *cobra.Command) string {
	return readPasswordFrom(cmd, bufio.NewReader(cmd.InOrStdin()))
}

// readPasswordFrom reads without echo when stdin is a terminal.
func readPasswordFrom(cmd *cobra.Command, reader *bufio.Reader) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
