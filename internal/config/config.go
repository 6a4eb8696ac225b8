// Package config resolves runtime configuration from flags, environment
// variables and ~/.pageform/config.toml, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/custodia-labs/pageform/internal/core/domain"
)

// EnvPrefix prefixes every environment variable, e.g. PAGEFORM_PORT.
const EnvPrefix = "PAGEFORM"

// Default values.
const (
	DefaultHost            = "127.0.0.1"
	DefaultPort            = 8000
	DefaultChatURL         = "http://localhost:8090/chat"
	DefaultMaxUploadMB     = 50
	DefaultBulkWorkers     = 4
	DefaultBulkQueueSize   = 64
	DefaultBulkRate        = 2.0
	DefaultBulkTaskTimeout = 5 * time.Minute
	DefaultGenerateTimeout = 3 * time.Minute
	DefaultDetectLanguage  = true
	configFileName         = "config.toml"
)

// Config keys. Dots map to TOML tables and to underscores in env names.
const (
	KeyHost            = "host"
	KeyPort            = "port"
	KeyDataDir         = "data_dir"
	KeyDatabaseURL     = "database_url"
	KeyChatURL         = "chat_url"
	KeyMaxUploadMB     = "max_upload_mb"
	KeyGenerateTimeout = "generate_timeout"
	KeyDetectLanguage  = "detect_language"
	KeyBulkWorkers     = "bulk.workers"
	KeyBulkQueueSize   = "bulk.queue_size"
	KeyBulkRate        = "bulk.rate"
	KeyBulkTaskTimeout = "bulk.task_timeout"
)

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"host":             KeyHost,
	"port":             KeyPort,
	"data-dir":         KeyDataDir,
	"database-url":     KeyDatabaseURL,
	"chat-url":         KeyChatURL,
	"max-upload-mb":    KeyMaxUploadMB,
	"generate-timeout": KeyGenerateTimeout,
	"workers":          KeyBulkWorkers,
	"rate":             KeyBulkRate,
}

// BulkConfig tunes bulk generation.
type BulkConfig struct {
	Workers     int
	QueueSize   int
	Rate        float64
	TaskTimeout time.Duration
}

// Config holds resolved runtime configuration.
type Config struct {
	Host            string
	Port            int
	DataDir         string
	DatabaseURL     string
	ChatURL         string
	MaxUploadMB     int
	GenerateTimeout time.Duration
	DetectLanguage  bool
	Bulk            BulkConfig

	// Overrides are LLM settings taken from PAGEFORM_LLM_* variables.
	// They win over the settings file and are never persisted.
	Overrides domain.AppSettings

	// ProviderKeys are vendor variables such as GOOGLE_API_KEY, used when
	// no key is stored for the selected provider.
	ProviderKeys map[domain.AIProvider]string
}

// DefaultDataDir returns ~/.pageform, or ./.pageform if home is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pageform"
	}
	return filepath.Join(home, ".pageform")
}

// AddFlags registers server flags on fs.
func AddFlags(fs *pflag.FlagSet) {
	fs.String("host", DefaultHost, "Address to listen on")
	fs.Int("port", DefaultPort, "Port to listen on")
	fs.String("data-dir", DefaultDataDir(), "Directory for the database, config and prompts")
	fs.String("database-url", "", "PostgreSQL URL; the embedded SQLite store is used when empty")
	fs.String("chat-url", DefaultChatURL, "Base URL of the chat service")
	fs.Int("max-upload-mb", DefaultMaxUploadMB, "Maximum accepted upload size in MiB")
	fs.Duration("generate-timeout", DefaultGenerateTimeout, "Timeout for a single form generation")
	fs.Int("workers", DefaultBulkWorkers, "Concurrent bulk generations")
	fs.Float64("rate", DefaultBulkRate, "Bulk generations started per second (0 disables pacing)")
}

// Load resolves configuration. flags may be nil or define only some flags.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(KeyDatabaseURL, EnvPrefix+"_DATABASE_URL", "DATABASE_URL")

	if flags != nil {
		for flag, key := range flagKeys {
			if f := flags.Lookup(flag); f != nil {
				_ = v.BindPFlag(key, f)
			}
		}
	}

	// The data directory decides where the config file lives.
	v.SetConfigFile(filepath.Join(v.GetString(KeyDataDir), configFileName))
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{
		Host:            v.GetString(KeyHost),
		Port:            v.GetInt(KeyPort),
		DataDir:         v.GetString(KeyDataDir),
		DatabaseURL:     v.GetString(KeyDatabaseURL),
		ChatURL:         v.GetString(KeyChatURL),
		MaxUploadMB:     v.GetInt(KeyMaxUploadMB),
		GenerateTimeout: v.GetDuration(KeyGenerateTimeout),
		DetectLanguage:  v.GetBool(KeyDetectLanguage),
		Bulk: BulkConfig{
			Workers:     v.GetInt(KeyBulkWorkers),
			QueueSize:   v.GetInt(KeyBulkQueueSize),
			Rate:        v.GetFloat64(KeyBulkRate),
			TaskTimeout: v.GetDuration(KeyBulkTaskTimeout),
		},
		Overrides:    loadOverrides(),
		ProviderKeys: loadProviderKeys(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyHost, DefaultHost)
	v.SetDefault(KeyPort, DefaultPort)
	v.SetDefault(KeyDataDir, DefaultDataDir())
	v.SetDefault(KeyDatabaseURL, "")
	v.SetDefault(KeyChatURL, DefaultChatURL)
	v.SetDefault(KeyMaxUploadMB, DefaultMaxUploadMB)
	v.SetDefault(KeyGenerateTimeout, DefaultGenerateTimeout)
	v.SetDefault(KeyDetectLanguage, DefaultDetectLanguage)
	v.SetDefault(KeyBulkWorkers, DefaultBulkWorkers)
	v.SetDefault(KeyBulkQueueSize, DefaultBulkQueueSize)
	v.SetDefault(KeyBulkRate, DefaultBulkRate)
	v.SetDefault(KeyBulkTaskTimeout, DefaultBulkTaskTimeout)
}

// loadOverrides reads LLM settings from the environment only. The settings
// file is owned by the settings service, so it is not consulted here.
func loadOverrides() domain.AppSettings {
	env := viper.New()
	env.SetEnvPrefix(EnvPrefix)
	env.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	env.AutomaticEnv()

	return domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider: domain.AIProvider(strings.ToLower(env.GetString("llm.provider"))),
			Model:    env.GetString("llm.model"),
			BaseURL:  env.GetString("llm.base_url"),
			APIKey:   env.GetString("llm.api_key"),
		},
		Form: domain.FormSettings{
			PromptVariant: domain.PromptVariant(strings.ToLower(env.GetString("form.prompt_variant"))),
		},
	}
}

func loadProviderKeys() map[domain.AIProvider]string {
	keys := make(map[domain.AIProvider]string)
	for provider, name := range map[domain.AIProvider]string{
		domain.AIProviderGemini:    "GOOGLE_API_KEY",
		domain.AIProviderOpenAI:    "OPENAI_API_KEY",
		domain.AIProviderAnthropic: "ANTHROPIC_API_KEY",
	} {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			keys[provider] = val
		}
	}
	return keys
}

// Validate checks that values are usable.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	if c.DataDir == "" {
		return errors.New("data directory cannot be empty")
	}
	if c.ChatURL == "" {
		return errors.New("chat URL cannot be empty")
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("maximum upload size must be positive")
	}
	if c.GenerateTimeout <= 0 {
		return errors.New("generate timeout must be positive")
	}
	if c.Bulk.Workers <= 0 {
		return errors.New("bulk workers must be positive")
	}
	if c.Bulk.QueueSize <= 0 {
		return errors.New("bulk queue size must be positive")
	}
	if c.Bulk.Rate < 0 {
		return errors.New("bulk rate cannot be negative")
	}
	if p := c.Overrides.LLM.Provider; p != "" && !p.IsValid() {
		return fmt.Errorf("unknown LLM provider %q in %s_LLM_PROVIDER", p, EnvPrefix)
	}
	if v := c.Overrides.Form.PromptVariant; v != "" && !v.IsValid() {
		return fmt.Errorf("unknown prompt variant %q in %s_FORM_PROMPT_VARIANT", v, EnvPrefix)
	}
	return nil
}

// Address returns the listen address as host:port.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// PromptDir returns the directory holding prompt templates.
func (c *Config) PromptDir() string {
	return filepath.Join(c.DataDir, "prompts")
}

// StoreDir returns the directory holding the SQLite database.
func (c *Config) StoreDir() string {
	return filepath.Join(c.DataDir, "data")
}

// UsesPostgres reports whether a PostgreSQL URL is configured.
func (c *Config) UsesPostgres() bool {
	return c.DatabaseURL != ""
}
