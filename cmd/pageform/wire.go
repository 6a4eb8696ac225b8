package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/custodia-labs/pageform/internal/adapters/driven/ai"
	"github.com/custodia-labs/pageform/internal/adapters/driven/chat"
	"github.com/custodia-labs/pageform/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pageform/internal/adapters/driven/htmlform"
	"github.com/custodia-labs/pageform/internal/adapters/driven/language"
	"github.com/custodia-labs/pageform/internal/adapters/driven/pdf"
	"github.com/custodia-labs/pageform/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/pageform/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pageform/internal/adapters/driving/cli"
	"github.com/custodia-labs/pageform/internal/config"
	"github.com/custodia-labs/pageform/internal/core/ports/driven"
	"github.com/custodia-labs/pageform/internal/core/services"
	"github.com/custodia-labs/pageform/internal/logger"
)

// projectStore is a ProjectStore that owns a connection.
type projectStore interface {
	driven.ProjectStore
	io.Closer
}

// wire builds every adapter and service from configuration and installs
// them in the CLI. The returned function releases them.
func wire(ctx context.Context, flags *pflag.FlagSet) (func(), error) {
	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	configStore, err := file.NewConfigStore(cfg.DataDir)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("opening settings: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settingsService.SetOverrides(cfg.Overrides)
	settingsService.SetProviderKeys(cfg.ProviderKeys)

	settings, err := settingsService.Get()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	// Without a usable provider, cached forms stay readable and generation
	// fails with a configuration error.
	generator, err := ai.CreateFormGenerator(ctx, &settings.LLM)
	if err != nil {
		logger.Warn("form generation disabled: %v", err)
		generator = nil
	}
	if generator != nil {
		logger.Debug("form generator: %s", generator.ModelName())
	}

	prompts, err := file.NewPromptStore(cfg.PromptDir())
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("opening prompts: %w", err)
	}

	codec := pdf.New()

	projectService := services.NewProjectService(store, codec, chat.New(chat.Config{BaseURL: cfg.ChatURL}))
	if cfg.DetectLanguage {
		projectService.SetLanguageDetector(language.New())
	}

	formService := services.NewFormService(store, codec, generator, prompts)
	formService.SetInspector(htmlform.New())
	formService.SetPromptVariant(settings.Form.PromptVariant)
	formService.SetGenerateTimeout(cfg.GenerateTimeout)

	bulk := services.NewBulkDispatcher(store, formService, services.BulkConfig{
		Workers:       cfg.Bulk.Workers,
		QueueSize:     cfg.Bulk.QueueSize,
		RatePerSecond: cfg.Bulk.Rate,
		TaskTimeout:   cfg.Bulk.TaskTimeout,
	})

	cli.SetServices(cli.Services{
		Projects: projectService,
		Forms:    formService,
		Bulk:     bulk,
		Settings: settingsService,
	})
	cli.SetServerOptions(cli.ServerOptions{
		Addr:           cfg.Address(),
		MaxUploadBytes: cfg.MaxUploadBytes(),
	})

	return func() {
		var errs []error
		errs = append(errs, bulk.Close())
		if generator != nil {
			errs = append(errs, generator.Close())
		}
		errs = append(errs, store.Close())
		if err := errors.Join(errs...); err != nil {
			logger.Warn("shutdown: %v", err)
		}
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config) (projectStore, error) {
	if cfg.UsesPostgres() {
		store, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("opening postgres: %w", err)
		}
		logger.Debug("using postgres store")
		return store, nil
	}

	store, err := sqlite.NewStore(cfg.StoreDir())
	if err != nil {
		return nil, fmt.Errorf("opening sqlite store: %w", err)
	}
	logger.Debug("using sqlite store in %s", cfg.StoreDir())
	return store, nil
}
