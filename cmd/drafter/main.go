// Command drafter drafts grounded, cited content with resilient LLM fallback.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/drafter/internal/adapters/driven/ai"
	"github.com/custodia-labs/drafter/internal/adapters/driven/config/file"
	"github.com/custodia-labs/drafter/internal/adapters/driven/metrics"
	"github.com/custodia-labs/drafter/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/drafter/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/drafter/internal/adapters/driving/cli"
	"github.com/custodia-labs/drafter/internal/core/services"
	"github.com/custodia-labs/drafter/internal/logger"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return report("config", err)
	}
	if err := configStore.Load(); err != nil {
		return report("loading config", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return report("settings", err)
	}

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return report("prompts", err)
	}
	if err := prompts.Watch(ctx); err != nil {
		logger.Warn("prompt templates will not reload", "dir", prompts.Dir(), "err", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return report("fragment store", err)
	}
	defer store.Close()

	index := memory.NewRetrievalIndex()
	retrievalService := services.NewRetrievalService(index, store)
	if _, err := retrievalService.Load(ctx); err != nil {
		return report("loading index", err)
	}

	providers, err := ai.Init(settings)
	if err != nil {
		return report("providers", err)
	}

	recorder := metrics.NewRecorder()
	orchestrator, err := services.NewGenerationOrchestrator(
		providers.Providers,
		settings.Orchestrator,
		services.WithMetrics(recorder),
	)
	if err != nil {
		return report("orchestrator", err)
	}

	assembler := services.NewContextAssembler(index, orchestrator, settings.Retrieval.TopK)
	assembler.SetPromptStore(prompts)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Generation: orchestrator,
		Context:    assembler,
		Retrieval:  retrievalService,
		Settings:   settingsService,
		Metrics:    recorder.Handler(),

		ProviderWarnings: providers.Warnings,
	})

	return cli.Execute(ctx)
}

// report prints a startup failure and returns it.
func report(stage string, err error) error {
	fmt.Fprintf(os.Stderr, "drafter: %s: %v\n", stage, err)
	return err
}
