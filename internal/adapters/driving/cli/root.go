// Package cli implements the flowport command line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flowport/flowport/internal/adapters/driven/providers"
	"github.com/flowport/flowport/internal/adapters/driven/storage/fs"
	"github.com/flowport/flowport/internal/adapters/driven/storage/sqlite"
	"github.com/flowport/flowport/internal/config"
	"github.com/flowport/flowport/internal/core/ports/driven"
	"github.com/flowport/flowport/internal/core/ports/driving"
	"github.com/flowport/flowport/internal/core/services"
	"github.com/flowport/flowport/internal/extractors"
	"github.com/flowport/flowport/internal/observability"
)

// version is set at build time via ldflags.
var version = "dev"

// cfgFile is the --config flag value.
var cfgFile string

// Services shared by the commands. ensureRuntime wires them from the
// configuration on first use.
var (
	appConfig        *config.Config
	appLogger        *zap.Logger
	knowledgeService driving.KnowledgeService
	inferenceService driving.InferenceService
	auditStore       driven.AuditStore
)

var rootCmd = &cobra.Command{
	Use:   "flowport",
	Short: "Retrieval-backed inference gateway",
	Long: `Flowport manages knowledge collections, retrieves relevant chunks for
a question and dispatches context-enriched requests to hosted model
providers. Run 'flowport serve' for the HTTP API or use the subcommands
to work with collections directly.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default flowport.toml)")
}

// ensureRuntime builds the shared services from the configuration. It is
// a no-op when they are already wired, which lets tests inject fakes.
func ensureRuntime() error {
	if knowledgeService != nil && inferenceService != nil {
		return nil
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	appConfig = cfg

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	appLogger = logger

	store, err := fs.NewStore(cfg.StorageDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}

	audit, err := sqlite.NewStore(cfg.AuditDBPath)
	if err != nil {
		return fmt.Errorf("opening audit store: %w", err)
	}
	auditStore = audit

	registry := providers.NewRegistry(providers.Config{
		Timeout:            cfg.RequestTimeout(),
		CaptionTimeout:     cfg.CaptionTimeout(),
		RateLimit:          cfg.ProviderRateLimit,
		HuggingFaceBaseURL: cfg.Providers.HuggingFaceBaseURL,
		OpenAIBaseURL:      cfg.Providers.OpenAIBaseURL,
		GeminiBaseURL:      cfg.Providers.GeminiBaseURL,
		LlamaBaseURL:       cfg.Providers.LlamaBaseURL,
	})

	knowledgeService = services.NewKnowledgeService(store, extractors.NewRegistry(), registry.Captioner(), logger)
	inferenceService = services.NewInferenceService(registry, knowledgeService, audit, cfg.DefaultTopK, logger)

	return nil
}
