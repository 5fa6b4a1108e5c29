// chainforge scaffolds blockchain projects from built-in templates or
// AI-generated content.
package main

import (
	"context"
	"fmt"
	"os"

	"chainforge/internal/config"
	"chainforge/internal/dispatch"
	"chainforge/internal/forge"
	"chainforge/internal/llm"
	"chainforge/internal/repofetch"
	"chainforge/internal/scaffold"
	"chainforge/internal/templates"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
)

func main() {
	// .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "chainforge",
		Short: "AI-assisted blockchain project scaffolder",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			applyEnvOverrides(cfg)
			logger, err = newLogger(cfg.Logging)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "chainforge.yaml", "path to config file")

	rootCmd.AddCommand(newGenerateCmd(), newBridgeCmd(), newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// applyEnvOverrides injects secrets from the environment. This is the
// only place environment variables are read; core packages receive the
// resolved config struct.
func applyEnvOverrides(cfg *config.Config) {
	if key := os.Getenv("CHAINFORGE_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" && cfg.LLM.Provider == "gemini" {
		cfg.LLM.APIKey = key
	}
}

func newLogger(lc config.LoggingConfig) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if lc.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	switch lc.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	}
	return zapCfg.Build()
}

// buildEngine assembles the generation stack from config. The returned
// cleanup stops the template watcher.
func buildEngine(ctx context.Context) (*forge.Engine, func(), error) {
	store, err := templates.NewFileStore(cfg.Templates.Root, logger, templates.FileStoreOptions{
		CacheSize: cfg.Templates.CacheSize,
		Watch:     cfg.Templates.Watch,
	})
	if err != nil {
		return nil, nil, err
	}

	gen, err := newGenerator(ctx)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	engine := forge.NewEngine(forge.Options{
		Registry:     templates.NewRegistry(),
		Materializer: scaffold.NewMaterializer(store, logger),
		Dispatcher:   dispatch.NewDispatcher(gen, logger),
		Builder:      dispatch.NewPromptBuilder(dispatch.CapabilityFlags{Frameworks: cfg.Generation.Frameworks}),
		Fetcher:      repofetch.NewFetcher(logger),
		MaxTokens:    cfg.Generation.MaxTokens,
		Temperature:  cfg.Generation.Temperature,
		MaxRetries:   cfg.Generation.MaxRetries,
		RetryDelay:   cfg.Generation.RetryDelayDuration(),
		Logger:       logger,
	})
	return engine, func() { store.Close() }, nil
}

func newGenerator(ctx context.Context) (llm.ContentGenerator, error) {
	switch cfg.LLM.Provider {
	case "gemini", "":
		return llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey: cfg.LLM.APIKey,
			Model:  cfg.LLM.Model,
		})
	case "openai-compat":
		c := llm.DefaultOpenAICompatConfig(cfg.LLM.APIKey)
		if cfg.LLM.BaseURL != "" {
			c.BaseURL = cfg.LLM.BaseURL
		}
		if cfg.LLM.Model != "" {
			c.Model = cfg.LLM.Model
		}
		c.Timeout = cfg.LLM.TimeoutDuration()
		return llm.NewOpenAICompatClient(c), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}
