package cli

import (
	"fmt"
	"time"

	"github.com/harun/arena/internal/config"
	"github.com/harun/arena/internal/logger"
	"github.com/harun/arena/pkg/arena"
	"github.com/harun/arena/pkg/llm"
	"github.com/rs/zerolog"
)

// buildOrchestrator wires the provider, resilient client, invoker and
// orchestrator from configuration. Shared by serve and run.
func buildOrchestrator(cfg *config.Config, log zerolog.Logger) (*arena.Orchestrator, error) {
	apiKey, err := config.ResolveAPIKey(cfg.LLM.Provider)
	if err != nil {
		return nil, err
	}

	factory := &llm.ProviderFactory{}
	provider, err := factory.NewProvider(cfg.LLM.Provider, apiKey)
	if err != nil {
		return nil, err
	}

	client, err := llm.NewClient(provider, llm.ClientConfig{
		MaxAttempts:    cfg.LLM.MaxAttempts,
		BackoffBase:    time.Duration(cfg.LLM.BackoffMS) * time.Millisecond,
		FallbackModels: cfg.LLM.FallbackModels,
		Logger:         log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create call client: %w", err)
	}

	invoker, err := arena.NewInvoker(client, arena.InvokerConfig{
		Model: cfg.LLM.Model,
		Budgets: arena.BudgetTable{
			Quick:    cfg.Arena.Budgets.Quick,
			Standard: cfg.Arena.Budgets.Standard,
			Deep:     cfg.Arena.Budgets.Deep,
		},
		Temperatures: arena.RoleTemperatures{
			Builder:    cfg.Arena.Temperatures.Builder,
			Challenger: cfg.Arena.Temperatures.Challenger,
			Judge:      cfg.Arena.Temperatures.Judge,
		},
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoker: %w", err)
	}

	return arena.New(invoker, log)
}

// loadConfig loads and validates configuration and builds the logger.
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.File = cfg.Logging.File
	logCfg.Pretty = cfg.Logging.Pretty

	log, err := logger.New(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return cfg, log, nil
}
