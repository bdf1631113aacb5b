package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"claimsight/internal/analysis"
	analysismetrics "claimsight/internal/analysis/metrics"
	"claimsight/internal/platform/config"
	"claimsight/internal/platform/logger"
)

var (
	Version = "dev"
	Commit  = "none"
)

var rootCmd = &cobra.Command{
	Use:     "claimsight",
	Version: Version + " (" + Commit + ")",
	Short:   "Insurance claim risk review backend",
	Long: `claimsight accepts insurance claims, scores them for fraud risk with a
hosted model and lets investigators triage them.

Configuration is read from .env, the YAML file named by CLAIMSIGHT_CONFIG
and the environment, in that order.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, assessCmd)
}

// loadRuntime reads configuration and builds the process logger.
func loadRuntime() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, logger.New(cfg.Server.Env, cfg.Server.LogLevel), nil
}

// newGateway picks the model named by the configuration.
func newGateway(ctx context.Context, cfg *config.Config, log *slog.Logger, m *analysismetrics.Metrics) (*analysis.Gateway, error) {
	var model analysis.Model
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		gm, err := analysis.NewGeminiModel(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
		if err != nil {
			return nil, fmt.Errorf("create gemini model: %w", err)
		}
		model = gm
	default:
		model = analysis.NewFakeModel()
	}
	log.InfoContext(ctx, "analysis model selected", "model", model.Name())

	return analysis.NewGateway(model,
		analysis.WithLogger(log),
		analysis.WithMetrics(m),
		analysis.WithCallTimeout(cfg.LLM.Timeout),
	), nil
}
