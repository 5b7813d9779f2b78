package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rgoodman/github-projects-mcp/internal/config"
	"github.com/rgoodman/github-projects-mcp/internal/gh"
	"github.com/rgoodman/github-projects-mcp/internal/logger"
	"github.com/rgoodman/github-projects-mcp/internal/mcpserver"
)

var (
	// CLI flags; empty means "use the environment"
	transportFlag string
	logLevelFlag  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "github-projects-mcp",
		Short: "MCP server for GitHub Projects v2",
		Long: `github-projects-mcp exposes the GitHub Projects v2 GraphQL API as MCP tools.

Authentication:
  1. Environment variable: set GITHUB_TOKEN (preferred)
  2. GitHub CLI: run 'gh auth login'

The token must have read/write access to projects.

Configuration is environment-sourced: GITHUB_API_MAX_RETRIES,
GITHUB_API_RETRY_DELAY, MCP_TRANSPORT (stdio|sse|http), MCP_HOST, MCP_PORT,
LOG_LEVEL.`,
		RunE: run,
	}

	rootCmd.Flags().StringVar(&transportFlag, "transport", "", "Transport to serve on (stdio, sse, http). Overrides MCP_TRANSPORT.")
	rootCmd.Flags().StringVar(&logLevelFlag, "log-level", "", "Log verbosity. Overrides LOG_LEVEL.")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if transportFlag != "" {
		cfg.Transport = transportFlag
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}

	log := logger.New(cfg.LogLevel)

	client, err := gh.New(gh.Options{
		Token:      cfg.Token,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelayDuration(),
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}
	log.Info().Str("transport", cfg.Transport).Msg("github projects client initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := mcpserver.New(client, log)
	if err := srv.Run(ctx, cfg); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
