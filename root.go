package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/fjsync/fjsync/internal/config"
	"github.com/fjsync/fjsync/internal/fjump"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagServer     string
	flagToken      string
	flagVerbose    bool
	flagQuiet      bool
)

// loadedCfg and cfgPath hold the effective configuration resolved by
// PersistentPreRunE, available to all subcommands.
var (
	loadedCfg *config.Config
	cfgPath   string
)

// newRootCmd builds the fully-assembled root command. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fjsync",
		Short:   "FileJump CLI sync client",
		Long:    "A command-line client for syncing local files with FileJump cloud storage.",
		Version: version,
		// Silence cobra's default error/usage printing — main handles it.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&flagServer, "server", "", "FileJump API root URL")
	cmd.PersistentFlags().StringVar(&flagToken, "token", "", "bearer token (overrides config)")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLsCmd())
	cmd.AddCommand(newPushCmd())
	cmd.AddCommand(newPullCmd())
	cmd.AddCommand(newRmCmd())

	return cmd
}

// loadConfig resolves configuration with the precedence defaults -> config
// file -> environment -> CLI flags.
func loadConfig() error {
	cfgPath = config.DefaultPath()
	if flagConfigPath != "" {
		cfgPath = flagConfigPath
	}

	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cfg.ApplyEnv()

	if flagServer != "" {
		cfg.Server = flagServer
	}

	if flagToken != "" {
		cfg.Token = flagToken
	}

	loadedCfg = cfg

	return nil
}

// buildLogger creates an slog.Logger on stderr. Config-file log level is the
// baseline; --verbose and --quiet override it because CLI flags always win.
func buildLogger() *slog.Logger {
	level := slog.LevelInfo

	switch loadedCfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelWarn
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newClient builds a FileJump API client from the resolved config.
// Transfer-level timeouts are applied per request by the client itself, so
// the http.Client carries no global timeout that would cut off large
// streaming transfers.
func newClient(logger *slog.Logger) (*fjump.Client, error) {
	if loadedCfg.Server == "" {
		return nil, fmt.Errorf("no server configured (set server in %s, %s, or --server)",
			cfgPath, config.EnvServer)
	}

	return fjump.NewClient(loadedCfg.Server, &http.Client{}, loadedCfg.Token, logger), nil
}

// requireToken fails early for commands that need authentication.
func requireToken() error {
	if loadedCfg.Token == "" {
		return fmt.Errorf("not logged in (run `fjsync login`, or set %s)", config.EnvToken)
	}

	return nil
}
