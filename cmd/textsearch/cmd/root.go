// Package cmd provides the textsearch CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/textsearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/textsearch/pkg/logger"
)

type rootOptions struct {
	configPath string
	driver     string
	sqlitePath string
	logLevel   string
}

// loadConfig reads the config file and applies flag overrides, which win
// over both the file and TS_* variables.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.driver != "" {
		cfg.Store.Driver = o.driver
	}
	if o.sqlitePath != "" {
		cfg.Store.SQLitePath = o.sqlitePath
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "textsearch",
		Short: "Keyword search over a small document corpus",
		Long: `textsearch builds an inverted index of word frequencies and positions
and ranks documents by the summed frequency of the query words they contain.

Examples:
  textsearch ingest
  textsearch ingest --file corpus.yaml
  textsearch search white rabbit
  textsearch serve --config configs/development.yaml`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.driver, "driver", "", "Store driver: postgres, sqlite, memory")
	cmd.PersistentFlags().StringVar(&opts.sqlitePath, "sqlite-path", "", "SQLite database file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newIngestCmd(opts))
	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newDocumentsCmd(opts))
	return cmd
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// setupLogging sends logs to stderr so command output on stdout stays
// parseable.
func setupLogging(cmd *cobra.Command, cfg *config.Config) {
	logger.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
}
