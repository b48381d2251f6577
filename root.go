package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/icco/catalog/lib/catalog"
	"github.com/icco/catalog/lib/config"
	"github.com/icco/catalog/lib/enrich"
	"github.com/icco/catalog/lib/loader"
	"github.com/icco/catalog/lib/tmdb"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	source     string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "catalog",
		Short:         "Browse a media catalog enriched with TMDB metadata",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Configuration file path (TOML)")
	rootCmd.PersistentFlags().StringVar(&a.source, "source", "", "Catalog JSON file or URL")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newServeCommand(a))
	rootCmd.AddCommand(newRenderCommand(a))
	rootCmd.AddCommand(newListCommand(a))
	rootCmd.AddCommand(newStatsCommand(a))

	return rootCmd
}

func (a *app) setup(logOut io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.source != "" {
		cfg.Source = a.source
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Normalize(); err != nil {
		return err
	}

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = newLogger(logOut, level)
	slog.SetDefault(a.logger)
	return nil
}

// newLogger uses the text handler on an interactive terminal and JSON
// everywhere else.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if isTerminal(w) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// pipeline builds the load/enrich pipeline from configuration. Without an
// API key items are left unenriched.
func (a *app) pipeline() (*catalog.Pipeline, error) {
	l := loader.New(nil, a.logger.With(slog.String("component", "loader")))

	var enricher *enrich.Enricher
	if a.cfg.EnrichmentEnabled() {
		client, err := tmdb.NewClient(a.cfg.TMDB.APIKey, a.cfg.TMDB.BaseURL, a.cfg.TMDB.Language,
			tmdb.WithLogger(a.logger.With(slog.String("component", "tmdb"))),
			tmdb.WithImageBaseURL(a.cfg.TMDB.ImageBaseURL))
		if err != nil {
			return nil, fmt.Errorf("failed to create TMDB client: %w", err)
		}
		enricher = enrich.New(client, a.cfg.Enrich.Concurrency, a.cfg.Enrich.RequestTimeout(),
			a.logger.With(slog.String("component", "enrich")))
	} else {
		a.logger.Warn("TMDB_API_KEY is not set, items will not be enriched")
	}

	return catalog.NewPipeline(l, enricher, a.logger), nil
}
