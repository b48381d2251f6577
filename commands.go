package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/icco/catalog/handlers"
	"github.com/icco/catalog/lib/catalog"
	"github.com/icco/catalog/lib/lock"
	"github.com/spf13/cobra"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the catalog and serve the filterable page",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, err := a.pipeline()
			if err != nil {
				return err
			}
			state := p.Run(ctx, a.cfg.Source)

			renderer := handlers.NewRenderer(a.cfg.TMDB.ImageBaseURL, a.cfg.TMDB.Language)
			srv := &http.Server{
				Addr:              ":" + a.cfg.Server.Port,
				Handler:           handlers.NewRouter(state, renderer, a.cfg.Server.RateLimit),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("Starting server", slog.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			a.logger.Info("Shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

type filterFlags struct {
	year  int
	genre string
	title string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.year, "year", 0, "Only items produced in this year")
	cmd.Flags().StringVar(&f.genre, "genre", "", "Only items with this genre")
	cmd.Flags().StringVar(&f.title, "title", "", "Only items whose title contains this text")
}

// filter returns the catalog filter. Passing any filter flag, even with an
// empty value, leaves the initial view.
func (f *filterFlags) filter(cmd *cobra.Command) catalog.Filter {
	touched := cmd.Flags().Changed("year") || cmd.Flags().Changed("genre") || cmd.Flags().Changed("title")
	return catalog.Filter{Year: f.year, Genre: f.genre, Title: f.title, Touched: touched}
}

const renderLockTimeout = 30 * time.Second

func newRenderCommand(a *app) *cobra.Command {
	var output string
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write the catalog page as static HTML",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.pipeline()
			if err != nil {
				return err
			}
			state := p.Run(cmd.Context(), a.cfg.Source)
			page := handlers.NewRenderer(a.cfg.TMDB.ImageBaseURL, a.cfg.TMDB.Language).Page(state, flags.filter(cmd))

			if output == "" || output == "-" {
				w := bufio.NewWriter(cmd.OutOrStdout())
				if err := handlers.RenderPage(w, page); err != nil {
					return err
				}
				return w.Flush()
			}

			fl := lock.ForFile(output, a.logger)
			if err := fl.Acquire(cmd.Context(), renderLockTimeout); err != nil {
				return fmt.Errorf("failed to lock %s: %w", output, err)
			}
			defer func() {
				if err := fl.Release(); err != nil {
					a.logger.Error("Failed to release lock", slog.Any("error", err))
				}
			}()

			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := handlers.RenderPage(file, page); err != nil {
				_ = file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("failed to close %s: %w", output, err)
			}
			a.logger.Info("Wrote catalog page", slog.String("path", output), slog.Int("cards", len(page.Cards)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	flags.register(cmd)
	return cmd
}

func newListCommand(a *app) *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the catalog view as a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.pipeline()
			if err != nil {
				return err
			}
			state := p.Run(cmd.Context(), a.cfg.Source)
			if !state.Loaded {
				return nil
			}

			renderer := handlers.NewRenderer(a.cfg.TMDB.ImageBaseURL, a.cfg.TMDB.Language)
			cards := renderer.Cards(state.View(flags.filter(cmd)))
			if len(cards) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nessun risultato trovato.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), itemsTable(cards))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func itemsTable(cards []handlers.Card) string {
	rows := make([][]string, 0, len(cards))
	for _, c := range cards {
		year := handlers.NotAvailable
		if c.Year != 0 {
			year = strconv.Itoa(c.Year)
		}
		genres := handlers.NotAvailable
		if c.HasGenres {
			genres = strings.Join(c.Genres, ", ")
		}
		rows = append(rows, []string{c.Name, year, genres, c.AddedOn})
	}
	return renderTable(
		[]string{"Titolo", "Anno", "Genere", "Inserito il"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight},
	)
}

func newStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarise the loaded and enriched catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.pipeline()
			if err != nil {
				return err
			}
			state := p.Run(cmd.Context(), a.cfg.Source)
			fmt.Fprintln(cmd.OutOrStdout(), statsTable(state))
			return nil
		},
	}
}

func statsTable(state *catalog.State) string {
	summary := state.Summary()
	rows := [][]string{
		{"Loaded", strconv.FormatBool(summary.Loaded)},
		{"Items", strconv.Itoa(summary.TotalItems)},
		{"Enriched", strconv.Itoa(summary.EnrichedItems)},
		{"Failed lookups", strconv.Itoa(summary.FailedLookups)},
		{"Without TMDB id", strconv.Itoa(summary.SkippedItems)},
		{"Distinct years", strconv.Itoa(summary.DistinctYears)},
	}
	if !summary.FirstDate.IsZero() {
		rows = append(rows,
			[]string{"First added", summary.FirstDate.Format("2006-01-02")},
			[]string{"Last added", summary.LastDate.Format("2006-01-02")})
	}
	for _, g := range summary.GenreDistribution {
		rows = append(rows, []string{"Genre: " + g.Genre, strconv.FormatInt(g.Count, 10)})
	}
	return renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}
