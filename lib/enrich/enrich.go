package enrich

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/icco/catalog/lib/metrics"
	"github.com/icco/catalog/lib/tmdb"
	"github.com/icco/catalog/models"
	"golang.org/x/sync/errgroup"
)

// Fetcher looks up movie details by external id.
type Fetcher interface {
	GetMovie(ctx context.Context, id string) (*tmdb.Movie, error)
}

// Enricher merges remote metadata into catalog items.
type Enricher struct {
	fetcher     Fetcher
	concurrency int
	timeout     time.Duration
	logger      *slog.Logger
}

// Stats summarises one enrichment batch.
type Stats struct {
	Requested int
	Enriched  int
	Failed    int
	Skipped   int
}

// New returns an Enricher. A concurrency of 0 leaves the fan-out unbounded
// and a timeout of 0 lets each lookup run as long as ctx allows.
func New(fetcher Fetcher, concurrency int, timeout time.Duration, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency < 0 {
		concurrency = 0
	}
	return &Enricher{
		fetcher:     fetcher,
		concurrency: concurrency,
		timeout:     timeout,
		logger:      logger,
	}
}

// Enrich returns a copy of items with metadata merged into every item whose
// lookup succeeded. Failed lookups leave the item untouched and never abort
// the batch. The result keeps the input order.
func (e *Enricher) Enrich(ctx context.Context, items []models.Item) ([]models.Item, Stats) {
	out := make([]models.Item, len(items))
	copy(out, items)

	var stats Stats
	if e == nil || e.fetcher == nil {
		stats.Skipped = len(out)
		return out, stats
	}

	var enriched, failed atomic.Int64
	g := new(errgroup.Group)
	if e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}

	for i := range out {
		id := out[i].ExternalID()
		if id == "" {
			stats.Skipped++
			metrics.RecordEnrichment(metrics.OutcomeSkipped, 0)
			continue
		}
		stats.Requested++

		i := i
		g.Go(func() error {
			start := time.Now()
			movie, err := e.lookup(ctx, id)
			elapsed := time.Since(start)
			if err != nil {
				failed.Add(1)
				metrics.RecordEnrichment(metrics.OutcomeFailed, elapsed.Seconds())
				e.logger.Debug("Enrichment failed",
					slog.String("name", out[i].Name),
					slog.String("id", id),
					slog.Any("error", err))
				return nil
			}

			out[i].Genres = movie.GenreNames()
			out[i].PosterPath = movie.Poster()
			out[i].Overview = movie.Overview

			enriched.Add(1)
			metrics.RecordEnrichment(metrics.OutcomeEnriched, elapsed.Seconds())
			return nil
		})
	}

	// Lookups never return errors; failures are folded into the stats.
	_ = g.Wait()

	stats.Enriched = int(enriched.Load())
	stats.Failed = int(failed.Load())

	e.logger.Info("Enrichment finished",
		slog.Int("requested", stats.Requested),
		slog.Int("enriched", stats.Enriched),
		slog.Int("failed", stats.Failed),
		slog.Int("skipped", stats.Skipped))

	return out, stats
}

func (e *Enricher) lookup(ctx context.Context, id string) (*tmdb.Movie, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	return e.fetcher.GetMovie(ctx, id)
}
