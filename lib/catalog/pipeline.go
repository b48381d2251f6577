package catalog

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/icco/catalog/lib/enrich"
	"github.com/icco/catalog/lib/metrics"
	"github.com/icco/catalog/lib/types"
	"github.com/icco/catalog/models"
)

// ItemLoader reads the raw catalog.
type ItemLoader interface {
	Load(ctx context.Context, source string) ([]models.Item, error)
}

// Pipeline wires the load, enrich and option-building stages.
type Pipeline struct {
	loader   ItemLoader
	enricher *enrich.Enricher
	logger   *slog.Logger
}

// NewPipeline builds a pipeline. A nil enricher leaves items unenriched.
func NewPipeline(loader ItemLoader, enricher *enrich.Enricher, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{loader: loader, enricher: enricher, logger: logger}
}

// State is the result of a pipeline run. It is not modified after Run
// returns and is safe for concurrent readers.
type State struct {
	Loaded   bool
	Items    []models.Item
	Options  Options
	Stats    enrich.Stats
	LoadedAt time.Time
}

// Run executes the pipeline. A load failure is logged and yields a state
// that is not loaded; it is never returned to the caller.
func (p *Pipeline) Run(ctx context.Context, source string) *State {
	items, err := p.loader.Load(ctx, source)
	if err != nil {
		p.logger.Error("Failed to load catalog", slog.String("source", source), slog.Any("error", err))
		return &State{}
	}

	items, stats := p.enricher.Enrich(ctx, items)

	state := &State{
		Loaded:   true,
		Items:    SortByRecency(items),
		Options:  BuildOptions(items),
		Stats:    stats,
		LoadedAt: time.Now(),
	}
	metrics.SetCatalogItems(len(state.Items), stats.Enriched)

	p.logger.Info("Catalog ready",
		slog.Int("items", len(state.Items)),
		slog.Int("years", len(state.Options.Years)),
		slog.Int("genres", len(state.Options.Genres)))
	return state
}

// View returns the items to display for f: the initial view until a filter
// control is used, the filtered full collection afterwards.
func (s *State) View(f Filter) []models.Item {
	if s == nil || !s.Loaded {
		return nil
	}
	if !f.Active() {
		return InitialView(s.Items)
	}
	return Apply(s.Items, f)
}

// Summary reports counts used by the CLI and the health endpoint.
func (s *State) Summary() types.StatsData {
	var data types.StatsData
	if s == nil || !s.Loaded {
		return data
	}

	data.Loaded = true
	data.TotalItems = len(s.Items)
	data.EnrichedItems = s.Stats.Enriched
	data.FailedLookups = s.Stats.Failed
	data.SkippedItems = s.Stats.Skipped
	data.DistinctYears = len(s.Options.Years)
	data.LoadedAt = s.LoadedAt

	counts := make(map[string]int64)
	for _, item := range s.Items {
		created := item.CreatedAt()
		if !created.IsZero() {
			if data.FirstDate.IsZero() || created.Before(data.FirstDate) {
				data.FirstDate = created
			}
			if created.After(data.LastDate) {
				data.LastDate = created
			}
		}
		for _, g := range item.Genres {
			counts[g]++
		}
	}

	for _, g := range s.Options.Genres {
		data.GenreDistribution = append(data.GenreDistribution, struct {
			Genre string `json:"genre"`
			Count int64  `json:"count"`
		}{Genre: g, Count: counts[g]})
	}
	sort.SliceStable(data.GenreDistribution, func(a, b int) bool {
		return data.GenreDistribution[a].Count > data.GenreDistribution[b].Count
	})
	return data
}
