package enrich

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/icco/catalog/lib/tmdb"
	"github.com/icco/catalog/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeFetcher struct {
	mu       sync.Mutex
	calls    []string
	delay    func(id string) time.Duration
	movies   map[string]*tmdb.Movie
	inFlight atomic.Int64
	peak     atomic.Int64
}

func (f *fakeFetcher) GetMovie(ctx context.Context, id string) (*tmdb.Movie, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.mu.Unlock()

	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	if f.delay != nil {
		select {
		case <-time.After(f.delay(id)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	movie, ok := f.movies[id]
	if !ok {
		return nil, &tmdb.StatusError{StatusCode: 404}
	}
	return movie, nil
}

func poster(p string) *string { return &p }

func catalog() []models.Item {
	return []models.Item{
		{Name: "A", DateCreated: "2024-01-10", ProviderIDs: models.ProviderIDs{Tmdb: "1"}},
		{Name: "B", DateCreated: "2024-01-10"},
		{Name: "C", DateCreated: "2023-05-01", ProviderIDs: models.ProviderIDs{Tmdb: "3"}},
		{Name: "D", DateCreated: "2023-05-01", ProviderIDs: models.ProviderIDs{Tmdb: "404"}},
	}
}

func TestEnrichMergesAndPreservesOrder(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fetcher := &fakeFetcher{
		// The first item finishes last.
		delay: func(id string) time.Duration {
			if id == "1" {
				return 30 * time.Millisecond
			}
			return 0
		},
		movies: map[string]*tmdb.Movie{
			"1": {Overview: "first", PosterPath: poster("/a.jpg"), Genres: []tmdb.Genre{{Name: "Azione"}}},
			"3": {Overview: "third", Genres: []tmdb.Genre{}},
		},
	}

	input := catalog()
	out, stats := New(fetcher, 0, 0, nil).Enrich(context.Background(), input)

	require.Len(t, out, 4)
	assert.Equal(t, []string{"A", "B", "C", "D"}, names(out))

	assert.Equal(t, []string{"Azione"}, out[0].Genres)
	assert.Equal(t, "/a.jpg", out[0].PosterPath)
	assert.Equal(t, "first", out[0].Overview)

	assert.False(t, out[1].Enriched(), "items without an id are never looked up")

	assert.True(t, out[2].Enriched())
	assert.Empty(t, out[2].Genres)
	assert.Empty(t, out[2].PosterPath)

	assert.False(t, out[3].Enriched(), "failed lookups leave the item untouched")

	assert.Equal(t, Stats{Requested: 3, Enriched: 2, Failed: 1, Skipped: 1}, stats)
	assert.ElementsMatch(t, []string{"1", "3", "404"}, fetcher.calls)

	// The input slice is not modified.
	assert.False(t, input[0].Enriched())
}

func TestEnrichRespectsConcurrencyLimit(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	movies := map[string]*tmdb.Movie{}
	var items []models.Item
	for _, id := range []string{"1", "2", "3", "4", "5", "6", "7", "8"} {
		movies[id] = &tmdb.Movie{Overview: id}
		items = append(items, models.Item{Name: id, ProviderIDs: models.ProviderIDs{Tmdb: models.ExternalID(id)}})
	}
	fetcher := &fakeFetcher{
		delay:  func(string) time.Duration { return 10 * time.Millisecond },
		movies: movies,
	}

	out, stats := New(fetcher, 2, 0, nil).Enrich(context.Background(), items)
	assert.Equal(t, 8, stats.Enriched)
	assert.LessOrEqual(t, fetcher.peak.Load(), int64(2))
	for i, item := range out {
		assert.Equal(t, items[i].Name, item.Overview)
	}
}

func TestEnrichTimeoutCountsAsFailure(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fetcher := &fakeFetcher{
		delay:  func(string) time.Duration { return time.Second },
		movies: map[string]*tmdb.Movie{"1": {Overview: "slow"}},
	}
	items := []models.Item{{Name: "slow", ProviderIDs: models.ProviderIDs{Tmdb: "1"}}}

	out, stats := New(fetcher, 0, 20*time.Millisecond, nil).Enrich(context.Background(), items)
	assert.Equal(t, 1, stats.Failed)
	assert.False(t, out[0].Enriched())
}

func TestEnrichWithoutFetcher(t *testing.T) {
	var e *Enricher
	out, stats := e.Enrich(context.Background(), catalog())
	assert.Len(t, out, 4)
	assert.Equal(t, 4, stats.Skipped)
}

func TestFetcherErrorsAreNotFatal(t *testing.T) {
	fetcher := fetcherFunc(func(ctx context.Context, id string) (*tmdb.Movie, error) {
		return nil, errors.New("connection refused")
	})
	out, stats := New(fetcher, 1, 0, nil).Enrich(context.Background(), catalog())
	assert.Equal(t, []string{"A", "B", "C", "D"}, names(out))
	assert.Equal(t, 3, stats.Failed)
	assert.Zero(t, stats.Enriched)
}

type fetcherFunc func(ctx context.Context, id string) (*tmdb.Movie, error)

func (f fetcherFunc) GetMovie(ctx context.Context, id string) (*tmdb.Movie, error) {
	return f(ctx, id)
}

func names(items []models.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}
