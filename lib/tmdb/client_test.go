package tmdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/icco/catalog/lib/tmdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := tmdb.NewClient("  ", "", "it-IT")
	assert.Error(t, err)
}

func TestGetMovieSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/603", r.URL.Path)
		assert.Equal(t, "key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "it-IT", r.URL.Query().Get("language"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":603,"title":"Matrix","overview":"Neo.","poster_path":"/m.jpg","genres":[{"id":28,"name":"Azione"},{"id":878,"name":"Fantascienza"}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.NewClient("key", server.URL, "it-IT")
	require.NoError(t, err)

	movie, err := client.GetMovie(context.Background(), "603")
	require.NoError(t, err)
	assert.Equal(t, "Neo.", movie.Overview)
	assert.Equal(t, "/m.jpg", movie.Poster())
	assert.Equal(t, []string{"Azione", "Fantascienza"}, movie.GenreNames())
}

func TestGetMovieNullPosterAndNoGenres(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"poster_path":null,"genres":[]}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.NewClient("key", server.URL, "")
	require.NoError(t, err)

	movie, err := client.GetMovie(context.Background(), "1")
	require.NoError(t, err)
	assert.Empty(t, movie.Poster())
	assert.NotNil(t, movie.GenreNames())
	assert.Empty(t, movie.GenreNames())
}

func TestGetMovieWithoutGenresKeyFails(t *testing.T) {
	for _, body := range []string{
		`{"id":1,"overview":"x","poster_path":"/p.jpg"}`,
		`{"id":1,"genres":null}`,
	} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))

		client, err := tmdb.NewClient("key", server.URL, "")
		require.NoError(t, err)

		movie, err := client.GetMovie(context.Background(), "1")
		assert.ErrorIs(t, err, tmdb.ErrNoGenres)
		assert.Nil(t, movie)
		server.Close()
	}
}

func TestGetMovieHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status_code":7}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.NewClient("bad", server.URL, "")
	require.NoError(t, err)

	_, err = client.GetMovie(context.Background(), "603")
	require.Error(t, err)

	var statusErr *tmdb.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.NotContains(t, statusErr.URL, "bad")
}

func TestGetMovieEmptyID(t *testing.T) {
	client, err := tmdb.NewClient("key", "https://example.com", "")
	require.NoError(t, err)
	_, err = client.GetMovie(context.Background(), " ")
	assert.Error(t, err)
}

func TestPosterURL(t *testing.T) {
	client, err := tmdb.NewClient("key", "", "")
	require.NoError(t, err)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/x.jpg", client.PosterURL("/x.jpg"))
	assert.Empty(t, client.PosterURL(""))

	custom, err := tmdb.NewClient("key", "", "", tmdb.WithImageBaseURL("https://img.example/w300/"))
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/w300/x.jpg", custom.PosterURL("/x.jpg"))
}
