package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `{"Items":[
	{"Name":"A","DateCreated":"2024-01-10T10:00:00Z","ProductionYear":2020,"ProviderIds":{"Tmdb":"1"}},
	{"Name":"B","DateCreated":"2024-01-10T11:00:00Z","ProductionYear":2021,"ProviderIds":{}},
	{"Name":"C","DateCreated":"2023-05-01T09:00:00Z","ProductionYear":2020}
]}`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "films.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	l := New(nil, nil)
	items, err := l.Load(context.Background(), writeCatalog(t, sampleCatalog))
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "A", items[0].Name)
	assert.Equal(t, "1", items[0].ExternalID())
	assert.Equal(t, "C", items[2].Name)
}

func TestLoadFromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleCatalog))
	}))
	t.Cleanup(server.Close)

	items, err := New(server.Client(), nil).Load(context.Background(), server.URL+"/films.json")
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestLoadErrors(t *testing.T) {
	notFound := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(notFound.Close)

	tests := []struct {
		name   string
		source string
	}{
		{name: "empty source", source: ""},
		{name: "missing file", source: filepath.Join(t.TempDir(), "missing.json")},
		{name: "malformed json", source: writeCatalog(t, `{"Items":[`)},
		{name: "missing items", source: writeCatalog(t, `{"TotalRecordCount":0}`)},
		{name: "http status", source: notFound.URL + "/films.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(nil, nil).Load(context.Background(), tt.source)
			assert.Error(t, err)
		})
	}
}
