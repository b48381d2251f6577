package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/icco/catalog/lib/validation"
	"github.com/icco/catalog/models"
)

// Loader reads the catalog document from a file path or an http(s) URL.
type Loader struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// New returns a Loader. A nil client or logger falls back to the defaults.
func New(httpClient *http.Client, logger *slog.Logger) *Loader {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{httpClient: httpClient, logger: logger}
}

// Load returns the items of the catalog document in source order.
func (l *Loader) Load(ctx context.Context, source string) ([]models.Item, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("catalog source is empty")
	}

	var (
		body io.ReadCloser
		err  error
	)
	if isRemote(source) {
		body, err = l.openRemote(ctx, source)
	} else {
		// #nosec G304 - the source path comes from operator configuration
		body, err = os.Open(filepath.Clean(source))
		if err != nil {
			err = fmt.Errorf("failed to open catalog: %w", err)
		}
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := body.Close(); err != nil {
			l.logger.Error("failed to close catalog", slog.String("source", source), slog.Any("error", err))
		}
	}()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if err := validation.ValidateCatalogDocument(data); err != nil {
		return nil, err
	}

	var doc models.ItemsResponse
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	l.logger.Debug("Loaded catalog", slog.String("source", source), slog.Int("items", len(doc.Items)))
	return doc.Items, nil
}

func (l *Loader) openRemote(ctx context.Context, source string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch catalog: HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
