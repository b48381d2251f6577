package health

import (
	"encoding/json"
	"net/http"
	"time"

	"log/slog"

	"github.com/icco/catalog/lib/catalog"
)

// Health represents the health check response structure.
// It includes the overall status, timestamp, and catalog information.
type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Catalog   struct {
		Status   string `json:"status"`
		Message  string `json:"message,omitempty"`
		Items    int    `json:"items"`
		Enriched int    `json:"enriched"`
		Failed   int    `json:"failed"`
	} `json:"catalog"`
}

// Check returns an HTTP handler reporting whether the catalog was loaded.
// A catalog that failed to load is reported as degraded with a 503 so the
// failure is visible to operators even though the page itself stays silent.
func Check(state *catalog.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := Health{
			Status:    "ok",
			Timestamp: time.Now(),
		}

		summary := state.Summary()
		if !summary.Loaded {
			health.Status = "degraded"
			health.Catalog.Status = "error"
			health.Catalog.Message = "Catalog failed to load"
			writeHealth(w, health, http.StatusServiceUnavailable)
			return
		}

		health.Catalog.Status = "ok"
		health.Catalog.Items = summary.TotalItems
		health.Catalog.Enriched = summary.EnrichedItems
		health.Catalog.Failed = summary.FailedLookups
		writeHealth(w, health, http.StatusOK)
	}
}

// writeHealth writes the health check response to the HTTP response writer.
// It takes a response writer, health information, and HTTP status code.
func writeHealth(w http.ResponseWriter, health Health, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(health); err != nil {
		slog.Error("Failed to encode health response", slog.Any("error", err))
	}
}
