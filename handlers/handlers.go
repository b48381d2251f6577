package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/icco/catalog/handlers/templates"
	"github.com/icco/catalog/lib/catalog"
	"github.com/icco/catalog/lib/validation"
	"github.com/icco/catalog/models"
)

type errorData struct {
	Message string
}

func renderError(w http.ResponseWriter, message string, status int) {
	tmpl, err := templates.ParseTemplates("base.html", "error.html")
	if err != nil {
		slog.Error("Failed to parse error template", slog.Any("error", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base.html", errorData{Message: message}); err != nil {
		slog.Error("Failed to execute error template", slog.Any("error", err))
	}
}

// HandleHome renders the full catalog page. Without filter parameters it
// shows the initial view.
func HandleHome(state *catalog.State, r *Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		filter, err := validation.ParseFilter(req.URL.Query())
		if err != nil {
			renderError(w, "Anno non valido.", http.StatusBadRequest)
			return
		}

		var buf bytes.Buffer
		if err := RenderPage(&buf, r.Page(state, filter)); err != nil {
			slog.Error("Failed to render page", slog.Any("error", err))
			renderError(w, "Something went wrong while loading the page.", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := buf.WriteTo(w); err != nil {
			slog.Error("Failed to write page", slog.Any("error", err))
		}
	}
}

// RenderPage writes the complete catalog page for page to w.
func RenderPage(w io.Writer, page Page) error {
	tmpl, err := templates.ParseTemplates("base.html", "home.html", "select.html", "cards.html")
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	if err := tmpl.ExecuteTemplate(w, "base.html", page); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// HandleCards renders only the cards for the requested filter. The page
// script calls it whenever a filter control changes.
func HandleCards(state *catalog.State, r *Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		filter, err := validation.ParseFilter(req.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		tmpl, err := templates.ParseTemplates("cards.html")
		if err != nil {
			slog.Error("Failed to parse template", slog.Any("error", err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.ExecuteTemplate(w, "cards", r.Page(state, filter)); err != nil {
			slog.Error("Failed to execute template", slog.Any("error", err))
		}
	}
}

type itemsResponse struct {
	Count int           `json:"count"`
	Items []models.Item `json:"items"`
}

// HandleItems returns the current view as JSON.
func HandleItems(state *catalog.State) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		filter, err := validation.ParseFilter(req.URL.Query())
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		items := state.View(filter)
		if items == nil {
			items = []models.Item{}
		}
		writeJSON(w, itemsResponse{Count: len(items), Items: items})
	}
}

// HandleOptions returns the selectable years and genres as JSON.
func HandleOptions(state *catalog.State) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		opts := catalog.Options{Years: []int{}, Genres: []string{}}
		if state != nil && state.Loaded {
			opts = state.Options
		}
		writeJSON(w, opts)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", slog.Any("error", err))
	}
}
