package validation

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/icco/catalog/lib/catalog"
)

// yearRegex matches a production year as offered by the year selector.
var yearRegex = regexp.MustCompile(`^\d{4}$`)

// Query parameters carrying the filter controls.
const (
	ParamYear  = "year"
	ParamGenre = "genre"
	ParamTitle = "q"
)

// ParseFilter reads the filter controls from query parameters. The presence
// of any control key, even empty, marks the filter as touched.
func ParseFilter(query url.Values) (catalog.Filter, error) {
	var f catalog.Filter
	for _, key := range []string{ParamYear, ParamGenre, ParamTitle} {
		if _, ok := query[key]; ok {
			f.Touched = true
		}
	}

	if year := strings.TrimSpace(query.Get(ParamYear)); year != "" {
		if err := ValidateYear(year); err != nil {
			return catalog.Filter{}, err
		}
		f.Year, _ = strconv.Atoi(year)
	}
	f.Genre = query.Get(ParamGenre)
	f.Title = query.Get(ParamTitle)
	return f, nil
}

// ValidateYear checks that year is a four digit, non-zero year.
func ValidateYear(year string) error {
	if !yearRegex.MatchString(year) {
		return fmt.Errorf("invalid year: %s, expected YYYY", year)
	}
	if year == "0000" {
		return fmt.Errorf("invalid year: %s", year)
	}
	return nil
}

// WriteError writes a validation error response to the HTTP response writer.
// It takes a response writer, error message, and HTTP status code.
func WriteError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
	}); err != nil {
		slog.Error("Failed to encode error response", slog.Any("error", err))
	}
}
