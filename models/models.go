package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ItemsResponse is the root of the local catalog document.
type ItemsResponse struct {
	Items []Item `json:"Items"`
}

// ProviderIDs holds the external ids of an item. Only TMDB is used.
type ProviderIDs struct {
	Tmdb ExternalID `json:"Tmdb,omitempty"`
}

// Item is one catalog entry plus the metadata merged in by enrichment.
type Item struct {
	Name           string      `json:"Name"`
	DateCreated    string      `json:"DateCreated"`
	ProductionYear int         `json:"ProductionYear,omitempty"` // 0 when unknown
	ProviderIDs    ProviderIDs `json:"ProviderIds"`

	// Populated by enrichment. Genres is nil until a lookup succeeds.
	Genres     []string `json:"genres,omitempty"`
	PosterPath string   `json:"posterPath,omitempty"`
	Overview   string   `json:"overview,omitempty"`
}

// ExternalID returns the TMDB identifier, or "" if the item has none.
func (i Item) ExternalID() string {
	return string(i.ProviderIDs.Tmdb)
}

// Day returns the calendar-day portion of DateCreated.
func (i Item) Day() string {
	if len(i.DateCreated) < 10 {
		return i.DateCreated
	}
	return i.DateCreated[:10]
}

var createdLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CreatedAt parses DateCreated. It returns the zero time when the value is
// not in a recognised layout.
func (i Item) CreatedAt() time.Time {
	s := strings.TrimSpace(i.DateCreated)
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Enriched reports whether a metadata lookup succeeded for the item.
func (i Item) Enriched() bool {
	return i.Genres != nil
}

// HasGenre reports whether genre is one of the item's genres.
func (i Item) HasGenre(genre string) bool {
	for _, g := range i.Genres {
		if g == genre {
			return true
		}
	}
	return false
}

// ExternalID accepts both JSON strings and numbers, since catalog exports
// are not consistent about how provider ids are encoded.
type ExternalID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ExternalID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid external id: %w", err)
		}
		*id = ExternalID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid external id %s: %w", data, err)
	}
	if v, err := n.Int64(); err == nil {
		// A numeric 0 means "no id"; the string "0" is kept as given.
		if v == 0 {
			*id = ""
			return nil
		}
		*id = ExternalID(strconv.FormatInt(v, 10))
		return nil
	}
	*id = ExternalID(n.String())
	return nil
}
