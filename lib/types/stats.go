package types

import "time"

// StatsData summarises a loaded catalog.
type StatsData struct {
	Loaded            bool      `json:"loaded"`
	TotalItems        int       `json:"total_items"`
	EnrichedItems     int       `json:"enriched_items"`
	FailedLookups     int       `json:"failed_lookups"`
	SkippedItems      int       `json:"skipped_items"`
	DistinctYears     int       `json:"distinct_years"`
	FirstDate         time.Time `json:"first_date"`
	LastDate          time.Time `json:"last_date"`
	LoadedAt          time.Time `json:"loaded_at"`
	GenreDistribution []struct {
		Genre string `json:"genre"`
		Count int64  `json:"count"`
	} `json:"genre_distribution"`
}
