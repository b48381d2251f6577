package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Enrichment outcomes.
const (
	OutcomeEnriched = "enriched"
	OutcomeFailed   = "failed"
	OutcomeSkipped  = "skipped"
)

var (
	enrichmentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "enrichment_total",
			Help:      "Metadata lookups by outcome",
		},
		[]string{"outcome"},
	)

	enrichmentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "catalog",
			Name:      "enrichment_duration_seconds",
			Help:      "Latency of individual metadata lookups",
			Buckets:   prometheus.DefBuckets,
		},
	)

	catalogItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "catalog",
			Name:      "items",
			Help:      "Items held by the loaded catalog",
		},
		[]string{"state"},
	)
)

// RecordEnrichment counts one lookup outcome. Skipped items carry no latency.
func RecordEnrichment(outcome string, seconds float64) {
	enrichmentTotal.WithLabelValues(outcome).Inc()
	if outcome != OutcomeSkipped {
		enrichmentDuration.Observe(seconds)
	}
}

// SetCatalogItems publishes the size of the catalog after a pipeline run.
func SetCatalogItems(total, enriched int) {
	catalogItems.WithLabelValues("total").Set(float64(total))
	catalogItems.WithLabelValues("enriched").Set(float64(enriched))
}
