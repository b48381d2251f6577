package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordEnrichment(t *testing.T) {
	before := testutil.ToFloat64(enrichmentTotal.WithLabelValues(OutcomeFailed))
	RecordEnrichment(OutcomeFailed, 0.2)
	assert.Equal(t, before+1, testutil.ToFloat64(enrichmentTotal.WithLabelValues(OutcomeFailed)))

	skipped := testutil.ToFloat64(enrichmentTotal.WithLabelValues(OutcomeSkipped))
	RecordEnrichment(OutcomeSkipped, 0)
	assert.Equal(t, skipped+1, testutil.ToFloat64(enrichmentTotal.WithLabelValues(OutcomeSkipped)))
}

func TestSetCatalogItems(t *testing.T) {
	SetCatalogItems(12, 7)
	assert.Equal(t, 12.0, testutil.ToFloat64(catalogItems.WithLabelValues("total")))
	assert.Equal(t, 7.0, testutil.ToFloat64(catalogItems.WithLabelValues("enriched")))
}
