package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusRecorder(reg)
	require.NoError(t, err)

	rec.PostingCommitted("INVOICE_AR", false, 5*time.Millisecond)
	rec.PostingCommitted("INVOICE_AR", true, time.Millisecond)
	rec.PostingCommitted("INVOICE_AR", true, time.Millisecond)
	rec.PostingRejected("PAYMENT_AR", "OVER_ALLOCATION")
	rec.RateLookup(LayerRedis)

	p := rec.(*promRecorder)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.postings.WithLabelValues("INVOICE_AR", "posted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.postings.WithLabelValues("INVOICE_AR", "replayed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.rejected.WithLabelValues("PAYMENT_AR", "OVER_ALLOCATION")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.rateCalls.WithLabelValues(LayerRedis)))
	assert.Equal(t, 1, testutil.CollectAndCount(p.latency))
}

func TestPrometheusRecorder_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusRecorder(reg)
	require.NoError(t, err)

	_, err = NewPrometheusRecorder(reg)
	assert.Error(t, err)
}
