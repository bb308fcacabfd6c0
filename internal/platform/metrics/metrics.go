package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives posting engine events. Services depend on this
// interface so tests and the CLI can run without a registry.
type Recorder interface {
	// PostingCommitted counts a posting whose transaction committed, fresh or replayed.
	PostingCommitted(sourceKind string, replayed bool, elapsed time.Duration)
	// PostingRejected counts a posting that failed with an engine error code.
	PostingRejected(sourceKind string, code string)
	// RateLookup counts exchange rate resolutions by the layer that answered.
	RateLookup(layer string)
}

// Cache layers reported through RateLookup.
const (
	LayerMemory = "memory"
	LayerRedis  = "redis"
	LayerStore  = "store"
)

type promRecorder struct {
	postings  *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	rateCalls *prometheus.CounterVec
}

// NewPrometheusRecorder registers the engine collectors on reg.
func NewPrometheusRecorder(reg prometheus.Registerer) (Recorder, error) {
	r := &promRecorder{
		postings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gl_engine",
			Name:      "postings_total",
			Help:      "Journal postings by source kind and outcome.",
		}, []string{"source_kind", "outcome"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gl_engine",
			Name:      "postings_rejected_total",
			Help:      "Postings rejected by the engine, by error code.",
		}, []string{"source_kind", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gl_engine",
			Name:      "posting_duration_seconds",
			Help:      "Time spent inside the posting unit of work.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source_kind"}),
		rateCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gl_engine",
			Name:      "rate_lookups_total",
			Help:      "Exchange rate lookups by the layer that served them.",
		}, []string{"layer"}),
	}

	for _, c := range []prometheus.Collector{r.postings, r.rejected, r.latency, r.rateCalls} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *promRecorder) PostingCommitted(sourceKind string, replayed bool, elapsed time.Duration) {
	outcome := "posted"
	if replayed {
		outcome = "replayed"
	}
	r.postings.WithLabelValues(sourceKind, outcome).Inc()
	r.latency.WithLabelValues(sourceKind).Observe(elapsed.Seconds())
}

func (r *promRecorder) PostingRejected(sourceKind string, code string) {
	r.rejected.WithLabelValues(sourceKind, code).Inc()
}

func (r *promRecorder) RateLookup(layer string) {
	r.rateCalls.WithLabelValues(layer).Inc()
}

// Noop discards every event.
type Noop struct{}

func (Noop) PostingCommitted(string, bool, time.Duration) {}
func (Noop) PostingRejected(string, string)               {}
func (Noop) RateLookup(string)                            {}

var (
	_ Recorder = (*promRecorder)(nil)
	_ Recorder = Noop{}
)
