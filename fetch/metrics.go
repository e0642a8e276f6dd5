package fetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchPages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ytcollect_search_pages_total",
		Help: "Search result pages fetched",
	})
	candidatesFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ytcollect_candidates_total",
		Help: "Unique candidate videos collected from search",
	})
	detailBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytcollect_detail_batches_total",
		Help: "Detail batches by result",
	}, []string{"result"})
	transcriptLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytcollect_transcripts_total",
		Help: "Transcript lookups by result",
	}, []string{"result"})
	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ytcollect_stage_duration_seconds",
		Help:    "Duration of pipeline stages",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"stage"})
)
