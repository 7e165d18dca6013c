package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus instruments shared by the services.
type Metrics struct {
	AnalysesTotal        prometheus.Counter
	PredictionsTotal     prometheus.Counter
	CacheHits            prometheus.Counter
	CacheMisses          prometheus.Counter
	TrainingDuration     prometheus.Histogram
	ObservationsIngested prometheus.Counter
	ErrorsTotal          *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	return &Metrics{
		AnalysesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "The total number of completed route analyses",
		}),
		PredictionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "The total number of price predictions served",
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_cache_hits_total",
			Help:      "Analysis results served from cache",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_cache_misses_total",
			Help:      "Analysis results computed from the store",
		}),
		TrainingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_training_duration_seconds",
			Help:      "Time spent training route price models",
			Buckets:   prometheus.DefBuckets,
		}),
		ObservationsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_ingested_total",
			Help:      "Price observations written to the store by the worker",
		}),
		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors by operation",
		}, []string{"operation"}),
	}
}
