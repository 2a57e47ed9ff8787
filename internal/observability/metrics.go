package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ParseRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipe_parse_requests_total",
		Help: "Total number of parse requests by winning tier and outcome",
	}, []string{"tier", "outcome"})

	ParseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recipe_parse_duration_seconds",
		Help:    "End to end duration of one parse request",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"outcome"})

	QualityScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "recipe_quality_score",
		Help:    "Distribution of final quality scores for shipped records",
		Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recipe_llm_request_duration_seconds",
		Help:    "Duration of generative model requests by task",
		Buckets: prometheus.DefBuckets,
	}, []string{"task", "status"})

	ExternalAPIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipe_external_api_requests_total",
		Help: "Total number of external extraction API requests",
	}, []string{"service", "status"})

	PageFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipe_page_fetches_total",
		Help: "Total number of page fetches by status",
	}, []string{"status"})
)

// ObserveParse records the outcome of one full parse request.
func ObserveParse(tier, outcome string, dur time.Duration) {
	ParseRequests.WithLabelValues(tier, outcome).Inc()
	ParseDuration.WithLabelValues(outcome).Observe(dur.Seconds())
}

// ObserveLLM records one generative model call.
func ObserveLLM(task string, err error, dur time.Duration) {
	LLMRequestDuration.WithLabelValues(task, statusLabel(err)).Observe(dur.Seconds())
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}

	return "ok"
}
