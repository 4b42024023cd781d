package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	TokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submission_tokens_issued_total",
			Help: "Submission token issuance attempts.",
		},
		[]string{"result"},
	)

	TokensConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submission_tokens_consumed_total",
			Help: "Submission token consumption attempts by outcome.",
		},
		[]string{"result"},
	)

	TokensSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "submission_tokens_swept_total",
			Help: "Expired submission tokens removed by the sweeper.",
		},
	)

	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speaker_submissions_total",
			Help: "Speaker registration submissions by outcome.",
		},
		[]string{"result"},
	)

	RateLimitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Requests rejected by the per-IP limiter.",
		},
		[]string{"route"},
	)
)

// MustRegister registers every collector with the default registry.
// Call once per process.
func MustRegister() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		TokensIssuedTotal,
		TokensConsumedTotal,
		TokensSweptTotal,
		SubmissionsTotal,
		RateLimitedTotal,
	)
}
