package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chatRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "northstar_chat_requests_total",
		Help: "Chat requests by response status.",
	}, []string{"status"})

	chatRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "northstar_chat_request_duration_seconds",
		Help:    "End-to-end chat request latency.",
		Buckets: prometheus.DefBuckets,
	})
)
