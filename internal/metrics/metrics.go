package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Webhook outcomes
const (
	OutcomeSent            = "sent"
	OutcomeDecodeError     = "decode_error"
	OutcomeCompletionError = "completion_error"
	OutcomeMessagingError  = "messaging_error"
)

// Upstream names
const (
	UpstreamCompletion = "completion"
	UpstreamMessaging  = "messaging"
)

var (
	WebhookRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "whatsapp_relay",
			Name:      "webhook_requests_total",
			Help:      "Total inbound webhook requests by outcome.",
		},
		[]string{"outcome"},
	)

	CompletionFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "whatsapp_relay",
			Name:      "completion_fallback_total",
			Help:      "Replies that used the fallback text because the completion was empty.",
		},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "whatsapp_relay",
			Name:      "upstream_duration_seconds",
			Help:      "Latency of outbound calls to the completion and messaging APIs.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"upstream"},
	)
)
