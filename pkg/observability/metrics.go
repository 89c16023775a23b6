package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup outcomes, one per StatusResult variant
const (
	OutcomeSuccess        = "success"
	OutcomeGatewayError   = "gateway_error"
	OutcomeTransportError = "transport_error"
	OutcomeUnknownError   = "unknown_error"
)

var (
	gatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wompi_gateway_requests_total",
			Help: "Total number of requests sent to the Wompi API",
		},
		[]string{"operation", "outcome"},
	)

	gatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "wompi_gateway_request_duration_seconds",
			Help: "Duration of Wompi API requests in seconds",
			// Buckets: 50ms to 30s
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	checksumVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wompi_checksum_verifications_total",
			Help: "Total number of event checksum verifications",
		},
		[]string{"result"}, // valid, invalid, malformed
	)

	checkoutURLsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wompi_checkout_urls_total",
			Help: "Total number of checkout URLs built",
		},
		[]string{"currency", "status"}, // status: built, rejected
	)

	webhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wompi_webhook_events_total",
			Help: "Total webhook deliveries received, by event type and HTTP response",
		},
		[]string{"event", "status_code"},
	)
)

// RecordGatewayRequest records one API call and its outcome
func RecordGatewayRequest(operation, outcome string, elapsed time.Duration) {
	gatewayRequestsTotal.WithLabelValues(operation, outcome).Inc()
	gatewayRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordChecksumVerification records a verification result: valid, invalid or malformed
func RecordChecksumVerification(result string) {
	checksumVerificationsTotal.WithLabelValues(result).Inc()
}

// CheckoutCurrencyInvalid labels rejected checkout requests, whose currency is unvalidated
const CheckoutCurrencyInvalid = "invalid"

// RecordCheckoutURL records a checkout URL build attempt
func RecordCheckoutURL(currency, status string) {
	checkoutURLsTotal.WithLabelValues(currency, status).Inc()
}

// Webhook event labels outside the known event types
const (
	WebhookEventUnverified = "unverified" // rejected before the checksum matched
	WebhookEventOther      = "other"      // verified, but not an event type listed below
)

// webhookEventTypes are the event names Wompi documents
var webhookEventTypes = map[string]struct{}{
	"transaction.updated":                {},
	"nequi_token.updated":                {},
	"bancolombia_transfer_token.updated": {},
}

// RecordWebhookEvent records a webhook delivery and the status code it got.
// The event label is one of webhookEventTypes, WebhookEventUnverified or WebhookEventOther.
func RecordWebhookEvent(event string, statusCode int) {
	webhookEventsTotal.WithLabelValues(webhookEventLabel(event), statusCodeLabel(statusCode)).Inc()
}

func webhookEventLabel(event string) string {
	if event == WebhookEventUnverified {
		return event
	}
	if _, ok := webhookEventTypes[event]; ok {
		return event
	}
	return WebhookEventOther
}

func statusCodeLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 200 && code < 300:
		return "2xx"
	}
	return "other"
}
