package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timebank_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "timebank_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timebank_booking_transitions_total",
			Help: "Booking state transitions by target status",
		},
		[]string{"status"},
	)

	HoursMovedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timebank_hours_moved_total",
			Help: "Hours moved between wallets by transaction type",
		},
		[]string{"type"},
	)

	UserRegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timebank_user_registrations_total",
			Help: "Accounts created by role",
		},
		[]string{"role"},
	)

	OffersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "timebank_offers_created_total",
			Help: "Total number of offers created",
		},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timebank_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "timebank_email_queue_length",
			Help: "Current length of email queue",
		},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "timebank_rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBookingTransition(status string) {
	BookingTransitionsTotal.WithLabelValues(status).Inc()
}

// RecordHoursMoved adds amount, already rounded to two decimals, to the per-type counter.
func RecordHoursMoved(txType string, amount float64) {
	HoursMovedTotal.WithLabelValues(txType).Add(amount)
}

func RecordRegistration(role string) {
	UserRegistrationsTotal.WithLabelValues(role).Inc()
}

func RecordOfferCreated() {
	OffersCreatedTotal.Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}

func RecordRateLimited() {
	RateLimitedTotal.Inc()
}
