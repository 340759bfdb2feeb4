package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("POST", "/api/auth/login", "200", 0.1)
	RecordHTTPRequest("POST", "/api/auth/login", "200", 0.2)
	RecordHTTPRequest("POST", "/api/auth/login", "401", 0.05)

	assert.Equal(t, float64(2), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/auth/login", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/auth/login", "401")))
	assert.Equal(t, 1, testutil.CollectAndCount(HTTPRequestDuration))
}

func TestRecordBookingTransition(t *testing.T) {
	BookingTransitionsTotal.Reset()

	RecordBookingTransition("CONFIRMED")
	RecordBookingTransition("CONFIRMED")
	RecordBookingTransition("CANCELED")

	assert.Equal(t, float64(2), testutil.ToFloat64(BookingTransitionsTotal.WithLabelValues("CONFIRMED")))
	assert.Equal(t, float64(1), testutil.ToFloat64(BookingTransitionsTotal.WithLabelValues("CANCELED")))
}

func TestRecordHoursMoved(t *testing.T) {
	HoursMovedTotal.Reset()

	RecordHoursMoved("RESERVE", 4)
	RecordHoursMoved("RESERVE", 1.5)

	assert.Equal(t, 5.5, testutil.ToFloat64(HoursMovedTotal.WithLabelValues("RESERVE")))
}

func TestRecordRegistration(t *testing.T) {
	UserRegistrationsTotal.Reset()

	RecordRegistration("STUDENT")

	assert.Equal(t, float64(1), testutil.ToFloat64(UserRegistrationsTotal.WithLabelValues("STUDENT")))
	assert.Equal(t, float64(0), testutil.ToFloat64(UserRegistrationsTotal.WithLabelValues("ADMIN")))
}

func TestRecordOfferCreated(t *testing.T) {
	before := testutil.ToFloat64(OffersCreatedTotal)

	RecordOfferCreated()

	assert.Equal(t, before+1, testutil.ToFloat64(OffersCreatedTotal))
}

func TestRecordEmail(t *testing.T) {
	EmailsSentTotal.Reset()

	RecordEmail("booking_confirmed", "queued")
	RecordEmail("booking_confirmed", "failed")

	assert.Equal(t, float64(1), testutil.ToFloat64(EmailsSentTotal.WithLabelValues("booking_confirmed", "queued")))
	assert.Equal(t, float64(1), testutil.ToFloat64(EmailsSentTotal.WithLabelValues("booking_confirmed", "failed")))
}

func TestRecordRateLimited(t *testing.T) {
	before := testutil.ToFloat64(RateLimitedTotal)

	RecordRateLimited()

	assert.Equal(t, before+1, testutil.ToFloat64(RateLimitedTotal))
}
