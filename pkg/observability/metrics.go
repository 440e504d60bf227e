package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/Alijeyrad/medibook_backend/booking"

// BookingMetrics are the counters of the booking workflow. They resolve against
// the global meter provider, so they are no-ops until InitTelemetry has run.
type BookingMetrics struct {
	CodesIssued          metric.Int64Counter
	Confirmed            metric.Int64Counter
	NotificationFailures metric.Int64Counter
}

func NewBookingMetrics() (*BookingMetrics, error) {
	meter := otel.Meter(meterName)

	issued, err := meter.Int64Counter("booking_codes_issued_total",
		metric.WithDescription("Booking verification codes sent to patients"),
		metric.WithUnit("{code}"))
	if err != nil {
		return nil, err
	}
	confirmed, err := meter.Int64Counter("booking_confirmed_total",
		metric.WithDescription("Appointments confirmed through code verification"),
		metric.WithUnit("{appointment}"))
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter("notification_failures_total",
		metric.WithDescription("Best-effort notifications that could not be delivered"),
		metric.WithUnit("{notification}"))
	if err != nil {
		return nil, err
	}

	return &BookingMetrics{
		CodesIssued:          issued,
		Confirmed:            confirmed,
		NotificationFailures: failures,
	}, nil
}
