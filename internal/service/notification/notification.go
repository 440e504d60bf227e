package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/pkg/email"
	"github.com/Alijeyrad/medibook_backend/pkg/observability"
	"github.com/Alijeyrad/medibook_backend/pkg/realtime"
	"github.com/Alijeyrad/medibook_backend/pkg/reqctx"
)

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

type Mailer interface {
	Send(ctx context.Context, m email.Message) error
}

type SMSSender interface {
	IsEnabled() bool
	SendReschedule(ctx context.Context, phoneNumber, date, at string) error
}

type Broadcaster interface {
	Broadcast(ctx context.Context, room, event, message string) error
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

// Service delivers patient and doctor notices. Only SendBookingCode reports
// failure; every other method is best-effort and logs and counts what it drops.
type Service interface {
	SendBookingCode(ctx context.Context, to, code string) error
	SendConfirmation(ctx context.Context, doctor *repo.Doctor, patient *repo.Patient, appt *repo.Appointment)
	SendReschedule(ctx context.Context, doctor *repo.Doctor, patient *repo.Patient, appt *repo.Appointment)
	NewAppointment(ctx context.Context, doctorID uuid.UUID, patientName string)
	StatusChanged(ctx context.Context, patientID uuid.UUID, doctorName, status string)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type Params struct {
	Mailer      Mailer
	SMS         SMSSender
	Broadcaster Broadcaster
	Metrics     *observability.BookingMetrics
	// CodeTTL is quoted in the booking code email.
	CodeTTL time.Duration
}

type notificationService struct {
	p Params
}

func New(p Params) Service {
	return &notificationService{p: p}
}

func (s *notificationService) SendBookingCode(ctx context.Context, to, code string) error {
	return s.p.Mailer.Send(ctx, email.BuildOTPEmail(email.OTPEmailData{
		Email:      to,
		Code:       code,
		TTLMinutes: int(s.p.CodeTTL / time.Minute),
	}))
}

func (s *notificationService) SendConfirmation(ctx context.Context, doctor *repo.Doctor, patient *repo.Patient, appt *repo.Appointment) {
	msg := email.BuildConfirmationEmail(appointmentData(doctor, patient, appt))
	if err := s.p.Mailer.Send(ctx, msg); err != nil {
		s.failed(ctx, "email", "confirmation", err, "appointment_id", appt.ID)
	}
}

// SendReschedule prefers SMS when the patient has a phone number and SMS is
// enabled, and falls back to email otherwise.
func (s *notificationService) SendReschedule(ctx context.Context, doctor *repo.Doctor, patient *repo.Patient, appt *repo.Appointment) {
	if patient.Phone != nil && s.p.SMS != nil && s.p.SMS.IsEnabled() {
		date := appt.Date.UTC().Format(time.DateOnly)
		if err := s.p.SMS.SendReschedule(ctx, *patient.Phone, date, appt.Time); err != nil {
			s.failed(ctx, "sms", "reschedule", err, "appointment_id", appt.ID)
		}
		return
	}

	msg := email.BuildRescheduleEmail(appointmentData(doctor, patient, appt))
	if err := s.p.Mailer.Send(ctx, msg); err != nil {
		s.failed(ctx, "email", "reschedule", err, "appointment_id", appt.ID)
	}
}

func (s *notificationService) NewAppointment(ctx context.Context, doctorID uuid.UUID, patientName string) {
	s.broadcast(ctx, doctorID.String(), realtime.EventNewAppointment, "New appointment booked by "+patientName)
}

func (s *notificationService) StatusChanged(ctx context.Context, patientID uuid.UUID, doctorName, status string) {
	s.broadcast(ctx, patientID.String(), realtime.EventAppointmentUpdate,
		"Your appointment with Dr. "+doctorName+" is now "+status)
}

func (s *notificationService) broadcast(ctx context.Context, room, event, message string) {
	if s.p.Broadcaster == nil {
		return
	}
	if err := s.p.Broadcaster.Broadcast(ctx, room, event, message); err != nil {
		s.failed(ctx, "realtime", event, err, "room", room)
	}
}

func (s *notificationService) failed(ctx context.Context, channel, kind string, err error, args ...any) {
	reqctx.Logger(ctx).Warn("notification dropped",
		append([]any{slog.String("channel", channel), slog.String("kind", kind), slog.Any("error", err)}, args...)...)
	if s.p.Metrics != nil {
		s.p.Metrics.NotificationFailures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("channel", channel),
			attribute.String("kind", kind),
		))
	}
}

func appointmentData(doctor *repo.Doctor, patient *repo.Patient, appt *repo.Appointment) email.AppointmentEmailData {
	return email.AppointmentEmailData{
		Email:          patient.Email,
		PatientName:    patient.Name,
		DoctorName:     doctor.Name,
		ClinicName:     doctor.Clinic.Name,
		ClinicLocation: doctor.Clinic.Location,
		Date:           appt.Date,
		Time:           appt.Time,
		TokenNumber:    appt.TokenNumber,
	}
}
