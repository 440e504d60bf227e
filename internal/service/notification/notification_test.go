package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/pkg/email"
	"github.com/Alijeyrad/medibook_backend/pkg/observability"
	"github.com/Alijeyrad/medibook_backend/pkg/realtime"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

var _ Mailer = (*fakeMailer)(nil)

func (m *fakeMailer) Send(_ context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeSMS struct {
	enabled bool
	sent    []string
	err     error
}

var _ SMSSender = (*fakeSMS)(nil)

func (f *fakeSMS) IsEnabled() bool { return f.enabled }

func (f *fakeSMS) SendReschedule(_ context.Context, phone, date, at string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, phone+" "+date+" "+at)
	return nil
}

type fakeBroadcaster struct {
	events []string
	err    error
}

var _ Broadcaster = (*fakeBroadcaster)(nil)

func (f *fakeBroadcaster) Broadcast(_ context.Context, room, event, message string) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, room+"|"+event+"|"+message)
	return nil
}

func fixtures() (*repo.Doctor, *repo.Patient, *repo.Appointment) {
	doc := &repo.Doctor{ID: uuid.New(), Name: "Smith", Clinic: repo.ClinicDetails{Name: "Sunrise"}}
	pat := &repo.Patient{ID: uuid.New(), Name: "Pat", Email: "pat@example.com"}
	appt := &repo.Appointment{
		ID:          uuid.New(),
		Date:        time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
		Time:        "11:00 AM",
		TokenNumber: 1234,
	}
	return doc, pat, appt
}

func newService(t *testing.T, m *fakeMailer, s *fakeSMS, b *fakeBroadcaster) Service {
	t.Helper()
	metrics, err := observability.NewBookingMetrics()
	require.NoError(t, err)
	return New(Params{Mailer: m, SMS: s, Broadcaster: b, Metrics: metrics, CodeTTL: 5 * time.Minute})
}

func TestSendBookingCodePropagatesFailure(t *testing.T) {
	m := &fakeMailer{}
	svc := newService(t, m, &fakeSMS{}, &fakeBroadcaster{})

	require.NoError(t, svc.SendBookingCode(context.Background(), "pat@example.com", "123456"))
	require.Len(t, m.sent, 1)
	assert.Contains(t, m.sent[0].TextBody, "Your OTP is 123456. It is valid for 5 minutes.")

	m.err = errors.New("smtp down")
	assert.Error(t, svc.SendBookingCode(context.Background(), "pat@example.com", "123456"))
}

func TestSendConfirmationSwallowsFailure(t *testing.T) {
	doc, pat, appt := fixtures()
	m := &fakeMailer{err: errors.New("smtp down")}
	svc := newService(t, m, &fakeSMS{}, &fakeBroadcaster{})

	assert.NotPanics(t, func() { svc.SendConfirmation(context.Background(), doc, pat, appt) })
	assert.Empty(t, m.sent)
}

func TestSendRescheduleChannel(t *testing.T) {
	doc, pat, appt := fixtures()
	phone := "+919876543210"

	t.Run("sms when phone and enabled", func(t *testing.T) {
		m, s := &fakeMailer{}, &fakeSMS{enabled: true}
		p := *pat
		p.Phone = &phone
		newService(t, m, s, &fakeBroadcaster{}).SendReschedule(context.Background(), doc, &p, appt)

		assert.Equal(t, []string{"+919876543210 2026-03-11 11:00 AM"}, s.sent)
		assert.Empty(t, m.sent)
	})

	t.Run("email when sms disabled", func(t *testing.T) {
		m, s := &fakeMailer{}, &fakeSMS{enabled: false}
		p := *pat
		p.Phone = &phone
		newService(t, m, s, &fakeBroadcaster{}).SendReschedule(context.Background(), doc, &p, appt)

		assert.Empty(t, s.sent)
		require.Len(t, m.sent, 1)
		assert.Equal(t, "Appointment Rescheduled", m.sent[0].Subject)
	})

	t.Run("email when no phone", func(t *testing.T) {
		m, s := &fakeMailer{}, &fakeSMS{enabled: true}
		newService(t, m, s, &fakeBroadcaster{}).SendReschedule(context.Background(), doc, pat, appt)

		assert.Empty(t, s.sent)
		assert.Len(t, m.sent, 1)
	})
}

func TestBroadcastMessages(t *testing.T) {
	b := &fakeBroadcaster{}
	svc := newService(t, &fakeMailer{}, &fakeSMS{}, b)
	doctorID, patientID := uuid.New(), uuid.New()

	svc.NewAppointment(context.Background(), doctorID, "Pat")
	svc.StatusChanged(context.Background(), patientID, "Smith", repo.StatusMissed)

	assert.Equal(t, []string{
		doctorID.String() + "|" + realtime.EventNewAppointment + "|New appointment booked by Pat",
		patientID.String() + "|" + realtime.EventAppointmentUpdate + "|Your appointment with Dr. Smith is now missed",
	}, b.events)

	b.err = errors.New("nats down")
	assert.NotPanics(t, func() { svc.NewAppointment(context.Background(), doctorID, "Pat") })
}
