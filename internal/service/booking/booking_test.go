package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/internal/service/notification"
	"github.com/Alijeyrad/medibook_backend/pkg/observability"
	"github.com/Alijeyrad/medibook_backend/pkg/util/otp"
)

var slotDate = time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)

type harness struct {
	svc     Service
	store   *fakeStore
	pending *fakePending
	mailer  *fakeMailer
	rt      *fakeBroadcaster
	clock   *clock
	doctor  *repo.Doctor
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:   newFakeStore(),
		pending: newFakePending(),
		mailer:  &fakeMailer{failSubjects: map[string]error{}},
		rt:      &fakeBroadcaster{},
		clock:   &clock{t: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)},
	}
	h.doctor = h.store.addDoctor("Smith",
		&repo.Slot{Date: slotDate, Time: "10:00 AM"},
		&repo.Slot{Date: slotDate, Time: "11:00 AM"},
	)

	metrics, err := observability.NewBookingMetrics()
	require.NoError(t, err)

	h.svc = New(Params{
		Store:   h.store,
		Pending: h.pending,
		Notifier: notification.New(notification.Params{
			Mailer:      h.mailer,
			Broadcaster: h.rt,
			Metrics:     metrics,
			CodeTTL:     5 * time.Minute,
		}),
		Metrics: metrics,
		Config: Config{
			CodeTTL:     5 * time.Minute,
			PendingTTL:  24 * time.Hour,
			PhoneRegion: "IN",
		},
		Now: h.clock.Now,
	})
	return h
}

func (h *harness) request(sid, addr, at string) error {
	return h.svc.RequestBooking(context.Background(), sid, Request{
		DoctorID: h.doctor.ID,
		Date:     slotDate,
		Time:     at,
		Name:     "Pat",
		Email:    addr,
	})
}

func (h *harness) verify(sid, addr, code string) (*repo.Appointment, error) {
	return h.svc.VerifyBooking(context.Background(), sid, VerifyRequest{Email: addr, OTP: code})
}

func TestBookingHappyPath(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.request("s1", "pat@example.com", "10:00 AM"))
	assert.Equal(t, 1, h.store.codeCount())

	code := h.mailer.lastCode(t, "pat@example.com")
	n := 0
	_, err := fmt.Sscanf(code, "%d", &n)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, otp.CodeMin)
	assert.LessOrEqual(t, n, otp.CodeMax)

	appt, err := h.verify("s1", "pat@example.com", code)
	require.NoError(t, err)
	assert.Equal(t, repo.StatusConfirmed, appt.Status)
	assert.GreaterOrEqual(t, appt.TokenNumber, otp.TokenMin)
	assert.LessOrEqual(t, appt.TokenNumber, otp.TokenMax)
	assert.True(t, appt.Date.Equal(slotDate))
	assert.Equal(t, "10:00 AM", appt.Time)

	slot := h.store.slot(h.doctor.ID, 0)
	assert.True(t, slot.IsBooked)
	require.NotNil(t, slot.PatientID)
	assert.Equal(t, appt.PatientID, *slot.PatientID)

	assert.Equal(t, 0, h.store.codeCount(), "consumed code is deleted")
	_, err = h.pending.Get(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrNoPendingBooking, "pending booking is cleared")

	assert.Equal(t, []string{"Your OTP for Appointment Booking", "Appointment Confirmed"}, h.mailer.subjects())
	assert.Equal(t, []string{h.doctor.ID.String() + ": New appointment booked by Pat"}, h.rt.messages)

	err = h.request("s2", "other@example.com", "10:00 AM")
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestRequestValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	valid := Request{DoctorID: h.doctor.ID, Date: slotDate, Time: "10:00 AM", Name: "Pat", Email: "pat@example.com"}

	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{"missing doctor", func(r *Request) { r.DoctorID = uuid.Nil }},
		{"missing date", func(r *Request) { r.Date = time.Time{} }},
		{"missing time", func(r *Request) { r.Time = " " }},
		{"missing name", func(r *Request) { r.Name = "" }},
		{"missing email", func(r *Request) { r.Email = "" }},
		{"malformed email", func(r *Request) { r.Email = "not-an-email" }},
		{"malformed phone", func(r *Request) { r.Phone = "12" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			assert.ErrorIs(t, h.svc.RequestBooking(ctx, "s1", req), ErrValidation)
		})
	}

	assert.ErrorIs(t, h.svc.RequestBooking(ctx, "", valid), ErrValidation)
	assert.Empty(t, h.mailer.subjects())
}

func TestRequestNormalizesPatientContact(t *testing.T) {
	h := newHarness(t)

	err := h.svc.RequestBooking(context.Background(), "s1", Request{
		DoctorID: h.doctor.ID,
		Date:     slotDate,
		Time:     "10:00 AM",
		Name:     "  Pat ",
		Email:    " Pat@Example.COM ",
		Phone:    "98765 43210",
	})
	require.NoError(t, err)

	p := h.store.patients["pat@example.com"]
	require.NotNil(t, p)
	assert.Equal(t, "Pat", p.Name)
	require.NotNil(t, p.Phone)
	assert.Equal(t, "+919876543210", *p.Phone)
}

func TestRequestLookupFailures(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	err := h.svc.RequestBooking(ctx, "s1", Request{DoctorID: uuid.New(), Date: slotDate, Time: "10:00 AM", Name: "Pat", Email: "pat@example.com"})
	assert.ErrorIs(t, err, ErrDoctorNotFound)

	// Labels are matched exactly.
	assert.ErrorIs(t, h.request("s1", "pat@example.com", "10:00 am"), ErrSlotNotFound)

	err = h.svc.RequestBooking(ctx, "s1", Request{DoctorID: h.doctor.ID, Date: slotDate.Add(24 * time.Hour), Time: "10:00 AM", Name: "Pat", Email: "pat@example.com"})
	assert.ErrorIs(t, err, ErrSlotNotFound)

	// Same instant in another zone still matches.
	ist := time.FixedZone("IST", 5*3600+1800)
	err = h.svc.RequestBooking(ctx, "s1", Request{DoctorID: h.doctor.ID, Date: slotDate.In(ist), Time: "10:00 AM", Name: "Pat", Email: "pat@example.com"})
	assert.NoError(t, err)
}

func TestCodeExpiryBoundary(t *testing.T) {
	t.Run("valid at exactly five minutes", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.request("s1", "pat@example.com", "10:00 AM"))
		code := h.mailer.lastCode(t, "pat@example.com")

		h.clock.Advance(5*time.Minute - time.Second)
		h.clock.Advance(time.Second)
		_, err := h.verify("s1", "pat@example.com", code)
		assert.NoError(t, err)
	})

	t.Run("expired one second later", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.request("s1", "pat@example.com", "10:00 AM"))
		code := h.mailer.lastCode(t, "pat@example.com")

		h.clock.Advance(5*time.Minute + time.Second)
		_, err := h.verify("s1", "pat@example.com", code)
		assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
		assert.Equal(t, 0, h.store.appointmentCount())
	})
}

func TestCodeIsSingleUse(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.request("s1", "pat@example.com", "10:00 AM"))
	code := h.mailer.lastCode(t, "pat@example.com")

	_, err := h.verify("s1", "pat@example.com", code)
	require.NoError(t, err)

	_, err = h.verify("s1", "pat@example.com", code)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
	assert.Equal(t, 1, h.store.appointmentCount())
}

func TestVerifyRejections(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.request("s1", "pat@example.com", "10:00 AM"))
	code := h.mailer.lastCode(t, "pat@example.com")

	_, err := h.verify("s1", "pat@example.com", "")
	assert.ErrorIs(t, err, ErrValidation)

	wrong := "100000"
	if code == wrong {
		wrong = "100001"
	}
	_, err = h.verify("s1", "pat@example.com", wrong)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)

	_, err = h.verify("s1", "someone@example.com", code)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)

	_, err = h.verify("other-session", "pat@example.com", code)
	assert.ErrorIs(t, err, ErrNoPendingBooking)

	_, err = h.verify("", "pat@example.com", code)
	assert.ErrorIs(t, err, ErrNoPendingBooking)

	assert.Equal(t, 0, h.store.appointmentCount())
	assert.Equal(t, 1, h.store.codeCount(), "failed attempts do not consume the code")
}

func TestLatestRequestReplacesPending(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.request("s1", "pat@example.com", "10:00 AM"))
	require.NoError(t, h.request("s1", "pat@example.com", "11:00 AM"))

	// Both codes are valid; either confirms the latest pending booking.
	code := h.mailer.lastCode(t, "pat@example.com")
	appt, err := h.verify("s1", "pat@example.com", code)
	require.NoError(t, err)
	assert.Equal(t, "11:00 AM", appt.Time)
	assert.False(t, h.store.slot(h.doctor.ID, 0).IsBooked)
}

func TestVerifyAfterSlotTaken(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.request("s1", "a@example.com", "10:00 AM"))
	require.NoError(t, h.request("s2", "b@example.com", "10:00 AM"))

	_, err := h.verify("s1", "a@example.com", h.mailer.lastCode(t, "a@example.com"))
	require.NoError(t, err)

	_, err = h.verify("s2", "b@example.com", h.mailer.lastCode(t, "b@example.com"))
	assert.ErrorIs(t, err, ErrSlotNoLongerAvailable)
	assert.Equal(t, 1, h.store.appointmentCount())
}

func TestConcurrentVerificationsBookOnce(t *testing.T) {
	h := newHarness(t)

	const n = 16
	codes := make([]string, n)
	for i := 0; i < n; i++ {
		addr := fmt.Sprintf("p%d@example.com", i)
		require.NoError(t, h.request(fmt.Sprintf("s%d", i), addr, "10:00 AM"))
		codes[i] = h.mailer.lastCode(t, addr)
	}

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = h.verify(fmt.Sprintf("s%d", i), fmt.Sprintf("p%d@example.com", i), codes[i])
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrSlotNoLongerAvailable)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, h.store.appointmentCount())
}

func TestCodeEmailFailureAbortsRequest(t *testing.T) {
	h := newHarness(t)
	h.mailer.failSubjects["Your OTP for Appointment Booking"] = errors.New("smtp down")

	err := h.request("s1", "pat@example.com", "10:00 AM")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidation)

	// The code row is not rolled back and no pending booking was stored.
	assert.Equal(t, 1, h.store.codeCount())
	_, err = h.pending.Get(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrNoPendingBooking)
}

func TestConfirmationEmailFailureKeepsAppointment(t *testing.T) {
	h := newHarness(t)
	h.mailer.failSubjects["Appointment Confirmed"] = errors.New("smtp down")

	require.NoError(t, h.request("s1", "pat@example.com", "10:00 AM"))
	appt, err := h.verify("s1", "pat@example.com", h.mailer.lastCode(t, "pat@example.com"))
	require.NoError(t, err)
	assert.NotZero(t, appt.TokenNumber)
	assert.Equal(t, 1, h.store.appointmentCount())
	assert.Len(t, h.rt.messages, 1)
}
