package booking

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/pkg/observability"
	"github.com/Alijeyrad/medibook_backend/pkg/reqctx"
	"github.com/Alijeyrad/medibook_backend/pkg/util/otp"
	"github.com/Alijeyrad/medibook_backend/pkg/util/phone"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type Request struct {
	DoctorID uuid.UUID
	Date     time.Time
	Time     string
	Name     string
	Email    string
	Phone    string
}

type VerifyRequest struct {
	Email string
	OTP   string
}

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

// Store is the part of the record store the booking workflow needs.
type Store interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*repo.Doctor, error)
	FindOrCreatePatient(ctx context.Context, p *repo.Patient) (*repo.Patient, error)
	CreateOneTimeCode(ctx context.Context, code *repo.OneTimeCode) error
	FindOneTimeCode(ctx context.Context, email, codeHash string, now time.Time) (*repo.OneTimeCode, error)
	DeleteOneTimeCode(ctx context.Context, id uuid.UUID) (bool, error)
	// ConfirmAppointment must return repo.ErrSlotTaken when the slot is already booked.
	ConfirmAppointment(ctx context.Context, slotID uuid.UUID, a *repo.Appointment) error
}

type Notifier interface {
	SendBookingCode(ctx context.Context, to, code string) error
	SendConfirmation(ctx context.Context, doctor *repo.Doctor, patient *repo.Patient, appt *repo.Appointment)
	NewAppointment(ctx context.Context, doctorID uuid.UUID, patientName string)
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// RequestBooking emails a one-time code and remembers the booking for sessionID.
	RequestBooking(ctx context.Context, sessionID string, req Request) error
	// VerifyBooking checks the code and confirms the session's pending booking.
	VerifyBooking(ctx context.Context, sessionID string, req VerifyRequest) (*repo.Appointment, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type Config struct {
	CodeTTL    time.Duration
	PendingTTL time.Duration
	// PhoneRegion is used for numbers given without a country code.
	PhoneRegion string
}

type Params struct {
	Store    Store
	Pending  PendingStore
	Notifier Notifier
	Metrics  *observability.BookingMetrics
	Config   Config
	// Now defaults to time.Now.
	Now func() time.Time
}

type bookingService struct {
	store   Store
	pending PendingStore
	notify  Notifier
	metrics *observability.BookingMetrics
	cfg     Config
	now     func() time.Time
}

func New(p Params) Service {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	return &bookingService{
		store:   p.Store,
		pending: p.Pending,
		notify:  p.Notifier,
		metrics: p.Metrics,
		cfg:     p.Config,
		now:     now,
	}
}

func (s *bookingService) RequestBooking(ctx context.Context, sessionID string, req Request) error {
	if err := s.normalize(&req); err != nil {
		return err
	}
	if sessionID == "" {
		return fmt.Errorf("%w: missing booking session", ErrValidation)
	}

	doctor, err := s.store.GetDoctor(ctx, req.DoctorID)
	if err != nil {
		if repo.IsNotFound(err) {
			return ErrDoctorNotFound
		}
		return fmt.Errorf("get doctor: %w", err)
	}

	slot := doctor.FindSlot(req.Date, req.Time)
	if slot == nil {
		return ErrSlotNotFound
	}
	if slot.IsBooked {
		return ErrSlotUnavailable
	}

	now := s.now().UTC()

	patientID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("patient id: %w", err)
	}
	candidate := &repo.Patient{ID: patientID, Name: req.Name, Email: req.Email, CreatedAt: now}
	if req.Phone != "" {
		candidate.Phone = &req.Phone
	}
	patient, err := s.store.FindOrCreatePatient(ctx, candidate)
	if err != nil {
		return fmt.Errorf("find or create patient: %w", err)
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return err
	}
	codeID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("code id: %w", err)
	}
	if err := s.store.CreateOneTimeCode(ctx, &repo.OneTimeCode{
		ID:        codeID,
		Email:     req.Email,
		CodeHash:  otp.Hash(code),
		ExpiresAt: now.Add(s.cfg.CodeTTL),
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("store one-time code: %w", err)
	}

	// The code row stays behind on failure; it expires on its own.
	if err := s.notify.SendBookingCode(ctx, req.Email, code); err != nil {
		return fmt.Errorf("send booking code: %w", err)
	}
	if s.metrics != nil {
		s.metrics.CodesIssued.Add(ctx, 1)
	}

	err = s.pending.Put(ctx, sessionID, &Pending{
		DoctorID:  doctor.ID,
		Date:      slot.Date,
		Time:      slot.Time,
		Name:      req.Name,
		Email:     req.Email,
		PatientID: patient.ID,
	}, s.cfg.PendingTTL)
	if err != nil {
		return fmt.Errorf("store pending booking: %w", err)
	}
	return nil
}

func (s *bookingService) VerifyBooking(ctx context.Context, sessionID string, req VerifyRequest) (*repo.Appointment, error) {
	email := normalizeEmail(req.Email)
	code := strings.TrimSpace(req.OTP)
	if email == "" || code == "" {
		return nil, fmt.Errorf("%w: missing email or otp", ErrValidation)
	}

	now := s.now().UTC()
	rec, err := s.store.FindOneTimeCode(ctx, email, otp.Hash(code), now)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrInvalidOrExpiredCode
		}
		return nil, fmt.Errorf("find one-time code: %w", err)
	}
	if rec.Expired(now) {
		return nil, ErrInvalidOrExpiredCode
	}

	if sessionID == "" {
		return nil, ErrNoPendingBooking
	}
	pending, err := s.pending.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNoPendingBooking) {
			return nil, ErrNoPendingBooking
		}
		return nil, fmt.Errorf("load pending booking: %w", err)
	}
	// A code only confirms the booking that was requested for the same address.
	if pending.Email != email {
		return nil, ErrNoPendingBooking
	}

	doctor, err := s.store.GetDoctor(ctx, pending.DoctorID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	slot := doctor.FindSlot(pending.Date, pending.Time)
	if slot == nil || slot.IsBooked {
		return nil, ErrSlotNoLongerAvailable
	}

	token, err := otp.GenerateToken()
	if err != nil {
		return nil, err
	}
	apptID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("appointment id: %w", err)
	}
	appt := &repo.Appointment{
		ID:          apptID,
		DoctorID:    doctor.ID,
		PatientID:   pending.PatientID,
		Date:        slot.Date,
		Time:        slot.Time,
		TokenNumber: token,
		Status:      repo.StatusConfirmed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.ConfirmAppointment(ctx, slot.ID, appt); err != nil {
		if errors.Is(err, repo.ErrSlotTaken) {
			return nil, ErrSlotNoLongerAvailable
		}
		return nil, fmt.Errorf("confirm appointment: %w", err)
	}
	if s.metrics != nil {
		s.metrics.Confirmed.Add(ctx, 1)
	}

	// The appointment stands from here on; nothing below can undo it.
	patient := &repo.Patient{ID: pending.PatientID, Name: pending.Name, Email: pending.Email}
	s.notify.SendConfirmation(ctx, doctor, patient, appt)

	log := reqctx.Logger(ctx)
	if _, err := s.store.DeleteOneTimeCode(ctx, rec.ID); err != nil {
		log.Warn("consumed code not deleted", "code_id", rec.ID, "error", err)
	}
	if err := s.pending.Delete(ctx, sessionID); err != nil {
		log.Warn("pending booking not cleared", "error", err)
	}

	s.notify.NewAppointment(ctx, doctor.ID, pending.Name)
	return appt, nil
}

func (s *bookingService) normalize(req *Request) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Time = strings.TrimSpace(req.Time)

	var missing []string
	if req.DoctorID == uuid.Nil {
		missing = append(missing, "doctor_id")
	}
	if req.Date.IsZero() {
		missing = append(missing, "date")
	}
	if req.Time == "" {
		missing = append(missing, "time")
	}
	if req.Name == "" {
		missing = append(missing, "name")
	}
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		return fmt.Errorf("%w: email is malformed", ErrValidation)
	}
	req.Date = req.Date.UTC()

	if p := strings.TrimSpace(req.Phone); p != "" {
		e164, err := phone.Normalize(p, s.cfg.PhoneRegion)
		if err != nil {
			return fmt.Errorf("%w: phone is malformed", ErrValidation)
		}
		req.Phone = e164
	}
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
