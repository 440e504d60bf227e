package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/pkg/reqctx"
)

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

type Store interface {
	GetAppointment(ctx context.Context, id uuid.UUID) (*repo.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status string, now time.Time) error
	RescheduleAppointment(ctx context.Context, a *repo.Appointment, slot *repo.Slot, now time.Time) error
	RestoreAppointment(ctx context.Context, a *repo.Appointment, status string, now time.Time) error
	ReleaseSlot(ctx context.Context, slotID, patientID uuid.UUID) (bool, error)
	ListDoctorAppointments(ctx context.Context, doctorID uuid.UUID) ([]*repo.Appointment, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*repo.Doctor, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*repo.Patient, error)
}

type Notifier interface {
	SendReschedule(ctx context.Context, doctor *repo.Doctor, patient *repo.Patient, appt *repo.Appointment)
	StatusChanged(ctx context.Context, patientID uuid.UUID, doctorName, status string)
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// UpdateStatus sets the status of an appointment. Moving into "missed"
	// rebooks the appointment onto the doctor's first free slot, if any;
	// moving into "cancelled" gives its slot back and moving out of it claims
	// the slot again, failing with ErrSlotUnavailable if it was taken.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*repo.Appointment, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*repo.Appointment, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type appointmentService struct {
	db     Store
	notify Notifier
	now    func() time.Time
}

func New(db Store, notify Notifier) Service {
	return NewWithClock(db, notify, time.Now)
}

func NewWithClock(db Store, notify Notifier, now func() time.Time) Service {
	return &appointmentService{db: db, notify: notify, now: now}
}

func (s *appointmentService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*repo.Appointment, error) {
	if !repo.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	appt, err := s.db.GetAppointment(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	doctor, err := s.db.GetDoctor(ctx, appt.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("get doctor: %w", err)
	}

	prev := appt.Status
	now := s.now().UTC()

	switch {
	case status == repo.StatusMissed && prev != repo.StatusMissed:
		moved, err := s.rebook(ctx, doctor, appt, now)
		if err != nil {
			return nil, err
		}
		if moved {
			s.notifyReschedule(ctx, doctor, appt)
			break
		}
		if err := s.transition(ctx, appt, prev, status, now); err != nil {
			return nil, err
		}

	default:
		if err := s.transition(ctx, appt, prev, status, now); err != nil {
			return nil, err
		}
		if status == repo.StatusCancelled && prev != repo.StatusCancelled && appt.SlotID != nil {
			if _, err := s.db.ReleaseSlot(ctx, *appt.SlotID, appt.PatientID); err != nil {
				return nil, fmt.Errorf("release slot: %w", err)
			}
		}
	}

	s.notify.StatusChanged(ctx, appt.PatientID, doctor.Name, status)
	return appt, nil
}

// transition writes status, reclaiming the appointment's slot when it leaves
// "cancelled".
func (s *appointmentService) transition(ctx context.Context, appt *repo.Appointment, prev, status string, now time.Time) error {
	if prev != repo.StatusCancelled || status == repo.StatusCancelled {
		return s.setStatus(ctx, appt, status, now)
	}
	if err := s.db.RestoreAppointment(ctx, appt, status, now); err != nil {
		switch {
		case errors.Is(err, repo.ErrSlotTaken):
			return ErrSlotUnavailable
		case errors.Is(err, repo.ErrStatusChanged):
			return ErrConflict
		case repo.IsNotFound(err):
			return ErrNotFound
		}
		return fmt.Errorf("restore appointment: %w", err)
	}
	appt.Status = status
	appt.UpdatedAt = now
	return nil
}

func (s *appointmentService) setStatus(ctx context.Context, appt *repo.Appointment, status string, now time.Time) error {
	if err := s.db.UpdateAppointmentStatus(ctx, appt.ID, status, now); err != nil {
		if repo.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("update status: %w", err)
	}
	appt.Status = status
	appt.UpdatedAt = now
	return nil
}

// rebook walks the doctor's free slots in storage order and moves appt onto
// the first one it manages to claim. A slot claimed by someone else between
// the read and the claim is skipped.
func (s *appointmentService) rebook(ctx context.Context, doctor *repo.Doctor, appt *repo.Appointment, now time.Time) (bool, error) {
	for _, slot := range doctor.FreeSlots() {
		next := *appt
		next.Status = repo.StatusMissed
		err := s.db.RescheduleAppointment(ctx, &next, slot, now)
		if errors.Is(err, repo.ErrSlotTaken) {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, repo.ErrStatusChanged):
				return false, ErrConflict
			case repo.IsNotFound(err):
				return false, ErrNotFound
			}
			return false, fmt.Errorf("reschedule: %w", err)
		}

		slotID := slot.ID
		appt.Status = repo.StatusMissed
		appt.SlotID = &slotID
		appt.Date = slot.Date
		appt.Time = slot.Time
		appt.UpdatedAt = now
		return true, nil
	}
	return false, nil
}

func (s *appointmentService) notifyReschedule(ctx context.Context, doctor *repo.Doctor, appt *repo.Appointment) {
	patient, err := s.db.GetPatient(ctx, appt.PatientID)
	if err != nil {
		reqctx.Logger(ctx).Warn("reschedule notice skipped", "appointment_id", appt.ID, "error", err)
		return
	}
	s.notify.SendReschedule(ctx, doctor, patient, appt)
}

func (s *appointmentService) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*repo.Appointment, error) {
	appts, err := s.db.ListDoctorAppointments(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}
