package repo

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusMissed    = "missed"
)

// Subscription plans.
const (
	PlanBasic   = "basic"
	PlanPremium = "premium"
)

// ValidStatus reports whether s is one of the appointment statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusMissed:
		return true
	}
	return false
}

// ClinicDetails is the doctor's public practice information.
type ClinicDetails struct {
	Name         string `json:"name"`
	Location     string `json:"location"`
	WorkingHours string `json:"working_hours"`
	Fees         int64  `json:"fees"`
}

// Doctor owns its slots; Slots is ordered by storage position.
type Doctor struct {
	ID               uuid.UUID     `json:"id"`
	Name             string        `json:"name"`
	Email            string        `json:"email"`
	PasswordHash     string        `json:"-"`
	IsApproved       bool          `json:"is_approved"`
	SubscriptionPlan string        `json:"subscription_plan"`
	BookingLink      string        `json:"booking_link"`
	Clinic           ClinicDetails `json:"clinic_details"`
	Slots            []*Slot       `json:"appointment_slots,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}

// FindSlot returns the slot whose date is the same instant as date and
// whose time label matches exactly.
func (d *Doctor) FindSlot(date time.Time, label string) *Slot {
	for _, s := range d.Slots {
		if s.Matches(date, label) {
			return s
		}
	}
	return nil
}

// FreeSlots returns the unbooked slots in storage order.
func (d *Doctor) FreeSlots() []*Slot {
	var out []*Slot
	for _, s := range d.Slots {
		if !s.IsBooked {
			out = append(out, s)
		}
	}
	return out
}

// Slot is a (date, time) capacity unit that may hold at most one active appointment.
type Slot struct {
	ID        uuid.UUID  `json:"id"`
	DoctorID  uuid.UUID  `json:"doctor_id"`
	Position  int        `json:"position"`
	Date      time.Time  `json:"date"`
	Time      string     `json:"time"`
	IsBooked  bool       `json:"is_booked"`
	PatientID *uuid.UUID `json:"patient_id,omitempty"`
}

func (s *Slot) Matches(date time.Time, label string) bool {
	return s.Date.Equal(date) && s.Time == label
}

type Patient struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Appointment struct {
	ID          uuid.UUID  `json:"id"`
	DoctorID    uuid.UUID  `json:"doctor_id"`
	PatientID   uuid.UUID  `json:"patient_id"`
	SlotID      *uuid.UUID `json:"slot_id,omitempty"`
	Date        time.Time  `json:"date"`
	Time        string     `json:"time"`
	TokenNumber int        `json:"token_number"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Patient is populated by listing queries only.
	Patient *Patient `json:"patient,omitempty"`
}

// OneTimeCode stores the hash of an emailed booking code, never the code itself.
type OneTimeCode struct {
	ID        uuid.UUID
	Email     string
	CodeHash  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the code is past its expiry at now.
// A code is still valid at the exact expiry instant.
func (c *OneTimeCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
