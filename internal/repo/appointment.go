package repo

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var appointmentColumns = []string{
	"id", "doctor_id", "patient_id", "slot_id", "appointment_date", "appointment_time",
	"token_number", "status", "created_at", "updated_at",
}

func appointmentDest(a *Appointment, slotID *uuid.NullUUID) []any {
	return []any{
		&a.ID, &a.DoctorID, &a.PatientID, slotID, &a.Date, &a.Time,
		&a.TokenNumber, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	}
}

func finishAppointment(a *Appointment, slotID uuid.NullUUID) {
	if slotID.Valid {
		id := slotID.UUID
		a.SlotID = &id
	}
	a.Date = a.Date.UTC()
}

// claimSlotUpdate marks slotID booked for patientID only if it is currently free.
func claimSlotUpdate(slotID, patientID uuid.UUID) *sql.UpdateBuilder {
	return pg.Update(DoctorSlotsTable.Name).
		Set("is_booked", true).
		Set("patient_id", patientID).
		Where(sql.And(sql.EQ("id", slotID), sql.EQ("is_booked", false)))
}

func claimSlot(ctx context.Context, eq dialect.ExecQuerier, slotID, patientID uuid.UUID) error {
	n, err := exec(ctx, eq, claimSlotUpdate(slotID, patientID))
	if err != nil {
		return fmt.Errorf("claim slot: %w", err)
	}
	if n == 0 {
		return ErrSlotTaken
	}
	return nil
}

// guardMiss tells a missing appointment apart from one whose guarded update
// matched no row because its status moved on.
func guardMiss(ctx context.Context, eq dialect.ExecQuerier, id uuid.UUID) error {
	if _, err := appointmentBy(ctx, eq, id); err != nil {
		return err
	}
	return ErrStatusChanged
}

// ConfirmAppointment claims slotID for the appointment's patient and inserts the
// appointment in one transaction. ErrSlotTaken means another booking won the slot
// and nothing was written.
func (c *Client) ConfirmAppointment(ctx context.Context, slotID uuid.UUID, a *Appointment) error {
	return c.withTx(ctx, func(tx dialect.Tx) error {
		if err := claimSlot(ctx, tx, slotID, a.PatientID); err != nil {
			return err
		}
		a.SlotID = &slotID
		ins := pg.Insert(AppointmentsTable.Name).
			Columns(appointmentColumns...).
			Values(
				a.ID, a.DoctorID, a.PatientID, slotID, a.Date, a.Time,
				a.TokenNumber, a.Status, a.CreatedAt, a.UpdatedAt,
			)
		if _, err := exec(ctx, tx, ins); err != nil {
			return fmt.Errorf("insert appointment: %w", err)
		}
		return nil
	})
}

func (c *Client) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return appointmentBy(ctx, c.drv, id)
}

func appointmentBy(ctx context.Context, eq dialect.ExecQuerier, id uuid.UUID) (*Appointment, error) {
	sel := pg.Select(appointmentColumns...).
		From(pg.Table(AppointmentsTable.Name)).
		Where(sql.EQ("id", id)).
		Limit(1)

	var a *Appointment
	err := query(ctx, eq, sel, func(rows *sql.Rows) error {
		out := &Appointment{}
		var slotID uuid.NullUUID
		if err := rows.Scan(appointmentDest(out, &slotID)...); err != nil {
			return err
		}
		finishAppointment(out, slotID)
		a = out
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("select appointment: %w", err)
	}
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}

func (c *Client) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status string, now time.Time) error {
	upd := pg.Update(AppointmentsTable.Name).
		Set("status", status).
		Set("updated_at", now).
		Where(sql.EQ("id", id))
	n, err := exec(ctx, c.drv, upd)
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// moveAppointmentUpdate points the appointment at slot unless it is already
// missed, so a second concurrent "missed" transition matches no row.
func moveAppointmentUpdate(a *Appointment, slot *Slot, now time.Time) *sql.UpdateBuilder {
	return pg.Update(AppointmentsTable.Name).
		Set("slot_id", slot.ID).
		Set("appointment_date", slot.Date).
		Set("appointment_time", slot.Time).
		Set("status", a.Status).
		Set("updated_at", now).
		Where(sql.And(sql.EQ("id", a.ID), sql.NEQ("status", StatusMissed)))
}

// RescheduleAppointment claims slot for the appointment's patient and moves the
// appointment onto it. The slot previously referenced by the appointment is left
// untouched. ErrStatusChanged means the appointment was already missed and
// nothing was written.
func (c *Client) RescheduleAppointment(ctx context.Context, a *Appointment, slot *Slot, now time.Time) error {
	return c.withTx(ctx, func(tx dialect.Tx) error {
		if err := claimSlot(ctx, tx, slot.ID, a.PatientID); err != nil {
			return err
		}
		n, err := exec(ctx, tx, moveAppointmentUpdate(a, slot, now))
		if err != nil {
			return fmt.Errorf("move appointment: %w", err)
		}
		if n == 0 {
			return guardMiss(ctx, tx, a.ID)
		}
		return nil
	})
}

func restoreAppointmentUpdate(id uuid.UUID, status string, now time.Time) *sql.UpdateBuilder {
	return pg.Update(AppointmentsTable.Name).
		Set("status", status).
		Set("updated_at", now).
		Where(sql.And(sql.EQ("id", id), sql.EQ("status", StatusCancelled)))
}

// RestoreAppointment moves a cancelled appointment to status and claims its
// slot back in the same transaction. ErrSlotTaken means the slot was booked by
// someone else after the cancellation; ErrStatusChanged means the appointment
// is no longer cancelled. Either way nothing was written.
func (c *Client) RestoreAppointment(ctx context.Context, a *Appointment, status string, now time.Time) error {
	return c.withTx(ctx, func(tx dialect.Tx) error {
		if a.SlotID != nil {
			if err := claimSlot(ctx, tx, *a.SlotID, a.PatientID); err != nil {
				return err
			}
		}
		n, err := exec(ctx, tx, restoreAppointmentUpdate(a.ID, status, now))
		if err != nil {
			return fmt.Errorf("restore appointment: %w", err)
		}
		if n == 0 {
			return guardMiss(ctx, tx, a.ID)
		}
		return nil
	})
}

// ReleaseSlot frees slotID if patientID still holds it. It reports whether the slot was released.
func (c *Client) ReleaseSlot(ctx context.Context, slotID, patientID uuid.UUID) (bool, error) {
	upd := pg.Update(DoctorSlotsTable.Name).
		Set("is_booked", false).
		SetNull("patient_id").
		Where(sql.And(
			sql.EQ("id", slotID),
			sql.EQ("is_booked", true),
			sql.EQ("patient_id", patientID),
		))
	n, err := exec(ctx, c.drv, upd)
	if err != nil {
		return false, fmt.Errorf("release slot: %w", err)
	}
	return n > 0, nil
}

// ListDoctorAppointments returns the doctor's appointments ordered by date and
// time, each with its patient populated.
func (c *Client) ListDoctorAppointments(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error) {
	a := pg.Table(AppointmentsTable.Name).As("a")
	p := pg.Table(PatientsTable.Name).As("p")

	cols := make([]string, 0, len(appointmentColumns)+len(patientColumns))
	for _, col := range appointmentColumns {
		cols = append(cols, a.C(col))
	}
	for _, col := range patientColumns {
		cols = append(cols, p.C(col))
	}

	sel := pg.Select(cols...).
		From(a).
		Join(p).On(a.C("patient_id"), p.C("id")).
		Where(sql.EQ(a.C("doctor_id"), doctorID)).
		OrderBy(sql.Asc(a.C("appointment_date")), sql.Asc(a.C("appointment_time")))

	var out []*Appointment
	err := query(ctx, c.drv, sel, func(rows *sql.Rows) error {
		appt := &Appointment{Patient: &Patient{}}
		var slotID uuid.NullUUID
		var phone *string
		dest := appointmentDest(appt, &slotID)
		dest = append(dest, &appt.Patient.ID, &appt.Patient.Name, &appt.Patient.Email, &phone, &appt.Patient.CreatedAt)
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		finishAppointment(appt, slotID)
		appt.Patient.Phone = phone
		out = append(out, appt)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("select doctor appointments: %w", err)
	}
	return out, nil
}
