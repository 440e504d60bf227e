package repo

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var doctorColumns = []string{
	"id", "name", "email", "password_hash", "is_approved", "subscription_plan", "booking_link",
	"clinic_name", "clinic_location", "clinic_working_hours", "clinic_fees", "created_at",
}

var slotColumns = []string{"id", "doctor_id", "position", "slot_date", "slot_time", "is_booked", "patient_id"}

func scanDoctor(rows *sql.Rows) (*Doctor, error) {
	d := &Doctor{}
	err := rows.Scan(
		&d.ID, &d.Name, &d.Email, &d.PasswordHash, &d.IsApproved, &d.SubscriptionPlan, &d.BookingLink,
		&d.Clinic.Name, &d.Clinic.Location, &d.Clinic.WorkingHours, &d.Clinic.Fees, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func scanSlot(rows *sql.Rows) (*Slot, error) {
	s := &Slot{}
	var patientID uuid.NullUUID
	if err := rows.Scan(&s.ID, &s.DoctorID, &s.Position, &s.Date, &s.Time, &s.IsBooked, &patientID); err != nil {
		return nil, err
	}
	if patientID.Valid {
		id := patientID.UUID
		s.PatientID = &id
	}
	s.Date = s.Date.UTC()
	return s, nil
}

func (c *Client) CreateDoctor(ctx context.Context, d *Doctor) error {
	ins := pg.Insert(DoctorsTable.Name).
		Columns(doctorColumns...).
		Values(
			d.ID, d.Name, d.Email, d.PasswordHash, d.IsApproved, d.SubscriptionPlan, d.BookingLink,
			d.Clinic.Name, d.Clinic.Location, d.Clinic.WorkingHours, d.Clinic.Fees, d.CreatedAt,
		)
	if _, err := exec(ctx, c.drv, ins); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert doctor: %w", err)
	}
	return nil
}

// GetDoctor loads a doctor together with its slots in storage order.
func (c *Client) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return getDoctor(ctx, c.drv, id)
}

func getDoctor(ctx context.Context, eq dialect.ExecQuerier, id uuid.UUID) (*Doctor, error) {
	sel := pg.Select(doctorColumns...).
		From(pg.Table(DoctorsTable.Name)).
		Where(sql.EQ("id", id)).
		Limit(1)

	var d *Doctor
	err := query(ctx, eq, sel, func(rows *sql.Rows) error {
		var err error
		d, err = scanDoctor(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("select doctor: %w", err)
	}
	if d == nil {
		return nil, ErrNotFound
	}

	slots, err := listSlots(ctx, eq, id, false)
	if err != nil {
		return nil, err
	}
	d.Slots = slots
	return d, nil
}

// ListSlots returns a doctor's slots in storage order, optionally only the unbooked ones.
func (c *Client) ListSlots(ctx context.Context, doctorID uuid.UUID, onlyAvailable bool) ([]*Slot, error) {
	return listSlots(ctx, c.drv, doctorID, onlyAvailable)
}

func listSlots(ctx context.Context, eq dialect.ExecQuerier, doctorID uuid.UUID, onlyAvailable bool) ([]*Slot, error) {
	pred := sql.EQ("doctor_id", doctorID)
	if onlyAvailable {
		pred = sql.And(pred, sql.EQ("is_booked", false))
	}
	sel := pg.Select(slotColumns...).
		From(pg.Table(DoctorSlotsTable.Name)).
		Where(pred).
		OrderBy(sql.Asc("position"))

	var slots []*Slot
	err := query(ctx, eq, sel, func(rows *sql.Rows) error {
		s, err := scanSlot(rows)
		if err != nil {
			return err
		}
		slots = append(slots, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("select slots: %w", err)
	}
	return slots, nil
}

// ReplaceClinicSetup overwrites the clinic details and the unbooked part of the
// slot list. Booked slots survive so that confirmed appointments keep their slot;
// a booked slot that reappears in slots only has its position updated.
func (c *Client) ReplaceClinicSetup(ctx context.Context, doctorID uuid.UUID, details ClinicDetails, slots []*Slot) error {
	return c.withTx(ctx, func(tx dialect.Tx) error {
		upd := pg.Update(DoctorsTable.Name).
			Set("clinic_name", details.Name).
			Set("clinic_location", details.Location).
			Set("clinic_working_hours", details.WorkingHours).
			Set("clinic_fees", details.Fees).
			Where(sql.EQ("id", doctorID))
		n, err := exec(ctx, tx, upd)
		if err != nil {
			return fmt.Errorf("update clinic details: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}

		del := pg.Delete(DoctorSlotsTable.Name).
			Where(sql.And(sql.EQ("doctor_id", doctorID), sql.EQ("is_booked", false)))
		if _, err := exec(ctx, tx, del); err != nil {
			return fmt.Errorf("clear free slots: %w", err)
		}

		if len(slots) == 0 {
			return nil
		}

		ins := pg.Insert(DoctorSlotsTable.Name).
			Columns("id", "doctor_id", "position", "slot_date", "slot_time", "is_booked")
		for _, s := range slots {
			ins = ins.Values(s.ID, doctorID, s.Position, s.Date, s.Time, false)
		}
		ins = ins.OnConflict(
			sql.ConflictColumns("doctor_id", "slot_date", "slot_time"),
			sql.ResolveWith(func(u *sql.UpdateSet) {
				u.SetExcluded("position")
			}),
		)
		if _, err := exec(ctx, tx, ins); err != nil {
			return fmt.Errorf("insert slots: %w", err)
		}
		return nil
	})
}
