package repo

import (
	"context"
	stdsql "database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var patientColumns = []string{"id", "name", "email", "phone", "created_at"}

func scanPatient(rows *sql.Rows) (*Patient, error) {
	p := &Patient{}
	var phone stdsql.NullString
	if err := rows.Scan(&p.ID, &p.Name, &p.Email, &phone, &p.CreatedAt); err != nil {
		return nil, err
	}
	if phone.Valid {
		p.Phone = &phone.String
	}
	return p, nil
}

// FindOrCreatePatient returns the patient registered under p.Email, inserting p
// when there is none. Concurrent first bookings for the same email converge on
// one row through the unique email index.
func (c *Client) FindOrCreatePatient(ctx context.Context, p *Patient) (*Patient, error) {
	if _, err := exec(ctx, c.drv, insertPatientIfAbsent(p)); err != nil {
		return nil, fmt.Errorf("insert patient: %w", err)
	}

	existing, err := c.patientBy(ctx, c.drv, sql.EQ("email", p.Email))
	if err != nil {
		return nil, err
	}

	// Fill in a phone number learned from a later booking.
	if existing.Phone == nil && p.Phone != nil {
		upd := pg.Update(PatientsTable.Name).
			Set("phone", *p.Phone).
			Where(sql.And(sql.EQ("id", existing.ID), sql.IsNull("phone")))
		if _, err := exec(ctx, c.drv, upd); err != nil {
			return nil, fmt.Errorf("update patient phone: %w", err)
		}
		existing.Phone = p.Phone
	}
	return existing, nil
}

func insertPatientIfAbsent(p *Patient) *sql.InsertBuilder {
	return pg.Insert(PatientsTable.Name).
		Columns(patientColumns...).
		Values(p.ID, p.Name, p.Email, p.Phone, p.CreatedAt).
		OnConflict(sql.ConflictColumns("email"), sql.DoNothing())
}

func (c *Client) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return c.patientBy(ctx, c.drv, sql.EQ("id", id))
}

func (c *Client) patientBy(ctx context.Context, eq dialect.ExecQuerier, pred *sql.Predicate) (*Patient, error) {
	sel := pg.Select(patientColumns...).
		From(pg.Table(PatientsTable.Name)).
		Where(pred).
		Limit(1)

	var p *Patient
	err := query(ctx, eq, sel, func(rows *sql.Rows) error {
		var err error
		p, err = scanPatient(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("select patient: %w", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}
