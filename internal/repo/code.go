package repo

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

func (c *Client) CreateOneTimeCode(ctx context.Context, code *OneTimeCode) error {
	ins := pg.Insert(OneTimeCodesTable.Name).
		Columns("id", "email", "code_hash", "expires_at", "created_at").
		Values(code.ID, code.Email, code.CodeHash, code.ExpiresAt, code.CreatedAt)
	if _, err := exec(ctx, c.drv, ins); err != nil {
		return fmt.Errorf("insert one-time code: %w", err)
	}
	return nil
}

// FindOneTimeCode returns the matching code for email that is still valid at now.
// Expired and unknown codes are both reported as ErrNotFound.
func (c *Client) FindOneTimeCode(ctx context.Context, email, codeHash string, now time.Time) (*OneTimeCode, error) {
	sel := pg.Select("id", "email", "code_hash", "expires_at", "created_at").
		From(pg.Table(OneTimeCodesTable.Name)).
		Where(sql.And(
			sql.EQ("email", email),
			sql.EQ("code_hash", codeHash),
			sql.GTE("expires_at", now),
		)).
		OrderBy(sql.Desc("expires_at")).
		Limit(1)

	var out *OneTimeCode
	err := query(ctx, c.drv, sel, func(rows *sql.Rows) error {
		code := &OneTimeCode{}
		if err := rows.Scan(&code.ID, &code.Email, &code.CodeHash, &code.ExpiresAt, &code.CreatedAt); err != nil {
			return err
		}
		out = code
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("select one-time code: %w", err)
	}
	if out == nil {
		return nil, ErrNotFound
	}
	return out, nil
}

// DeleteOneTimeCode removes a consumed code. It reports whether a row was removed.
func (c *Client) DeleteOneTimeCode(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := exec(ctx, c.drv, pg.Delete(OneTimeCodesTable.Name).Where(sql.EQ("id", id)))
	if err != nil {
		return false, fmt.Errorf("delete one-time code: %w", err)
	}
	return n > 0, nil
}

// PurgeExpiredCodes deletes every code whose expiry is before now.
func (c *Client) PurgeExpiredCodes(ctx context.Context, now time.Time) (int64, error) {
	n, err := exec(ctx, c.drv, pg.Delete(OneTimeCodesTable.Name).Where(sql.LT("expires_at", now)))
	if err != nil {
		return 0, fmt.Errorf("purge one-time codes: %w", err)
	}
	return n, nil
}
