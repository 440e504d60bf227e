package repo

import (
	"context"
	stdsql "database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
)

// pg builds Postgres-flavoured statements ($n placeholders, double-quoted identifiers).
var pg = sql.Dialect(dialect.Postgres)

// Client is the record store backed by Postgres.
type Client struct {
	drv *sql.Driver
}

func NewClient(drv *sql.Driver) *Client {
	return &Client{drv: drv}
}

func (c *Client) Close() error {
	return c.drv.Close()
}

// Ping checks that the underlying connection pool is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.drv.DB().PingContext(ctx)
}

// Migrate creates missing tables, columns and indexes. It never drops anything.
func (c *Client) Migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(c.drv)
	if err != nil {
		return fmt.Errorf("repo: create migrator: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("repo: migrate: %w", err)
	}
	return nil
}

func (c *Client) withTx(ctx context.Context, fn func(tx dialect.Tx) error) error {
	tx, err := c.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w: rolling back transaction: %v", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func exec(ctx context.Context, eq dialect.ExecQuerier, b sql.Querier) (int64, error) {
	query, args := b.Query()
	var res stdsql.Result
	if err := eq.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func query(ctx context.Context, eq dialect.ExecQuerier, b sql.Querier, scan func(*sql.Rows) error) error {
	q, args := b.Query()
	rows := &sql.Rows{}
	if err := eq.Query(ctx, q, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
