package database

import (
	"context"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/Alijeyrad/medibook_backend/config"
	"github.com/Alijeyrad/medibook_backend/internal/repo"
)

// NewRepoClient opens the main database and wraps it in the record store client.
func NewRepoClient(cfg config.DatabaseConfig) (*repo.Client, error) {
	return NewRepoClientFromConfig(FromCentralConfig(cfg))
}

// NewRepoClientFromConfig creates the record store client from package Config
func NewRepoClientFromConfig(cfg Config) (*repo.Client, error) {
	db, err := openSQLDB(cfg)
	if err != nil {
		return nil, err
	}

	drv := entsql.OpenDB(dialect.Postgres, db)
	return repo.NewClient(drv), nil
}

// Migrate creates or updates every table owned by the record store.
func Migrate(ctx context.Context, client *repo.Client) error {
	return client.Migrate(ctx)
}
