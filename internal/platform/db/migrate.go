package db

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrate applies pending schema migrations from sourceURL (for example
// "file://migrations") against the database at dsn. The uniqueness
// constraints the ledger relies on live in these migrations, so the server
// refuses to start if they cannot be applied.
func Migrate(sourceURL, dsn string) error {
	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		return fmt.Errorf("platform/db: open migrations: %w", err)
	}
	defer func() {
		_, _ = m.Close()
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("platform/db: apply migrations: %w", err)
	}
	return nil
}
