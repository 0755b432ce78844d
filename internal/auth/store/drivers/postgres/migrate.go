package postgres

import (
	"errors"
	"fmt"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store/drivers/postgres/migrations"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ApplyMigrations brings the schema up to date using the embedded migrations.
func (s *Store) ApplyMigrations() error {
	driver, err := pgxmigrate.WithInstance(s.db, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("postgres migrate driver: %w", err)
	}

	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return fmt.Errorf("postgres migrate source: %w", err)
	}

	instance, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		return err
	}

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
