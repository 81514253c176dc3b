package db

import (
	"database/sql"
	"embed"
	"errors"

	"github.com/ed-robles/shop-template/internal/pkg/config"
	"github.com/ed-robles/shop-template/internal/pkg/errs"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies any pending schema migrations. Running it on every
// boot keeps dev and CI databases current without a separate step.
func Migrate(cfg config.DBConfig) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return errs.Wrap(err, "failed to load embedded migrations")
	}

	sqlDB, err := sql.Open("pgx", cfg.BuildDSN())
	if err != nil {
		return errs.Wrap(err, "failed to open migration connection")
	}
	defer sqlDB.Close()

	driver, err := pgxmigrate.WithInstance(sqlDB, &pgxmigrate.Config{})
	if err != nil {
		return errs.Wrap(err, "failed to init migration driver")
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx", driver)
	if err != nil {
		return errs.Wrap(err, "failed to init migrator")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errs.Wrap(err, "failed to apply migrations")
	}
	return nil
}
