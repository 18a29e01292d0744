package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// dsnOptions are appended to every connection string. Times are written in
// SQLite's own layout so that ORDER BY on DATETIME columns is chronological.
const dsnOptions = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"

func Open(dbPath string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=journal_mode(WAL)&%s", dbPath, dsnOptions)
	return open(dsn)
}

// OpenForTesting opens a private in-memory database with all migrations
// applied. Each call gets its own database.
func OpenForTesting() (*sql.DB, error) {
	dsn := fmt.Sprintf("file:test_%s?mode=memory&cache=shared&%s", uuid.NewString(), dsnOptions)
	d, err := open(dsn)
	if err != nil {
		return nil, err
	}
	// A single connection keeps the shared-cache database free of table locks.
	d.SetMaxOpenConns(1)
	return d, nil
}

func open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("failed to run migrations: %w (also failed to close db: %v)", err, cerr)
		}
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	defer func() { _ = src.Close() }()

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// m.Close is not called: it would close db along with the driver.
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
