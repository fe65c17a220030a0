package app

import (
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

const migrationsDir = "migrations"

func openMigrationDB(connStr string, migrationFS embed.FS) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	goose.SetBaseFS(migrationFS)
	if err := goose.SetDialect("postgres"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func ApplyMigrations(connStr string, migrationFS embed.FS) error {
	db, err := openMigrationDB(connStr, migrationFS)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// RollbackMigration reverts the most recent migration.
func RollbackMigration(connStr string, migrationFS embed.FS) error {
	db, err := openMigrationDB(connStr, migrationFS)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.Down(db, migrationsDir); err != nil {
		return fmt.Errorf("goose down: %w", err)
	}
	return nil
}

func MigrationVersion(connStr string, migrationFS embed.FS) (int64, error) {
	db, err := openMigrationDB(connStr, migrationFS)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	return goose.GetDBVersion(db)
}
