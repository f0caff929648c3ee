package datastore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	// Register the pgx database/sql driver used for PostgreSQL migrations
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rebeliceyang/lazyprod/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// goose keeps its base FS and dialect in package state
var gooseMu sync.Mutex

// migrate applies the embedded catalog migrations to db
func migrate(ctx context.Context, db *sql.DB, dialect string) error {
	gooseMu.Lock()
	defer func() {
		goose.SetBaseFS(nil)
		gooseMu.Unlock()
	}()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// MigratePostgres creates or upgrades the catalog tables in PostgreSQL
func MigratePostgres(ctx context.Context, cfg config.PostgresConfig) error {
	password, err := resolvePassword(cfg)
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", buildConnectionString(cfg, password))
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer func() { _ = db.Close() }()

	return migrate(ctx, db, "postgres")
}
