package datastore

import (
	"context"
	"fmt"

	"github.com/rebeliceyang/lazyprod/internal/config"
)

// Open creates the Source selected by cfg.Driver
func Open(ctx context.Context, cfg config.DatastoreConfig) (Source, error) {
	switch cfg.Driver {
	case "file", "yaml", "json", "":
		return NewFileSource(cfg.Path), nil
	case "sqlite", "sqlite3":
		return NewSQLiteSource(cfg.Path)
	case "postgres", "postgresql":
		return NewPostgresSource(ctx, cfg.Postgres)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}
}

// WatchPath returns the file backing src, or "" when src is not file based
func WatchPath(src Source) string {
	switch s := src.(type) {
	case *FileSource:
		return s.Path()
	case *SQLiteSource:
		return s.Path()
	default:
		return ""
	}
}
