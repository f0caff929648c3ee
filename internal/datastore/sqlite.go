package datastore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/georgysavva/scany/v2/sqlscan"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rebeliceyang/lazyprod/internal/models"
)

// SQLiteSource reads the catalog from a SQLite database
type SQLiteSource struct {
	path string
	db   *sql.DB
}

// NewSQLiteSource opens (and if needed creates) the database at path
func NewSQLiteSource(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := migrate(context.Background(), db, "sqlite3"); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteSource{path: path, db: db}, nil
}

// Path returns the database file path
func (s *SQLiteSource) Path() string {
	return s.path
}

// Properties implements Source
func (s *SQLiteSource) Properties(ctx context.Context) ([]models.Property, error) {
	query, args, err := selectProperties(sqliteSQL)
	if err != nil {
		return nil, err
	}

	var rows []propertyRow
	if err := sqlscan.Select(ctx, s.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	return assembleProperties(rows), nil
}

// Operators implements Source
func (s *SQLiteSource) Operators(ctx context.Context) ([]models.Operator, error) {
	query, args, err := selectOperators(sqliteSQL)
	if err != nil {
		return nil, err
	}

	var rows []operatorRow
	if err := sqlscan.Select(ctx, s.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query operators: %w", err)
	}
	return assembleOperators(rows), nil
}

// Products implements Source
func (s *SQLiteSource) Products(ctx context.Context) ([]models.Product, error) {
	query, args, err := selectProductIDs(sqliteSQL)
	if err != nil {
		return nil, err
	}
	var ids []int
	if err := sqlscan.Select(ctx, s.db, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	query, args, err = selectPropertyValues(sqliteSQL)
	if err != nil {
		return nil, err
	}
	var values []valueRow
	if err := sqlscan.Select(ctx, s.db, &values, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query property values: %w", err)
	}

	return assembleProducts(ids, values), nil
}

// Import replaces the database contents with snap in a single transaction
func (s *SQLiteSource) Import(ctx context.Context, snap *Snapshot) (err error) {
	stmts, err := importStatements(sqliteSQL, snap)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, st := range stmts {
		if _, err = tx.ExecContext(ctx, st.sql, st.args...); err != nil {
			return fmt.Errorf("failed to write %s: %w", st.what, err)
		}
	}

	return tx.Commit()
}

// Close closes the database connection
func (s *SQLiteSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
