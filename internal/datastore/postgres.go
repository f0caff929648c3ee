package datastore

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rebeliceyang/lazyprod/internal/config"
	"github.com/rebeliceyang/lazyprod/internal/models"
	"github.com/sethvargo/go-retry"
	"github.com/zalando/go-keyring"
)

// keyringService is the OS keyring service holding datastore passwords
const keyringService = "lazyprod"

// connectRetries bounds how often a failed ping is retried
const connectRetries = 3

// pgQuerier is the subset of pgxpool.Pool the source needs
type pgQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresSource reads the catalog from PostgreSQL
type PostgresSource struct {
	pool pgQuerier
}

// NewPostgresSource connects to the database described by cfg
func NewPostgresSource(ctx context.Context, cfg config.PostgresConfig) (*PostgresSource, error) {
	password, err := resolvePassword(cfg)
	if err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(buildConnectionString(cfg, password))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	// A session reads the catalog once; keep the pool small
	poolConfig.MaxConns = 2
	poolConfig.MinConns = 0
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	backoff := retry.WithMaxRetries(connectRetries, retry.NewExponential(200*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresSource{pool: pool}, nil
}

func newPostgresSourceWithPool(pool pgQuerier) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// resolvePassword returns the configured password, or the keyring entry for
// the user when use_keyring is set and no password is configured
func resolvePassword(cfg config.PostgresConfig) (string, error) {
	if cfg.Password != "" || !cfg.UseKeyring {
		return cfg.Password, nil
	}

	password, err := keyring.Get(keyringService, cfg.User)
	if err != nil {
		return "", fmt.Errorf("failed to read password for %s from keyring: %w", cfg.User, err)
	}
	return password, nil
}

// SavePassword stores a datastore password in the OS keyring
func SavePassword(user, password string) error {
	return keyring.Set(keyringService, user, password)
}

func buildConnectionString(cfg config.PostgresConfig, password string) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Database,
	}
	if cfg.User != "" {
		if password != "" {
			u.User = url.UserPassword(cfg.User, password)
		} else {
			u.User = url.User(cfg.User)
		}
	}
	if cfg.SSLMode != "" {
		q := url.Values{}
		q.Set("sslmode", cfg.SSLMode)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// Properties implements Source
func (p *PostgresSource) Properties(ctx context.Context) ([]models.Property, error) {
	query, args, err := selectProperties(postgresSQL)
	if err != nil {
		return nil, err
	}

	var rows []propertyRow
	if err := pgxscan.Select(ctx, p.pool, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	return assembleProperties(rows), nil
}

// Operators implements Source
func (p *PostgresSource) Operators(ctx context.Context) ([]models.Operator, error) {
	query, args, err := selectOperators(postgresSQL)
	if err != nil {
		return nil, err
	}

	var rows []operatorRow
	if err := pgxscan.Select(ctx, p.pool, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query operators: %w", err)
	}
	return assembleOperators(rows), nil
}

// Products implements Source
func (p *PostgresSource) Products(ctx context.Context) ([]models.Product, error) {
	query, args, err := selectProductIDs(postgresSQL)
	if err != nil {
		return nil, err
	}
	idRows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	ids, err := pgx.CollectRows(idRows, pgx.RowTo[int])
	if err != nil {
		return nil, err
	}

	query, args, err = selectPropertyValues(postgresSQL)
	if err != nil {
		return nil, err
	}
	var values []valueRow
	if err := pgxscan.Select(ctx, p.pool, &values, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query property values: %w", err)
	}

	return assembleProducts(ids, values), nil
}

// Import replaces the catalog tables with snap in a single transaction.
// The tables must exist; see MigratePostgres.
func (p *PostgresSource) Import(ctx context.Context, snap *Snapshot) (err error) {
	stmts, err := importStatements(postgresSQL, snap)
	if err != nil {
		return err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for _, st := range stmts {
		if _, err = tx.Exec(ctx, st.sql, st.args...); err != nil {
			return fmt.Errorf("failed to write %s: %w", st.what, err)
		}
	}

	return tx.Commit(ctx)
}

// Close closes the connection pool
func (p *PostgresSource) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
