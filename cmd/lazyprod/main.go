package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"github.com/rebeliceyang/lazyprod/internal/app"
	"github.com/rebeliceyang/lazyprod/internal/config"
	"github.com/rebeliceyang/lazyprod/internal/datastore"
	"github.com/rebeliceyang/lazyprod/internal/logger"
	"github.com/spf13/pflag"
)

const usage = `Usage:
  lazyprod [flags]                            browse and filter products
  lazyprod import <catalog.yaml> [db.sqlite]  copy a catalog file into SQLite or the configured database
  lazyprod migrate                            create the catalog tables in the configured PostgreSQL database
  lazyprod set-password                       store the PostgreSQL password in the OS keyring

Flags:
`

func main() {
	flags := config.Flags()
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		log.Warn("could not load config, using defaults", "err", err)
		cfg = config.GetDefaults()
	}

	l, closer, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatal("could not open log file", "path", cfg.Log.File, "err", err)
	}
	defer func() { _ = closer.Close() }()

	ctx := context.Background()

	switch flags.Arg(0) {
	case "":
		err = run(ctx, cfg, l)
	case "import":
		err = runImport(ctx, cfg, flags.Args()[1:], l)
	case "migrate":
		err = runMigrate(ctx, cfg, l)
	case "set-password":
		err = runSetPassword(cfg)
	default:
		flags.Usage()
		err = fmt.Errorf("unknown command %q", flags.Arg(0))
	}

	if err != nil {
		l.Error("lazyprod failed", "err", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		_ = closer.Close()
		os.Exit(1)
	}
}

// run starts the TUI over the configured datastore
func run(ctx context.Context, cfg *config.Config, l *log.Logger) error {
	src, err := datastore.Open(ctx, cfg.Datastore)
	if err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() { _ = src.Close() }()

	a := app.New(cfg, src, l)

	if path := datastore.WatchPath(src); cfg.Datastore.Watch && path != "" {
		w, err := datastore.NewWatcher(path, l)
		if err != nil {
			l.Warn("datastore watch disabled", "path", path, "err", err)
		} else {
			defer func() { _ = w.Close() }()
			a.WatchChanges(w.Changes())
		}
	}

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.MouseEnabled {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	l.Info("starting", "driver", cfg.Datastore.Driver, "path", cfg.Datastore.Path)
	p := tea.NewProgram(a, opts...)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

// importer is a datastore that can be overwritten with a snapshot
type importer interface {
	Import(ctx context.Context, snap *datastore.Snapshot) error
	Close() error
}

// runImport loads a catalog file and writes it into a SQLite file given on
// the command line, or into the configured sqlite/postgres datastore
func runImport(ctx context.Context, cfg *config.Config, args []string, l *log.Logger) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("import needs <catalog.yaml> [db.sqlite]")
	}

	file := datastore.NewFileSource(args[0])
	defer func() { _ = file.Close() }()

	snap, err := datastore.Load(ctx, file)
	if err != nil {
		return err
	}

	target, label, err := openImportTarget(ctx, cfg, args[1:])
	if err != nil {
		return err
	}
	defer func() { _ = target.Close() }()

	if err := target.Import(ctx, snap); err != nil {
		return err
	}

	l.Info("imported catalog", "from", args[0], "to", label,
		"products", len(snap.Products), "properties", len(snap.Properties))
	fmt.Printf("Imported %d products and %d properties into %s\n",
		len(snap.Products), len(snap.Properties), label)
	return nil
}

func openImportTarget(ctx context.Context, cfg *config.Config, args []string) (importer, string, error) {
	if len(args) == 1 {
		db, err := datastore.NewSQLiteSource(args[0])
		return db, args[0], err
	}

	ds := cfg.Datastore
	switch ds.Driver {
	case "sqlite", "sqlite3":
		db, err := datastore.NewSQLiteSource(ds.Path)
		return db, ds.Path, err
	case "postgres", "postgresql":
		if err := datastore.MigratePostgres(ctx, ds.Postgres); err != nil {
			return nil, "", err
		}
		db, err := datastore.NewPostgresSource(ctx, ds.Postgres)
		return db, ds.Postgres.Database, err
	default:
		return nil, "", fmt.Errorf("import needs a sqlite file or a sqlite/postgres datastore, got driver %q", ds.Driver)
	}
}

// runMigrate applies the catalog migrations to the configured PostgreSQL database
func runMigrate(ctx context.Context, cfg *config.Config, l *log.Logger) error {
	pg := cfg.Datastore.Postgres
	if err := datastore.MigratePostgres(ctx, pg); err != nil {
		return err
	}
	l.Info("migrated database", "host", pg.Host, "database", pg.Database)
	fmt.Printf("Catalog tables ready in %s\n", pg.Database)
	return nil
}

// runSetPassword prompts for a password and stores it in the keyring
func runSetPassword(cfg *config.Config) error {
	user := cfg.Datastore.Postgres.User
	if user == "" {
		return fmt.Errorf("datastore.postgres.user is not configured")
	}

	var password string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(fmt.Sprintf("Password for %s", user)).
			Description("Stored in the OS keyring, used when use_keyring is set").
			EchoMode(huh.EchoModePassword).
			Value(&password).
			Validate(func(s string) error {
				if s == "" {
					return errors.New("password cannot be empty")
				}
				return nil
			}),
	))
	if err := form.Run(); err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	if err := datastore.SavePassword(user, password); err != nil {
		return err
	}
	fmt.Println("Password saved to keyring")
	return nil
}
