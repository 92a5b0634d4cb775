package postgres

import (
	"context"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/skybi/sunshine/internal/storage"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Driver represents the PostgreSQL storage driver implementation
type Driver struct {
	dsn    string
	db     *pgxpool.Pool
	engine *Engine
}

var _ storage.Driver = (*Driver)(nil)

// New creates a new empty PostgreSQL storage driver.
// Use Initialize to open the database connection and initialize the engine.
func New(dsn string) *Driver {
	return &Driver{
		dsn: dsn,
	}
}

// Initialize migrates the database, opens the database connection and initializes the engine
func (driver *Driver) Initialize(ctx context.Context) error {
	// Perform SQL migrations
	if err := driver.migrate(func(migrator *migrate.Migrate) error {
		return migrator.Up()
	}); err != nil {
		return err
	}

	// Initialize the database connection pool
	pool, err := pgxpool.Connect(ctx, driver.dsn)
	if err != nil {
		return err
	}
	driver.db = pool
	driver.engine = &Engine{pool: pool}

	return nil
}

// Engine provides the PostgreSQL engine implementation
func (driver *Driver) Engine() storage.Engine {
	return driver.engine
}

// Recreate migrates the database all the way down and up again.
// As every migration drops its tables first, this leaves both tables empty.
func (driver *Driver) Recreate(_ context.Context) error {
	log.Warn().Msg("recreating the database schema, all stored rows are discarded")
	return driver.migrate(func(migrator *migrate.Migrate) error {
		if err := migrator.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return migrator.Up()
	})
}

// Close discards the engine and closes the database connection
func (driver *Driver) Close() {
	driver.engine = nil
	if driver.db != nil {
		driver.db.Close()
		driver.db = nil
	}
}

func (driver *Driver) migrate(action func(migrator *migrate.Migrate) error) error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	migrator, err := migrate.NewWithSourceInstance("iofs", source, driver.dsn)
	if err != nil {
		return err
	}
	defer migrator.Close()

	version, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}
	if dirty {
		// Re-running a half applied migration is safe as every migration starts by dropping its tables.
		// Migration versions are contiguous, -1 resets to the empty schema.
		previous := int(version) - 1
		if previous < 1 {
			previous = -1
		}
		log.Warn().Uint("version", version).Int("forced", previous).Msg("database schema is dirty, re-running the failed migration")
		if err := migrator.Force(previous); err != nil {
			return err
		}
	}

	if err := action(migrator); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
