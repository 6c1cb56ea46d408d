// Package wire provides dependency injection for the stripecopy
// application. Services are initialized once, after flags are known.
package wire

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/adapters/filesystem"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/adapters/sqlite"
	stripeadapter "github.com/fab-uleuh/stripe-copy-prod-to-test/internal/adapters/stripe"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/app"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/config"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/db"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/ports/primary"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/ports/secondary"
)

var (
	cfg         *config.Config
	logger      zerolog.Logger
	database    *sql.DB
	mappingRepo secondary.MappingRepository
	snapshots   *filesystem.SnapshotStore
	syncService primary.SyncService
	initialized bool
)

// Init loads configuration and builds the service graph. It is idempotent;
// the first caller's flags win. Configuration errors are fatal and surface
// before any remote call.
func Init(envFile string, verbose bool) error {
	if initialized {
		return nil
	}

	logger = newLogger(verbose)

	loaded, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	cfg = loaded

	database, err = db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open mapping database: %w", err)
	}

	client := stripeadapter.NewClient(cfg.ProdKey, cfg.TestKey, logger)
	mappingRepo = sqlite.NewMappingRepository(database)
	snapshots = filesystem.NewSnapshotStore(cfg.MappingsDir)
	syncService = app.NewSyncService(client, mappingRepo, snapshots, logger)

	initialized = true
	return nil
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
	}).Level(level).With().Timestamp().Logger()
}

// SyncService returns the initialized SyncService. Init must have run.
func SyncService() primary.SyncService { return syncService }

// MappingRepo returns the initialized mapping repository.
func MappingRepo() secondary.MappingRepository { return mappingRepo }

// Snapshots returns the snapshot store.
func Snapshots() *filesystem.SnapshotStore { return snapshots }

// Config returns the loaded configuration.
func Config() *config.Config { return cfg }

// Logger returns the application logger.
func Logger() zerolog.Logger { return logger }

// Close releases held resources.
func Close() error {
	if database != nil {
		return database.Close()
	}
	return nil
}
