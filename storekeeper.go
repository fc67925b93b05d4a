package storekeeper

import (
	"context"
	"time"

	"github.com/denismitr/storekeeper/internal/database"
	"github.com/denismitr/storekeeper/internal/logger"
	"github.com/denismitr/storekeeper/internal/source"
	"github.com/denismitr/storekeeper/migration"
	"github.com/pkg/errors"
)

const (
	DefaultExportsFolder = "./exports"
	DefaultExportPrefix  = "inventory"
)

type CloserFunc func() error

type selectorFactory func(lg logger.Logger) source.Selector

// Keeper migrates and maintains one database. It holds a single
// connection, acquired on first use and released by the CloserFunc
// returned from NewKeeper.
type Keeper struct {
	lg            logger.Logger
	gateway       database.Gateway
	selectorFn    selectorFactory
	selector      source.Selector
	closerFns     []CloserFunc
	clock         func() time.Time
	versionFormat migration.VersionFormat
	exportsFolder string
	exportPrefix  string
}

// NewKeeper creates a keeper from option callbacks. A database option is
// required; migrations default to the local ./database/migrations folder.
func NewKeeper(opts ...OptionFunc) (*Keeper, CloserFunc, error) {
	k := &Keeper{
		lg:            logger.NullLogger{},
		clock:         time.Now,
		versionFormat: migration.SequenceFormat,
		exportsFolder: DefaultExportsFolder,
		exportPrefix:  DefaultExportPrefix,
	}

	for _, oFunc := range opts {
		if err := oFunc(k); err != nil {
			if closeErr := k.close(); closeErr != nil {
				k.lg.Error(closeErr)
			}
			return nil, nil, err
		}
	}

	if k.gateway == nil {
		return nil, nil, ErrGatewayNotInitialized
	}

	if k.selectorFn == nil {
		k.selectorFn = func(lg logger.Logger) source.Selector {
			return source.NewLocalFileSource(source.DefaultMigrationsFolder, lg)
		}
	}

	k.selector = k.selectorFn(k.lg)
	k.gateway.SetLogger(k.lg)

	return k, k.close, nil
}

// Migrate applies every migration missing from the ledger, in filename
// order, and returns the keys of the applied ones. It stops at the first
// failing migration; the ones before it stay applied.
func (k *Keeper) Migrate(ctx context.Context) ([]string, error) {
	if src := k.Source(); src != nil && !src.IsValid() {
		err := errors.Wrap(ErrDiscovery, "migrations folder does not exist or is not a directory")
		k.lg.Error(err)
		return nil, operationError("migrate", ErrDiscovery, "", err)
	}

	migrations, err := k.selector.Select(ctx)
	if err != nil {
		k.lg.Error(err)
		return nil, operationError("migrate", ErrDiscovery, "", err)
	}

	if len(migrations) == 0 {
		k.lg.Warnf("no migration files found")
		return nil, ErrNoMigrations
	}

	migrated, err := k.gateway.Migrate(ctx, migrations)
	if err != nil {
		if errors.Is(err, database.ErrNoChangesRequired) {
			k.lg.Warnf("database is up to date, %d migrations already applied", len(migrations))
			return nil, ErrNothingToMigrate
		}

		k.lg.Error(err)

		kind := ErrMigrationFailed
		if !errors.Is(err, ErrMigrationFailed) && errors.Is(err, ErrConnection) {
			kind = ErrConnection
		}

		return migrated.Keys(), operationError("migrate", kind, "", err)
	}

	k.lg.Successf("applied %d migrations", len(migrated))

	return migrated.Keys(), nil
}

// Applied returns the ledger in version order. A missing ledger is empty.
func (k *Keeper) Applied(ctx context.Context) ([]migration.Applied, error) {
	applied, err := k.gateway.ReadVersions(ctx)
	if err != nil {
		return nil, operationError("applied", ErrInfo, "", err)
	}

	return applied, nil
}

// CreateMigration scaffolds an empty migration file with the next version.
// The name may not contain path separators.
func (k *Keeper) CreateMigration(ctx context.Context, name string) (*migration.Migration, error) {
	src := k.Source()
	if src == nil {
		return nil, ErrSourceNotWritable
	}

	if err := migration.ValidateName(name); err != nil {
		return nil, err
	}

	// a folder that does not exist yet is created along with the first file
	var existing migration.Migrations
	if src.IsValid() {
		var err error
		if existing, err = src.Select(ctx); err != nil {
			return nil, operationError("new", ErrDiscovery, "", err)
		}
	}

	version, err := migration.NextVersion(k.clock, k.versionFormat, existing.Versions())
	if err != nil {
		return nil, err
	}

	if src.AlreadyExists(version, name) {
		err := errors.Wrapf(source.ErrMigrationAlreadyExists, "version [%s] name [%s]", version, name)
		k.lg.Error(err)
		return nil, err
	}

	m, err := src.Create(version, name)
	if err != nil {
		k.lg.Error(err)
		return nil, err
	}

	return m, nil
}

// Source - returns the keeper selector if it implements the full source.Source interface
func (k *Keeper) Source() source.Source {
	if s, ok := k.selector.(source.Source); ok {
		return s
	}

	return nil
}

func (k *Keeper) close() error {
	var result error

	for i := len(k.closerFns) - 1; i >= 0; i-- {
		if err := k.closerFns[i](); err != nil {
			k.lg.Error(err)
			if result == nil {
				result = err
			}
		}
	}

	k.closerFns = nil

	return result
}
