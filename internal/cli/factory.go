package cli

import (
	"log"
	"os"

	"github.com/denismitr/storekeeper"
	"github.com/pkg/errors"
	"github.com/xo/dburl"
)

var ErrUnsupportedDriver = errors.New("unsupported database driver")

type (
	databaseFactory    func(dsn string, cfg Config) (storekeeper.OptionFunc, error)
	databaseFactoryMap map[string]databaseFactory
)

var factories = databaseFactoryMap{
	storekeeper.SqliteDriver: createSqliteOption,
	storekeeper.MySQLDriver:  createMySQLOption,
}

// resolveDatabase turns the configured database into a driver name and a
// driver specific DSN. A URL wins over a plain sqlite path.
func resolveDatabase(cfg Config) (driver string, dsn string, err error) {
	if cfg.Database.URL == "" {
		return storekeeper.SqliteDriver, cfg.Database.Path, nil
	}

	u, err := dburl.Parse(cfg.Database.URL)
	if err != nil {
		return "", "", errors.Wrapf(ErrInvalidConfig, "database url: %s", err)
	}

	return u.Driver, u.DSN, nil
}

func createSqliteOption(dsn string, cfg Config) (storekeeper.OptionFunc, error) {
	timeout, err := cfg.connectTimeout()
	if err != nil {
		return nil, err
	}

	opts := []storekeeper.SqliteOptionFunc{
		storekeeper.WithSqliteMaxConnectionAttempts(cfg.Database.ConnectAttempts),
	}

	if timeout > 0 {
		opts = append(opts, storekeeper.WithSqliteConnectionTimeout(timeout))
	}

	if cfg.Database.MigrationsTable != "" {
		opts = append(opts, storekeeper.WithSqliteMigrationTable(cfg.Database.MigrationsTable))
	}

	return storekeeper.UseSqliteFile(dsn, opts...), nil
}

func createMySQLOption(dsn string, cfg Config) (storekeeper.OptionFunc, error) {
	timeout, err := cfg.connectTimeout()
	if err != nil {
		return nil, err
	}

	opts := []storekeeper.MySQLOptionFunc{
		storekeeper.WithMySQLMaxConnectionAttempts(cfg.Database.ConnectAttempts),
	}

	if timeout > 0 {
		opts = append(opts, storekeeper.WithMySQLConnectionTimeout(timeout))
	}

	if cfg.Database.MigrationsTable != "" {
		opts = append(opts, storekeeper.WithMySQLMigrationTable(cfg.Database.MigrationsTable))
	}

	return storekeeper.UseMySQLDSN(dsn, opts...), nil
}

func createKeeper(cfg Config, p *log.Logger) (*storekeeper.Keeper, storekeeper.CloserFunc, error) {
	driver, dsn, err := resolveDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}

	return createKeeperFrom(driver, dsn, factories, cfg, p)
}

func createKeeperFrom(
	driver, dsn string,
	factoryMap databaseFactoryMap,
	cfg Config,
	p *log.Logger,
) (*storekeeper.Keeper, storekeeper.CloserFunc, error) {
	factory, ok := factoryMap[driver]
	if !ok {
		return nil, nil, errors.Wrapf(ErrUnsupportedDriver, "could not find factory for driver [%s]", driver)
	}

	dbOption, err := factory(dsn, cfg)
	if err != nil {
		return nil, nil, err
	}

	vf, err := cfg.versionFormat()
	if err != nil {
		return nil, nil, err
	}

	if p == nil {
		p = log.New(os.Stdout, "", 0)
	}

	var lgOption storekeeper.OptionFunc
	if cfg.Log.Color {
		lgOption = storekeeper.UseColorLogger(p, cfg.Log.SQL, cfg.Log.Debug)
	} else {
		lgOption = storekeeper.UseBWLogger(p, cfg.Log.SQL, cfg.Log.Debug)
	}

	opts := []storekeeper.OptionFunc{
		lgOption,
		dbOption,
		storekeeper.UseLocalFolderSource(cfg.Migrations.LocalFolder, storekeeper.WithVersionFormat(vf)),
	}

	if cfg.Paths.Exports != "" {
		opts = append(opts, storekeeper.WithExportsFolder(cfg.Paths.Exports))
	}

	return storekeeper.NewKeeper(opts...)
}
