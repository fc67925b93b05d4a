package database

import (
	"context"

	"github.com/denismitr/storekeeper/internal/logger"
	"github.com/denismitr/storekeeper/migration"
	"github.com/pkg/errors"
)

var ErrNoChangesRequired = errors.New("no changes to the database required")
var ErrLedgerUnavailable = errors.New("migrations ledger is unavailable")
var ErrNotFileBacked = errors.New("database is not backed by a file")

const DefaultMigrationsTable = "migrations"

type CommonOptions struct {
	MigrationsTable string
}

// RowFunc receives every row of a table with the column names in catalog
// order. The values slice is reused between calls.
type RowFunc func(columns []string, values []interface{}) error

// Importer writes rows into live tables. It is only valid inside the
// callback passed to Gateway.Import.
type Importer interface {
	Columns(ctx context.Context, table string) ([]string, error)
	Upsert(ctx context.Context, table string, columns []string, values []interface{}) error
}

type ImportFunc func(ctx context.Context, imp Importer) error

type ledger interface {
	ReadVersions(ctx context.Context) ([]migration.Applied, error)
}

type catalog interface {
	ShowTables(ctx context.Context) ([]string, error)
	CountRows(ctx context.Context, table string) (int64, error)
	ReadRows(ctx context.Context, table string, fn RowFunc) error
	DatabaseFile(ctx context.Context) (string, error)
}

// Gateway is the storage handle shared by the runner and the porter. It
// holds one connection until Release is called.
type Gateway interface {
	SetLogger(logger.Logger)
	Migrate(ctx context.Context, migrations migration.Migrations) (migration.Migrations, error)
	Import(ctx context.Context, fn ImportFunc) error
	Release() error

	ledger
	catalog
}

type ConnCloser func() error

// ScheduleForMigration returns every unit whose version is missing from the
// ledger, in the order given. Gaps in the ledger are filled too.
func ScheduleForMigration(
	migrations migration.Migrations,
	applied []migration.Applied,
) migration.Migrations {
	var scheduled migration.Migrations

	for i := range migrations {
		if !migration.InVersions(migrations[i].Version, applied) {
			scheduled = append(scheduled, migrations[i])
		}
	}

	return scheduled
}
