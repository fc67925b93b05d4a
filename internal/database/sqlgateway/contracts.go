package sqlgateway

import (
	"context"
	"database/sql"

	"github.com/denismitr/storekeeper/internal/database/sqlgateway/mysql"
	"github.com/denismitr/storekeeper/internal/database/sqlgateway/sqlite"
	"github.com/denismitr/storekeeper/migration"
)

type ctxExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Dialect renders every statement the gateway issues. Identifiers passed
// in are unquoted table or column names read from the catalog.
type Dialect interface {
	InitQuery() string
	InsertQuery(m *migration.Migration) (string, []interface{})
	LedgerExistsQuery() (string, []interface{})
	ReadVersionsQuery() string

	ShowTablesQuery() string
	ColumnsQuery(table string) (string, []interface{})
	CountQuery(table string) string
	SelectAllQuery(table string, columns []string) string
	UpsertQuery(table string, columns []string) string

	DisableForeignKeysQuery() string
	EnableForeignKeysQuery() string
	DatabaseFileQuery() string
	SessionQueries() []string
}

var _ Dialect = (*sqlite.Dialect)(nil)
var _ Dialect = (*mysql.Dialect)(nil)
