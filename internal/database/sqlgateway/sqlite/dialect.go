package sqlite

import (
	"fmt"
	"strings"

	"github.com/denismitr/storekeeper/migration"
)

const DefaultBusyTimeout = 5000

type Dialect struct {
	migrationsTable string
}

func NewDialect(migrationsTable string) *Dialect {
	return &Dialect{migrationsTable: migrationsTable}
}

// Quote wraps an identifier in double quotes, doubling embedded ones.
func Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (d Dialect) InitQuery() string {
	const sqliteCreateMigrationsSchema = `CREATE TABLE IF NOT EXISTS %s (
	version TEXT PRIMARY KEY,
	name TEXT,
	applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

	return fmt.Sprintf(sqliteCreateMigrationsSchema, Quote(d.migrationsTable))
}

func (d Dialect) InsertQuery(m *migration.Migration) (string, []interface{}) {
	const sqliteInsertVersionQuery = "INSERT OR IGNORE INTO %s (version, name) VALUES (?, ?)"
	return fmt.Sprintf(sqliteInsertVersionQuery, Quote(d.migrationsTable)), []interface{}{m.Version, m.Name}
}

func (d Dialect) LedgerExistsQuery() (string, []interface{}) {
	return "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", []interface{}{d.migrationsTable}
}

func (d Dialect) ReadVersionsQuery() string {
	return fmt.Sprintf("SELECT version, name, applied_at FROM %s ORDER BY version", Quote(d.migrationsTable))
}

// ShowTablesQuery lists user tables in catalog order, leaving out the
// engine's internal sqlite_ tables.
func (d Dialect) ShowTablesQuery() string {
	return "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'"
}

func (d Dialect) ColumnsQuery(table string) (string, []interface{}) {
	return "SELECT name FROM pragma_table_info(?) ORDER BY cid", []interface{}{table}
}

func (d Dialect) CountQuery(table string) string {
	return "SELECT COUNT(*) FROM " + Quote(table)
}

// SelectAllQuery reads each column through a unary plus. The expression has
// no declared type, so the driver hands back the stored value instead of
// parsing DATE and TIMESTAMP columns into time.Time.
func (d Dialect) SelectAllQuery(table string, columns []string) string {
	if len(columns) == 0 {
		return "SELECT * FROM " + Quote(table)
	}

	exprs := make([]string, len(columns))
	for i := range columns {
		exprs[i] = "+" + Quote(columns[i]) + " AS " + Quote(columns[i])
	}

	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(exprs, ", "), Quote(table))
}

func (d Dialect) UpsertQuery(table string, columns []string) string {
	quoted := make([]string, len(columns))
	for i := range columns {
		quoted[i] = Quote(columns[i])
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")

	return fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		Quote(table), strings.Join(quoted, ", "), placeholders,
	)
}

func (d Dialect) DisableForeignKeysQuery() string {
	return "PRAGMA foreign_keys = OFF"
}

func (d Dialect) EnableForeignKeysQuery() string {
	return "PRAGMA foreign_keys = ON"
}

// DatabaseFileQuery yields an empty file name for in-memory databases.
func (d Dialect) DatabaseFileQuery() string {
	return "SELECT file FROM pragma_database_list WHERE name = 'main'"
}

func (d Dialect) SessionQueries() []string {
	return []string{
		"PRAGMA foreign_keys = ON",
		fmt.Sprintf("PRAGMA busy_timeout = %d", DefaultBusyTimeout),
	}
}
