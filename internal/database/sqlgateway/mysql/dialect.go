package mysql

import (
	"fmt"
	"strings"

	"github.com/denismitr/storekeeper/migration"
)

const DefaultCharset = "utf8mb4"

type Dialect struct {
	migrationsTable, charset string
}

func NewDialect(migrationsTable, charset string) *Dialect {
	if charset == "" {
		charset = DefaultCharset
	}

	return &Dialect{migrationsTable: migrationsTable, charset: charset}
}

func Quote(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func (d Dialect) InitQuery() string {
	const createSQL = `CREATE TABLE IF NOT EXISTS %s (
	version VARCHAR(50) PRIMARY KEY,
	name VARCHAR(255),
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
) ENGINE=InnoDB CHARACTER SET=%s`

	return fmt.Sprintf(createSQL, Quote(d.migrationsTable), d.charset)
}

func (d Dialect) InsertQuery(m *migration.Migration) (string, []interface{}) {
	const insertSQL = "INSERT IGNORE INTO %s (`version`, `name`) VALUES (?, ?)"
	return fmt.Sprintf(insertSQL, Quote(d.migrationsTable)), []interface{}{m.Version, m.Name}
}

func (d Dialect) LedgerExistsQuery() (string, []interface{}) {
	const existsSQL = "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?"
	return existsSQL, []interface{}{d.migrationsTable}
}

func (d Dialect) ReadVersionsQuery() string {
	return fmt.Sprintf("SELECT `version`, `name`, `applied_at` FROM %s ORDER BY `version`", Quote(d.migrationsTable))
}

func (d Dialect) ShowTablesQuery() string {
	return "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'"
}

func (d Dialect) ColumnsQuery(table string) (string, []interface{}) {
	const columnsSQL = "SELECT column_name FROM information_schema.columns " +
		"WHERE table_schema = DATABASE() AND table_name = ? ORDER BY ordinal_position"
	return columnsSQL, []interface{}{table}
}

func (d Dialect) CountQuery(table string) string {
	return "SELECT COUNT(*) FROM " + Quote(table)
}

func (d Dialect) SelectAllQuery(table string, columns []string) string {
	if len(columns) == 0 {
		return "SELECT * FROM " + Quote(table)
	}

	quoted := make([]string, len(columns))
	for i := range columns {
		quoted[i] = Quote(columns[i])
	}

	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), Quote(table))
}

func (d Dialect) UpsertQuery(table string, columns []string) string {
	quoted := make([]string, len(columns))
	for i := range columns {
		quoted[i] = Quote(columns[i])
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")

	return fmt.Sprintf(
		"REPLACE INTO %s (%s) VALUES (%s)",
		Quote(table), strings.Join(quoted, ", "), placeholders,
	)
}

func (d Dialect) DisableForeignKeysQuery() string {
	return "SET FOREIGN_KEY_CHECKS = 0"
}

func (d Dialect) EnableForeignKeysQuery() string {
	return "SET FOREIGN_KEY_CHECKS = 1"
}

// DatabaseFileQuery is empty: a server schema has no single file to copy.
func (d Dialect) DatabaseFileQuery() string {
	return ""
}

func (d Dialect) SessionQueries() []string {
	return []string{fmt.Sprintf("SET NAMES %s", d.charset)}
}
