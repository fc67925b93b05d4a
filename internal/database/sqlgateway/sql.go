package sqlgateway

import (
	"context"
	"database/sql"
	"time"

	"github.com/denismitr/storekeeper/internal/database"
	"github.com/denismitr/storekeeper/internal/database/sqlgateway/mysql"
	"github.com/denismitr/storekeeper/internal/database/sqlgateway/sqlite"
	"github.com/denismitr/storekeeper/internal/logger"
	"github.com/denismitr/storekeeper/migration"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var appliedAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
}

type SQLGateway struct {
	lg        logger.Logger
	connector SQLConnector
	dialect   Dialect
	session   *sqlx.Conn
}

var _ database.Gateway = (*SQLGateway)(nil)

// NewSqliteGateway - creates a gateway for an embedded SQLite file
func NewSqliteGateway(connector SQLConnector, migrationsTable string) *SQLGateway {
	if migrationsTable == "" {
		migrationsTable = database.DefaultMigrationsTable
	}

	return NewGateway(connector, sqlite.NewDialect(migrationsTable))
}

// NewMySQLGateway - creates a gateway for a MySQL schema
func NewMySQLGateway(connector SQLConnector, migrationsTable, charset string) *SQLGateway {
	if migrationsTable == "" {
		migrationsTable = database.DefaultMigrationsTable
	}

	return NewGateway(connector, mysql.NewDialect(migrationsTable, charset))
}

func NewGateway(connector SQLConnector, dialect Dialect) *SQLGateway {
	return &SQLGateway{
		lg:        logger.NullLogger{},
		connector: connector,
		dialect:   dialect,
	}
}

func (g *SQLGateway) SetLogger(lg logger.Logger) {
	g.lg = lg
}

// acquire returns the pinned connection, applying session settings the
// first time a connection is seen.
func (g *SQLGateway) acquire(ctx context.Context) (*sqlx.Conn, error) {
	conn, err := g.connector.Connect(ctx)
	if err != nil {
		return nil, &database.ConnectionError{Err: err}
	}

	if g.session == conn {
		return conn, nil
	}

	for _, q := range g.dialect.SessionQueries() {
		g.lg.SQL(q)
		if _, err := conn.ExecContext(ctx, q); err != nil {
			return nil, &database.ConnectionError{Err: errors.Wrapf(err, "could not apply session setting [%s]", q)}
		}
	}

	g.session = conn

	return conn, nil
}

func (g *SQLGateway) Release() error {
	g.session = nil
	return g.connector.Close()
}

func (g *SQLGateway) Migrate(
	ctx context.Context,
	migrations migration.Migrations,
) (migration.Migrations, error) {
	conn, err := g.acquire(ctx)
	if err != nil {
		return nil, err
	}

	applied, err := g.readVersions(ctx, conn)
	if err != nil {
		return nil, err
	}

	scheduled := database.ScheduleForMigration(migrations, applied)
	if len(scheduled) == 0 {
		return nil, database.ErrNoChangesRequired
	}

	var migrated migration.Migrations

	for _, m := range scheduled {
		if err := g.migrateOne(ctx, conn, m); err != nil {
			return migrated, err
		}

		g.lg.Successf("migrated: version: %s name: %s", m.Version, m.Name)
		migrated = append(migrated, m)
	}

	return migrated, nil
}

// migrateOne applies the body and records the ledger row in one
// transaction. The ledger insert ignores a row the script wrote itself.
func (g *SQLGateway) migrateOne(ctx context.Context, conn *sqlx.Conn, m *migration.Migration) error {
	fail := func(err error) error {
		return &database.MigrationError{Filename: m.Filename, Version: m.Version, Err: err}
	}

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fail(errors.Wrap(err, "could not start transaction"))
	}

	if err := g.applyUnderTx(ctx, tx, m); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			err = errors.Wrapf(err, "rollback failed too: %s", rbErr)
		}

		return fail(err)
	}

	if err := tx.Commit(); err != nil {
		return fail(errors.Wrap(err, "could not commit"))
	}

	return nil
}

func (g *SQLGateway) applyUnderTx(ctx context.Context, ex ctxExecutor, m *migration.Migration) error {
	if m.IsBlank() {
		g.lg.Debugf("migration [%s] has an empty body", m.Filename)
	} else {
		g.lg.SQL(m.Body)
		if _, err := ex.ExecContext(ctx, m.Body); err != nil {
			return errors.Wrapf(err, "could not execute script of [%s]", m.Key)
		}
	}

	initQuery := g.dialect.InitQuery()
	g.lg.SQL(initQuery)
	if _, err := ex.ExecContext(ctx, initQuery); err != nil {
		return errors.Wrap(err, "could not ensure migrations table")
	}

	insertQuery, args := g.dialect.InsertQuery(m)
	g.lg.SQL(insertQuery, args...)
	if _, err := ex.ExecContext(ctx, insertQuery, args...); err != nil {
		return errors.Wrapf(err, "could not insert migration version [%s]", m.Version)
	}

	return nil
}

func (g *SQLGateway) ReadVersions(ctx context.Context) ([]migration.Applied, error) {
	conn, err := g.acquire(ctx)
	if err != nil {
		return nil, err
	}

	return g.readVersions(ctx, conn)
}

type appliedRow struct {
	Version   string         `db:"version"`
	Name      sql.NullString `db:"name"`
	AppliedAt sql.NullString `db:"applied_at"`
}

// readVersions treats a missing ledger table as an empty ledger.
func (g *SQLGateway) readVersions(ctx context.Context, conn *sqlx.Conn) ([]migration.Applied, error) {
	existsQuery, args := g.dialect.LedgerExistsQuery()

	var count int
	if err := conn.GetContext(ctx, &count, existsQuery, args...); err != nil {
		return nil, errors.Wrap(err, "could not look up migrations table")
	}

	if count == 0 {
		g.lg.Debugf("migrations table does not exist yet")
		return []migration.Applied{}, nil
	}

	var rows []appliedRow
	q := g.dialect.ReadVersionsQuery()
	g.lg.SQL(q)
	if err := conn.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrapf(database.ErrLedgerUnavailable, "could not read migration versions: %s", err)
	}

	result := make([]migration.Applied, 0, len(rows))
	for _, r := range rows {
		result = append(result, migration.Applied{
			Version:   r.Version,
			Name:      r.Name.String,
			AppliedAt: parseAppliedAt(r.AppliedAt.String),
		})
	}

	return result, nil
}

func parseAppliedAt(v string) time.Time {
	for _, layout := range appliedAtLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}

	return time.Time{}
}

func (g *SQLGateway) ShowTables(ctx context.Context) ([]string, error) {
	conn, err := g.acquire(ctx)
	if err != nil {
		return nil, err
	}

	var tables []string
	if err := conn.SelectContext(ctx, &tables, g.dialect.ShowTablesQuery()); err != nil {
		return nil, errors.Wrap(err, "could not list all tables")
	}

	return tables, nil
}

func (g *SQLGateway) CountRows(ctx context.Context, table string) (int64, error) {
	conn, err := g.acquire(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := conn.GetContext(ctx, &count, g.dialect.CountQuery(table)); err != nil {
		return 0, errors.Wrapf(err, "could not count rows of [%s]", table)
	}

	return count, nil
}

// ReadRows streams every row of table with the stored values. Text
// protocol bytes are converted to numbers for integer and floating point
// columns.
func (g *SQLGateway) ReadRows(ctx context.Context, table string, fn database.RowFunc) error {
	conn, err := g.acquire(ctx)
	if err != nil {
		return err
	}

	cq, args := g.dialect.ColumnsQuery(table)
	var live []string
	if err := conn.SelectContext(ctx, &live, cq, args...); err != nil {
		return errors.Wrapf(err, "could not read columns of [%s]", table)
	}

	q := g.dialect.SelectAllQuery(table, live)
	g.lg.SQL(q)

	rows, err := conn.QueryxContext(ctx, q)
	if err != nil {
		return errors.Wrapf(err, "could not read rows of [%s]", table)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			g.lg.Error(closeErr)
		}
	}()

	columns, err := rows.Columns()
	if err != nil {
		return errors.Wrapf(err, "could not read columns of [%s]", table)
	}

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return errors.Wrapf(err, "could not read column types of [%s]", table)
	}

	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return errors.Wrapf(err, "could not scan row of [%s]", table)
		}

		for i := range values {
			if i < len(columnTypes) {
				values[i] = typedValue(columnTypes[i].DatabaseTypeName(), values[i])
			}
		}

		if err := fn(columns, values); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return errors.Wrapf(err, "rows iteration of [%s] failed", table)
	}

	return nil
}

func (g *SQLGateway) DatabaseFile(ctx context.Context) (string, error) {
	q := g.dialect.DatabaseFileQuery()
	if q == "" {
		return "", database.ErrNotFileBacked
	}

	conn, err := g.acquire(ctx)
	if err != nil {
		return "", err
	}

	var file sql.NullString
	if err := conn.GetContext(ctx, &file, q); err != nil {
		return "", errors.Wrap(err, "could not resolve database file")
	}

	if file.String == "" {
		return "", database.ErrNotFileBacked
	}

	return file.String, nil
}

// Import runs fn in one transaction with foreign key enforcement turned off
// on the pinned connection. Enforcement is switched off before the
// transaction begins and back on after it ends, whatever the outcome.
func (g *SQLGateway) Import(ctx context.Context, fn database.ImportFunc) (err error) {
	conn, err := g.acquire(ctx)
	if err != nil {
		return err
	}

	disable := g.dialect.DisableForeignKeysQuery()
	g.lg.SQL(disable)
	if _, err := conn.ExecContext(ctx, disable); err != nil {
		return errors.Wrap(err, "could not disable foreign keys")
	}

	defer func() {
		enable := g.dialect.EnableForeignKeysQuery()
		g.lg.SQL(enable)
		if _, enErr := conn.ExecContext(context.WithoutCancel(ctx), enable); enErr != nil {
			enErr = errors.Wrap(enErr, "could not re-enable foreign keys")
			if err == nil {
				err = enErr
			} else {
				g.lg.Error(enErr)
			}
		}
	}()

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "could not start import transaction")
	}

	if err := fn(ctx, &txImporter{tx: tx, dialect: g.dialect, lg: g.lg}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrapf(err, "import rollback failed too: %s", rbErr)
		}

		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "could not commit import")
	}

	return nil
}

type txImporter struct {
	tx      *sqlx.Tx
	dialect Dialect
	lg      logger.Logger
}

var _ database.Importer = (*txImporter)(nil)

func (i *txImporter) Columns(ctx context.Context, table string) ([]string, error) {
	q, args := i.dialect.ColumnsQuery(table)

	var columns []string
	if err := i.tx.SelectContext(ctx, &columns, q, args...); err != nil {
		return nil, errors.Wrapf(err, "could not read columns of [%s]", table)
	}

	return columns, nil
}

func (i *txImporter) Upsert(ctx context.Context, table string, columns []string, values []interface{}) error {
	q := i.dialect.UpsertQuery(table, columns)
	i.lg.SQL(q, values...)

	if _, err := i.tx.ExecContext(ctx, q, values...); err != nil {
		return errors.Wrapf(err, "could not write row into [%s]", table)
	}

	return nil
}
