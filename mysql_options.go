package storekeeper

import (
	"time"

	"github.com/denismitr/storekeeper/internal/database/sqlgateway"
	"github.com/denismitr/storekeeper/internal/database/sqlgateway/mysql"
	"github.com/jmoiron/sqlx"
)

const MySQLDriver = "mysql"

type MySQLOptionFunc func(*sqlgateway.MySQLOptions, *sqlgateway.ConnectOptions)

// UseMySQL expects db to be opened with multiStatements enabled; see
// UseMySQLDSN.
func UseMySQL(db *sqlx.DB, options ...MySQLOptionFunc) OptionFunc {
	return func(k *Keeper) error {
		mysqlOpts := sqlgateway.NewDefaultMySQLOptions()
		connectOpts := sqlgateway.NewDefaultConnectOptions()

		for _, oFunc := range options {
			oFunc(mysqlOpts, connectOpts)
		}

		connector := sqlgateway.MakeRetryingConnector(db, connectOpts)
		gateway := sqlgateway.NewMySQLGateway(connector, mysqlOpts.MigrationsTable, mysqlOpts.Charset)

		k.gateway = gateway
		k.closerFns = append(k.closerFns, gateway.Release)

		return nil
	}
}

func UseMySQLDSN(dsn string, options ...MySQLOptionFunc) OptionFunc {
	return func(k *Keeper) error {
		normalized, err := mysql.NormalizeDSN(dsn)
		if err != nil {
			return &OperationError{Op: "connect", Kind: ErrConnection, Err: err}
		}

		db, err := sqlx.Open(MySQLDriver, normalized)
		if err != nil {
			return &OperationError{Op: "connect", Kind: ErrConnection, Err: err}
		}

		k.closerFns = append(k.closerFns, db.Close)

		return UseMySQL(db, options...)(k)
	}
}

func WithMySQLMigrationTable(migrationTable string) MySQLOptionFunc {
	return func(mysqlOpts *sqlgateway.MySQLOptions, connectOpts *sqlgateway.ConnectOptions) {
		mysqlOpts.MigrationsTable = migrationTable
	}
}

func WithMySQLCharset(charset string) MySQLOptionFunc {
	return func(mysqlOpts *sqlgateway.MySQLOptions, connectOpts *sqlgateway.ConnectOptions) {
		mysqlOpts.Charset = charset
	}
}

func WithMySQLConnectionTimeout(timeout time.Duration) MySQLOptionFunc {
	return func(mysqlOpts *sqlgateway.MySQLOptions, connectOpts *sqlgateway.ConnectOptions) {
		connectOpts.MaxTimeout = timeout
	}
}

func WithMySQLMaxConnectionAttempts(attempts int) MySQLOptionFunc {
	return func(mysqlOpts *sqlgateway.MySQLOptions, connectOpts *sqlgateway.ConnectOptions) {
		connectOpts.MaxAttempts = attempts
	}
}
