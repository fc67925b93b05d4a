package storekeeper

import (
	"os"
	"path/filepath"
	"time"

	"github.com/denismitr/storekeeper/internal/database/sqlgateway"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const SqliteDriver = "sqlite3"

type SqliteOptionFunc func(*sqlgateway.SqliteOptions, *sqlgateway.ConnectOptions)

func UseSqlite(db *sqlx.DB, options ...SqliteOptionFunc) OptionFunc {
	return func(k *Keeper) error {
		sqliteOpts := sqlgateway.NewDefaultSqliteOptions()
		connectOpts := sqlgateway.NewDefaultConnectOptions()

		for _, oFunc := range options {
			oFunc(sqliteOpts, connectOpts)
		}

		connector := sqlgateway.MakeRetryingConnector(db, connectOpts)
		gateway := sqlgateway.NewSqliteGateway(connector, sqliteOpts.MigrationsTable)

		k.gateway = gateway
		k.closerFns = append(k.closerFns, gateway.Release)

		return nil
	}
}

// UseSqliteFile opens the database file at path. Its folder is created on
// first connect, so options never touch the filesystem. The keeper closes
// the handle.
func UseSqliteFile(path string, options ...SqliteOptionFunc) OptionFunc {
	return func(k *Keeper) error {
		db, err := sqlx.Open(SqliteDriver, path)
		if err != nil {
			return &OperationError{Op: "connect", Kind: ErrConnection, Path: path, Err: err}
		}

		k.closerFns = append(k.closerFns, db.Close)

		prepare := func(sqliteOpts *sqlgateway.SqliteOptions, connectOpts *sqlgateway.ConnectOptions) {
			connectOpts.Prepare = func() error {
				if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
					return errors.Wrapf(err, "could not create database folder for [%s]", path)
				}
				return nil
			}
		}

		return UseSqlite(db, append([]SqliteOptionFunc{prepare}, options...)...)(k)
	}
}

func WithSqliteMaxConnectionAttempts(attempts int) SqliteOptionFunc {
	return func(sqliteOpts *sqlgateway.SqliteOptions, connectOpts *sqlgateway.ConnectOptions) {
		connectOpts.MaxAttempts = attempts
	}
}

func WithSqliteConnectionTimeout(timeout time.Duration) SqliteOptionFunc {
	return func(sqliteOpts *sqlgateway.SqliteOptions, connectOpts *sqlgateway.ConnectOptions) {
		connectOpts.MaxTimeout = timeout
	}
}

func WithSqliteMigrationTable(migrationTable string) SqliteOptionFunc {
	return func(sqliteOpts *sqlgateway.SqliteOptions, connectOpts *sqlgateway.ConnectOptions) {
		sqliteOpts.MigrationsTable = migrationTable
	}
}
