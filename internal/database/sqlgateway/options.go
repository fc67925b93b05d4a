package sqlgateway

import (
	"github.com/denismitr/storekeeper/internal/database"
	"github.com/denismitr/storekeeper/internal/database/sqlgateway/mysql"
)

type SqliteOptions struct {
	database.CommonOptions
}

type MySQLOptions struct {
	database.CommonOptions
	Charset string
}

func NewDefaultSqliteOptions() *SqliteOptions {
	return &SqliteOptions{
		CommonOptions: database.CommonOptions{MigrationsTable: database.DefaultMigrationsTable},
	}
}

func NewDefaultMySQLOptions() *MySQLOptions {
	return &MySQLOptions{
		CommonOptions: database.CommonOptions{MigrationsTable: database.DefaultMigrationsTable},
		Charset:       mysql.DefaultCharset,
	}
}
