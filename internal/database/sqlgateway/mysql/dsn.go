package mysql

import (
	driver "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

var ErrInvalidDSN = errors.New("invalid mysql dsn")

// NormalizeDSN turns on multi statement scripts and turns off time.Time
// scanning, so DATE and DATETIME values are exported as stored.
func NormalizeDSN(dsn string) (string, error) {
	cfg, err := driver.ParseDSN(dsn)
	if err != nil {
		return "", errors.Wrapf(ErrInvalidDSN, "%s", err)
	}

	cfg.MultiStatements = true
	cfg.ParseTime = false

	return cfg.FormatDSN(), nil
}
