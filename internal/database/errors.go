package database

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrMigrationFailed = errors.New("migration failed")

// MigrationError names the unit that broke a run. Units before it stay
// committed; nothing after it was attempted.
type MigrationError struct {
	Filename string
	Version  string
	Err      error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration [%s] failed: %s", e.Filename, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

func (e *MigrationError) Is(target error) bool {
	return target == ErrMigrationFailed
}

var ErrConnection = errors.New("could not connect to the database")

type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConnection, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}
