package storekeeper

import (
	"fmt"

	"github.com/denismitr/storekeeper/internal/database"
	"github.com/denismitr/storekeeper/internal/source"
	"github.com/pkg/errors"
)

var (
	ErrGatewayNotInitialized = errors.New("database gateway has not been initialized")
	ErrSourceNotWritable     = errors.New("migration source cannot create migrations")
	ErrPathRequired          = errors.New("path is required")

	ErrConnection      = database.ErrConnection
	ErrDiscovery       = source.ErrDiscovery
	ErrMigrationFailed = database.ErrMigrationFailed

	// ErrNoMigrations and ErrNothingToMigrate are soft: the run did nothing
	// and the database is as current as the source allows.
	ErrNoMigrations     = errors.New("no migrations found")
	ErrNothingToMigrate = database.ErrNoChangesRequired

	ErrInfo    = errors.New("could not read database info")
	ErrExport  = errors.New("export failed")
	ErrImport  = errors.New("import failed")
	ErrBackup  = errors.New("backup failed")
	ErrRestore = errors.New("restore failed")
)

// OperationError is returned by every Keeper operation that fails. It
// matches its Kind with errors.Is and unwraps to the underlying cause.
type OperationError struct {
	Op   string
	Kind error
	Path string
	Err  error
}

func (e *OperationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s [%s]: %s: %s", e.Op, e.Path, e.Kind, e.Err)
	}

	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func (e *OperationError) Is(target error) bool {
	return target == e.Kind
}

// IsSoft reports whether err only means there was nothing to do.
func IsSoft(err error) bool {
	return errors.Is(err, ErrNoMigrations) || errors.Is(err, ErrNothingToMigrate)
}

// operationError keeps the cause reachable, so a connection failure inside
// an export still matches ErrConnection as well as ErrExport.
func operationError(op string, kind error, path string, err error) error {
	return &OperationError{Op: op, Kind: kind, Path: path, Err: err}
}
