package source

import (
	"context"
	"sort"

	"github.com/denismitr/storekeeper/migration"
	"github.com/pkg/errors"
)

var ErrDiscovery = errors.New("could not discover migrations")
var ErrDuplicateVersion = errors.New("duplicate migration version")
var ErrMigrationAlreadyExists = errors.New("migration already exists")

// Selector lists every migration unit it knows of, ordered by filename.
// An empty result is not an error.
type Selector interface {
	Select(ctx context.Context) (migration.Migrations, error)
}

// Source is a Selector that can also scaffold new migration files.
type Source interface {
	Selector

	IsValid() bool
	AlreadyExists(version, name string) bool
	Create(version, name string) (*migration.Migration, error)
}

// arrange sorts the units and rejects version tokens used by more than one
// file, since the ledger is keyed on the version.
func arrange(migrations migration.Migrations) (migration.Migrations, error) {
	sort.Sort(migrations)

	seen := make(map[string]string, len(migrations))
	for _, m := range migrations {
		if other, ok := seen[m.Version]; ok {
			return nil, errors.Wrapf(
				ErrDuplicateVersion,
				"version [%s] is used by [%s] and [%s]", m.Version, other, m.Filename,
			)
		}
		seen[m.Version] = m.Filename
	}

	return migrations, nil
}
