package source

import (
	"context"
	"io/fs"
	"path"
	"strings"

	"github.com/denismitr/storekeeper/internal/logger"
	"github.com/denismitr/storekeeper/migration"
	"github.com/pkg/errors"
)

// FSSource reads migration units from a directory of any fs.FS, which makes
// embedded migrations work the same way as a folder on disk.
type FSSource struct {
	fsys fs.FS
	dir  string
	lg   logger.Logger
}

var _ Selector = (*FSSource)(nil)

func NewFSSource(fsys fs.FS, dir string, lg logger.Logger) *FSSource {
	if dir == "" {
		dir = "."
	}

	if lg == nil {
		lg = logger.NullLogger{}
	}

	return &FSSource{fsys: fsys, dir: dir, lg: lg}
}

func (s *FSSource) Select(ctx context.Context) (migration.Migrations, error) {
	entries, err := fs.ReadDir(s.fsys, s.dir)
	if err != nil {
		return nil, errors.Wrapf(ErrDiscovery, "could not read folder [%s]: %s", s.dir, err)
	}

	var result migration.Migrations

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if entry.IsDir() || !strings.HasSuffix(entry.Name(), migration.Extension) {
			s.lg.Debugf("skipping [%s]: not a migration file", entry.Name())
			continue
		}

		m, err := s.readOne(entry.Name())
		if err != nil {
			return nil, err
		}

		result = append(result, m)
	}

	return arrange(result)
}

func (s *FSSource) readOne(filename string) (*migration.Migration, error) {
	body, err := fs.ReadFile(s.fsys, path.Join(s.dir, filename))
	if err != nil {
		return nil, errors.Wrapf(ErrDiscovery, "could not read [%s]: %s", filename, err)
	}

	m, err := migration.NewMigrationFromFile(filename, string(body))()
	if err != nil {
		return nil, errors.Wrapf(ErrDiscovery, "%s", err)
	}

	return m, nil
}
