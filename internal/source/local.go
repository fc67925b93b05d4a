package source

import (
	"os"
	"path/filepath"

	"github.com/denismitr/storekeeper/internal/logger"
	"github.com/denismitr/storekeeper/migration"
	"github.com/pkg/errors"
)

const DefaultMigrationsFolder = "./database/migrations"

type LocalFileSource struct {
	*FSSource
	folder string
}

var _ Source = (*LocalFileSource)(nil)

func NewLocalFileSource(folder string, lg logger.Logger) *LocalFileSource {
	if folder == "" {
		folder = DefaultMigrationsFolder
	}

	return &LocalFileSource{
		FSSource: NewFSSource(os.DirFS(folder), ".", lg),
		folder:   folder,
	}
}

func (lfs *LocalFileSource) Folder() string {
	return lfs.folder
}

func (lfs *LocalFileSource) IsValid() bool {
	info, err := os.Stat(lfs.folder)
	if os.IsNotExist(err) {
		return false
	}

	return err == nil && info.IsDir()
}

func (lfs *LocalFileSource) AlreadyExists(version, name string) bool {
	key := migration.CreateKeyFromVersionAndName(version, name)
	info, err := os.Stat(filepath.Join(lfs.folder, key+migration.Extension))
	if err != nil {
		return false
	}

	return !info.IsDir()
}

// Create writes an empty migration file, creating the folder when needed.
func (lfs *LocalFileSource) Create(version, name string) (*migration.Migration, error) {
	m, err := migration.New(version, name)()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(lfs.folder, 0755); err != nil {
		return nil, errors.Wrapf(err, "could not create folder [%s]", lfs.folder)
	}

	filename := filepath.Join(lfs.folder, m.Filename)
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, errors.Wrapf(ErrMigrationAlreadyExists, "[%s]", filename)
		}
		return nil, errors.Wrapf(err, "could not create file [%s]", filename)
	}

	if cErr := f.Close(); cErr != nil {
		return nil, errors.Wrapf(cErr, "could not close file [%s]", filename)
	}

	lfs.lg.Successf("created migration [%s]", filename)

	return m, nil
}
