package storekeeper

import (
	"context"
	"os"

	"github.com/denismitr/storekeeper/internal/backup"
	"github.com/pkg/errors"
)

// Backup copies the database file to path and returns the path written.
// An empty path means <database file>.backup_<timestamp>.
func (k *Keeper) Backup(ctx context.Context, path string) (string, error) {
	file, err := k.gateway.DatabaseFile(ctx)
	if err != nil {
		k.lg.Error(err)
		return "", operationError("backup", ErrBackup, path, err)
	}

	if path == "" {
		path = backup.DefaultPath(file, k.clock())
	}

	if err := backup.Copy(file, path); err != nil {
		k.lg.Error(err)
		return "", operationError("backup", ErrBackup, path, err)
	}

	k.lg.Successf("database backed up to [%s]", path)

	return path, nil
}

// Restore replaces the database file with the backup at path. The open
// connection is released first and reacquired on next use.
func (k *Keeper) Restore(ctx context.Context, path string) error {
	if path == "" {
		return operationError("restore", ErrRestore, path, ErrPathRequired)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			err = errors.Wrapf(backup.ErrSourceMissing, "[%s]", path)
		}
		k.lg.Error(err)
		return operationError("restore", ErrRestore, path, err)
	}

	if info.IsDir() {
		return operationError("restore", ErrRestore, path, errors.New("backup path is a directory"))
	}

	file, err := k.gateway.DatabaseFile(ctx)
	if err != nil {
		k.lg.Error(err)
		return operationError("restore", ErrRestore, path, err)
	}

	if err := k.gateway.Release(); err != nil {
		k.lg.Error(err)
		return operationError("restore", ErrRestore, path, err)
	}

	if err := backup.Copy(path, file); err != nil {
		k.lg.Error(err)
		return operationError("restore", ErrRestore, path, err)
	}

	k.lg.Successf("database restored from [%s]", path)

	return nil
}
