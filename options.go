package storekeeper

import (
	"time"

	"github.com/denismitr/storekeeper/internal/logger"
)

type OptionFunc func(*Keeper) error

func UseColorLogger(p logger.Printer, printSql, printDebug bool) OptionFunc {
	return func(k *Keeper) error {
		k.lg = logger.NewColorLogger(p, printSql, printDebug)
		return nil
	}
}

func UseBWLogger(p logger.Printer, printSql, printDebug bool) OptionFunc {
	return func(k *Keeper) error {
		k.lg = logger.NewBWLogger(p, printSql, printDebug)
		return nil
	}
}

// UseClock replaces time.Now for default backup and export file names
// and timestamp versions.
func UseClock(clock func() time.Time) OptionFunc {
	return func(k *Keeper) error {
		k.clock = clock
		return nil
	}
}

func WithExportsFolder(folder string) OptionFunc {
	return func(k *Keeper) error {
		k.exportsFolder = folder
		return nil
	}
}

func WithExportPrefix(prefix string) OptionFunc {
	return func(k *Keeper) error {
		k.exportPrefix = prefix
		return nil
	}
}
