package storekeeper

import (
	"io/fs"

	"github.com/denismitr/storekeeper/internal/logger"
	"github.com/denismitr/storekeeper/internal/source"
	"github.com/denismitr/storekeeper/migration"
)

type (
	sourceConfig struct {
		versionFormat migration.VersionFormat
	}

	SourceConfigurator func(sc *sourceConfig)
)

func UseLocalFolderSource(folder string, configurators ...SourceConfigurator) OptionFunc {
	sc := sourceConfig{versionFormat: migration.SequenceFormat}
	for _, c := range configurators {
		c(&sc)
	}

	return func(k *Keeper) error {
		k.versionFormat = sc.versionFormat
		k.selectorFn = func(lg logger.Logger) source.Selector {
			return source.NewLocalFileSource(folder, lg)
		}
		return nil
	}
}

// UseFSSource reads migrations from dir inside fsys, e.g. an embed.FS.
func UseFSSource(fsys fs.FS, dir string) OptionFunc {
	return func(k *Keeper) error {
		k.selectorFn = func(lg logger.Logger) source.Selector {
			return source.NewFSSource(fsys, dir, lg)
		}
		return nil
	}
}

func UseInMemorySource(factories ...migration.Factory) OptionFunc {
	return func(k *Keeper) error {
		s, err := source.NewInMemorySource(factories...)
		if err != nil {
			return err
		}

		k.selectorFn = func(logger.Logger) source.Selector {
			return s
		}
		return nil
	}
}

func WithVersionFormat(vf migration.VersionFormat) SourceConfigurator {
	return func(sc *sourceConfig) {
		sc.versionFormat = vf
	}
}
