package storekeeper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/denismitr/storekeeper/internal/porter"
	"github.com/pkg/errors"
)

const timestampLayout = "20060102_150405"

// Export writes every user table to path and returns the path written.
// An empty path means <exports folder>/<prefix>_data_<timestamp>.json.
// The document is fully encoded before the file is created.
func (k *Keeper) Export(ctx context.Context, path string) (string, error) {
	if path == "" {
		path = k.defaultExportPath()
	}

	doc, err := porter.Export(ctx, k.gateway)
	if err != nil {
		k.lg.Error(err)
		return "", operationError("export", ErrExport, path, err)
	}

	data, err := porter.CodecFor(path).Encode(doc)
	if err != nil {
		k.lg.Error(err)
		return "", operationError("export", ErrExport, path, err)
	}

	if err := writeFile(path, data); err != nil {
		k.lg.Error(err)
		return "", operationError("export", ErrExport, path, err)
	}

	k.lg.Successf("data exported to [%s]: %d tables, %d rows", path, len(doc.Tables), doc.RowCount())

	return path, nil
}

// Import loads a document produced by Export in a single transaction.
func (k *Keeper) Import(ctx context.Context, path string) (porter.Stats, error) {
	if path == "" {
		return porter.Stats{}, operationError("import", ErrImport, path, ErrPathRequired)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		k.lg.Error(err)
		return porter.Stats{}, operationError("import", ErrImport, path, err)
	}

	doc, err := porter.CodecFor(path).Decode(data)
	if err != nil {
		k.lg.Error(err)
		return porter.Stats{}, operationError("import", ErrImport, path, err)
	}

	stats, err := porter.Import(ctx, k.gateway, doc, k.lg)
	if err != nil {
		k.lg.Error(err)
		return porter.Stats{}, operationError("import", ErrImport, path, err)
	}

	k.lg.Successf(
		"data imported from [%s]: %d rows into %d tables, %d rows skipped",
		path, stats.Rows, stats.Tables, stats.Skipped,
	)

	return stats, nil
}

func (k *Keeper) defaultExportPath() string {
	name := fmt.Sprintf("%s_data_%s.json", k.exportPrefix, k.clock().Format(timestampLayout))
	return filepath.Join(k.exportsFolder, name)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "could not create folder [%s]", dir)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "could not write [%s]", path)
	}

	return nil
}
