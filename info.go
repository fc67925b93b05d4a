package storekeeper

import (
	"context"
	"os"

	"github.com/denismitr/storekeeper/internal/database"
	"github.com/denismitr/storekeeper/migration"
	"github.com/pkg/errors"
)

type TableInfo struct {
	Name string
	Rows int64
}

type Info struct {
	// Database is empty when the database is not a local file.
	Database string
	Size     int64
	Tables   []TableInfo
	Applied  []migration.Applied
}

func (k *Keeper) Info(ctx context.Context) (*Info, error) {
	info := &Info{}

	file, err := k.gateway.DatabaseFile(ctx)
	switch {
	case err == nil:
		info.Database = file
		if st, statErr := os.Stat(file); statErr == nil {
			info.Size = st.Size()
		}
	case errors.Is(err, database.ErrNotFileBacked):
		k.lg.Debugf("database is not backed by a file")
	default:
		return nil, operationError("info", ErrInfo, "", err)
	}

	tables, err := k.gateway.ShowTables(ctx)
	if err != nil {
		return nil, operationError("info", ErrInfo, "", err)
	}

	for _, t := range tables {
		rows, err := k.gateway.CountRows(ctx, t)
		if err != nil {
			return nil, operationError("info", ErrInfo, "", err)
		}

		info.Tables = append(info.Tables, TableInfo{Name: t, Rows: rows})
	}

	info.Applied, err = k.gateway.ReadVersions(ctx)
	if err != nil {
		return nil, operationError("info", ErrInfo, "", err)
	}

	return info, nil
}
