package porter

import (
	"context"

	"github.com/denismitr/storekeeper/internal/database"
	"github.com/pkg/errors"
)

type TableReader interface {
	ShowTables(ctx context.Context) ([]string, error)
	ReadRows(ctx context.Context, table string, fn database.RowFunc) error
}

// Export reads every user table in catalog order with its rows in storage
// order. Tables without rows are kept as empty lists.
func Export(ctx context.Context, r TableReader) (*Document, error) {
	tables, err := r.ShowTables(ctx)
	if err != nil {
		return nil, err
	}

	doc := &Document{Tables: make([]Table, 0, len(tables))}

	for _, name := range tables {
		t := Table{Name: name, Rows: []Row{}}

		err := r.ReadRows(ctx, name, func(columns []string, values []interface{}) error {
			row := make(Row, len(columns))
			for i := range columns {
				row[i] = Field{Column: columns[i], Value: FromDriver(values[i])}
			}

			t.Rows = append(t.Rows, row)
			return nil
		})

		if err != nil {
			return nil, errors.Wrapf(err, "could not export table [%s]", name)
		}

		doc.Tables = append(doc.Tables, t)
	}

	return doc, nil
}
