package porter

import (
	"context"

	"github.com/denismitr/storekeeper/internal/database"
	"github.com/denismitr/storekeeper/internal/logger"
)

type ImportTarget interface {
	Import(ctx context.Context, fn database.ImportFunc) error
}

type Stats struct {
	Tables  int
	Rows    int
	Skipped int
}

// Import writes every row of the document in one transaction. Each row is
// projected onto the live columns of its table; document columns the table
// no longer has are dropped and rows left with no columns are skipped.
// Cross table references are not checked.
func Import(ctx context.Context, target ImportTarget, doc *Document, lg logger.Logger) (Stats, error) {
	if lg == nil {
		lg = logger.NullLogger{}
	}

	var stats Stats

	err := target.Import(ctx, func(ctx context.Context, imp database.Importer) error {
		stats = Stats{}

		for _, t := range doc.Tables {
			if len(t.Rows) == 0 {
				lg.Debugf("table [%s] has no rows to import", t.Name)
				continue
			}

			live, err := imp.Columns(ctx, t.Name)
			if err != nil {
				return err
			}

			if len(live) == 0 {
				lg.Warnf("table [%s] does not exist, skipping %d rows", t.Name, len(t.Rows))
				stats.Skipped += len(t.Rows)
				continue
			}

			written := 0
			for _, row := range t.Rows {
				columns, values := project(row, live)
				if len(columns) == 0 {
					stats.Skipped++
					continue
				}

				if err := imp.Upsert(ctx, t.Name, columns, values); err != nil {
					return err
				}

				written++
			}

			if written > 0 {
				stats.Tables++
				stats.Rows += written
			}

			lg.Debugf("imported %d rows into [%s]", written, t.Name)
		}

		return nil
	})

	if err != nil {
		return Stats{}, err
	}

	return stats, nil
}

// project keeps the row's own column order. A column repeated in the row
// takes its last value.
func project(row Row, live []string) ([]string, []interface{}) {
	known := make(map[string]struct{}, len(live))
	for _, c := range live {
		known[c] = struct{}{}
	}

	var columns []string
	var values []interface{}
	positions := make(map[string]int, len(row))

	for _, f := range row {
		if _, ok := known[f.Column]; !ok {
			continue
		}

		if i, seen := positions[f.Column]; seen {
			values[i] = f.Value.Interface()
			continue
		}

		positions[f.Column] = len(columns)
		columns = append(columns, f.Column)
		values = append(values, f.Value.Interface())
	}

	return columns, values
}
