package porter

import (
	"github.com/pkg/errors"
)

var ErrMalformedDocument = errors.New("malformed export document")

type Field struct {
	Column string
	Value  Value
}

// Row keeps the column order of the source table.
type Row []Field

func (r Row) Get(column string) (Value, bool) {
	for i := range r {
		if r[i].Column == column {
			return r[i].Value, true
		}
	}

	return Value{}, false
}

type Table struct {
	Name string
	Rows []Row
}

// Document is a data only snapshot: tables in catalog order, each with
// its rows. It carries no schema.
type Document struct {
	Tables []Table
}

func (d *Document) Table(name string) (*Table, bool) {
	for i := range d.Tables {
		if d.Tables[i].Name == name {
			return &d.Tables[i], true
		}
	}

	return nil, false
}

func (d *Document) RowCount() int {
	var n int
	for i := range d.Tables {
		n += len(d.Tables[i].Rows)
	}
	return n
}
