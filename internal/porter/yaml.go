package porter

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// YAMLCodec mirrors the JSON layout using ordered YAML mappings.
type YAMLCodec struct{}

var _ Codec = YAMLCodec{}

func (YAMLCodec) Encode(doc *Document) ([]byte, error) {
	out := make(yaml.MapSlice, 0, len(doc.Tables))

	for _, t := range doc.Tables {
		rows := make([]yaml.MapSlice, 0, len(t.Rows))

		for _, r := range t.Rows {
			row := make(yaml.MapSlice, 0, len(r))
			for _, f := range r {
				if f.Value.Kind() == Real && (math.IsNaN(f.Value.real) || math.IsInf(f.Value.real, 0)) {
					return nil, errors.Errorf("table [%s] column [%s]: unsupported real value %v", t.Name, f.Column, f.Value.real)
				}
				row = append(row, yaml.MapItem{Key: f.Column, Value: f.Value.Interface()})
			}
			rows = append(rows, row)
		}

		out = append(out, yaml.MapItem{Key: t.Name, Value: rows})
	}

	b, err := yaml.Marshal(out)
	if err != nil {
		return nil, errors.Wrap(err, "could not encode document to yaml")
	}

	return b, nil
}

func (YAMLCodec) Decode(data []byte) (*Document, error) {
	var in yaml.MapSlice
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, malformed(err)
	}

	doc := &Document{}

	for _, item := range in {
		name, ok := item.Key.(string)
		if !ok {
			return nil, errors.Wrapf(ErrMalformedDocument, "table name %v is not a string", item.Key)
		}

		t := Table{Name: name}

		if item.Value != nil {
			list, ok := item.Value.([]interface{})
			if !ok {
				return nil, errors.Wrapf(ErrMalformedDocument, "table [%s] must hold a list of rows", name)
			}

			t.Rows = make([]Row, 0, len(list))
			for i, raw := range list {
				row, err := yamlRow(raw)
				if err != nil {
					return nil, errors.Wrapf(err, "table [%s] row %d", name, i)
				}
				t.Rows = append(t.Rows, row)
			}
		}

		doc.Tables = append(doc.Tables, t)
	}

	return doc, nil
}

func yamlRow(raw interface{}) (Row, error) {
	fields, ok := raw.(yaml.MapSlice)
	if !ok {
		return nil, errors.Wrap(ErrMalformedDocument, "row must be a mapping")
	}

	row := make(Row, 0, len(fields))
	for _, f := range fields {
		column, ok := f.Key.(string)
		if !ok {
			column = fmt.Sprint(f.Key)
		}

		value, err := yamlValue(f.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "column [%s]", column)
		}

		row = append(row, Field{Column: column, Value: value})
	}

	return row, nil
}

func yamlValue(raw interface{}) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return NullValue(), nil
	case string:
		return TextValue(v), nil
	case bool:
		return BoolValue(v), nil
	case int:
		return IntegerValue(int64(v)), nil
	case int64:
		return IntegerValue(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return Value{}, errors.Wrapf(ErrMalformedDocument, "integer %d is out of range", v)
		}
		return IntegerValue(int64(v)), nil
	case float64:
		return RealValue(v), nil
	default:
		return Value{}, errors.Wrap(ErrMalformedDocument, "nested values are not supported")
	}
}
