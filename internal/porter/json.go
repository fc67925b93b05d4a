package porter

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const jsonIndent = "  "

// JSONCodec writes a document as one object keyed by table name, each
// holding an array of row objects. Key order follows the document.
type JSONCodec struct{}

var _ Codec = JSONCodec{}

func (JSONCodec) Encode(doc *Document) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", jsonIndent)

	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(err, "could not encode document to json")
	}

	return buf.Bytes(), nil
}

func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, t := range d.Tables {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := writeJSONString(&buf, t.Name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')

		buf.WriteByte('[')
		for j, r := range t.Rows {
			if j > 0 {
				buf.WriteByte(',')
			}

			b, err := r.MarshalJSON()
			if err != nil {
				return nil, errors.Wrapf(err, "table [%s] row %d", t.Name, j)
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := writeJSONString(&buf, f.Column); err != nil {
			return nil, err
		}
		buf.WriteByte(':')

		b, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, errors.Wrapf(err, "column [%s]", f.Column)
		}
		buf.Write(b)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON keeps a decimal point on integral reals so they decode back
// as reals.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case Null:
		return []byte("null"), nil
	case Integer:
		return []byte(strconv.FormatInt(v.integer, 10)), nil
	case Real:
		if math.IsNaN(v.real) || math.IsInf(v.real, 0) {
			return nil, errors.Errorf("unsupported real value %v", v.real)
		}

		s := strconv.FormatFloat(v.real, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return []byte(s), nil
	case Bool:
		return []byte(strconv.FormatBool(v.boolean)), nil
	default:
		var buf bytes.Buffer
		if err := writeJSONString(&buf, v.text); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}

	// Encoder terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

func (JSONCodec) Decode(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	doc := &Document{}

	for dec.More() {
		name, err := expectKey(dec)
		if err != nil {
			return nil, err
		}

		rows, err := decodeRows(dec, name)
		if err != nil {
			return nil, err
		}

		doc.Tables = append(doc.Tables, Table{Name: name, Rows: rows})
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.Wrap(ErrMalformedDocument, "unexpected data after the document")
	}

	return doc, nil
}

// decodeRows accepts null as a table with no rows.
func decodeRows(dec *json.Decoder, table string) ([]Row, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, malformed(err)
	}

	if tok == nil {
		return nil, nil
	}

	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, errors.Wrapf(ErrMalformedDocument, "table [%s] must hold an array of rows", table)
	}

	rows := []Row{}

	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return nil, errors.Wrapf(err, "table [%s] row %d", table, len(rows))
		}

		var row Row
		for dec.More() {
			column, err := expectKey(dec)
			if err != nil {
				return nil, err
			}

			value, err := decodeValue(dec)
			if err != nil {
				return nil, errors.Wrapf(err, "table [%s] column [%s]", table, column)
			}

			row = append(row, Field{Column: column, Value: value})
		}

		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}

		rows = append(rows, row)
	}

	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}

	return rows, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, malformed(err)
	}

	switch v := tok.(type) {
	case nil:
		return NullValue(), nil
	case string:
		return TextValue(v), nil
	case bool:
		return BoolValue(v), nil
	case json.Number:
		return numberValue(v)
	default:
		return Value{}, errors.Wrap(ErrMalformedDocument, "nested values are not supported")
	}
}

func numberValue(n json.Number) (Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return IntegerValue(i), nil
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, errors.Wrapf(ErrMalformedDocument, "invalid number %s", s)
	}

	return RealValue(f), nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return malformed(err)
	}

	if d, ok := tok.(json.Delim); !ok || d != want {
		return errors.Wrapf(ErrMalformedDocument, "expected %s, got %v", want, tok)
	}

	return nil
}

func expectKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", malformed(err)
	}

	key, ok := tok.(string)
	if !ok {
		return "", errors.Wrapf(ErrMalformedDocument, "expected a key, got %v", tok)
	}

	return key, nil
}

func malformed(err error) error {
	return errors.Wrapf(ErrMalformedDocument, "%s", err)
}
