package schema

import (
	"fmt"

	"github.com/turtacn/patent-normalizer/pkg/errors"
)

// ZipSchema fuses parallel sequences stored under separate keys into a
// sequence of records.  Element i of every source column becomes record i.
//
// Ragged columns are truncated to the shortest present column.  A column
// whose path is absent (or null) does not take part in the length and its
// field takes the default in every record; a present empty column yields no
// records.  A present scalar is a one-element column and a null cell takes
// the field default.
type ZipSchema struct {
	name   string
	fields []Field
}

// NewZipSchema builds a ZipSchema from Scalar fields whose paths address
// the source columns.
func NewZipSchema(name string, fields ...Field) (*ZipSchema, error) {
	if name == "" {
		return nil, errors.New(errors.CodeSchemaInvalidField, "schema name must not be empty")
	}
	if len(fields) == 0 {
		return nil, errors.New(errors.CodeSchemaInvalidField, "zip schema needs at least one field").
			WithDetail("schema=" + name)
	}
	if err := validateFields(name, fields); err != nil {
		return nil, err
	}
	for _, f := range fields {
		if f.kind != KindScalar {
			return nil, errors.Newf(errors.CodeSchemaInvalidField, "zip schema fields must be scalar fields, got %s", f.kind).
				WithDetail(name + "." + f.name)
		}
		if f.path.IsIdentity() {
			return nil, errors.New(errors.CodeSchemaInvalidField, "zip field needs a source path").
				WithDetail(name + "." + f.name)
		}
	}
	return &ZipSchema{name: name, fields: append([]Field(nil), fields...)}, nil
}

// MustZipSchema is NewZipSchema that panics on error.
func MustZipSchema(name string, fields ...Field) *ZipSchema {
	s, err := NewZipSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name implements Schema.
func (s *ZipSchema) Name() string { return s.name }

func (s *ZipSchema) apply(v any, sc scope) any {
	if v == nil {
		return s.zero()
	}
	m, ok := asMapping(v)
	if !ok {
		sc.report(IssueShape, v, fmt.Errorf("%s: expected a mapping, got %T", s.name, v))
		return s.zero()
	}

	columns := make([][]any, len(s.fields))
	present := make([]bool, len(s.fields))
	n := -1
	for i, f := range s.fields {
		raw, ok := f.path.Resolve(m)
		if !ok {
			continue
		}
		col, isSeq := asSequence(raw)
		if !isSeq {
			col = []any{raw}
		}
		columns[i], present[i] = col, true
		if n < 0 || len(col) < n {
			n = len(col)
		}
	}
	if n <= 0 {
		return s.zero()
	}

	out := make([]any, n)
	for row := 0; row < n; row++ {
		rsc := sc.index(row)
		rec := make(Record, len(s.fields))
		for i, f := range s.fields {
			if !present[i] || columns[i][row] == nil {
				rec[f.name] = cloneDefault(f.def)
				continue
			}
			rec[f.name] = rsc.field(f.name).convert(f.conv, columns[i][row], f.def)
		}
		out[row] = rec
	}
	return out
}

func (s *ZipSchema) zero() any          { return []any{} }
func (s *ZipSchema) children() []Schema { return nil }

//Personal.AI order the ending
