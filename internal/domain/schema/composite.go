package schema

import (
	"fmt"

	"github.com/turtacn/patent-normalizer/pkg/errors"
)

// Composite maps a keyed record onto a fixed set of output fields.  Every
// declared field is present in every output record.
type Composite struct {
	name   string
	fields []Field
}

// NewComposite validates fields and builds a Composite.  Fields are
// evaluated in declaration order.
func NewComposite(name string, fields ...Field) (*Composite, error) {
	if name == "" {
		return nil, errors.New(errors.CodeSchemaInvalidField, "schema name must not be empty")
	}
	if err := validateFields(name, fields); err != nil {
		return nil, err
	}
	for _, f := range fields {
		if f.kind == KindValue {
			return nil, errors.New(errors.CodeSchemaInvalidField, "value fields are only valid in regex schemas").
				WithDetail(name + "." + f.name)
		}
	}
	return &Composite{name: name, fields: append([]Field(nil), fields...)}, nil
}

// MustComposite is NewComposite that panics on error.  Intended for
// package-level schema declarations.
func MustComposite(name string, fields ...Field) *Composite {
	c, err := NewComposite(name, fields...)
	if err != nil {
		panic(err)
	}
	return c
}

// Name implements Schema.
func (c *Composite) Name() string { return c.name }

// Fields returns a copy of the field declarations.
func (c *Composite) Fields() []Field { return append([]Field(nil), c.fields...) }

// Keys returns the output keys in declaration order.
func (c *Composite) Keys() []string {
	keys := make([]string, len(c.fields))
	for i, f := range c.fields {
		keys[i] = f.name
	}
	return keys
}

// Parse normalizes one raw record.  The only error is a top-level input that
// is not a mapping; field-level failures are reported as Issues.
func (c *Composite) Parse(raw any, opts ...ParseOption) (*Result, error) {
	m, ok := asMapping(raw)
	if !ok {
		return nil, errors.New(errors.CodeInputNotMapping, "input record is not a mapping").
			WithDetail(fmt.Sprintf("schema=%s type=%T", c.name, raw))
	}
	var o parseOptions
	for _, opt := range opts {
		opt(&o)
	}
	sc := newScope(o)
	rec := c.parseMapping(m, sc)
	return &Result{Schema: c.name, Record: rec, Issues: *sc.sink}, nil
}

func (c *Composite) apply(v any, sc scope) any {
	if v == nil {
		return c.zero()
	}
	m, ok := asMapping(v)
	if !ok {
		sc.report(IssueShape, v, fmt.Errorf("%s: expected a mapping, got %T", c.name, v))
		return c.zero()
	}
	return c.parseMapping(m, sc)
}

func (c *Composite) parseMapping(m map[string]any, sc scope) Record {
	rec := make(Record, len(c.fields))
	for _, f := range c.fields {
		fsc := sc.field(f.name)
		switch f.kind {
		case KindScalar:
			raw, ok := f.path.Resolve(m)
			if !ok {
				rec[f.name] = cloneDefault(f.def)
				continue
			}
			rec[f.name] = fsc.convert(f.conv, raw, f.def)
		case KindNested:
			raw, ok := f.path.Resolve(m)
			if !ok {
				rec[f.name] = f.schema.zero()
				continue
			}
			rec[f.name] = f.schema.apply(raw, fsc)
		case KindSibling:
			rec[f.name] = f.schema.apply(m, fsc)
		}
	}
	return rec
}

func (c *Composite) zero() any {
	rec := make(Record, len(c.fields))
	for _, f := range c.fields {
		rec[f.name] = f.zero()
	}
	return rec
}

func (c *Composite) children() []Schema {
	var out []Schema
	for _, f := range c.fields {
		if f.schema != nil {
			out = append(out, f.schema)
		}
	}
	return out
}

//Personal.AI order the ending
