// Package schema is the declarative field-mapping engine that turns flattened
// patent-record payloads into typed nested records.
//
// A schema is an immutable value built once from explicit Field
// declarations and shared by every parse.  Parsing never fails on bad field
// data: a value that cannot be used is replaced by the field default and an
// Issue is recorded next to the record.  Only declaration mistakes (bad
// paths, bad patterns, duplicate names, unresolved or cyclic references) are
// errors, and they surface when the schema is constructed or sealed.
package schema

// Schema is implemented by every schema kind in this package.
type Schema interface {
	// Name identifies the schema in registries and issue reports.
	Name() string

	apply(v any, sc scope) any
	zero() any
	children() []Schema
}

// Apply parses v with s and collects issues.  Unlike Composite.Parse it
// accepts any input shape; a composite given a non-mapping yields its zero
// record plus a shape issue.
func Apply(s Schema, v any, opts ...ParseOption) (any, []Issue) {
	var o parseOptions
	for _, opt := range opts {
		opt(&o)
	}
	sc := newScope(o)
	out := s.apply(v, sc)
	return out, *sc.sink
}

// Zero returns the value s produces for an absent input.
func Zero(s Schema) any { return s.zero() }

// ValueSchema applies a converter to a bare value.  It lets delimited and
// list schemas carry plain scalars.
type ValueSchema struct {
	name string
	conv Converter
	def  any
}

// NewValueSchema builds a ValueSchema.  conv must not be nil.
func NewValueSchema(name string, conv Converter, def any) (*ValueSchema, error) {
	f := Value(name, conv, def)
	if err := f.validate(name); err != nil {
		return nil, err
	}
	return &ValueSchema{name: name, conv: conv, def: def}, nil
}

// MustValueSchema is NewValueSchema that panics on error.
func MustValueSchema(name string, conv Converter, def any) *ValueSchema {
	s, err := NewValueSchema(name, conv, def)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *ValueSchema) Name() string       { return s.name }
func (s *ValueSchema) zero() any          { return cloneDefault(s.def) }
func (s *ValueSchema) children() []Schema { return nil }

func (s *ValueSchema) apply(v any, sc scope) any {
	if v == nil {
		return s.zero()
	}
	return sc.convert(s.conv, v, s.def)
}

//Personal.AI order the ending
