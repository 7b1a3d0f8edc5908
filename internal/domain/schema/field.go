package schema

import (
	"github.com/turtacn/patent-normalizer/pkg/errors"
)

// Record is a normalized record.  Nested records are Records and sequences
// are []any.
type Record = map[string]any

// FieldKind tags the variant of a Field.
type FieldKind int

const (
	// KindScalar reads the value at a path and converts it.
	KindScalar FieldKind = iota + 1
	// KindNested reads the value at a path and hands it to a schema.
	KindNested
	// KindSibling hands the enclosing record itself to a schema.
	KindSibling
	// KindValue converts the value being parsed (a regex group or a bare
	// value) rather than a keyed entry.
	KindValue
)

func (k FieldKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindNested:
		return "nested"
	case KindSibling:
		return "sibling"
	case KindValue:
		return "value"
	}
	return "unknown"
}

// Field declares one output key of a schema.  Fields are immutable values;
// a declaration error is carried inside the Field and surfaced by the schema
// constructor that receives it.
type Field struct {
	name   string
	kind   FieldKind
	path   Path
	conv   Converter
	schema Schema
	def    any
	err    error
}

// Scalar declares a field converted from the value at path.
func Scalar(name, path string, conv Converter, def any) Field {
	f := Field{name: name, kind: KindScalar, conv: conv, def: def}
	f.path, f.err = CompilePath(path)
	return f
}

// Nested declares a field parsed by s from the value at path.  An absent
// value yields the schema's zero value.
func Nested(name, path string, s Schema) Field {
	f := Field{name: name, kind: KindNested, schema: s}
	f.path, f.err = CompilePath(path)
	return f
}

// Sibling declares a field parsed by s from the enclosing record itself, so
// that s reads keys next to this field's own.
func Sibling(name string, s Schema) Field {
	return Field{name: name, kind: KindSibling, schema: s}
}

// Value declares a field converted from the value being parsed.  Inside a
// regex schema name selects the capture group of the same name.
func Value(name string, conv Converter, def any) Field {
	return Field{name: name, kind: KindValue, conv: conv, def: def}
}

// Name returns the output key.
func (f Field) Name() string { return f.name }

// Kind returns the field variant.
func (f Field) Kind() FieldKind { return f.kind }

// Path returns the source path; the identity path for sibling and value
// fields.
func (f Field) Path() Path { return f.path }

// Default returns a copy of the declared default.
func (f Field) Default() any { return cloneDefault(f.def) }

func (f Field) validate(owner string) error {
	if f.err != nil {
		return errors.Wrap(f.err, errors.CodeUnknown, "invalid field path").
			WithDetail(owner + "." + f.name)
	}
	if f.name == "" {
		return errors.New(errors.CodeSchemaInvalidField, "field name must not be empty").
			WithDetail("schema=" + owner)
	}
	switch f.kind {
	case KindScalar, KindValue:
		if f.conv == nil {
			return errors.New(errors.CodeSchemaInvalidField, "field has no converter").
				WithDetail(owner + "." + f.name)
		}
	case KindNested, KindSibling:
		if f.schema == nil {
			return errors.New(errors.CodeSchemaInvalidField, "field has no schema").
				WithDetail(owner + "." + f.name)
		}
	default:
		return errors.New(errors.CodeSchemaInvalidField, "field has no kind").
			WithDetail(owner + "." + f.name)
	}
	return nil
}

// validateFields checks every field and name uniqueness.
func validateFields(owner string, fields []Field) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if err := f.validate(owner); err != nil {
			return err
		}
		if seen[f.name] {
			return errors.Newf(errors.CodeSchemaDuplicate, "field %q declared twice", f.name).
				WithDetail("schema=" + owner)
		}
		seen[f.name] = true
	}
	return nil
}

// zero is the value a field takes when its input is absent.
func (f Field) zero() any {
	switch f.kind {
	case KindNested, KindSibling:
		return f.schema.zero()
	}
	return cloneDefault(f.def)
}

// cloneDefault copies container defaults so records never share them.
func cloneDefault(def any) any {
	switch d := def.(type) {
	case []any:
		out := make([]any, len(d))
		copy(out, d)
		return out
	case []string:
		out := make([]string, len(d))
		copy(out, d)
		return out
	case map[string]any:
		out := make(map[string]any, len(d))
		for k, v := range d {
			out[k] = v
		}
		return out
	}
	return def
}

//Personal.AI order the ending
