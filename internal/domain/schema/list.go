package schema

import (
	"fmt"

	"github.com/turtacn/patent-normalizer/pkg/errors"
)

// ListSchema parses every element of a sequence with an item schema.  A
// single non-sequence value is treated as a one-element sequence.  Null
// elements and items that parse to nil are dropped.
type ListSchema struct {
	name string
	item Schema
}

// NewListSchema builds a ListSchema.
func NewListSchema(name string, item Schema) (*ListSchema, error) {
	if name == "" {
		return nil, errors.New(errors.CodeSchemaInvalidField, "schema name must not be empty")
	}
	if item == nil {
		return nil, errors.New(errors.CodeSchemaInvalidField, "list schema has no item schema").
			WithDetail("schema=" + name)
	}
	return &ListSchema{name: name, item: item}, nil
}

// MustListSchema is NewListSchema that panics on error.
func MustListSchema(name string, item Schema) *ListSchema {
	s, err := NewListSchema(name, item)
	if err != nil {
		panic(err)
	}
	return s
}

// Name implements Schema.
func (s *ListSchema) Name() string { return s.name }

func (s *ListSchema) apply(v any, sc scope) any {
	if v == nil {
		return s.zero()
	}
	items, ok := asSequence(v)
	if !ok {
		if _, isMap := asMapping(v); isMap {
			items = []any{v}
		} else if _, isText := scalarText(v); isText {
			items = []any{v}
		} else {
			sc.report(IssueShape, v, fmt.Errorf("%s: expected a sequence, got %T", s.name, v))
			return s.zero()
		}
	}
	out := make([]any, 0, len(items))
	for i, item := range items {
		if item == nil {
			continue
		}
		if r := s.item.apply(item, sc.index(i)); r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (s *ListSchema) zero() any          { return []any{} }
func (s *ListSchema) children() []Schema { return []Schema{s.item} }

//Personal.AI order the ending
