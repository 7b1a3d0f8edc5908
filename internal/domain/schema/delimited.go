package schema

import (
	"fmt"
	"strings"

	"github.com/turtacn/patent-normalizer/pkg/errors"
)

// DelimitedSchema splits text on a literal delimiter and parses every token
// with a sub-schema.
type DelimitedSchema struct {
	name  string
	delim string
	sub   Schema
}

// NewDelimitedSchema builds a DelimitedSchema.  The delimiter is literal and
// must not be empty.
func NewDelimitedSchema(name, delim string, sub Schema) (*DelimitedSchema, error) {
	if name == "" {
		return nil, errors.New(errors.CodeSchemaInvalidField, "schema name must not be empty")
	}
	if delim == "" {
		return nil, errors.New(errors.CodeSchemaInvalidDelimiter, "delimiter must not be empty").
			WithDetail("schema=" + name)
	}
	if sub == nil {
		return nil, errors.New(errors.CodeSchemaInvalidField, "delimited schema has no token schema").
			WithDetail("schema=" + name)
	}
	return &DelimitedSchema{name: name, delim: delim, sub: sub}, nil
}

// MustDelimitedSchema is NewDelimitedSchema that panics on error.
func MustDelimitedSchema(name, delim string, sub Schema) *DelimitedSchema {
	s, err := NewDelimitedSchema(name, delim, sub)
	if err != nil {
		panic(err)
	}
	return s
}

// Name implements Schema.
func (s *DelimitedSchema) Name() string { return s.name }

// Split returns the trimmed, non-empty tokens of text.
func (s *DelimitedSchema) Split(text string) []string {
	parts := strings.Split(text, s.delim)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *DelimitedSchema) apply(v any, sc scope) any {
	if v == nil {
		return s.zero()
	}

	var tokens []string
	if text, ok := scalarText(v); ok {
		tokens = s.Split(text)
	} else if items, ok := asSequence(v); ok {
		for _, item := range items {
			if item == nil {
				continue
			}
			text, ok := scalarText(item)
			if !ok {
				sc.report(IssueShape, item, fmt.Errorf("%s: sequence element is %T, not text", s.name, item))
				continue
			}
			tokens = append(tokens, s.Split(text)...)
		}
	} else {
		sc.report(IssueShape, v, fmt.Errorf("%s: expected text, got %T", s.name, v))
		return s.zero()
	}

	out := make([]any, 0, len(tokens))
	for i, tok := range tokens {
		if r := s.sub.apply(tok, sc.index(i)); r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (s *DelimitedSchema) zero() any          { return []any{} }
func (s *DelimitedSchema) children() []Schema { return []Schema{s.sub} }

//Personal.AI order the ending
