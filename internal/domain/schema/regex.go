package schema

import (
	"fmt"
	"regexp"

	"github.com/turtacn/patent-normalizer/pkg/errors"
	"github.com/turtacn/patent-normalizer/pkg/matchguard"
)

// MatchMode selects how a RegexSchema pattern is applied.
type MatchMode int

const (
	// MatchSearch takes the leftmost match anywhere in the input.
	MatchSearch MatchMode = iota
	// MatchFull requires the pattern to span the whole input.
	MatchFull
)

// NoMatchPolicy selects what a RegexSchema yields when nothing matches.
type NoMatchPolicy int

const (
	// NoMatchDefaults yields a record holding every field default.
	NoMatchDefaults NoMatchPolicy = iota
	// NoMatchNull yields nil.
	NoMatchNull
)

// RegexConfig fixes the behavior of one RegexSchema.  The zero value is
// search mode, all-default records on no match and matchguard.Default.
type RegexConfig struct {
	Mode    MatchMode
	NoMatch NoMatchPolicy
	Guard   *matchguard.Guard
}

// RegexSchema builds a record from the named capture groups of a pattern.
// Each field is a Value field whose name is a group name.
type RegexSchema struct {
	name    string
	pattern string
	re      *regexp.Regexp
	fields  []Field
	groups  []int
	cfg     RegexConfig
	guard   matchguard.Guard
}

// NewRegexSchema compiles pattern and binds fields to its named groups.
// Groups without a declared field are ignored.
func NewRegexSchema(name, pattern string, cfg RegexConfig, fields ...Field) (*RegexSchema, error) {
	if name == "" {
		return nil, errors.New(errors.CodeSchemaInvalidField, "schema name must not be empty")
	}
	if err := validateFields(name, fields); err != nil {
		return nil, err
	}

	expr := pattern
	if cfg.Mode == MatchFull {
		expr = `^(?:` + pattern + `)$`
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSchemaInvalidPattern, "pattern does not compile").
			WithDetail("schema=" + name)
	}

	named := 0
	for _, g := range re.SubexpNames() {
		if g != "" {
			named++
		}
	}
	if named == 0 {
		return nil, errors.New(errors.CodeSchemaInvalidPattern, "pattern has no named groups").
			WithDetail("schema=" + name)
	}

	s := &RegexSchema{
		name:    name,
		pattern: pattern,
		re:      re,
		fields:  append([]Field(nil), fields...),
		groups:  make([]int, len(fields)),
		cfg:     cfg,
		guard:   matchguard.Default,
	}
	if cfg.Guard != nil {
		s.guard = *cfg.Guard
	}
	for i, f := range fields {
		if f.kind != KindValue {
			return nil, errors.Newf(errors.CodeSchemaInvalidField, "regex schema fields must be value fields, got %s", f.kind).
				WithDetail(name + "." + f.name)
		}
		idx := re.SubexpIndex(f.name)
		if idx < 0 {
			return nil, errors.Newf(errors.CodeSchemaInvalidPattern, "no named group for field %q", f.name).
				WithDetail("schema=" + name)
		}
		s.groups[i] = idx
	}
	return s, nil
}

// MustRegexSchema is NewRegexSchema that panics on error.
func MustRegexSchema(name, pattern string, cfg RegexConfig, fields ...Field) *RegexSchema {
	s, err := NewRegexSchema(name, pattern, cfg, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name implements Schema.
func (s *RegexSchema) Name() string { return s.name }

// Pattern returns the source pattern as declared.
func (s *RegexSchema) Pattern() string { return s.pattern }

func (s *RegexSchema) apply(v any, sc scope) any {
	if v == nil {
		return s.zero()
	}
	text, ok := scalarText(v)
	if !ok {
		sc.report(IssueShape, v, fmt.Errorf("%s: expected text, got %T", s.name, v))
		return s.zero()
	}

	idx, err := sc.matchGuard(s.guard).FindStringSubmatchIndex(s.re, text)
	if err != nil {
		sc.report(kindOf(err, IssueNoMatch), text, err)
		return s.zero()
	}
	if idx == nil {
		sc.report(IssueNoMatch, text, fmt.Errorf("%s: input does not match pattern", s.name))
		return s.zero()
	}

	rec := make(Record, len(s.fields))
	for i, f := range s.fields {
		g := s.groups[i]
		start, end := idx[2*g], idx[2*g+1]
		if start < 0 {
			rec[f.name] = cloneDefault(f.def)
			continue
		}
		rec[f.name] = sc.field(f.name).convert(f.conv, text[start:end], f.def)
	}
	return rec
}

func (s *RegexSchema) zero() any {
	if s.cfg.NoMatch == NoMatchNull {
		return nil
	}
	rec := make(Record, len(s.fields))
	for _, f := range s.fields {
		rec[f.name] = cloneDefault(f.def)
	}
	return rec
}

func (s *RegexSchema) children() []Schema { return nil }

//Personal.AI order the ending
