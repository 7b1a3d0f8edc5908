package schema

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/turtacn/patent-normalizer/pkg/errors"
	"github.com/turtacn/patent-normalizer/pkg/matchguard"
)

// IssueKind classifies a recovered field-level failure.
type IssueKind string

const (
	IssueConversion IssueKind = "conversion"
	IssueNoMatch    IssueKind = "no_match"
	IssueTimeout    IssueKind = "timeout"
	IssueShape      IssueKind = "shape"
	IssueClaims     IssueKind = "claims"
	IssueUnresolved IssueKind = "unresolved"
)

// maxRawLen bounds how much of an offending input an Issue keeps.
const maxRawLen = 256

// Issue records a field whose input could not be used and was replaced by the
// field's default.  Issues never abort a parse.
type Issue struct {
	Path string
	Kind IssueKind
	Raw  any
	Err  error
}

func (i Issue) String() string {
	msg := ""
	if i.Err != nil {
		msg = i.Err.Error()
	}
	return i.Path + ": " + string(i.Kind) + ": " + msg
}

// MarshalJSON renders Err as its message.
func (i Issue) MarshalJSON() ([]byte, error) {
	out := struct {
		Path  string    `json:"path"`
		Kind  IssueKind `json:"kind"`
		Raw   any       `json:"raw,omitempty"`
		Error string    `json:"error,omitempty"`
	}{Path: i.Path, Kind: i.Kind, Raw: i.Raw}
	if i.Err != nil {
		out.Error = i.Err.Error()
	}
	return json.Marshal(out)
}

// Result is the outcome of parsing one record.
type Result struct {
	Schema string  `json:"schema"`
	Record Record  `json:"record"`
	Issues []Issue `json:"issues,omitempty"`
}

// IssueCounts tallies issues by kind.
func (r *Result) IssueCounts() map[IssueKind]int {
	counts := make(map[IssueKind]int)
	if r == nil {
		return counts
	}
	for _, is := range r.Issues {
		counts[is.Kind]++
	}
	return counts
}

// kindError tags an error with the IssueKind it should be reported under.
type kindError struct {
	kind IssueKind
	err  error
}

func (e *kindError) Error() string { return e.err.Error() }
func (e *kindError) Unwrap() error { return e.err }

// WithKind tags err so that a converter failure is reported under kind
// instead of IssueConversion.
func WithKind(kind IssueKind, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: err}
}

func kindOf(err error, fallback IssueKind) IssueKind {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	if errors.Is(err, matchguard.ErrTimeout) {
		return IssueTimeout
	}
	return fallback
}

// PartialError is returned by a converter that produced a usable Value while
// rejecting part of its input.  Each entry of Errs becomes one Issue.
type PartialError struct {
	Value any
	Errs  []error
}

func (e *PartialError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return "partial conversion: " + strings.Join(msgs, "; ")
}

// Partial wraps value and the rejected parts of the input.  With no errors
// it returns nil so converters can write `return v, schema.Partial(v, errs)`.
func Partial(value any, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &PartialError{Value: value, Errs: errs}
}

// scope carries the issue sink and location of the value being parsed.
type scope struct {
	path  string
	sink  *[]Issue
	guard *matchguard.Guard
}

func newScope(opts parseOptions) scope {
	return scope{sink: new([]Issue), guard: opts.guard}
}

func (s scope) field(name string) scope {
	if s.path == "" {
		s.path = name
	} else {
		s.path = s.path + "." + name
	}
	return s
}

func (s scope) index(i int) scope {
	s.path = s.path + "[" + strconv.Itoa(i) + "]"
	return s
}

func (s scope) report(kind IssueKind, raw any, err error) {
	*s.sink = append(*s.sink, Issue{Path: s.path, Kind: kind, Raw: clipRaw(raw), Err: err})
}

// convert runs conv over raw, reporting failures and returning def (cloned)
// when no usable value results.
func (s scope) convert(conv Converter, raw any, def any) any {
	v, err := conv.Convert(raw)
	if err != nil {
		var pe *PartialError
		if errors.As(err, &pe) {
			for _, e := range pe.Errs {
				s.report(kindOf(e, IssueConversion), nil, e)
			}
			if pe.Value != nil {
				return pe.Value
			}
			return cloneDefault(def)
		}
		s.report(kindOf(err, IssueConversion), raw, err)
		return cloneDefault(def)
	}
	if v == nil {
		return cloneDefault(def)
	}
	return v
}

func (s scope) matchGuard(own matchguard.Guard) matchguard.Guard {
	if s.guard != nil {
		return *s.guard
	}
	return own
}

func clipRaw(raw any) any {
	if str, ok := raw.(string); ok && len(str) > maxRawLen {
		return str[:maxRawLen] + "..."
	}
	return raw
}

// ParseOption adjusts a single Parse call.
type ParseOption func(*parseOptions)

type parseOptions struct {
	guard *matchguard.Guard
}

// WithMatchGuard overrides the match guard of every regex schema reached by
// the parse.
func WithMatchGuard(g matchguard.Guard) ParseOption {
	return func(o *parseOptions) { o.guard = &g }
}

//Personal.AI order the ending
