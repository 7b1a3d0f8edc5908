package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Converter turns a raw present value into its normalized form.
//
// Converters are pure.  They are never called for absent values; a converter
// that returns (nil, nil) signals "no value" (for example a blank date
// string) and the field default applies without an Issue.
type Converter interface {
	Name() string
	Convert(raw any) (any, error)
}

type funcConverter struct {
	name string
	fn   func(any) (any, error)
}

func (c funcConverter) Name() string                 { return c.name }
func (c funcConverter) Convert(raw any) (any, error) { return c.fn(raw) }

// Func adapts fn into a named Converter.
func Func(name string, fn func(raw any) (any, error)) Converter {
	return funcConverter{name: name, fn: fn}
}

// conversionError describes raw input a converter could not accept.
type conversionError struct {
	conv string
	raw  any
	msg  string
}

func (e *conversionError) Error() string {
	return fmt.Sprintf("%s: cannot convert %T %s: %s", e.conv, e.raw, quoteRaw(e.raw), e.msg)
}

func convErr(conv string, raw any, msg string) error {
	return &conversionError{conv: conv, raw: clipRaw(raw), msg: msg}
}

func quoteRaw(raw any) string {
	if s, ok := raw.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprintf("%v", raw)
}

// scalarText renders a scalar as text.  Containers are rejected.
func scalarText(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	}
	return "", false
}

// String converts scalars to their text form.
func String() Converter {
	return Func("string", func(raw any) (any, error) {
		s, ok := scalarText(raw)
		if !ok {
			return nil, convErr("string", raw, "not a scalar")
		}
		return s, nil
	})
}

// Integer converts numbers and numeric strings to int.  Blank strings are
// "no value".
func Integer() Converter {
	return Func("integer", func(raw any) (any, error) {
		switch v := raw.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
				return nil, convErr("integer", raw, "not a whole number")
			}
			return int(v), nil
		case json.Number:
			return parseInt(raw, v.String())
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				return nil, nil
			}
			return parseInt(raw, s)
		}
		return nil, convErr("integer", raw, "unsupported type")
	})
}

func parseInt(raw any, s string) (any, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) {
			return nil, convErr("integer", raw, "not an integer")
		}
		return int(f), nil
	}
	return n, nil
}

// Float converts numbers and numeric strings to float64.
func Float() Converter {
	return Func("float", func(raw any) (any, error) {
		switch v := raw.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return nil, convErr("float", raw, "not a number")
			}
			return f, nil
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				return nil, nil
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, convErr("float", raw, "not a number")
			}
			return f, nil
		}
		return nil, convErr("float", raw, "unsupported type")
	})
}

// Bool accepts booleans, 0/1, and the strings true/false, yes/no, y/n, 1/0
// in any case.
func Bool() Converter {
	return Func("bool", func(raw any) (any, error) {
		switch v := raw.(type) {
		case bool:
			return v, nil
		case int:
			return boolFromInt(raw, int64(v))
		case int64:
			return boolFromInt(raw, v)
		case float64:
			if v == 0 || v == 1 {
				return v == 1, nil
			}
		case json.Number:
			if n, err := v.Int64(); err == nil {
				return boolFromInt(raw, n)
			}
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "":
				return nil, nil
			case "true", "yes", "y", "1":
				return true, nil
			case "false", "no", "n", "0":
				return false, nil
			}
		}
		return nil, convErr("bool", raw, "not a boolean")
	})
}

func boolFromInt(raw any, n int64) (any, error) {
	switch n {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return nil, convErr("bool", raw, "not a boolean")
}

// Contains reports whether the text form of the value contains substr.
// Matching is case-sensitive.
func Contains(substr string) Converter {
	name := "contains(" + substr + ")"
	return Func(name, func(raw any) (any, error) {
		s, ok := scalarText(raw)
		if !ok {
			return nil, convErr(name, raw, "not a scalar")
		}
		return strings.Contains(s, substr), nil
	})
}

// DateRule parses one textual date representation.
type DateRule struct {
	name  string
	parse func(string) (time.Time, bool)
}

// Name returns the rule identifier.
func (r DateRule) Name() string { return r.name }

var isoLayouts = []string{
	"2006-01-02",
	"20060102",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// ISODate accepts calendar dates and timestamps in the layouts patent
// services emit.  Timestamps keep their time of day, in UTC.
var ISODate = DateRule{
	name: "iso",
	parse: func(s string) (time.Time, bool) {
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
		return time.Time{}, false
	},
}

// YearMonth reads the first six digits as YYYYMM and pins the day to 1.
// "20010315", "200103" and "2001-03" all yield 2001-03-01.
var YearMonth = DateRule{
	name: "year_month",
	parse: func(s string) (time.Time, bool) {
		digits := make([]byte, 0, 6)
		for i := 0; i < len(s) && len(digits) < 6; i++ {
			c := s[i]
			switch {
			case c >= '0' && c <= '9':
				digits = append(digits, c)
			case c == '-' || c == '/' || c == '.':
			default:
				return time.Time{}, false
			}
		}
		if len(digits) < 6 {
			return time.Time{}, false
		}
		year, _ := strconv.Atoi(string(digits[:4]))
		month, _ := strconv.Atoi(string(digits[4:6]))
		if month < 1 || month > 12 {
			return time.Time{}, false
		}
		return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
	},
}

// Date parses text with rule into a UTC time.Time.  Blank strings are "no
// value".
func Date(rule DateRule) Converter {
	name := "date(" + rule.name + ")"
	return Func(name, func(raw any) (any, error) {
		if t, ok := raw.(time.Time); ok {
			return t, nil
		}
		s, ok := scalarText(raw)
		if !ok {
			return nil, convErr(name, raw, "not a scalar")
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		t, ok := rule.parse(s)
		if !ok {
			return nil, convErr(name, raw, "unrecognized date")
		}
		return t, nil
	})
}

// ListOf converts every element of a sequence with conv.  A lone scalar is
// treated as a one-element sequence.  Elements that fail are dropped and
// reported through a PartialError; null elements are dropped silently.
func ListOf(conv Converter) Converter {
	name := "list(" + conv.Name() + ")"
	return Func(name, func(raw any) (any, error) {
		items, ok := asSequence(raw)
		if !ok {
			if _, isMap := asMapping(raw); isMap {
				return nil, convErr(name, raw, "mapping is not a sequence")
			}
			items = []any{raw}
		}
		out := make([]any, 0, len(items))
		var errs []error
		for i, item := range items {
			if item == nil {
				continue
			}
			v, err := conv.Convert(item)
			if err != nil {
				errs = append(errs, fmt.Errorf("element %d: %w", i, err))
				continue
			}
			if v != nil {
				out = append(out, v)
			}
		}
		return out, Partial(out, errs)
	})
}

//Personal.AI order the ending
