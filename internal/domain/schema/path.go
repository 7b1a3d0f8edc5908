package schema

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/turtacn/patent-normalizer/pkg/errors"
)

// segment is one step of a compiled Path.
type segment struct {
	key     string
	index   int
	isIndex bool
}

// Path is a compiled accessor into a raw record.  The zero value is the
// identity path.
type Path struct {
	expr string
	segs []segment
}

// CompilePath parses a path expression.
//
// Segments are separated by dots.  A segment made only of digits indexes a
// sequence ("applicationFilingDate.0"); bracket indexes may follow a key
// ("otherRefPub[0]").  The empty expression is the identity path.
func CompilePath(expr string) (Path, error) {
	if expr == "" {
		return Path{}, nil
	}
	p := Path{expr: expr}
	for _, part := range strings.Split(expr, ".") {
		segs, err := compileSegment(part)
		if err != nil {
			return Path{}, errors.New(errors.CodeSchemaInvalidPath, err.Error()).
				WithDetail("expr=" + strconv.Quote(expr))
		}
		p.segs = append(p.segs, segs...)
	}
	return p, nil
}

// MustPath is CompilePath that panics on error.  Intended for package-level
// declarations.
func MustPath(expr string) Path {
	p, err := CompilePath(expr)
	if err != nil {
		panic(err)
	}
	return p
}

func compileSegment(part string) ([]segment, error) {
	if part == "" {
		return nil, pathError("empty path segment")
	}
	open := strings.IndexByte(part, '[')
	if open < 0 {
		if strings.IndexByte(part, ']') >= 0 {
			return nil, pathError("unexpected ']'")
		}
		if isDigits(part) {
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, pathError("index out of range")
			}
			return []segment{{index: n, isIndex: true}}, nil
		}
		return []segment{{key: part}}, nil
	}

	var segs []segment
	if name := part[:open]; name != "" {
		if strings.IndexByte(name, ']') >= 0 {
			return nil, pathError("unexpected ']'")
		}
		segs = append(segs, segment{key: name})
	}
	rest := part[open:]
	for rest != "" {
		if rest[0] != '[' {
			return nil, pathError("unexpected characters after ']'")
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, pathError("unterminated '['")
		}
		idx := rest[1:end]
		if !isDigits(idx) {
			return nil, pathError("bracket index must be a non-negative integer")
		}
		n, err := strconv.Atoi(idx)
		if err != nil {
			return nil, pathError("index out of range")
		}
		segs = append(segs, segment{index: n, isIndex: true})
		rest = rest[end+1:]
	}
	return segs, nil
}

type pathError string

func (e pathError) Error() string { return string(e) }

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String returns the source expression.
func (p Path) String() string { return p.expr }

// IsIdentity reports whether the path selects its input unchanged.
func (p Path) IsIdentity() bool { return len(p.segs) == 0 }

// Resolve walks v along the path.  It never fails: a missing key, an index
// out of range, a container of the wrong kind or a null value all report
// (nil, false).
func (p Path) Resolve(v any) (any, bool) {
	cur := v
	for _, seg := range p.segs {
		if cur == nil {
			return nil, false
		}
		var ok bool
		if seg.isIndex {
			cur, ok = indexValue(cur, seg.index)
		} else {
			cur, ok = keyValue(cur, seg.key)
		}
		if !ok {
			return nil, false
		}
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

func keyValue(v any, key string) (any, bool) {
	switch m := v.(type) {
	case map[string]any:
		out, ok := m[key]
		return out, ok
	case map[string]string:
		out, ok := m[key]
		return out, ok
	}
	return nil, false
}

func indexValue(v any, i int) (any, bool) {
	switch s := v.(type) {
	case []any:
		if i < len(s) {
			return s[i], true
		}
	case []string:
		if i < len(s) {
			return s[i], true
		}
	case []map[string]any:
		if i < len(s) {
			return s[i], true
		}
	case []json.Number:
		if i < len(s) {
			return s[i], true
		}
	case map[string]any:
		// Some payloads key positional data by its decimal index.
		return keyValue(s, strconv.Itoa(i))
	}
	return nil, false
}

// asSequence views v as an ordered sequence.
func asSequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	case []json.Number:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	}
	return nil, false
}

// asMapping views v as a mapping.
func asMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, e := range m {
			out[k] = e
		}
		return out, true
	}
	return nil, false
}

//Personal.AI order the ending
