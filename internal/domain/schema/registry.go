package schema

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/turtacn/patent-normalizer/pkg/errors"
)

// Registry names schemas so they can be looked up by transports and
// referenced from other schemas before they are declared.  A registry is
// filled once, sealed, and then only read.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]Schema
	refs    []*Ref
	sealed  bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]Schema)}
}

// Register adds s under its name.
func (r *Registry) Register(s Schema) error {
	if s == nil || s.Name() == "" {
		return errors.New(errors.CodeSchemaInvalidField, "cannot register an unnamed schema")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return errors.New(errors.CodeSchemaSealed, "schema registry is sealed").
			WithDetail("schema=" + s.Name())
	}
	if _, dup := r.schemas[s.Name()]; dup {
		return errors.Newf(errors.CodeSchemaDuplicate, "schema %q registered twice", s.Name())
	}
	r.schemas[s.Name()] = s
	return nil
}

// MustRegister registers every schema and panics on the first error.
func (r *Registry) MustRegister(schemas ...Schema) {
	for _, s := range schemas {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
}

// Ref returns a placeholder for the schema registered as name.  The name
// need not be registered yet; Seal checks that it is.
func (r *Registry) Ref(name string) *Ref {
	ref := &Ref{name: name, reg: r}
	r.mu.Lock()
	r.refs = append(r.refs, ref)
	r.mu.Unlock()
	return ref
}

// Seal verifies that every reference resolves and that no schema reaches
// itself, then freezes the registry.
func (r *Registry) Seal() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return nil
	}
	for _, ref := range r.refs {
		if _, ok := r.schemas[ref.name]; !ok {
			return errors.Newf(errors.CodeSchemaUnresolvedRef, "reference to unregistered schema %q", ref.name)
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[Schema]int)
	var stack []string
	var visit func(s Schema) error
	visit = func(s Schema) error {
		switch state[s] {
		case visiting:
			return errors.New(errors.CodeSchemaCycle, "cyclic schema reference").
				WithDetail(strings.Join(append(stack, s.Name()), " -> "))
		case done:
			return nil
		}
		state[s] = visiting
		stack = append(stack, s.Name())
		for _, c := range r.childrenLocked(s) {
			if err := visit(c); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[s] = done
		return nil
	}
	for _, name := range r.namesLocked() {
		if err := visit(r.schemas[name]); err != nil {
			return err
		}
	}
	r.sealed = true
	return nil
}

// childrenLocked resolves references through the registry map directly so
// Seal can walk the graph while holding the lock.
func (r *Registry) childrenLocked(s Schema) []Schema {
	if ref, ok := s.(*Ref); ok {
		if target, found := r.schemas[ref.name]; found {
			return []Schema{target}
		}
		return nil
	}
	return s.children()
}

// Sealed reports whether Seal has succeeded.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Lookup returns the schema registered as name.
func (r *Registry) Lookup(name string) (Schema, error) {
	r.mu.RLock()
	s, ok := r.schemas[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.CodeSchemaNotFound, "schema not found").WithDetail("schema=" + name)
	}
	return s, nil
}

// Composite returns the record schema registered as name.
func (r *Registry) Composite(name string) (*Composite, error) {
	s, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	c, ok := s.(*Composite)
	if !ok {
		return nil, errors.Newf(errors.CodeInvalidParam, "schema %q is not a record schema", name).
			WithDetail(fmt.Sprintf("kind=%s", KindOf(s)))
	}
	return c, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// KindOf names the kind of s for listings.
func KindOf(s Schema) string {
	switch s.(type) {
	case *Composite:
		return "composite"
	case *RegexSchema:
		return "regex"
	case *DelimitedSchema:
		return "delimited"
	case *ZipSchema:
		return "zip"
	case *ListSchema:
		return "list"
	case *ValueSchema:
		return "value"
	case *Ref:
		return "ref"
	}
	return "unknown"
}

// Ref stands in for a registered schema.  It resolves on every use, so it
// may be created before its target is registered.
type Ref struct {
	name string
	reg  *Registry
}

// Name returns the referenced schema name.
func (r *Ref) Name() string { return r.name }

func (r *Ref) target() (Schema, bool) {
	r.reg.mu.RLock()
	s, ok := r.reg.schemas[r.name]
	r.reg.mu.RUnlock()
	return s, ok
}

func (r *Ref) apply(v any, sc scope) any {
	s, ok := r.target()
	if !ok {
		sc.report(IssueUnresolved, nil, fmt.Errorf("reference to unregistered schema %q", r.name))
		return nil
	}
	return s.apply(v, sc)
}

func (r *Ref) zero() any {
	if s, ok := r.target(); ok {
		return s.zero()
	}
	return nil
}

func (r *Ref) children() []Schema {
	if s, ok := r.target(); ok {
		return []Schema{s}
	}
	return nil
}

//Personal.AI order the ending
