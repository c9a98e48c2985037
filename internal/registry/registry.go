// Package registry holds the entities defined by loaded source files.
//
// An entity is bound when it is reachable from the root namespace by its
// qualified name. Unbinding an entity does not forget it: it stays live until
// the next Sweep, so subtype queries can still return it. Callers that must
// not see such stale entities filter with IsLegitimate.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"warmtest/internal/domain"
)

// Separator joins the segments of a qualified name
const Separator = "."

// Entity is a named, possibly abstract, test type
type Entity struct {
	Name   string
	Base   *Entity
	Cases  []domain.TestCase
	Source string

	members map[string]*Entity
}

// IsSubtypeOf reports whether base is a strict ancestor of e
func (e *Entity) IsSubtypeOf(base *Entity) bool {
	if e == nil || base == nil {
		return false
	}
	for p := e.Base; p != nil; p = p.Base {
		if p == base {
			return true
		}
	}
	return false
}

func (e *Entity) String() string {
	return e.Name
}

// NotFoundError reports a qualified name with an undefined segment
type NotFoundError struct {
	Name    string
	Segment string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("uninitialized entity %s (%s is not defined)", e.Name, e.Segment)
}

// Registry maps qualified names to entities
type Registry struct {
	mu   sync.RWMutex
	root *Entity
	live map[*Entity]struct{}
}

// New creates an empty Registry
func New() *Registry {
	return &Registry{
		root: &Entity{members: make(map[string]*Entity)},
		live: make(map[*Entity]struct{}),
	}
}

// Define binds a new entity under name, creating intermediate namespaces.
// A previous binding of the same name is replaced and becomes stale.
func (r *Registry) Define(name string, base *Entity, source string, cases ...domain.TestCase) (*Entity, error) {
	segments := strings.Split(name, Separator)
	for _, s := range segments {
		if s == "" {
			return nil, fmt.Errorf("invalid entity name %q", name)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ns := r.root
	for i, s := range segments[:len(segments)-1] {
		child, ok := ns.members[s]
		if !ok {
			child = &Entity{
				Name:    strings.Join(segments[:i+1], Separator),
				Source:  source,
				members: make(map[string]*Entity),
			}
			ns.members[s] = child
			r.live[child] = struct{}{}
		}
		ns = child
	}

	short := segments[len(segments)-1]
	e := &Entity{
		Name:    name,
		Base:    base,
		Cases:   cases,
		Source:  source,
		members: make(map[string]*Entity),
	}
	if prev, ok := ns.members[short]; ok {
		// nested definitions survive a redefinition of their namespace
		for k, v := range prev.members {
			e.members[k] = v
		}
	}
	ns.members[short] = e
	r.live[e] = struct{}{}
	return e, nil
}

// Resolve looks name up without failing
func (r *Registry) Resolve(name string) (*Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, missing := r.resolveLocked(name)
	return e, missing == "" && e != nil
}

// MustResolve looks name up, walking segments from the root
func (r *Registry) MustResolve(name string) (*Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, missing := r.resolveLocked(name)
	if missing != "" {
		return nil, &NotFoundError{Name: name, Segment: missing}
	}
	return e, nil
}

func (r *Registry) resolveLocked(name string) (*Entity, string) {
	if name == "" {
		return nil, Separator
	}
	e := r.root
	for _, s := range strings.Split(name, Separator) {
		child, ok := e.members[s]
		if !ok {
			if s == "" {
				s = name
			}
			return nil, s
		}
		e = child
	}
	return e, ""
}

// IsLegitimate reports whether e is still the entity bound under its own name
func (r *Registry) IsLegitimate(e *Entity) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.legitimateLocked(e)
}

func (r *Registry) legitimateLocked(e *Entity) bool {
	if e == nil || e.Name == "" {
		return false
	}
	bound, missing := r.resolveLocked(e.Name)
	return missing == "" && bound == e
}

// Unregister removes the bindings of names. It returns one result per name in
// input order, nil where nothing was bound. An undefined namespace stops the
// operation with a *NotFoundError; removals done before it stay done.
func (r *Registry) Unregister(names ...string) ([]*Entity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := make([]*Entity, 0, len(names))
	for _, name := range names {
		ns := r.root
		short := name
		if i := strings.LastIndex(name, Separator); i >= 0 {
			nsName := name[:i]
			short = name[i+1:]

			e, missing := r.resolveLocked(nsName)
			if missing != "" {
				return removed, &NotFoundError{Name: nsName, Segment: missing}
			}
			ns = e
		}

		e, ok := ns.members[short]
		if !ok {
			removed = append(removed, nil)
			continue
		}
		delete(ns.members, short)
		removed = append(removed, e)
	}
	return removed, nil
}

// FindSubtypes returns the live strict subtypes of base sorted by name. With
// onlyLegitimate, stale entities are left out.
func (r *Registry) FindSubtypes(base *Entity, onlyLegitimate bool) []*Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found []*Entity
	for e := range r.live {
		if !e.IsSubtypeOf(base) {
			continue
		}
		if onlyLegitimate && !r.legitimateLocked(e) {
			continue
		}
		found = append(found, e)
	}
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Name < found[j].Name
	})
	return found
}

// Sweep forgets unbound entities and returns how many were dropped
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for e := range r.live {
		if !r.legitimateLocked(e) {
			delete(r.live, e)
			n++
		}
	}
	return n
}

// Live returns the number of entities not yet swept
func (r *Registry) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.live)
}
