package schema

import (
	"fmt"
	"sync"

	"github.com/agnivade/levenshtein"
)

// Registry holds named entities and domains. Registration and lookups are
// safe for concurrent use; registered entities are never modified.
type Registry struct {
	mu          sync.RWMutex
	entities    map[string]*Entity
	order       []string
	domains     map[string]Domain
	domainOrder []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[string]*Entity),
		domains:  make(map[string]Domain),
	}
}

// Register adds entities. Registering a name twice is an error; references
// to other entities are not checked here so declarations may come in any
// order. Use Check once everything is registered.
func (r *Registry) Register(entities ...*Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entities {
		if _, dup := r.entities[e.Name()]; dup {
			return &DuplicateEntityError{Name: e.Name()}
		}
		r.entities[e.Name()] = e
		r.order = append(r.order, e.Name())
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(entities ...*Entity) *Registry {
	if err := r.Register(entities...); err != nil {
		panic(err)
	}
	return r
}

// Resolve returns the entity registered under name.
func (r *Registry) Resolve(name string) (*Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entities[name]; ok {
		return e, nil
	}
	return nil, &SchemaNotFoundError{Name: name, Suggestion: closest(name, r.order)}
}

// Names returns entity names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Entities returns registered entities in registration order.
func (r *Registry) Entities() []*Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entity, len(r.order))
	for i, name := range r.order {
		out[i] = r.entities[name]
	}
	return out
}

// RegisterDomain adds a named domain. A later registration under the same
// name replaces the earlier one, which lets schema files refine domains
// declared in Go.
func (r *Registry) RegisterDomain(name string, d Domain) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.domains[name]; !ok {
		r.domainOrder = append(r.domainOrder, name)
	}
	d.Name = name
	r.domains[name] = d
}

// Domain returns the named domain.
func (r *Registry) Domain(name string) (Domain, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.domains[name]
	return d, ok
}

// DomainNames returns domain names in registration order.
func (r *Registry) DomainNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.domainOrder...)
}

// Check verifies that every object and list entry references a registered
// entity and that no entity embeds itself through object entries. All
// problems are returned, not only the first.
func (r *Registry) Check() []error {
	var errs []error
	entities := r.Entities()
	for _, e := range entities {
		for _, entry := range e.Entries() {
			ref, ok := Ref(entry)
			if !ok {
				continue
			}
			if _, err := r.Resolve(ref); err != nil {
				nf := err.(*SchemaNotFoundError)
				nf.From = fmt.Sprintf("%s.%s", e.Name(), entry.Prop())
				errs = append(errs, nf)
			}
		}
	}
	for _, c := range AnalyzeEmbedding(entities) {
		errs = append(errs, c)
	}
	return errs
}

// closest returns the candidate nearest to name, or "" when none is within
// a third of the name length (at least two edits).
func closest(name string, candidates []string) string {
	best, bestDist := "", -1
	limit := max(2, len(name)/3)
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, c)
		if d <= limit && (bestDist < 0 || d < bestDist) {
			best, bestDist = c, d
		}
	}
	return best
}
