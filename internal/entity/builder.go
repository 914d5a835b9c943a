package entity

import (
	"fmt"
	"slices"

	"golang.org/x/text/language"

	"github.com/roach88/formstate/internal/i18n"
	"github.com/roach88/formstate/internal/reactive"
	"github.com/roach88/formstate/internal/schema"
)

// Builder allocates nodes from the entities of a registry.
type Builder struct {
	rt  *reactive.Runtime
	reg *schema.Registry
	tr  i18n.Translator
}

// NewBuilder creates a builder. A nil translator means English messages.
func NewBuilder(rt *reactive.Runtime, reg *schema.Registry, tr i18n.Translator) *Builder {
	if tr == nil {
		tr = i18n.NewCatalog(language.English)
	}
	return &Builder{rt: rt, reg: reg, tr: tr}
}

// Runtime returns the runtime shared by every node of the builder.
func (b *Builder) Runtime() *reactive.Runtime { return b.rt }

// Registry returns the registry entity references resolve against.
func (b *Builder) Registry() *schema.Registry { return b.reg }

// Translator returns the translator used for field errors.
func (b *Builder) Translator() i18n.Translator { return b.tr }

// Build resolves name and allocates an empty node for it.
func (b *Builder) Build(name string) (*Node, error) {
	e, err := b.reg.Resolve(name)
	if err != nil {
		return nil, err
	}
	return b.BuildEntity(e)
}

// BuildEntity allocates an empty node for e: every field undefined, every
// nested object allocated, every list empty. References are resolved now
// so a missing entity fails here rather than on the first write.
func (b *Builder) BuildEntity(e *schema.Entity) (*Node, error) {
	return b.build(e, nil)
}

func (b *Builder) build(e *schema.Entity, embedding []string) (*Node, error) {
	embedding = append(embedding, e.Name())
	n := &Node{
		b:       b,
		entity:  e,
		members: make(map[string]Member, e.Len()),
	}
	for _, entry := range e.Entries() {
		switch entry := entry.(type) {
		case schema.FieldEntry:
			n.members[entry.Name] = newSchemaField(b.rt, b.tr, entry)
		case schema.ObjectEntry:
			if slices.Contains(embedding, entry.EntityName) {
				return nil, &schema.EmbeddingCycleError{Path: append(slices.Clone(embedding), entry.EntityName)}
			}
			child, err := b.resolve(e, entry)
			if err != nil {
				return nil, err
			}
			node, err := b.build(child, embedding)
			if err != nil {
				return nil, err
			}
			node.parent = n
			n.members[entry.Name] = node
		case schema.ListEntry:
			item, err := b.resolve(e, entry)
			if err != nil {
				return nil, err
			}
			n.members[entry.Name] = newList(b, item, n)
		}
	}
	return n, nil
}

func (b *Builder) resolve(owner *schema.Entity, entry schema.Entry) (*schema.Entity, error) {
	ref, _ := schema.Ref(entry)
	e, err := b.reg.Resolve(ref)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", owner.Name(), entry.Prop(), err)
	}
	return e, nil
}
