package form

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/google/uuid"

	"github.com/roach88/formstate/internal/entity"
	"github.com/roach88/formstate/internal/ir"
	"github.com/roach88/formstate/internal/reactive"
)

// Config configures a form session.
type Config struct {
	// IsEdit is the initial edit mode of every field.
	IsEdit bool
	// ForceErrorDisplay shows errors of untouched fields.
	ForceErrorDisplay bool
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// NewID generates the session id. Defaults to uuid.NewString.
	NewID func() string
}

type session struct {
	id     string
	rt     *reactive.Runtime
	src    *entity.Node
	work   *entity.Node
	edit   *reactive.Value[bool]
	force  *reactive.Value[bool]
	fields map[*entity.Field]*FormField
	nodes  map[*entity.Node]*FormNode
	lists  map[*entity.List]*FormList
	closed bool
	logger *slog.Logger
}

// MakeFormNode opens an editing session on src.
func MakeFormNode(src *entity.Node, cfg Config) (*FormNode, error) {
	newID := cfg.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	id := newID()
	if !src.BeginEdit(id) {
		return nil, fmt.Errorf("%w: %s", ErrSessionActive, src.Entity().Name())
	}

	work := entity.Clone(src)
	rt := src.Runtime()
	s := &session{
		id:     id,
		rt:     rt,
		src:    src,
		work:   work,
		edit:   reactive.NewValue(rt, cfg.IsEdit),
		force:  reactive.NewValue(rt, cfg.ForceErrorDisplay),
		fields: make(map[*entity.Field]*FormField),
		nodes:  make(map[*entity.Node]*FormNode),
		lists:  make(map[*entity.List]*FormList),
		logger: logger,
	}
	s.load(true)

	logger.Debug("form session opened", "session", id, "entity", src.Entity().Name(), "edit", cfg.IsEdit)
	return s.node(work), nil
}

// load copies the source into the working tree in place and rebases every
// field. With fresh set, fields holding a value in edit mode start touched;
// otherwise every field starts untouched.
func (s *session) load(fresh bool) {
	s.rt.Batch(func() {
		entity.Load(s.work, s.src)
		s.rebase(fresh)
	})
}

// rebase makes the current working values the untouched baseline and drops
// wrappers of list items that no longer exist.
func (s *session) rebase(fresh bool) {
	live := make(map[*entity.Field]bool, len(s.fields))
	reactive.Untracked(s.rt, func() struct{} {
		entity.Walk(s.work, func(_ string, f *entity.Field) bool {
			s.field(f).rebase(fresh)
			live[f] = true
			return true
		})
		return struct{}{}
	})
	for f := range s.fields {
		if !live[f] {
			delete(s.fields, f)
		}
	}
	s.prune()
}

// prune drops node and list wrappers that are no longer in the working tree.
func (s *session) prune() {
	nodes := make(map[*entity.Node]bool, len(s.nodes))
	lists := make(map[*entity.List]bool, len(s.lists))
	var visit func(n *entity.Node)
	visit = func(n *entity.Node) {
		nodes[n] = true
		for _, prop := range n.Props() {
			m, _ := n.Member(prop)
			switch m := m.(type) {
			case *entity.Node:
				visit(m)
			case *entity.List:
				lists[m] = true
				for _, item := range reactive.Untracked(s.rt, m.Items) {
					visit(item)
				}
			}
		}
	}
	visit(s.work)
	for n := range s.nodes {
		if !nodes[n] {
			delete(s.nodes, n)
		}
	}
	for l := range s.lists {
		if !lists[l] {
			delete(s.lists, l)
		}
	}
}

func (s *session) field(f *entity.Field) *FormField {
	if ff, ok := s.fields[f]; ok {
		return ff
	}
	ff := newFormField(s, f)
	s.fields[f] = ff
	return ff
}

func (s *session) node(n *entity.Node) *FormNode {
	if fn, ok := s.nodes[n]; ok {
		return fn
	}
	fn := &FormNode{s: s, node: n}
	s.nodes[n] = fn
	return fn
}

func (s *session) list(l *entity.List) *FormList {
	if fl, ok := s.lists[l]; ok {
		return fl
	}
	fl := &FormList{s: s, list: l}
	s.lists[l] = fl
	return fl
}

// failing returns the paths of working fields with a validation error.
func (s *session) failing() []string {
	var out []string
	entity.Walk(s.work, func(path string, f *entity.Field) bool {
		if f.Error() != "" {
			out = append(out, path)
		}
		return true
	})
	return out
}

func (s *session) save() error {
	if s.closed {
		return ErrSessionClosed
	}
	failing := reactive.Untracked(s.rt, s.failing)
	if len(failing) > 0 {
		s.logger.Info("form save rejected", "session", s.id, "entity", s.src.Entity().Name(), "failing", failing)
		return &SaveRejected{FailingFields: failing}
	}
	return s.commit(nil)
}

// commit writes the working values into the source, or data instead when it
// is non-nil, then reloads the working tree so values normalized by the
// source are what the form shows.
func (s *session) commit(data map[string]any) error {
	var err error
	s.rt.Batch(func() {
		if data == nil {
			entity.Assign(s.src, s.work)
		} else if err = s.src.Set(data); err != nil {
			return
		}
		s.load(false)
	})
	if err != nil {
		return fmt.Errorf("commit form: %w", err)
	}
	s.logger.Info("form saved", "session", s.id, "entity", s.src.Entity().Name())
	return nil
}

func (s *session) reset() error {
	if s.closed {
		return ErrSessionClosed
	}
	s.load(true)
	s.logger.Debug("form reset", "session", s.id, "entity", s.src.Entity().Name())
	return nil
}

func (s *session) close() {
	if s.closed {
		return
	}
	s.closed = true
	s.src.EndEdit(s.id)
	s.logger.Debug("form session closed", "session", s.id, "entity", s.src.Entity().Name())
}

func (s *session) dirty() bool {
	work := entity.ToFlatValues(s.work)
	src := entity.ToFlatValues(s.src)
	a, errA := ir.FlatHash(work)
	b, errB := ir.FlatHash(src)
	if errA != nil || errB != nil {
		return !reflect.DeepEqual(work, src)
	}
	return a != b
}
