package form

import (
	"context"
	"fmt"

	"github.com/roach88/formstate/internal/entity"
	"github.com/roach88/formstate/internal/reactive"
)

// LoadFunc fetches the data of the edited entity.
type LoadFunc func(ctx context.Context) (map[string]any, error)

// SaveFunc persists the flattened form values. It may return the saved
// data as normalized by the service; nil keeps the form values.
type SaveFunc func(ctx context.Context, data map[string]any) (map[string]any, error)

// ActionsConfig wires a form to the services loading and saving it.
type ActionsConfig struct {
	Load LoadFunc
	Save SaveFunc

	OnLoaded func()
	OnSaved  func()
}

// Actions drives the load, edit, cancel and save cycle of a form against
// user supplied services. The services do the I/O; Actions only sequences
// them with the form.
type Actions struct {
	form    *FormNode
	cfg     ActionsConfig
	loading *reactive.Value[bool]
}

// NewActions creates the actions of form.
func NewActions(form *FormNode, cfg ActionsConfig) *Actions {
	return &Actions{
		form:    form,
		cfg:     cfg,
		loading: reactive.NewValue(form.s.rt, false),
	}
}

// Loading reports whether a Load or Save call is in progress.
func (a *Actions) Loading() bool { return a.loading.Get() }

// Load fetches data, merges it into the source node and resets the form
// onto it.
func (a *Actions) Load(ctx context.Context) error {
	if a.cfg.Load == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	a.loading.Set(true)
	defer a.loading.Set(false)

	data, err := a.cfg.Load(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", a.form.Entity().Name(), err)
	}
	if err := a.form.s.src.Set(data); err != nil {
		return err
	}
	if err := a.form.Reset(); err != nil {
		return err
	}
	if a.cfg.OnLoaded != nil {
		a.cfg.OnLoaded()
	}
	return nil
}

// Save validates the form, hands its values to the save service, commits
// the result into the source node and leaves edit mode. Invalid fields
// yield a *SaveRejected before the service is called; a service error
// leaves the source untouched and the form in edit mode.
func (a *Actions) Save(ctx context.Context) error {
	s := a.form.s
	if s.closed {
		return ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	failing := reactive.Untracked(s.rt, s.failing)
	if len(failing) > 0 {
		s.logger.Info("form save rejected", "session", s.id, "entity", s.src.Entity().Name(), "failing", failing)
		return &SaveRejected{FailingFields: failing}
	}

	var saved map[string]any
	if a.cfg.Save != nil {
		data := reactive.Untracked(s.rt, func() map[string]any {
			return entity.ToFlatValues(s.work)
		})
		a.loading.Set(true)
		out, err := a.cfg.Save(ctx, data)
		a.loading.Set(false)
		if err != nil {
			return fmt.Errorf("save %s: %w", s.src.Entity().Name(), err)
		}
		saved = out
	}
	if err := s.commit(saved); err != nil {
		return err
	}
	a.form.SetEdit(false)
	if a.cfg.OnSaved != nil {
		a.cfg.OnSaved()
	}
	return nil
}

// OnClickEdit enters edit mode.
func (a *Actions) OnClickEdit() {
	a.form.SetEdit(true)
}

// OnClickCancel discards edits and leaves edit mode.
func (a *Actions) OnClickCancel() error {
	if err := a.form.Reset(); err != nil {
		return err
	}
	a.form.SetEdit(false)
	return nil
}
