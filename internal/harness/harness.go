package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"

	"github.com/roach88/formstate/internal/entity"
	"github.com/roach88/formstate/internal/form"
	"github.com/roach88/formstate/internal/i18n"
	"github.com/roach88/formstate/internal/reactive"
	"github.com/roach88/formstate/internal/schema"
	"github.com/roach88/formstate/internal/store"
	"github.com/roach88/formstate/internal/testutil"
)

// Harness holds the state of one scenario run.
type Harness struct {
	scenario *Scenario
	store    *store.Store
	clock    *testutil.DeterministicClock
	logger   *slog.Logger
	src      *entity.Node
	form     *form.FormNode

	// lastSave is the error of the most recent save step; saved reports
	// whether any save ran at all.
	lastSave error
	saved    bool
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Compile the scenario's specs into a registry
// 2. Build the source node and merge the scenario's source data
// 3. Open a form session on it
// 4. Execute steps, recording one trace event each
// 5. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario, testutil.DiscardLogger())
}

// RunContext is Run with an explicit context and logger.
func RunContext(ctx context.Context, scenario *Scenario, logger *slog.Logger) (*Result, error) {
	reg, err := LoadSpecs(scenario.Specs, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load specs: %w", err)
	}
	return RunWithRegistry(ctx, scenario, reg, logger)
}

// RunWithRegistry executes a scenario against an already compiled
// registry, ignoring scenario.Specs.
func RunWithRegistry(ctx context.Context, scenario *Scenario, reg *schema.Registry, logger *slog.Logger) (*Result, error) {
	st, err := store.Open(":memory:",
		store.WithClock(testutil.NewDeterministicClock()),
		store.WithIDs(testutil.SequentialIDs("snapshot")),
		store.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	rt := reactive.NewRuntime(reactive.WithLogger(logger))
	b := entity.NewBuilder(rt, reg, i18n.NewCatalog(language.English))
	src, err := b.Build(scenario.Entity)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", scenario.Entity, err)
	}
	if scenario.Source != nil {
		if err := src.Set(scenario.Source); err != nil {
			return nil, fmt.Errorf("failed to set source: %w", err)
		}
	}

	fn, err := form.MakeFormNode(src, form.Config{
		IsEdit:            scenario.Form.Edit,
		ForceErrorDisplay: scenario.Form.ForceErrorDisplay,
		Logger:            logger,
		NewID:             testutil.SequentialIDs("session"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open form: %w", err)
	}
	defer fn.Close()

	h := &Harness{
		scenario: scenario,
		store:    st,
		clock:    testutil.NewDeterministicClock(),
		logger:   logger,
		src:      src,
		form:     fn,
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		err := h.execute(ctx, step)
		h.record(result, step, err)
		if msg := checkStep(step, err); msg != "" {
			result.AddError(fmt.Sprintf("steps[%d] %s: %s", i, step.Op, msg))
		}
	}

	result.Form = fn.Flat()
	result.Source = entity.ToFlatValues(src)
	for _, msg := range h.evaluate(ctx, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// checkStep compares a step's error with its expect_error clause.
func checkStep(step Step, err error) string {
	switch {
	case step.ExpectError == "" && err != nil:
		return fmt.Sprintf("unexpected error: %v", err)
	case step.ExpectError != "" && err == nil:
		return fmt.Sprintf("expected error containing %q, got success", step.ExpectError)
	case step.ExpectError != "" && !strings.Contains(err.Error(), step.ExpectError):
		return fmt.Sprintf("expected error containing %q, got %q", step.ExpectError, err.Error())
	}
	return ""
}

func (h *Harness) record(result *Result, step Step, err error) {
	outcome := "ok"
	if err != nil {
		outcome = err.Error()
	}
	result.Trace = append(result.Trace, TraceEvent{
		Seq:     h.clock.Next(),
		Op:      step.Op,
		Path:    step.Path,
		Outcome: outcome,
		Errors:  h.form.VisibleErrors(),
		Dirty:   h.form.IsDirty(),
	})
}

func (h *Harness) execute(ctx context.Context, step Step) error {
	switch step.Op {
	case OpSet:
		return h.form.Set(step.Data)
	case OpSetSource:
		return h.src.Set(step.Data)
	case OpClear:
		h.form.Node().Clear()
		return nil
	case OpWrite:
		f, err := h.form.FieldAt(step.Path)
		if err != nil {
			return err
		}
		return f.Set(step.Value)
	case OpText:
		f, err := h.form.FieldAt(step.Path)
		if err != nil {
			return err
		}
		return f.SetText(step.Value.(string))
	case OpEdit:
		edit := step.Value.(bool)
		if step.Path == "" {
			h.form.SetEdit(edit)
			return nil
		}
		f, err := h.form.FieldAt(step.Path)
		if err != nil {
			return err
		}
		f.SetEdit(edit)
		return nil
	case OpFocus, OpBlur:
		f, err := h.form.FieldAt(step.Path)
		if err != nil {
			return err
		}
		if step.Op == OpFocus {
			f.Focus()
		} else {
			f.Blur()
		}
		return nil
	case OpAppend:
		l, err := h.form.ListAt(step.Path)
		if err != nil {
			return err
		}
		_, err = l.Append(step.Data)
		return err
	case OpRemove:
		l, err := h.form.ListAt(step.Path)
		if err != nil {
			return err
		}
		return l.Remove(step.Index)
	case OpSave:
		h.saved = true
		h.lastSave = h.form.Save()
		return h.lastSave
	case OpReset:
		return h.form.Reset()
	case OpPersist:
		key := h.scenario.Key
		if key == "" {
			key = h.scenario.Name
		}
		_, _, err := h.store.Put(ctx, h.scenario.Entity, key, entity.ToFlatValues(h.src))
		return err
	}
	return fmt.Errorf("unknown op %q", step.Op)
}

// failingFields extracts the failing paths of a rejected save.
func failingFields(err error) []string {
	var sr *form.SaveRejected
	if errors.As(err, &sr) {
		return sr.FailingFields
	}
	return nil
}
