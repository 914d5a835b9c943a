package reactive

// Effect is a reaction re-run whenever a write changes one of the sources it
// read during its previous run.
type Effect struct {
	rt       *Runtime
	fn       func()
	deps     []dep
	disposed bool
}

// Effect runs fn immediately and then after every relevant change, until
// the returned Effect is disposed.
func (rt *Runtime) Effect(fn func()) *Effect {
	e := &Effect{rt: rt, fn: fn}
	rt.effects = append(rt.effects, e)
	e.execute()
	return e
}

// Dispose stops the effect. It is safe to call more than once.
func (e *Effect) Dispose() {
	e.disposed = true
	e.deps = nil
}

func (e *Effect) execute() {
	e.deps = e.rt.run(e.fn)
}
