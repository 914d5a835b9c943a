package reactive

import (
	"fmt"
	"log/slog"
)

// maxFlushRounds bounds how many times effects may re-trigger each other
// within one flush before the runtime gives up.
const maxFlushRounds = 100

// source is anything a computation can depend on.
type source interface {
	// version changes whenever the observable result changes.
	version() int64
	// refresh brings the source up to date. No-op for plain values.
	refresh()
}

// dep records the version of a source observed during a computation.
type dep struct {
	src source
	ver int64
}

// tracker collects the sources read by one running computation.
type tracker struct {
	deps []dep
	seen map[source]struct{}
}

func newTracker() *tracker {
	return &tracker{seen: make(map[source]struct{})}
}

// stale reports whether any recorded dependency moved since it was observed.
func stale(deps []dep) bool {
	for _, d := range deps {
		d.src.refresh()
		if d.src.version() != d.ver {
			return true
		}
	}
	return false
}

// Runtime owns the clock, the computation stack and the registered effects.
type Runtime struct {
	clock    *Clock
	stack    []*tracker
	batch    int
	pending  bool
	flushing bool
	effects  []*Effect
	logger   *slog.Logger
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = l
	}
}

// WithClock makes the runtime use the given clock.
func WithClock(c *Clock) Option {
	return func(rt *Runtime) {
		rt.clock = c
	}
}

// NewRuntime creates an empty runtime.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		clock:  NewClock(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Tick returns the current logical time of the runtime.
func (rt *Runtime) Tick() int64 {
	return rt.clock.Current()
}

// Batch runs fn and defers effect notification until it returns. Nested
// batches flush once, when the outermost one completes.
func (rt *Runtime) Batch(fn func()) {
	rt.batch++
	defer func() {
		rt.batch--
		if rt.batch == 0 && rt.pending {
			rt.flush()
		}
	}()
	fn()
}

// Untracked runs fn without registering its reads as dependencies of the
// computation currently running.
func Untracked[T any](rt *Runtime, fn func() T) T {
	rt.stack = append(rt.stack, newTracker())
	defer func() {
		rt.stack = rt.stack[:len(rt.stack)-1]
	}()
	return fn()
}

// track registers s as a dependency of the innermost running computation.
func (rt *Runtime) track(s source) {
	n := len(rt.stack)
	if n == 0 {
		return
	}
	t := rt.stack[n-1]
	if _, ok := t.seen[s]; ok {
		return
	}
	t.seen[s] = struct{}{}
	t.deps = append(t.deps, dep{src: s, ver: s.version()})
}

// run evaluates fn inside a fresh tracker and returns what it read.
func (rt *Runtime) run(fn func()) []dep {
	t := newTracker()
	rt.stack = append(rt.stack, t)
	defer func() {
		rt.stack = rt.stack[:len(rt.stack)-1]
	}()
	fn()
	return t.deps
}

// changed is called after every write that altered a value.
func (rt *Runtime) changed() {
	rt.clock.Next()
	if rt.batch > 0 || rt.flushing {
		rt.pending = true
		return
	}
	rt.flush()
}

// flush re-runs stale effects until no write is pending.
func (rt *Runtime) flush() {
	rt.flushing = true
	defer func() {
		rt.flushing = false
	}()

	for round := 0; ; round++ {
		if round >= maxFlushRounds {
			panic(fmt.Sprintf("reactive: effects did not settle after %d rounds", maxFlushRounds))
		}
		rt.pending = false

		live := rt.effects[:0]
		for _, e := range rt.effects {
			if !e.disposed {
				live = append(live, e)
			}
		}
		rt.effects = live

		for _, e := range append([]*Effect(nil), rt.effects...) {
			if !e.disposed && stale(e.deps) {
				e.execute()
			}
		}
		if !rt.pending {
			return
		}
		rt.logger.Debug("effects triggered further writes", "round", round)
	}
}
