package reactive

import (
	"github.com/delaneyj/deepreactive/bucket"
)

type ErrFn func() error

type dependency struct {
	bucket  *bucket.Bucket
	slot    int
	version uint64
}

// Effect is a re-runnable observer. Every run forgets the previous run's dependencies
// and records the keys read this time, so control flow that branches differently per
// run never leaves stale triggers behind.
type Effect struct {
	rt       *Runtime
	id       uint64
	fn       ErrFn
	level    int
	active   bool
	running  bool
	stamp    uint64
	runs     int
	deps     []dependency
	children []*Effect
}

// Effect creates an effect and runs it once right away. Effects created while another
// effect runs are its children: their level is one deeper and they are stopped whenever
// the parent re-runs or stops. The error of the first run is returned with the effect.
func (rt *Runtime) Effect(fn ErrFn) (*Effect, error) {
	rt.effects++
	e := &Effect{
		rt:     rt,
		id:     rt.effects,
		fn:     fn,
		active: true,
	}

	// A parent that stopped itself mid-run would never stop its children again.
	if parent := rt.active; parent != nil && parent.active {
		e.level = parent.level + 1
		parent.children = append(parent.children, e)
	} else if rt.scope != nil {
		rt.scope.effects = append(rt.scope.effects, e)
	}

	err := rt.run(e)
	return e, err
}

func (e *Effect) ID() uint64 {
	return e.id
}

// Level is 0 for top level effects and the parent's level plus one otherwise.
func (e *Effect) Level() int {
	return e.level
}

func (e *Effect) Active() bool {
	return e.active
}

// Runs counts how many times fn was invoked.
func (e *Effect) Runs() int {
	return e.runs
}

// Run re-executes the effect now. It is a no-op for stopped effects and for an effect
// that is already running.
func (e *Effect) Run() error {
	if !e.active || e.running {
		return nil
	}
	return e.rt.run(e)
}

// Stop deactivates the effect and detaches it from everything it depends on. Calling it
// again does nothing.
func (e *Effect) Stop() {
	if !e.active {
		return
	}
	e.active = false
	e.cleanup()
}

// ShouldRun reports whether any dependency was written since it was recorded.
func (e *Effect) ShouldRun() bool {
	for _, d := range e.deps {
		if d.bucket.Version() != d.version {
			return true
		}
	}
	return false
}

// Notify schedules the effect on its runtime.
func (e *Effect) Notify() {
	e.rt.sched.schedule(e)
}

func (e *Effect) cleanup() {
	for _, d := range e.deps {
		d.bucket.Remove(e, d.slot)
	}
	clear(e.deps)
	e.deps = e.deps[:0]

	children := e.children
	e.children = nil
	for _, child := range children {
		child.Stop()
	}
}

func (rt *Runtime) run(e *Effect) error {
	e.cleanup()

	prev := rt.active
	rt.active = e
	e.running = true
	defer func() {
		rt.active = prev
		e.running = false
	}()

	e.runs++
	rt.metrics.run()
	return e.fn()
}

// track records that the active effect read key on t.
func (rt *Runtime) track(t *target, key any) {
	e := rt.active
	if e == nil || !e.active {
		return
	}
	b, slot, added := rt.store.Track(t.handle, key, e)
	if added {
		e.deps = append(e.deps, dependency{bucket: b, slot: slot, version: b.Version()})
	}
}

// trigger bumps every key and notifies their subscribers. Keys nobody ever read have no
// bucket and nothing to notify.
func (rt *Runtime) trigger(t *target, keys ...any) {
	for _, key := range keys {
		b, ok := rt.store.Lookup(t.handle, key)
		if !ok {
			continue
		}
		b.Bump()
		for _, sub := range b.Subscribers() {
			sub.Notify()
		}
	}
}

type scope struct {
	effects []*Effect
}

// Scope runs fn and collects the top level effects it creates. The returned stop
// function stops all of them.
func (rt *Runtime) Scope(fn func() error) (stop func(), err error) {
	s := &scope{}
	prev := rt.scope
	rt.scope = s
	defer func() {
		rt.scope = prev
	}()

	err = fn()
	return func() {
		for _, e := range s.effects {
			e.Stop()
		}
	}, err
}
