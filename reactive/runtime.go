// Package reactive is a fine-grained reactive state engine.
//
// Values wrapped by a Runtime record which running Effect read which exact key and
// schedule only those effects when the key is written. Re-runs are batched on a
// microtask queue and flushed parent-first by nesting level.
//
// A Runtime is single threaded. It must only be used from the goroutine that drains its
// microtask scheduler.
package reactive

import (
	"log"

	"github.com/delaneyj/deepreactive/bucket"
	"github.com/delaneyj/deepreactive/equal"
	"github.com/delaneyj/deepreactive/microtask"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/google/uuid"
	"github.com/juju/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// OnErrorFunc receives errors raised while effects run during a flush. The effect is
// nil for errors that belong to the scheduler itself, such as ErrRunawayCascade.
type OnErrorFunc func(e *Effect, err error)

type Option func(*options)

type options struct {
	cfg       Config
	log       logr.Logger
	onError   OnErrorFunc
	scheduler microtask.Scheduler
	meter     metric.Meter
}

func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

func WithLogger(l logr.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

func WithOnError(fn OnErrorFunc) Option {
	return func(o *options) {
		o.onError = fn
	}
}

// WithScheduler replaces the runtime's own microtask queue, for example with a
// microtask.Loop. Drain has nothing to do in that case.
func WithScheduler(s microtask.Scheduler) Option {
	return func(o *options) {
		o.scheduler = s
	}
}

func WithMeter(m metric.Meter) Option {
	return func(o *options) {
		o.meter = m
	}
}

type Runtime struct {
	id      uuid.UUID
	cfg     Config
	log     logr.Logger
	onError OnErrorFunc

	queue     *microtask.Queue
	scheduler microtask.Scheduler
	sched     *scheduler

	store   *bucket.Store
	cache   *cache
	cmp     *equal.Comparator
	adopted map[uintptr]*target
	live    map[uint64]*target
	handles uint64

	active     *Effect
	pauseStack []*Effect
	scope      *scope
	effects    uint64

	metrics *metrics
}

func New(opts ...Option) (*Runtime, error) {
	o := &options{
		cfg:   DefaultConfig(),
		log:   stdr.New(log.Default()).WithName("reactive"),
		meter: otel.Meter("deepreactive"),
	}
	for _, opt := range opts {
		opt(o)
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}

	rt := &Runtime{
		id:      uuid.New(),
		cfg:     o.cfg,
		onError: o.onError,
		store:   bucket.NewStore(),
		cache:   newCache(),
		adopted: map[uintptr]*target{},
		live:    map[uint64]*target{},
	}
	rt.log = o.log.WithValues("runtime", rt.id.String())
	rt.cmp = &equal.Comparator{Unwrap: rt.unwrapForCompare}

	if o.scheduler != nil {
		rt.scheduler = o.scheduler
	} else {
		rt.queue = microtask.NewQueue(microtask.WithLogger(rt.log.WithName("microtask")))
		rt.scheduler = rt.queue
	}
	rt.sched = newScheduler(rt)

	m, err := newMetrics(o.meter, rt.id.String())
	if err != nil {
		return nil, errors.Annotate(err, "create metrics")
	}
	rt.metrics = m
	return rt, nil
}

func (rt *Runtime) ID() uuid.UUID {
	return rt.id
}

func (rt *Runtime) Config() Config {
	return rt.cfg
}

// Drain runs the runtime's pending microtasks, flushes included, and returns how many
// ran. With an external scheduler it does nothing.
func (rt *Runtime) Drain() int {
	if rt.queue == nil {
		return 0
	}
	return rt.queue.DrainAll()
}

// Batch runs fn and then drains, so every effect triggered by fn has re-run exactly
// once when Batch returns.
func (rt *Runtime) Batch(fn func()) {
	fn()
	rt.Drain()
}

// Flush runs the pending effects now instead of waiting for the queued microtask.
func (rt *Runtime) Flush() {
	rt.sched.flush()
}

func (rt *Runtime) PauseTracking() {
	rt.pauseStack = append(rt.pauseStack, rt.active)
	rt.active = nil
}

func (rt *Runtime) ResumeTracking() {
	lastIdx := len(rt.pauseStack) - 1
	if lastIdx < 0 {
		return
	}
	rt.active = rt.pauseStack[lastIdx]
	rt.pauseStack = rt.pauseStack[:lastIdx]
}

// Untracked runs fn without recording dependencies for the current effect.
func (rt *Runtime) Untracked(fn func()) {
	rt.PauseTracking()
	defer rt.ResumeTracking()
	fn()
}

// Active returns the effect currently recording dependencies, if any.
func (rt *Runtime) Active() *Effect {
	return rt.active
}

func (rt *Runtime) Stats() Stats {
	st := rt.metrics.counts
	st.Pending = len(rt.sched.pending)
	st.Targets = len(rt.live)
	st.Wrappers = rt.cache.len()
	bs := rt.store.Stats()
	st.Buckets = bs.Buckets
	st.Subscribers = bs.Subscribers
	return st
}

// Prune drops dependency buckets nobody subscribes to any more.
func (rt *Runtime) Prune() int {
	return rt.store.Prune()
}

func (rt *Runtime) reportError(e *Effect, err error) {
	if e != nil {
		rt.log.Error(err, "effect failed", "effect", e.id, "level", e.level)
	}
	if rt.onError != nil {
		rt.onError(e, err)
	}
}
