// Package microtask provides the deferred "run after the current synchronous block"
// primitive the reactive scheduler relies on. A Queue is drained explicitly by its owner;
// a Loop owns a Queue on a single goroutine and drains it after every task it runs.
package microtask

import (
	"log"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/juju/errors"
)

// Scheduler accepts work to run once the current synchronous block completes.
type Scheduler interface {
	QueueMicrotask(fn func())
}

const (
	// DefaultBudget is how many microtasks one Drain call runs before yielding.
	DefaultBudget = 1024

	backlogWarning = 10_000

	// ErrMicrotaskPanicked is logged when a microtask panics during Drain.
	ErrMicrotaskPanicked = errors.ConstError("microtask: microtask panicked")
)

type config struct {
	budget int
	log    logr.Logger
}

type Option func(*config)

// WithBudget caps the microtasks run per Drain call. Zero or less means unbounded.
func WithBudget(n int) Option {
	return func(c *config) {
		c.budget = n
	}
}

func WithLogger(l logr.Logger) Option {
	return func(c *config) {
		c.log = l
	}
}

func newConfig(opts []Option) *config {
	c := &config{
		budget: DefaultBudget,
		log:    stdr.New(log.Default()).WithName("microtask"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Queue is a FIFO of microtasks. It is not safe for concurrent use; the goroutine that
// owns it is the only one that may enqueue or drain.
type Queue struct {
	tasks  []func()
	budget int
	log    logr.Logger
}

func NewQueue(opts ...Option) *Queue {
	c := newConfig(opts)
	return &Queue{
		tasks:  make([]func(), 0, 64),
		budget: c.budget,
		log:    c.log,
	}
}

func (q *Queue) QueueMicrotask(fn func()) {
	if fn == nil {
		return
	}
	q.tasks = append(q.tasks, fn)
}

func (q *Queue) Len() int {
	return len(q.tasks)
}

// Drain runs queued microtasks in order, including ones queued while draining, until
// the queue is empty or the budget is spent. It returns how many ran.
func (q *Queue) Drain() int {
	if len(q.tasks) > backlogWarning {
		q.log.Info("microtask backlog is large, potential infinite loop", "pending", len(q.tasks))
	}

	executed := 0
	for len(q.tasks) > 0 {
		if q.budget > 0 && executed >= q.budget {
			return executed
		}
		fn := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]

		q.safeExecute(fn)
		executed++
	}

	if cap(q.tasks) > 1024 && len(q.tasks) < cap(q.tasks)/4 {
		tasks := make([]func(), len(q.tasks), len(q.tasks)*2+64)
		copy(tasks, q.tasks)
		q.tasks = tasks
	}
	return executed
}

// DrainAll keeps draining until nothing is left and returns the total run.
func (q *Queue) DrainAll() int {
	total := 0
	for len(q.tasks) > 0 {
		total += q.Drain()
	}
	return total
}

func (q *Queue) safeExecute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error(errors.Annotatef(ErrMicrotaskPanicked, "%v", r), "microtask panicked")
		}
	}()
	fn()
}
