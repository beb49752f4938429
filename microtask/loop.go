package microtask

import (
	"context"
	"sync"

	"github.com/go-logr/logr"
	"github.com/juju/errors"
)

const (
	// ErrLoopClosed is returned when work is submitted to a loop that has stopped.
	ErrLoopClosed = errors.ConstError("microtask: loop is closed")

	// ErrTaskPanicked is returned by Submit when the submitted task panics.
	ErrTaskPanicked = errors.ConstError("microtask: task panicked")
)

type task struct {
	fn   func()
	done chan error
}

// Loop runs tasks one at a time on the goroutine that calls Run and drains its
// microtask queue after each of them, so anything a task defers with QueueMicrotask
// happens before the next task starts (unless the drain budget is exhausted, in which
// case pending tasks interleave with the remaining microtasks).
type Loop struct {
	queue  *Queue
	tasks  chan task
	closed chan struct{}
	once   sync.Once
	log    logr.Logger
}

func NewLoop(opts ...Option) *Loop {
	c := newConfig(opts)
	return &Loop{
		queue:  NewQueue(opts...),
		tasks:  make(chan task, 64),
		closed: make(chan struct{}),
		log:    c.log.WithName("loop"),
	}
}

// QueueMicrotask defers fn until the current task finishes. It must only be called from
// tasks running on the loop.
func (l *Loop) QueueMicrotask(fn func()) {
	l.queue.QueueMicrotask(fn)
}

// Run processes tasks until ctx is done or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if l.queue.Len() > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-l.closed:
				return nil
			case t := <-l.tasks:
				l.execute(t)
			default:
				l.queue.Drain()
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.closed:
			return nil
		case t := <-l.tasks:
			l.execute(t)
		}
	}
}

func (l *Loop) execute(t task) {
	err := l.safeExecute(t.fn)
	l.queue.Drain()
	if t.done != nil {
		t.done <- err
	}
}

func (l *Loop) safeExecute(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Annotatef(ErrTaskPanicked, "%v", r)
			l.log.Error(err, "task panicked")
		}
	}()
	fn()
	return nil
}

// Submit runs fn on the loop and waits until it and the microtasks it queued have run.
func (l *Loop) Submit(ctx context.Context, fn func()) error {
	if l.isClosed() {
		return ErrLoopClosed
	}
	t := task{fn: fn, done: make(chan error, 1)}
	select {
	case <-l.closed:
		return ErrLoopClosed
	case <-ctx.Done():
		return errors.Trace(ctx.Err())
	case l.tasks <- t:
	}

	select {
	case err := <-t.done:
		return err
	case <-l.closed:
		return ErrLoopClosed
	case <-ctx.Done():
		return errors.Trace(ctx.Err())
	}
}

// Post queues fn without waiting for it.
func (l *Loop) Post(fn func()) error {
	if l.isClosed() {
		return ErrLoopClosed
	}
	select {
	case <-l.closed:
		return ErrLoopClosed
	case l.tasks <- task{fn: fn}:
		return nil
	}
}

func (l *Loop) isClosed() bool {
	select {
	case <-l.closed:
		return true
	default:
		return false
	}
}

// Close stops Run; it is safe to call more than once.
func (l *Loop) Close() {
	l.once.Do(func() {
		close(l.closed)
	})
}
